package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "animseq.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadSubstitutesEnv(t *testing.T) {
	t.Setenv("ANIMSEQ_TEST_MODEL", "mistral")
	path := writeConfig(t, `{
		"providers": [{"id": "local", "type": "ollama", "endpoint": "${ANIMSEQ_TEST_ENDPOINT:http://gpu-box:11434}", "model": "${ANIMSEQ_TEST_MODEL}"}],
		"simulation": {"max_steps": 8, "step_delay_ms": 250}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Providers) != 1 {
		t.Fatalf("got %d providers, want 1", len(cfg.Providers))
	}
	p := cfg.Providers[0]
	if p.Endpoint != "http://gpu-box:11434" {
		t.Errorf("got endpoint %q, want default from placeholder", p.Endpoint)
	}
	if p.Model != "mistral" {
		t.Errorf("got model %q, want mistral", p.Model)
	}
	if cfg.Simulation.MaxSteps != 8 {
		t.Errorf("got max_steps %d, want 8", cfg.Simulation.MaxSteps)
	}
	if cfg.Simulation.StepDelay() != 250*time.Millisecond {
		t.Errorf("got delay %v", cfg.Simulation.StepDelay())
	}
	if cfg.Retry.MaxAttempts != 1 {
		t.Errorf("got retry attempts %d, want default 1", cfg.Retry.MaxAttempts)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"server": `)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected found=false for a missing file")
	}
	if cfg.Providers[0].Type != "ollama" || cfg.Providers[0].Model != "llama3" {
		t.Errorf("unexpected default provider: %+v", cfg.Providers[0])
	}
	if cfg.Simulation.MaxSteps != 20 || cfg.Simulation.StepDelay() != time.Second {
		t.Errorf("unexpected default simulation: %+v", cfg.Simulation)
	}
	if cfg.Simulation.QueryTimeout() != 0 {
		t.Errorf("expected no query timeout by default")
	}
}

func TestLoadStepDelayZeroDisablesPacing(t *testing.T) {
	path := writeConfig(t, `{"simulation": {"step_delay_ms": 0}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.StepDelay() != 0 {
		t.Errorf("got delay %v, want 0", cfg.Simulation.StepDelay())
	}

	path = writeConfig(t, `{"simulation": {"max_steps": 3}}`)
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.StepDelay() != time.Second {
		t.Errorf("got delay %v, want the 1s default", cfg.Simulation.StepDelay())
	}

	cfg.Simulation.SetStepDelay(250 * time.Millisecond)
	if cfg.Simulation.StepDelay() != 250*time.Millisecond {
		t.Errorf("override ignored: %v", cfg.Simulation.StepDelay())
	}
}

func TestLoadDefaultProvider(t *testing.T) {
	path := writeConfig(t, `{"default_provider": "remote", "providers": [{"id": "local"}, {"id": "remote"}]}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultProvider != "remote" {
		t.Errorf("got default provider %q", cfg.DefaultProvider)
	}
}
