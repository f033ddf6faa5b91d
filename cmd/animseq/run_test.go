package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nidhogg/animseq/internal/catalog"
	"github.com/nidhogg/animseq/internal/config"
	"github.com/nidhogg/animseq/internal/provider"
	"github.com/nidhogg/animseq/internal/sequence"
	"go.uber.org/zap"
)

func writeTestConfig(t *testing.T, endpoint string) string {
	t.Helper()
	body := fmt.Sprintf(`{
		"server": {"log_level": "error"},
		"providers": [{"id": "local", "type": "ollama", "endpoint": %q, "model": "llama3"}],
		"simulation": {"max_steps": 5, "step_delay_ms": 1}
	}`, endpoint)
	path := filepath.Join(t.TempDir(), "animseq.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "ClimbStairs, Rummaging", "done": true})
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--config", writeTestConfig(t, srv.URL), "--seed", "7", "--role", "구매자"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"[role selected] -> 구매자",
		"[Step 1] current sequence: [IdleStanding]",
		"[stop] step budget exhausted",
		"[final action sequence]\n1. IdleStanding\n",
		"6. ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunCommandGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"run", "--config", writeTestConfig(t, srv.URL), "--seed", "7", "--role", "구매자"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected gateway failure to surface as an error")
	}
	if !strings.Contains(out.String(), "[final action sequence]\n1. IdleStanding\n") {
		t.Errorf("partial history not printed:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "[Step 1] current sequence: [IdleStanding]") {
		t.Errorf("running state of the failed step not printed:\n%s", out.String())
	}
}

func TestConsoleObserverPrintsStoppingStep(t *testing.T) {
	var out bytes.Buffer
	obs := consoleObserver{w: &out}
	history := []catalog.ActionID{catalog.Idle, "PickUpFromBox", "A", "B", "C", "D"}

	obs.OnEvent(context.Background(), sequence.Event{
		Type:    sequence.EventStopped,
		Reason:  sequence.StopTriggerElapsed,
		History: history,
	})
	want := "[Step 6] current sequence: [IdleStanding PickUpFromBox A B C D]"
	if !strings.Contains(out.String(), want) {
		t.Errorf("output missing %q:\n%s", want, out.String())
	}

	out.Reset()
	obs.OnEvent(context.Background(), sequence.Event{
		Type:    sequence.EventStopped,
		Reason:  sequence.StopBudgetExhausted,
		History: history,
	})
	if strings.Contains(out.String(), "current sequence") {
		t.Errorf("budget stop should not print a step header:\n%s", out.String())
	}
}

func TestBuildRouterDefaultProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Providers = []config.ProviderConfig{
		{ID: "local", Type: "ollama"},
		{ID: "remote", Type: "openai", Endpoint: "http://example.invalid/v1"},
	}
	cfg.DefaultProvider = "remote"

	router, err := buildRouter(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if router.DefaultID() != "remote" {
		t.Errorf("got default %q, want remote", router.DefaultID())
	}

	cfg.DefaultProvider = "missing"
	if _, err := buildRouter(cfg, zap.NewNop()); !errors.Is(err, provider.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestDescribeStop(t *testing.T) {
	for _, r := range []sequence.StopReason{
		sequence.StopTriggerElapsed, sequence.StopNoCandidates, sequence.StopBudgetExhausted,
		sequence.StopGatewayError, sequence.StopCanceled,
	} {
		if s := describeStop(r); !strings.HasPrefix(s, "[") {
			t.Errorf("reason %s: unexpected description %q", r, s)
		}
	}
}
