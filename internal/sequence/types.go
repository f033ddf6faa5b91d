package sequence

import (
	"context"
	"time"

	"github.com/nidhogg/animseq/internal/catalog"
	"github.com/nidhogg/animseq/internal/role"
)

// StopReason explains why a run ended.
type StopReason string

const (
	StopTriggerElapsed  StopReason = "trigger_elapsed"
	StopNoCandidates    StopReason = "no_candidates"
	StopBudgetExhausted StopReason = "step_budget_exhausted"
	StopGatewayError    StopReason = "gateway_error"
	StopCanceled        StopReason = "canceled"
)

// Aborted reports whether the run ended on a failure rather than on its own data.
func (r StopReason) Aborted() bool {
	return r == StopGatewayError || r == StopCanceled
}

const (
	// DefaultMaxSteps caps the number of generated actions per run.
	DefaultMaxSteps = 20
	// TriggerElapsedSteps is how many actions must follow a trigger before the run ends.
	TriggerElapsedSteps = 4
)

// StepRecord captures one successful step.
type StepRecord struct {
	Step       int                `json:"step"`
	Candidates []catalog.ActionID `json:"candidates"`
	Chosen     catalog.ActionID   `json:"chosen"`
}

// Result is the outcome of a run. History is always populated, including
// the partial history of an aborted run.
type Result struct {
	RunID     string             `json:"run_id"`
	Role      role.Role          `json:"role"`
	History   []catalog.ActionID `json:"history"`
	Reason    StopReason         `json:"reason"`
	Steps     int                `json:"steps"`
	Records   []StepRecord       `json:"records"`
	Error     string             `json:"error,omitempty"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
}

// EventType identifies a simulator event.
type EventType string

const (
	EventStarted EventType = "started"
	EventStep    EventType = "step"
	EventStopped EventType = "stopped"
)

// Event is emitted to observers as a run progresses.
type Event struct {
	Type       EventType          `json:"type"`
	RunID      string             `json:"run_id"`
	Role       role.Role          `json:"role"`
	Step       int                `json:"step,omitempty"`
	History    []catalog.ActionID `json:"history"`
	Candidates []catalog.ActionID `json:"candidates,omitempty"`
	Chosen     catalog.ActionID   `json:"chosen,omitempty"`
	Reason     StopReason         `json:"reason,omitempty"`
	Error      string             `json:"error,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Observer receives run events. Errors are logged and never stop a run.
type Observer interface {
	OnEvent(ctx context.Context, ev Event) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event) error

func (f ObserverFunc) OnEvent(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Prompter renders the model query for a step.
type Prompter interface {
	Build(r role.Role, history []catalog.ActionID) string
}
