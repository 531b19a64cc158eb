package harness

import "github.com/roach88/plusminus/internal/ir"

// TraceEvent is one applied step as seen in the trace.
type TraceEvent struct {
	Seq         int64    `json:"seq"`
	Block       string   `json:"block"`
	Kind        string   `json:"kind"`
	ItemsBefore int      `json:"items_before"`
	ItemsAfter  int      `json:"items_after"`
	Inputs      []string `json:"inputs"`
	Minus       bool     `json:"minus"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains every applied event in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final holds each block's shape after the last step, keyed by scenario block ID.
	Final map[string]ir.BlockSnapshot `json:"final,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  make(map[string]ir.BlockSnapshot),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends an applied event and the shape it produced.
func (r *Result) AddEvent(ev ir.Event, snap ir.BlockSnapshot) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:         ev.Seq,
		Block:       ev.BlockID,
		Kind:        ev.Kind,
		ItemsBefore: ev.ItemsBefore,
		ItemsAfter:  ev.ItemsAfter,
		Inputs:      snap.InputNames(),
		Minus:       snap.HasField("MINUS"),
	})
}
