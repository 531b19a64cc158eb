package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/plusminus/internal/blocks"
	"github.com/roach88/plusminus/internal/engine"
	"github.com/roach88/plusminus/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Full trace for context
	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s %d->%d\n",
			event.Seq, event.Block, event.Kind, event.ItemsBefore, event.ItemsAfter)
	}

	return buf.String()
}

// AssertionContext carries what assertions need beyond the trace.
type AssertionContext struct {
	Store   *store.Store
	Catalog *blocks.Catalog
	Ctx     context.Context
}

// EvaluateAssertions runs every assertion and returns failure messages.
// Evaluation does not stop at the first failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertFinalItems:
		return assertFinalItems(result, a)
	case AssertFinalInputs:
		return assertFinalInputs(result, a)
	case AssertReplay:
		return assertReplay(result.Trace, actx)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTraceCount checks that the kind appears exactly Count times,
// optionally restricted to one block.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Kind == a.Kind && (a.Block == "" || event.Block == a.Block) {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s appears %d times", a.Kind, a.Count),
			Actual:   fmt.Sprintf("%s appears %d times", a.Kind, count),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks that Kinds occur as a subsequence of the trace.
// Intervening events are allowed.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Kinds) && event.Kind == a.Kinds[next] {
			next++
		}
	}

	if next < len(a.Kinds) {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
			Actual:   fmt.Sprintf("matched %v, missing %s", a.Kinds[:next], a.Kinds[next]),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalItems checks a block's final count.
func assertFinalItems(result *Result, a Assertion) error {
	snap, ok := result.Final[a.Block]
	if !ok {
		return fmt.Errorf("no final state for block %q", a.Block)
	}
	if snap.Items != a.Items {
		return &AssertionError{
			Type:     AssertFinalItems,
			Expected: fmt.Sprintf("%s has %d items", a.Block, a.Items),
			Actual:   fmt.Sprintf("%s has %d items", a.Block, snap.Items),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertFinalInputs checks a block's final rows exactly.
func assertFinalInputs(result *Result, a Assertion) error {
	snap, ok := result.Final[a.Block]
	if !ok {
		return fmt.Errorf("no final state for block %q", a.Block)
	}
	if !slices.Equal(snap.InputNames(), a.Inputs) {
		return &AssertionError{
			Type:     AssertFinalInputs,
			Expected: fmt.Sprintf("%s rows %v", a.Block, a.Inputs),
			Actual:   fmt.Sprintf("%s rows %v", a.Block, snap.InputNames()),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertReplay rebuilds every block from the stored log.
func assertReplay(trace []TraceEvent, actx *AssertionContext) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("replay assertion requires a store")
	}

	replayed, err := engine.Replay(actx.Ctx, actx.Store, actx.Catalog)
	if err != nil {
		return &AssertionError{
			Type:     AssertReplay,
			Expected: "replay reproduces the log",
			Actual:   err.Error(),
			Trace:    trace,
		}
	}
	if replayed.Events != len(trace) {
		return &AssertionError{
			Type:     AssertReplay,
			Expected: fmt.Sprintf("%d events replayed", len(trace)),
			Actual:   fmt.Sprintf("%d events replayed", replayed.Events),
			Trace:    trace,
		}
	}
	return nil
}
