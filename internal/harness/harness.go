package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/plusminus/internal/blocks"
	"github.com/roach88/plusminus/internal/compiler"
	"github.com/roach88/plusminus/internal/engine"
	"github.com/roach88/plusminus/internal/ir"
	"github.com/roach88/plusminus/internal/msg"
	"github.com/roach88/plusminus/internal/store"
	"github.com/roach88/plusminus/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios against the real engine with a deterministic clock and
// flow token.
type Harness struct {
	store   *store.Store
	engine  *engine.Engine
	catalog *blocks.Catalog
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Build the catalog from built-in blocks and the scenario's definitions
// 3. Place blocks and check their initial shapes
// 4. Execute steps with expect validation
// 5. Evaluate assertions and return the result
//
// Step and assertion failures are reported in the result. The returned error
// is for scenarios that cannot be run at all.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	catalog, err := BuildCatalog(scenario.Locale, scenario.Definitions)
	if err != nil {
		return nil, err
	}

	logger := testutil.Discard()
	ctx := context.Background()

	eng, err := engine.Open(ctx, st, catalog,
		engine.WithClock(testutil.NewSeq()),
		engine.WithFlowGenerator(testutil.FlowToken(scenario.FlowToken)),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:   st,
		engine:  eng,
		catalog: catalog,
		logger:  logger,
	}

	result := NewResult()
	if err := h.placeBlocks(ctx, scenario.Blocks, result); err != nil {
		return nil, err
	}
	h.executeSteps(ctx, scenario.Steps, result)

	for _, b := range scenario.Blocks {
		snap, err := eng.Snapshot(b.ID)
		if err != nil {
			return nil, err
		}
		result.Final[b.ID] = snap
	}

	actx := &AssertionContext{
		Store:   st,
		Catalog: catalog,
		Ctx:     ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// BuildCatalog returns the built-in blocks localized for locale plus every
// block defined in the given CUE files. Definitions must validate.
func BuildCatalog(locale string, definitions []string) (*blocks.Catalog, error) {
	if locale == "" {
		locale = "en"
	}
	catalog := blocks.Builtin(msg.NewLocalizer(locale))

	for _, path := range definitions {
		defs, err := compiler.CompileFile(path)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, err)
		}
		for _, def := range defs {
			if errs := compiler.Validate(def); len(errs) > 0 {
				return nil, fmt.Errorf("%s: block %s: %w", path, def.Type, errs[0])
			}
			catalog.Add(blocks.FromDef(*def))
		}
	}

	return catalog, nil
}

// placeBlocks creates every scenario block in order.
// An unknown block type is a scenario error, not a test failure.
func (h *Harness) placeBlocks(ctx context.Context, setup []BlockSetup, result *Result) error {
	for i, b := range setup {
		res, err := h.engine.Apply(ctx, engine.Command{
			Kind:      ir.EventCreate,
			BlockID:   b.ID,
			BlockType: b.Type,
		})
		if err != nil {
			return fmt.Errorf("blocks[%d]: %w", i, err)
		}

		result.AddEvent(res.Event, res.Snapshot)
		checkExpect(fmt.Sprintf("blocks[%d]", i), b.Expect, res.Snapshot, result)

		h.logger.Info("block placed", "id", b.ID, "type", b.Type, "items", res.Event.ItemsAfter)
	}
	return nil
}

// executeSteps runs all steps and validates expect clauses.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		prefix := fmt.Sprintf("steps[%d]", i)

		cmd, err := stepCommand(step)
		if err != nil {
			result.AddError(fmt.Sprintf("%s: %v", prefix, err))
			continue
		}

		res, err := h.engine.Apply(ctx, cmd)

		if step.Expect != nil && step.Expect.Error != "" {
			switch {
			case err == nil:
				result.AddError(fmt.Sprintf("%s: expected error containing %q, got success", prefix, step.Expect.Error))
				result.AddEvent(res.Event, res.Snapshot)
			case !strings.Contains(err.Error(), step.Expect.Error):
				result.AddError(fmt.Sprintf("%s: expected error containing %q, got %v", prefix, step.Expect.Error, err))
			}
			continue
		}

		if err != nil {
			result.AddError(fmt.Sprintf("%s: %v", prefix, err))
			continue
		}

		result.AddEvent(res.Event, res.Snapshot)
		checkExpect(prefix, step.Expect, res.Snapshot, result)

		h.logger.Info("step completed",
			"step", i,
			"block", step.Block,
			"action", step.Action,
			"items", res.Event.ItemsAfter,
		)
	}
}

// stepCommand converts a scenario step into an engine command.
func stepCommand(step Step) (engine.Command, error) {
	cmd := engine.Command{
		Kind:    step.Action,
		BlockID: step.Block,
		Click:   step.Click,
	}

	if step.Action == ir.EventLoad {
		if step.State != "" {
			cmd.Payload = []byte(step.State)
		} else {
			payload, err := ir.Mutation{Items: *step.Items}.MarshalJSON()
			if err != nil {
				return engine.Command{}, err
			}
			cmd.Payload = payload
		}
	}

	return cmd, nil
}

// checkExpect compares the set fields of want against snap.
func checkExpect(prefix string, want *Expect, snap ir.BlockSnapshot, result *Result) {
	if want == nil {
		return
	}

	if want.Items != nil && *want.Items != snap.Items {
		result.AddError(fmt.Sprintf("%s: items: expected %d, got %d", prefix, *want.Items, snap.Items))
	}

	if want.Inputs != nil && !slices.Equal(want.Inputs, snap.InputNames()) {
		result.AddError(fmt.Sprintf("%s: inputs: expected %v, got %v", prefix, want.Inputs, snap.InputNames()))
	}

	if want.Minus != nil && *want.Minus != snap.HasField("MINUS") {
		result.AddError(fmt.Sprintf("%s: minus: expected %t, got %t", prefix, *want.Minus, snap.HasField("MINUS")))
	}

	if want.Top != nil {
		var top []string
		if len(snap.Inputs) > 0 {
			top = snap.Inputs[0].Fields
		}
		if !slices.Equal(want.Top, top) {
			result.AddError(fmt.Sprintf("%s: top fields: expected %v, got %v", prefix, want.Top, top))
		}
	}
}
