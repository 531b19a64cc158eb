package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/plusminus/internal/ir"
)

// Scenario defines a conformance test scenario.
// A scenario places blocks, drives them through plus/minus/load/save steps,
// and asserts on each step's shape and on the final trace.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definitions lists CUE files with extra block definitions.
	// Paths are relative to the scenario file location.
	Definitions []string `yaml:"definitions,omitempty"`

	// Locale selects label language for the built-in blocks. Defaults to "en".
	Locale string `yaml:"locale,omitempty"`

	// Blocks are placed before the first step, in order.
	Blocks []BlockSetup `yaml:"blocks"`

	// Steps drive the blocks.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and shapes.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// FlowToken is an optional fixed flow token for deterministic tests.
	// If empty, defaults to "test-flow-default".
	FlowToken string `yaml:"flow_token,omitempty"`
}

// BlockSetup places one block.
type BlockSetup struct {
	// ID is the scenario-local block ID used by steps.
	ID string `yaml:"id"`

	// Type is the block type (e.g., "lists_create_with").
	Type string `yaml:"type"`

	// Expect optionally checks the initial shape.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Step is one command against a placed block.
type Step struct {
	// Block is the scenario block ID.
	Block string `yaml:"block"`

	// Action is plus, minus, load or save.
	Action string `yaml:"action"`

	// Click routes plus/minus through the visible affordance.
	Click bool `yaml:"click,omitempty"`

	// Items is the target count for load.
	Items *int `yaml:"items,omitempty"`

	// State is a raw serialized mutation for load (JSON or XML),
	// used instead of Items to exercise malformed input.
	State string `yaml:"state,omitempty"`

	// Expect specifies the expected shape after the step.
	// If nil, only success is required.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is a partial description of a block's shape. Only set fields are checked.
type Expect struct {
	// Items is the expected item count.
	Items *int `yaml:"items,omitempty"`

	// Inputs are the expected input row names in order.
	Inputs []string `yaml:"inputs,omitempty"`

	// Minus is whether the minus affordance is shown.
	Minus *bool `yaml:"minus,omitempty"`

	// Top are the expected field keys on the first row.
	Top []string `yaml:"top,omitempty"`

	// Error is a substring of the expected error. The step must fail.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_count": Kind appears exactly Count times
	// - "trace_order": Kinds appear in order (not necessarily adjacent)
	// - "final_items": Block ends with Items slots
	// - "final_inputs": Block ends with exactly Inputs rows
	// - "replay": Rebuilding from the stored log reproduces every block
	Type string `yaml:"type"`

	// Block is the scenario block ID (final_items, final_inputs; optional filter for trace_count).
	Block string `yaml:"block,omitempty"`

	// Kind is the event kind (trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected kind order (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Items is the expected final count (final_items).
	Items int `yaml:"items,omitempty"`

	// Inputs is the expected final row list (final_inputs).
	Inputs []string `yaml:"inputs,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceCount  = "trace_count"
	AssertTraceOrder  = "trace_order"
	AssertFinalItems  = "final_items"
	AssertFinalInputs = "final_inputs"
	AssertReplay      = "replay"
)

// Step actions. Create happens through Blocks, not steps.
var validStepActions = map[string]bool{
	ir.EventPlus:  true,
	ir.EventMinus: true,
	ir.EventLoad:  true,
	ir.EventSave:  true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// Definition paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, def := range scenario.Definitions {
		if !filepath.IsAbs(def) {
			scenario.Definitions[i] = filepath.Join(base, def)
		}
	}

	// Validate definition paths exist
	for _, def := range scenario.Definitions {
		if _, err := os.Stat(def); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: definition file not found: %s", def)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Blocks) == 0 {
		return fmt.Errorf("blocks list is required and must be non-empty")
	}

	ids := make(map[string]bool)
	for i, b := range s.Blocks {
		if b.ID == "" {
			return fmt.Errorf("blocks[%d]: id is required", i)
		}
		if b.Type == "" {
			return fmt.Errorf("blocks[%d]: type is required", i)
		}
		if ids[b.ID] {
			return fmt.Errorf("blocks[%d]: duplicate id %q", i, b.ID)
		}
		ids[b.ID] = true
	}

	for i, step := range s.Steps {
		if !ids[step.Block] {
			return fmt.Errorf("steps[%d]: unknown block %q", i, step.Block)
		}
		if !validStepActions[step.Action] {
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if step.Action == ir.EventLoad {
			if (step.Items == nil) == (step.State == "") {
				return fmt.Errorf("steps[%d]: load requires exactly one of items or state", i)
			}
			if step.Items != nil && *step.Items < 0 {
				return fmt.Errorf("steps[%d]: items must be non-negative", i)
			}
		} else if step.Items != nil || step.State != "" {
			return fmt.Errorf("steps[%d]: items and state only apply to load", i)
		}
		if step.Click && step.Action != ir.EventPlus && step.Action != ir.EventMinus {
			return fmt.Errorf("steps[%d]: click only applies to plus and minus", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, ids); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, ids map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceCount:
		if !ir.ValidEventKinds[a.Kind] {
			return fmt.Errorf("assertions[%d]: valid kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
		if a.Block != "" && !ids[a.Block] {
			return fmt.Errorf("assertions[%d]: unknown block %q", index, a.Block)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
	case AssertFinalItems, AssertFinalInputs:
		if !ids[a.Block] {
			return fmt.Errorf("assertions[%d]: known block is required for %s", index, a.Type)
		}
		if a.Type == AssertFinalItems && a.Items < 0 {
			return fmt.Errorf("assertions[%d]: items must be non-negative", index)
		}
		if a.Type == AssertFinalInputs && len(a.Inputs) == 0 {
			return fmt.Errorf("assertions[%d]: inputs list is required for final_inputs", index)
		}
	case AssertReplay:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
