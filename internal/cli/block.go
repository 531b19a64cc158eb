package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/plusminus/internal/engine"
	"github.com/roach88/plusminus/internal/ir"
)

// BlockView is the CLI rendering of one block.
type BlockView struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Items       int             `json:"items"`
	Seq         int64           `json:"seq"`
	Inputs      []string        `json:"inputs"`
	Minus       bool            `json:"minus"`
	Render      string          `json:"render"`
	Mutation    json.RawMessage `json:"mutation,omitempty"`
	MutationXML string          `json:"mutation_xml,omitempty"`
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "new <type>",
		Short: "Place a new block",
		Long: `Place a new block of the given type with its default item count.

The block ID is a UUIDv7 unless --id is given.

Examples:
  plusminus new lists_create_with
  plusminus new text_join --id greeting`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyAndShow(rootOpts, cmd, engine.Command{
				Kind:      ir.EventCreate,
				BlockID:   id,
				BlockType: args[0],
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "block ID (default: generated)")

	return cmd
}

// NewClickCommand creates the click command.
func NewClickCommand(rootOpts *RootOptions) *cobra.Command {
	var times int

	cmd := &cobra.Command{
		Use:   "click <block-id> plus|minus",
		Short: "Activate a block's plus or minus affordance",
		Long: `Activate the plus or minus affordance on a block's first row.

Clicks go through the visible field, so clicking minus on a block with
no items fails because the minus affordance is not shown.

Examples:
  plusminus click 0190a5c1-... plus
  plusminus click greeting minus --times 2`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClick(rootOpts, cmd, args[0], args[1], times)
		},
	}

	cmd.Flags().IntVar(&times, "times", 1, "number of clicks")

	return cmd
}

func runClick(opts *RootOptions, cmd *cobra.Command, id, which string, times int) error {
	formatter := opts.formatter(cmd)

	if which != ir.EventPlus && which != ir.EventMinus {
		return NewExitError(ExitCommandError, fmt.Sprintf("expected plus or minus, got %q", which))
	}
	if times < 1 {
		return NewExitError(ExitCommandError, "--times must be at least 1")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sess, err := openSession(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	for i := 0; i < times; i++ {
		sess.engine.Enqueue(engine.Command{Kind: which, BlockID: id, Click: true})
	}
	runErr := sess.engine.Run(ctx)

	view, err := blockView(sess.engine, id)
	if err != nil {
		return outputRuntimeError(formatter, err)
	}
	if runErr != nil {
		return outputRuntimeError(formatter, runErr)
	}
	return outputBlock(formatter, view)
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <block-id> <items|json|xml>",
		Short: "Restore a block from a saved mutation",
		Long: `Restore a block's item count from a saved mutation.

The state may be a bare count, the JSON extra-state form {"items":n},
or the XML form <mutation items="n"></mutation>. Malformed or negative
counts are rejected and leave the block untouched.

Examples:
  plusminus load greeting 4
  plusminus load greeting '{"items":0}'
  plusminus load greeting '<mutation items="2"></mutation>'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := loadPayload(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, err.Error())
			}
			return applyAndShow(rootOpts, cmd, engine.Command{
				Kind:    ir.EventLoad,
				BlockID: args[0],
				Payload: payload,
			})
		},
	}

	return cmd
}

// loadPayload turns a bare count into the JSON form and passes anything
// else through for the engine to parse.
func loadPayload(arg string) ([]byte, error) {
	s := strings.TrimSpace(arg)
	if s == "" {
		return nil, errors.New("empty mutation")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return []byte(s), nil
	}
	if n < 0 {
		return nil, fmt.Errorf("items must be non-negative, got %d", n)
	}
	return ir.Mutation{Items: n}.MarshalJSON()
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "inspect <block-id>",
		Short: "Show a block's rows and saved mutation",
		Long: `Show a block's input rows, fields and serialized mutation.

With --save the save is recorded as an event, otherwise inspect is
read-only.

Examples:
  plusminus inspect greeting
  plusminus inspect greeting --save --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if save {
				return applyAndShow(rootOpts, cmd, engine.Command{Kind: ir.EventSave, BlockID: args[0]})
			}
			return runInspect(rootOpts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "record the save as an event")

	return cmd
}

func runInspect(opts *RootOptions, cmd *cobra.Command, id string) error {
	formatter := opts.formatter(cmd)

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sess, err := openSession(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	view, err := blockView(sess.engine, id)
	if err != nil {
		return outputRuntimeError(formatter, err)
	}
	return outputBlock(formatter, view)
}

// applyAndShow applies one command and prints the resulting block.
func applyAndShow(opts *RootOptions, cmd *cobra.Command, command engine.Command) error {
	formatter := opts.formatter(cmd)

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sess, err := openSession(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.engine.Apply(ctx, command)
	if err != nil {
		return outputRuntimeError(formatter, err)
	}
	formatter.VerboseLog("Applied %s to %s at seq %d (flow %s)",
		res.Event.Kind, res.Event.BlockID, res.Event.Seq, res.Event.FlowToken)

	view, err := blockView(sess.engine, res.Event.BlockID)
	if err != nil {
		return outputRuntimeError(formatter, err)
	}
	view.Seq = res.Event.Seq
	return outputBlockInFlow(formatter, view, res.Event.FlowToken)
}

// blockView renders the current state of block id.
func blockView(eng *engine.Engine, id string) (BlockView, error) {
	snap, err := eng.Snapshot(id)
	if err != nil {
		return BlockView{}, err
	}
	inst, _ := eng.Instance(id)
	block, _ := eng.Block(id)

	state, err := inst.SaveExtraState()
	if err != nil {
		return BlockView{}, err
	}
	xmlForm, err := inst.MutationToXML()
	if err != nil {
		return BlockView{}, err
	}

	return BlockView{
		ID:          snap.ID,
		Type:        snap.Type,
		Items:       snap.Items,
		Seq:         eng.Seq(),
		Inputs:      snap.InputNames(),
		Minus:       snap.HasField("MINUS"),
		Render:      block.Render(),
		Mutation:    state,
		MutationXML: string(xmlForm),
	}, nil
}

// outputBlock prints a block view in the configured format.
func outputBlock(formatter *OutputFormatter, view BlockView) error {
	return outputBlockInFlow(formatter, view, "")
}

func outputBlockInFlow(formatter *OutputFormatter, view BlockView, flow string) error {
	if formatter.Format == "json" {
		return formatter.SuccessInFlow(view, flow)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s (%s) items=%d seq=%d\n", view.ID, view.Type, view.Items, view.Seq)
	fmt.Fprint(w, view.Render)
	fmt.Fprintf(w, "mutation: %s\n", view.Mutation)
	formatter.VerboseLog("xml: %s", view.MutationXML)
	return nil
}

// outputRuntimeError prints an engine error and maps it to an exit code.
// Unknown blocks are command errors, everything else is a failure.
func outputRuntimeError(formatter *OutputFormatter, err error) error {
	var rtErr *engine.RuntimeError
	if errors.As(err, &rtErr) {
		_ = formatter.Error(string(rtErr.Code), rtErr.Message, nil)
		if engine.IsUnknownBlock(err) {
			return WrapExitError(ExitCommandError, string(rtErr.Code), err)
		}
		return WrapExitError(ExitFailure, string(rtErr.Code), err)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitFailure, "command failed", err)
}
