package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plusminus/internal/ir"
	"github.com/roach88/plusminus/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	FlowToken string // optional - specific flow only
	Block     string // optional - filter to one block
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq         int64  `json:"seq"`
	Block       string `json:"block"`
	Type        string `json:"type"`
	Kind        string `json:"kind"`
	ItemsBefore int    `json:"items_before"`
	ItemsAfter  int    `json:"items_after"`
}

// TraceFlow is the timeline of one flow.
type TraceFlow struct {
	FlowToken string       `json:"flow_token"`
	Timeline  []TraceEvent `json:"timeline"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Flows []TraceFlow `json:"flows"`
	Stats TraceStats  `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Flows       int            `json:"flows"`
	Blocks      int            `json:"blocks"`
	ByKind      map[string]int `json:"by_kind"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded event timeline",
		Long: `Show the recorded events grouped by flow.

Each CLI invocation that changes a block runs in its own flow, so a flow
is one "session" of clicks, loads and saves.

Examples:
  plusminus trace
  plusminus trace --flow 0190a5c1-...
  plusminus trace --block greeting --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.FlowToken, "flow", "", "trace specific flow only")
	cmd.Flags().StringVar(&opts.Block, "block", "", "filter to one block ID")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.databasePath())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	result, err := buildTrace(ctx, st, opts.FlowToken, opts.Block)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
}

// buildTrace reads the requested flows and applies the block filter.
// Flows left empty by the filter are dropped.
func buildTrace(ctx context.Context, st *store.Store, flowToken, blockFilter string) (TraceResult, error) {
	var tokens []string
	if flowToken != "" {
		tokens = []string{flowToken}
	} else {
		var err error
		tokens, err = st.ListFlowTokens(ctx)
		if err != nil {
			return TraceResult{}, err
		}
	}

	result := TraceResult{
		Flows: []TraceFlow{},
		Stats: TraceStats{ByKind: make(map[string]int)},
	}
	blocks := make(map[string]bool)

	for _, token := range tokens {
		events, err := st.ReadFlow(ctx, token)
		if err != nil {
			return TraceResult{}, err
		}

		flow := TraceFlow{FlowToken: token, Timeline: []TraceEvent{}}
		for _, ev := range events {
			if blockFilter != "" && ev.BlockID != blockFilter {
				continue
			}
			flow.Timeline = append(flow.Timeline, toTraceEvent(ev))
			result.Stats.TotalEvents++
			result.Stats.ByKind[ev.Kind]++
			blocks[ev.BlockID] = true
		}

		if len(flow.Timeline) > 0 {
			result.Flows = append(result.Flows, flow)
		}
	}

	result.Stats.Flows = len(result.Flows)
	result.Stats.Blocks = len(blocks)
	return result, nil
}

func toTraceEvent(ev ir.Event) TraceEvent {
	return TraceEvent{
		Seq:         ev.Seq,
		Block:       ev.BlockID,
		Type:        ev.BlockType,
		Kind:        ev.Kind,
		ItemsBefore: ev.ItemsBefore,
		ItemsAfter:  ev.ItemsAfter,
	}
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	if len(result.Flows) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	for _, flow := range result.Flows {
		fmt.Fprintf(w, "=== Flow %s ===\n", truncateID(flow.FlowToken))
		for _, ev := range flow.Timeline {
			if verbose {
				fmt.Fprintf(w, "  [%d] %s (%s) %s %d->%d\n",
					ev.Seq, ev.Block, ev.Type, ev.Kind, ev.ItemsBefore, ev.ItemsAfter)
			} else {
				fmt.Fprintf(w, "  [%d] %s %s %d->%d\n",
					ev.Seq, truncateID(ev.Block), ev.Kind, ev.ItemsBefore, ev.ItemsAfter)
			}
		}
		fmt.Fprintln(w)
	}

	// Stats section
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Flows:        %d\n", result.Stats.Flows)
	fmt.Fprintf(w, "  Blocks:       %d\n", result.Stats.Blocks)
	for _, kind := range []string{ir.EventCreate, ir.EventPlus, ir.EventMinus, ir.EventLoad, ir.EventSave} {
		if n := result.Stats.ByKind[kind]; n > 0 {
			fmt.Fprintf(w, "  %-13s %d\n", kind+":", n)
		}
	}

	return nil
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
