package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/plusminus/internal/engine"
	"github.com/roach88/plusminus/internal/store"
)

// ReplayResult holds the replay outcome.
type ReplayResult struct {
	Events        int               `json:"events"`
	Blocks        int               `json:"blocks"`
	Hashes        map[string]string `json:"hashes"`
	Deterministic bool              `json:"deterministic"`
	Mismatch      string            `json:"mismatch,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay event log and verify determinism",
		Long: `Replay the event log into a fresh workspace and verify determinism.

Every event must reproduce its recorded seq and item counts, and every
block's final shape must hash to its latest stored snapshot.

Exit codes:
  0 - Replay reproduced the stored state
  1 - Divergence detected
  2 - Command error (database not found, etc.)

Examples:
  plusminus replay
  plusminus replay --db ./blocks.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd)
		},
	}

	return cmd
}

func runReplay(opts *RootOptions, cmd *cobra.Command) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	catalog, err := BuildCatalog(opts.locale(), opts.definitionsDir())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load block definitions", err)
	}

	st, err := store.Open(opts.databasePath())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	replayed, err := engine.Replay(ctx, st, catalog,
		engine.WithLogger(newLogger(opts.Verbose, cmd.ErrOrStderr())))
	result := ReplayResult{Deterministic: true}
	switch {
	case engine.IsReplayMismatch(err):
		result.Deterministic = false
		result.Mismatch = err.Error()
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to replay", err)
	default:
		result.Events = replayed.Events
		result.Blocks = replayed.Blocks
		result.Hashes = replayed.Hashes
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.Deterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    string(engine.ErrCodeReplayMismatch),
			Message: result.Mismatch,
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.Deterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if !result.Deterministic {
		fmt.Fprintln(w, "✗ Determinism verification failed")
		fmt.Fprintf(w, "  %s\n", result.Mismatch)
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}

	if result.Events == 0 {
		fmt.Fprintln(w, "No events found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d event(s), %d block(s)\n", result.Events, result.Blocks)

	if verbose {
		ids := make([]string, 0, len(result.Hashes))
		for id := range result.Hashes {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(w, "  %s %s\n", truncateID(id), result.Hashes[id])
		}
	}

	fmt.Fprintln(w, "✓ Replay verified deterministic")
	return nil
}
