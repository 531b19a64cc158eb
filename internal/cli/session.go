package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/plusminus/internal/engine"
	"github.com/roach88/plusminus/internal/store"
)

// session is an engine restored from the configured database.
type session struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// openSession builds the catalog, opens the database and restores every
// stored block. Extra engine options are appended after the defaults.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command, extra ...engine.Option) (*session, error) {
	logger := newLogger(opts.Verbose, cmd.ErrOrStderr())

	catalog, err := BuildCatalog(opts.locale(), opts.definitionsDir())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load block definitions", err)
	}

	logger.Debug("opening database", "path", opts.databasePath())
	st, err := store.Open(opts.databasePath())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	engineOpts := append([]engine.Option{engine.WithLogger(logger)}, extra...)
	eng, err := engine.Open(ctx, st, catalog, engineOpts...)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to restore blocks", err)
	}

	return &session{store: st, engine: eng, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// newLogger logs warnings and above, or everything when verbose.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// commandContext is cmd's context cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
