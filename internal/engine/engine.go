package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/plusminus/internal/blocks"
	"github.com/roach88/plusminus/internal/ir"
	"github.com/roach88/plusminus/internal/mutator"
	"github.com/roach88/plusminus/internal/store"
	"github.com/roach88/plusminus/internal/workspace"
)

// IDGenerator produces block IDs and flow tokens.
// Implemented by UUIDv7, Counter and Script.
type IDGenerator interface {
	Generate() string
}

// Engine applies block commands one at a time and records each applied
// event.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Apply() and Run(): must be called from exactly one goroutine
type Engine struct {
	catalog   *blocks.Catalog
	ws        *workspace.Workspace
	instances map[string]*blocks.Instance
	store     *store.Store // nil keeps the engine in memory only
	clock     SeqClock
	queue     *commandQueue
	ids       IDGenerator
	flows     IDGenerator
	flow      string
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore persists every applied event to s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithClock replaces the logical clock.
func WithClock(c SeqClock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the generator for new block IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithFlowGenerator sets the generator for flow tokens.
func WithFlowGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.flows = g
	}
}

// WithLogger sets the logger passed to the engine and every block's mutator.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an in-memory engine over catalog.
func New(catalog *blocks.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:   catalog,
		ws:        workspace.New(),
		instances: make(map[string]*blocks.Instance),
		clock:     NewClock(),
		queue:     newCommandQueue(),
		ids:       UUIDv7{},
		flows:     UUIDv7{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Open creates an engine backed by s and restores every stored block.
// The clock resumes after the store's last seq.
func Open(ctx context.Context, s *store.Store, catalog *blocks.Catalog, opts ...Option) (*Engine, error) {
	lastSeq, err := s.GetLastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}

	base := []Option{WithStore(s), WithClock(NewClockAt(lastSeq))}
	e := New(catalog, append(base, opts...)...)

	records, err := s.ListBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	for _, rec := range records {
		inst, err := e.attach(rec.ID, rec.Type)
		if err != nil {
			return nil, fmt.Errorf("open engine: restore %s: %w", rec.ID, err)
		}
		inst.Mutator().Deserialize(ir.Mutation{Items: rec.Items})
	}

	e.logger.Info("engine opened", "blocks", len(records), "seq", lastSeq)
	return e, nil
}

// NewFlow starts a new flow and returns its token. Events applied after
// this call carry the token.
func (e *Engine) NewFlow() string {
	e.flow = e.flows.Generate()
	return e.flow
}

// Flow returns the current flow token, or "" before the first event.
func (e *Engine) Flow() string {
	return e.flow
}

// Enqueue submits a command for processing by Run.
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(cmd Command) bool {
	return e.queue.Enqueue(cmd)
}

// Stop closes the queue. Commands already queued are still drained by Run.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Run drains the queue in FIFO order and returns when it is empty.
//
// A failing command is logged and skipped; the remaining commands still run
// and the failures are returned joined.
func (e *Engine) Run(ctx context.Context) error {
	var errs []error
	for {
		if err := ctx.Err(); err != nil {
			e.logger.Info("engine stopping: context cancelled", "pending", e.queue.Len())
			return errors.Join(append(errs, err)...)
		}

		cmd, ok := e.queue.TryDequeue()
		if !ok {
			return errors.Join(errs...)
		}

		if _, err := e.Apply(ctx, cmd); err != nil {
			e.logger.Error("command failed",
				"kind", cmd.Kind,
				"block", cmd.BlockID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
}

// Result is the outcome of one applied command.
type Result struct {
	Event    ir.Event         `json:"event"`
	Snapshot ir.BlockSnapshot `json:"snapshot"`
	Mutation ir.Mutation      `json:"mutation"`
}

// Apply runs one command to completion and records it.
//
// The event gets a seq only once the command succeeded, so failed commands
// leave no gap in the log.
func (e *Engine) Apply(ctx context.Context, cmd Command) (Result, error) {
	if !ir.ValidEventKinds[cmd.Kind] {
		return Result{}, &RuntimeError{
			Code:    ErrCodeInvalidCommand,
			Message: fmt.Sprintf("unknown command kind %q", cmd.Kind),
			BlockID: cmd.BlockID,
		}
	}

	var inst *blocks.Instance
	id := cmd.BlockID
	before := 0

	if cmd.Kind == ir.EventCreate {
		if id == "" {
			id = e.ids.Generate()
		}
		var err error
		inst, err = e.attach(id, cmd.BlockType)
		if err != nil {
			return Result{}, err
		}
	} else {
		var ok bool
		inst, ok = e.instances[id]
		if !ok {
			return Result{}, newUnknownBlockError(id)
		}
		before = inst.ItemCount()

		if err := e.mutate(inst, cmd); err != nil {
			return Result{}, err
		}
	}

	if err := inst.Mutator().Verify(); err != nil {
		return Result{}, fmt.Errorf("apply %s: %w", cmd.Kind, err)
	}

	if e.flow == "" {
		e.NewFlow()
	}

	block, _ := e.ws.Block(id)
	after := inst.ItemCount()
	ev := ir.Event{
		Seq:         e.clock.Next(),
		FlowToken:   e.flow,
		BlockID:     id,
		BlockType:   block.Type(),
		Kind:        cmd.Kind,
		ItemsBefore: before,
		ItemsAfter:  after,
	}
	if cmd.Kind == ir.EventLoad || cmd.Kind == ir.EventSave {
		ev.Items = after
	}

	res := Result{
		Event:    ev,
		Snapshot: block.Snapshot(after),
		Mutation: inst.Mutator().Serialize(),
	}

	if e.store != nil {
		if err := e.store.WriteEvent(ctx, ev, res.Snapshot); err != nil {
			return Result{}, fmt.Errorf("apply %s: %w", cmd.Kind, err)
		}
	}

	e.logger.Debug("event applied",
		"seq", ev.Seq,
		"flow", ev.FlowToken,
		"block", ev.BlockID,
		"kind", ev.Kind,
		"items_before", ev.ItemsBefore,
		"items_after", ev.ItemsAfter,
	)

	return res, nil
}

// mutate applies a non-create command to inst.
func (e *Engine) mutate(inst *blocks.Instance, cmd Command) error {
	switch cmd.Kind {
	case ir.EventPlus, ir.EventMinus:
		if cmd.Click {
			return e.click(cmd)
		}
		if cmd.Kind == ir.EventPlus {
			inst.Plus()
		} else {
			inst.Minus()
		}

	case ir.EventLoad:
		payload := bytes.TrimSpace(cmd.Payload)
		if len(payload) == 0 {
			return &RuntimeError{
				Code:    ErrCodeInvalidCommand,
				Message: "load requires a mutation payload",
				BlockID: cmd.BlockID,
			}
		}
		var err error
		if payload[0] == '<' {
			err = inst.LoadMutationXML(payload)
		} else {
			err = inst.LoadExtraState(payload)
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", cmd.BlockID, err)
		}

	case ir.EventSave:
		// Recording only; the count is unchanged.
	}

	return nil
}

// click activates the plus or minus field the way a pointer would.
func (e *Engine) click(cmd Command) error {
	field := mutator.FieldPlus
	if cmd.Kind == ir.EventMinus {
		field = mutator.FieldMinus
	}

	block, _ := e.ws.Block(cmd.BlockID)
	if err := block.Click(field); err != nil {
		return &RuntimeError{
			Code:    ErrCodeUnknownField,
			Message: err.Error(),
			BlockID: cmd.BlockID,
		}
	}
	return nil
}

// attach creates a workspace block of blockType and wires its mutator.
func (e *Engine) attach(id, blockType string) (*blocks.Instance, error) {
	binding, ok := e.catalog.Lookup(blockType)
	if !ok {
		return nil, newUnknownTypeError(blockType)
	}

	block, err := e.ws.NewBlock(id, blockType)
	if err != nil {
		return nil, &RuntimeError{
			Code:    ErrCodeInvalidCommand,
			Message: err.Error(),
			BlockID: id,
		}
	}

	inst := binding.Attach(block, e.logger)
	e.instances[id] = inst
	return inst, nil
}

// Instance returns the mutator-wired block with the given ID.
func (e *Engine) Instance(id string) (*blocks.Instance, bool) {
	inst, ok := e.instances[id]
	return inst, ok
}

// Block returns the workspace block with the given ID.
func (e *Engine) Block(id string) (*workspace.Block, bool) {
	return e.ws.Block(id)
}

// BlockIDs returns all block IDs in creation order.
func (e *Engine) BlockIDs() []string {
	return e.ws.IDs()
}

// Snapshot returns the current shape of a block.
func (e *Engine) Snapshot(id string) (ir.BlockSnapshot, error) {
	inst, ok := e.instances[id]
	if !ok {
		return ir.BlockSnapshot{}, newUnknownBlockError(id)
	}
	block, _ := e.ws.Block(id)
	return block.Snapshot(inst.ItemCount()), nil
}

// Seq returns the seq of the last applied event.
func (e *Engine) Seq() int64 {
	return e.clock.Current()
}
