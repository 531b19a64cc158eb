package engine

import (
	"sync"
)

// Command is a request to change or record a block's state.
//
// Kind is one of the ir.Event kinds. Create needs BlockType and may carry a
// BlockID (one is generated otherwise). Load needs Payload holding either the
// JSON extra state or the XML mutation form.
type Command struct {
	Kind      string
	BlockID   string
	BlockType string
	Payload   []byte

	// Click routes plus/minus through the block's affordance field instead
	// of calling the mutator directly, so a click on a hidden minus fails.
	Click bool
}

// commandQueue is a thread-safe FIFO queue for commands.
//
// Thread-safety is provided for external enqueuing while the Engine's Run
// loop dequeues. In practice, most usage is single-threaded.
type commandQueue struct {
	mu       sync.Mutex
	commands []Command
	closed   bool
}

// newCommandQueue creates an empty command queue.
func newCommandQueue() *commandQueue {
	return &commandQueue{
		commands: make([]Command, 0, 16),
	}
}

// Enqueue adds a command to the back of the queue.
// Returns false if the queue is closed.
func (q *commandQueue) Enqueue(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.commands = append(q.commands, c)
	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Command{}, false) if queue is empty.
func (q *commandQueue) TryDequeue() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return Command{}, false
	}

	c := q.commands[0]

	// Clear the slot so the payload can be collected.
	q.commands[0] = Command{}

	if len(q.commands) == 1 {
		q.commands = q.commands[:0]
	} else {
		q.commands = q.commands[1:]
	}

	return c, true
}

// Len returns the current queue length.
func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// Close signals that no more commands will be enqueued.
func (q *commandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
