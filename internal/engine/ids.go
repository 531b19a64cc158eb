package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// UUIDv7 mints time-ordered identifiers. Block IDs and flow tokens minted
// by it sort in creation order, which keeps `trace` output readable.
type UUIDv7 struct{}

// Generate returns a hyphenated UUIDv7.
func (UUIDv7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Counter mints Prefix1, Prefix2 and so on.
type Counter struct {
	prefix string
	n      atomic.Int64
}

// NewCounter returns a Counter whose first ID is prefix+"1".
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// Generate returns the next ID.
func (c *Counter) Generate() string {
	return fmt.Sprintf("%s%d", c.prefix, c.n.Add(1))
}

// Script hands out a fixed list of IDs in order. It panics once the list is
// used up, so a test that mints more blocks or flows than it planned fails
// at the extra mint.
type Script struct {
	mu   sync.Mutex
	ids  []string
	next int
}

// NewScript returns a Script over ids.
func NewScript(ids ...string) *Script {
	return &Script{ids: ids}
}

// Generate returns the next scripted ID.
func (s *Script) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.ids) {
		panic(fmt.Sprintf("engine.Script: only %d id(s) scripted", len(s.ids)))
	}
	id := s.ids[s.next]
	s.next++
	return id
}
