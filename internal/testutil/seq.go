package testutil

import "sync"

// Seq is a resettable seq source for engines under test.
//
// Resetting lets the same scenario run twice and stamp identical seqs, which
// keeps golden traces byte-stable.
type Seq struct {
	mu sync.Mutex
	n  int64
}

// NewSeq returns a Seq whose first Next is 1.
func NewSeq() *Seq {
	return &Seq{}
}

// NewSeqAt returns a Seq that resumes after n, as an engine reopened on a
// store whose last event is n would.
func NewSeqAt(n int64) *Seq {
	return &Seq{n: n}
}

// Next advances and returns the new seq.
func (s *Seq) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

// Current returns the last seq handed out, or the starting point.
func (s *Seq) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Reset rewinds to zero.
func (s *Seq) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}
