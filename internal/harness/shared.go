// Package harness runs a pluggable search worker pool against a single,
// possibly-absent piece of shared state, the way a UCI engine runs
// search workers against a position that can be swapped out or cleared
// mid-search.
package harness

import "sync"

// SharedState is a writer-preferred, empty-able read/write slot. Readers
// and writers that arrive while the slot is empty block until something
// calls Start; Stop empties it again. It is the concurrency primitive a
// bot's worker pool and its protocol front end share: the front end
// starts/stops games, the workers read and mutate whatever is currently
// there.
//
// Built from three pieces: a single "who's allowed to touch data right
// now" mutex, a condition variable workers block on while the slot is
// empty, and an RWMutex guarding the value itself.
type SharedState[T any] struct {
	access sync.Mutex
	filled sync.Cond

	mu   sync.RWMutex
	data *T
}

// NewSharedState returns an empty SharedState.
func NewSharedState[T any]() *SharedState[T] {
	s := &SharedState[T]{}
	s.filled.L = &s.access
	return s
}

// WriteOp blocks until the slot is filled, then runs op with exclusive
// access to the value and returns op's result.
func (s *SharedState[T]) WriteOp(op func(v *T) any) any {
	s.access.Lock()
	for {
		s.mu.RLock()
		empty := s.data == nil
		s.mu.RUnlock()
		if !empty {
			break
		}
		s.filled.Wait()
	}
	s.access.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		// Stopped while we were waking up; nothing to do.
		return nil
	}
	return op(s.data)
}

// WriteOpIfExists runs op with exclusive access to the value if one is
// present, and reports whether it ran.
func (s *SharedState[T]) WriteOpIfExists(op func(v *T) any) (any, bool) {
	s.access.Lock()
	defer s.access.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, false
	}
	return op(s.data), true
}

// ReadOp blocks until the slot is filled, then runs op with shared
// access to the value and returns op's result.
func (s *SharedState[T]) ReadOp(op func(v *T) any) any {
	s.access.Lock()
	for {
		s.mu.RLock()
		empty := s.data == nil
		if !empty {
			defer s.mu.RUnlock()
			s.access.Unlock()
			return op(s.data)
		}
		s.mu.RUnlock()
		s.filled.Wait()
	}
}

// ReadOpIfExists runs op with shared access to the value if one is
// present, and reports whether it ran.
func (s *SharedState[T]) ReadOpIfExists(op func(v *T) any) (any, bool) {
	s.access.Lock()
	defer s.access.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, false
	}
	return op(s.data), true
}

// Stop empties the slot. Workers blocked in WriteOp/ReadOp stay blocked
// until the next Start.
func (s *SharedState[T]) Stop() {
	s.access.Lock()
	defer s.access.Unlock()

	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
}

// Start fills the slot with data and wakes every worker blocked waiting
// for one to appear.
func (s *SharedState[T]) Start(data T) {
	s.access.Lock()
	defer s.access.Unlock()

	s.mu.Lock()
	s.data = &data
	s.mu.Unlock()

	s.filled.Broadcast()
}
