// Package statemap implements the sharded concurrent map from GameState to
// arbitrary per-state values that the search DAG indexes its nodes by.
//
// An open-addressed table keyed by a content hash, no key comparison on
// lookup: "trust the hash" is the design, split across many
// independently-locked shards so that concurrent searchers hitting
// different states don't serialize on one mutex.
package statemap

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/tstate"
)

// ShardCount is the number of independently-locked shards. A power of two
// so indexing by the hash's high bits is a mask, not a modulo.
const ShardCount = 4096

const shardMask = ShardCount - 1

// Handle is the stable content hash of a GameState; the primary key used
// everywhere else in the search DAG to refer to a state without carrying
// the state itself around.
type Handle uint64

// Index returns the stable content hash of s, mixing the board bitmap, the
// bag, the reserve piece, and the combo/back-to-back flags across every
// bit so that similar-but-distinct states land in different shards.
func Index(s tstate.GameState) Handle {
	var buf [8*board.Width + 4]byte
	for i, col := range s.Board.Cols {
		binary.LittleEndian.PutUint64(buf[i*8:], col)
	}
	off := 8 * board.Width
	buf[off] = byte(s.Bag)
	buf[off+1] = byte(s.Reserve)
	buf[off+2] = byte(s.Combo)
	if s.BackToBack {
		buf[off+3] = 1
	}
	return Handle(xxhash.Sum64(buf[:]))
}

func (h Handle) shard() uint64 {
	return uint64(h) >> 52 & shardMask
}

type shard[V any] struct {
	mu      sync.RWMutex
	entries map[Handle]*V
}

// StateMap is a sharded concurrent map keyed by Handle, storing a *V per
// state. The zero value is not usable; construct with New.
type StateMap[V any] struct {
	shards [ShardCount]*shard[V]
}

// New returns an empty StateMap.
func New[V any]() *StateMap[V] {
	m := &StateMap[V]{}
	for i := range m.shards {
		m.shards[i] = &shard[V]{entries: make(map[Handle]*V)}
	}
	return m
}

func (m *StateMap[V]) shardFor(h Handle) *shard[V] {
	return m.shards[h.shard()]
}

// Get returns the value stored for state, computing its handle first.
func (m *StateMap[V]) Get(state tstate.GameState) (*V, bool) {
	return m.GetRaw(Index(state))
}

// GetRaw returns the value stored under handle, under a shared (read) lock.
func (m *StateMap[V]) GetRaw(h Handle) (*V, bool) {
	s := m.shardFor(h)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[h]
	return v, ok
}

// GetRawMut returns the value stored under handle along with the shard's
// unlock function, holding an exclusive lock for the duration of the
// caller's mutation. The caller must call unlock exactly once.
func (m *StateMap[V]) GetRawMut(h Handle) (v *V, ok bool, unlock func()) {
	s := m.shardFor(h)
	s.mu.Lock()
	v, ok = s.entries[h]
	return v, ok, s.mu.Unlock
}

// GetOrInsertWith returns the existing entry for state, or inserts and
// returns one built by init if absent, atomically with respect to other
// callers touching the same shard. The returned unlock must be called
// exactly once, after the caller is done mutating the returned value.
func (m *StateMap[V]) GetOrInsertWith(state tstate.GameState, init func() V) (h Handle, v *V, unlock func()) {
	h = Index(state)
	s := m.shardFor(h)
	s.mu.Lock()
	v, ok := s.entries[h]
	if !ok {
		nv := init()
		v = &nv
		s.entries[h] = v
	}
	return h, v, s.mu.Unlock
}

// MapValues rebuilds every shard's values in place by applying f to each
// stored value. Used during layer despeculation, where every node's eval
// needs to be recomputed once a speculated piece becomes known. Callers
// must ensure no concurrent readers/writers are active; MapValues takes
// each shard's exclusive lock but does not synchronize across shards.
func (m *StateMap[V]) MapValues(f func(V) V) {
	for _, s := range m.shards {
		s.mu.Lock()
		for h, v := range s.entries {
			nv := f(*v)
			s.entries[h] = &nv
		}
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across every shard. Intended for
// statistics reporting, not hot-path use (it locks every shard in turn).
func (m *StateMap[V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}
