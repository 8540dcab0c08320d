// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package list

import (
	"math"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// slot is a node of the list. Links are slot indexes, 0 meaning none.
type slot[T any] struct {
	value T
	// size is the payload size recorded at insertion for list-owned
	// payloads.
	size       int64
	prev, next int32
	// gen is bumped every time the slot is freed.
	gen  uint32
	live bool
}

// Handle refers to a node of a List. The zero Handle is "none".
//
// A Handle stays valid until its node is removed. Using it afterwards is
// detected: navigation returns none, Value returns false and Drop returns an
// error marked ErrStaleHandle.
type Handle struct {
	list uint64
	idx  int32
	gen  uint32
}

// IsNone returns true for the zero Handle, which refers to no node.
func (h Handle) IsNone() bool {
	return h.idx == 0
}

// SafeFormat implements redact.SafeFormatter.
func (h Handle) SafeFormat(w redact.SafePrinter, _ rune) {
	if h.IsNone() {
		w.SafeString("none")
		return
	}
	w.Printf("%d:%d@%d", redact.Safe(h.list), redact.Safe(h.idx), redact.Safe(h.gen))
}

func (h Handle) String() string {
	return redact.StringWithoutMarkers(h)
}

// maxSlotIndex is the largest slot index a Handle can address. It is a
// variable so that tests can lower it.
var maxSlotIndex = math.MaxInt32

var listIDs atomic.Uint64

func nextListID() uint64 {
	return listIDs.Add(1)
}

func (l *List[T]) handle(idx int32) Handle {
	if idx == 0 {
		return Handle{}
	}
	return Handle{list: l.id, idx: idx, gen: l.slots[idx].gen}
}

// resolve returns the slot index h refers to, if h refers to a live node of
// this list.
func (l *List[T]) resolve(h Handle) (int32, bool) {
	if h.list != l.id || h.idx <= 0 || int(h.idx) >= len(l.slots) {
		return 0, false
	}
	s := &l.slots[h.idx]
	if !s.live || s.gen != h.gen {
		return 0, false
	}
	return h.idx, true
}

// mustResolve is resolve for operations that treat a bad handle as a
// programming error.
func (l *List[T]) mustResolve(h Handle) (int32, error) {
	idx, ok := l.resolve(h)
	if !ok {
		return 0, errors.Mark(
			errors.AssertionFailedf("list %s: handle %s does not refer to a node of this list", l.name, h),
			ErrStaleHandle)
	}
	return idx, nil
}

// alloc returns the index of an unlinked live slot, reusing a freed one if
// possible.
func (l *List[T]) alloc() int32 {
	var idx int32
	if n := len(l.free); n > 0 {
		idx = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		l.slots = append(l.slots, slot[T]{})
		idx = int32(len(l.slots) - 1)
	}
	l.slots[idx].live = true
	return idx
}

// release returns the slot at idx to the free stack. The payload reference
// is dropped so it can be collected. A slot whose generation reaches
// math.MaxUint32 is retired instead, so that generations never wrap and an
// old Handle can never match a reused slot.
func (l *List[T]) release(idx int32) {
	s := &l.slots[idx]
	*s = slot[T]{gen: s.gen + 1}
	if s.gen == math.MaxUint32 {
		l.retired++
		return
	}
	l.free = append(l.free, idx)
}
