// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package list

import "github.com/cockroachdb/errors"

// Next returns the node after h, or none if h is the last node, none or
// stale.
func (l *List[T]) Next(h Handle) Handle {
	idx, ok := l.resolve(h)
	if !ok {
		return Handle{}
	}
	return l.handle(l.slots[idx].next)
}

// Prev returns the node before h, or none if h is the first node, none or
// stale.
func (l *List[T]) Prev(h Handle) Handle {
	idx, ok := l.resolve(h)
	if !ok {
		return Handle{}
	}
	return l.handle(l.slots[idx].prev)
}

// Advance steps n nodes towards the back of the list. It returns none as soon
// as a step runs off the end. Advance(h, 0) returns h, and a negative n
// rewinds instead.
func (l *List[T]) Advance(h Handle, n int) Handle {
	if n < 0 {
		return l.Rewind(h, -n)
	}
	for i := 0; i < n && !h.IsNone(); i++ {
		h = l.Next(h)
	}
	return h
}

// Rewind steps n nodes towards the front of the list. It returns none as soon
// as a step runs off the end. Rewind(h, 0) returns h, and a negative n
// advances instead.
func (l *List[T]) Rewind(h Handle, n int) Handle {
	if n < 0 {
		return l.Advance(h, -n)
	}
	for i := 0; i < n && !h.IsNone(); i++ {
		h = l.Prev(h)
	}
	return h
}

// ForEachRange calls f on the payloads from first to last inclusive, front to
// back, and stops at the first call that returns false. It returns true if
// every call returned true.
//
// last must be first or come after it. ForEachRange panics with an assertion
// failure if either handle is stale, or if the walk reaches the end of the
// list without meeting last; by then f has been called on every node from
// first to the end. f must not modify the list.
func (l *List[T]) ForEachRange(first, last Handle, f func(T) bool) bool {
	idx, ok := l.resolve(first)
	if !ok {
		panic(errors.AssertionFailedf("list %s: invalid range start %s", l.name, first))
	}
	end, ok := l.resolve(last)
	if !ok {
		panic(errors.AssertionFailedf("list %s: invalid range end %s", l.name, last))
	}
	for {
		if !f(l.slots[idx].value) {
			return false
		}
		if idx == end {
			return true
		}
		idx = l.slots[idx].next
		if idx == 0 {
			panic(errors.AssertionFailedf("list %s: range end %s does not follow start %s", l.name, last, first))
		}
	}
}

// ForEach calls f on every payload, front to back, and stops at the first
// call that returns false. It returns true if every call returned true,
// including when the list is empty.
func (l *List[T]) ForEach(f func(T) bool) bool {
	if l.Empty() {
		return true
	}
	return l.ForEachRange(l.Front(), l.Back(), f)
}
