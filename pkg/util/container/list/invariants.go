// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package list

import "github.com/cockroachdb/errors"

// checkInvariants walks the whole list and verifies its links, boundaries
// and count, and that every slot is linked, on the free stack or retired.
func (l *List[T]) checkInvariants() error {
	if (l.first == 0) != (l.last == 0) || (l.first == 0) != (l.count == 0) {
		return errors.AssertionFailedf("list %s: first=%d last=%d count=%d", l.name, l.first, l.last, l.count)
	}
	if l.first != 0 && l.slots[l.first].prev != 0 {
		return errors.AssertionFailedf("list %s: first node %d has a predecessor", l.name, l.first)
	}
	if l.last != 0 && l.slots[l.last].next != 0 {
		return errors.AssertionFailedf("list %s: last node %d has a successor", l.name, l.last)
	}
	n := 0
	for idx := l.first; idx != 0; idx = l.slots[idx].next {
		s := &l.slots[idx]
		if !s.live {
			return errors.AssertionFailedf("list %s: node %d is linked but not live", l.name, idx)
		}
		if s.next != 0 && l.slots[s.next].prev != idx {
			return errors.AssertionFailedf("list %s: node %d -> %d is not linked back", l.name, idx, s.next)
		}
		if s.next == 0 && idx != l.last {
			return errors.AssertionFailedf("list %s: walk ends at %d, last is %d", l.name, idx, l.last)
		}
		n++
		if n > l.count {
			return errors.AssertionFailedf("list %s: more than %d linked nodes", l.name, l.count)
		}
	}
	if n != l.count {
		return errors.AssertionFailedf("list %s: %d linked nodes, count is %d", l.name, n, l.count)
	}
	if l.count+len(l.free)+l.retired != len(l.slots)-1 {
		return errors.AssertionFailedf("list %s: %d live, %d free and %d retired slots out of %d",
			l.name, l.count, len(l.free), l.retired, len(l.slots)-1)
	}
	for _, idx := range l.free {
		if l.slots[idx].live {
			return errors.AssertionFailedf("list %s: free slot %d is live", l.name, idx)
		}
	}
	return nil
}
