// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package list

import "github.com/cockroachdb/redact"

// SafeFormat implements redact.SafeFormatter. Payloads are printed as unsafe
// values.
func (l *List[T]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeRune('[')
	for idx := l.first; idx != 0; idx = l.slots[idx].next {
		if idx != l.first {
			w.SafeRune(' ')
		}
		w.Print(l.slots[idx].value)
	}
	w.SafeRune(']')
}

func (l *List[T]) String() string {
	return redact.StringWithoutMarkers(l)
}
