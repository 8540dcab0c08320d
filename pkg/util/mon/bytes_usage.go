// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package mon tracks byte usage against a budget.
//
// A BytesMonitor owns a budget (possibly unlimited) and hands out
// BoundAccounts. Components grow their account before taking on memory and
// shrink it when they let go; a Grow that would take the monitor over its
// limit fails with an error marked as ErrBudgetExceeded, and nothing is
// reserved.
package mon

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/linkedlist/pkg/util/buildutil"
	"github.com/cockroachdb/linkedlist/pkg/util/humanizeutil"
	"github.com/cockroachdb/linkedlist/pkg/util/log"
	"github.com/cockroachdb/linkedlist/pkg/util/syncutil"
	"github.com/cockroachdb/redact"
)

// ErrBudgetExceeded marks errors returned when a monitor refuses to grow an
// account.
var ErrBudgetExceeded = errors.New("memory budget exceeded")

// BytesMonitor tracks the bytes reserved by all the accounts bound to it.
// It is safe for concurrent use; a single monitor may back many accounts.
type BytesMonitor struct {
	name  redact.SafeString
	limit int64

	mu struct {
		syncutil.Mutex
		curAllocated int64
		maxAllocated int64
	}
}

// NewMonitor creates a monitor that refuses reservations beyond limit bytes.
func NewMonitor(name string, limit int64) *BytesMonitor {
	if limit < 0 {
		panic(errors.AssertionFailedf("negative limit %d for monitor %s", limit, redact.Safe(name)))
	}
	return &BytesMonitor{name: redact.SafeString(name), limit: limit}
}

// NewUnlimitedMonitor creates a monitor that only tracks usage.
func NewUnlimitedMonitor(name string) *BytesMonitor {
	return NewMonitor(name, math.MaxInt64)
}

// Name returns the name of the monitor.
func (mm *BytesMonitor) Name() redact.SafeString {
	return mm.name
}

// Limit returns the budget of the monitor.
func (mm *BytesMonitor) Limit() int64 {
	return mm.limit
}

// AllocBytes returns the number of bytes currently reserved.
func (mm *BytesMonitor) AllocBytes() int64 {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.mu.curAllocated
}

// MaximumBytes returns the high water mark of reserved bytes.
func (mm *BytesMonitor) MaximumBytes() int64 {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.mu.maxAllocated
}

// MakeBoundAccount creates an empty account bound to this monitor.
func (mm *BytesMonitor) MakeBoundAccount() BoundAccount {
	return BoundAccount{mon: mm}
}

// Stop checks that every account has been released. Leftover bytes indicate
// a leak in a component using the monitor; they are logged, and in
// invariants builds they panic.
func (mm *BytesMonitor) Stop(ctx context.Context) {
	if n := mm.AllocBytes(); n != 0 {
		err := errors.AssertionFailedf("%s: unexpected %s leftover bytes", mm.name, humanizeutil.IBytes(n))
		if buildutil.Invariants {
			panic(err)
		}
		log.Errorf(ctx, "%v", err)
	}
}

func (mm *BytesMonitor) reserveBytes(ctx context.Context, x int64) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if mm.mu.curAllocated > mm.limit-x {
		return errors.Mark(
			errors.Newf("%s: memory budget exceeded: %s requested, %s currently allocated, %s budget",
				mm.name, humanizeutil.IBytes(x), humanizeutil.IBytes(mm.mu.curAllocated),
				humanizeutil.IBytes(mm.limit)),
			ErrBudgetExceeded)
	}
	mm.adjustLocked(ctx, x)
	return nil
}

func (mm *BytesMonitor) releaseBytes(ctx context.Context, x int64) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if mm.mu.curAllocated < x {
		panic(errors.AssertionFailedf("%s: no bytes to release, current %d, free %d",
			mm.name, mm.mu.curAllocated, x))
	}
	mm.adjustLocked(ctx, -x)
}

// adjustLocked applies delta to the current allocation. mm.mu must be held.
func (mm *BytesMonitor) adjustLocked(ctx context.Context, delta int64) {
	mm.mu.AssertHeld()
	mm.mu.curAllocated += delta
	if mm.mu.curAllocated > mm.mu.maxAllocated {
		mm.mu.maxAllocated = mm.mu.curAllocated
	}
	if log.V(3) {
		log.Infof(ctx, "%s: now at %d bytes (%+d)", mm.name, mm.mu.curAllocated, delta)
	}
}
