// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package mon

import (
	"context"

	"github.com/cockroachdb/errors"
)

// BoundAccount tracks the bytes reserved by one component against a
// monitor.
//
// The zero value is an account with no monitor: it tracks its own usage and
// never refuses to grow. A BoundAccount is not safe for concurrent use.
type BoundAccount struct {
	used int64
	mon  *BytesMonitor
}

// Used returns the number of bytes currently reserved by the account.
func (b *BoundAccount) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used
}

// Grow reserves x more bytes. On error nothing is reserved.
func (b *BoundAccount) Grow(ctx context.Context, x int64) error {
	if b == nil {
		return nil
	}
	if x < 0 {
		return errors.AssertionFailedf("cannot grow account by negative %d bytes", x)
	}
	if b.mon != nil {
		if err := b.mon.reserveBytes(ctx, x); err != nil {
			return err
		}
	}
	b.used += x
	return nil
}

// Shrink releases x bytes previously reserved by Grow.
func (b *BoundAccount) Shrink(ctx context.Context, x int64) {
	if b == nil {
		return
	}
	if x > b.used {
		panic(errors.AssertionFailedf("no bytes in account to release, current %d, free %d", b.used, x))
	}
	b.used -= x
	if b.mon != nil {
		b.mon.releaseBytes(ctx, x)
	}
}

// Clear releases all the bytes reserved by the account. The account can
// still be used afterwards.
func (b *BoundAccount) Clear(ctx context.Context) {
	b.Shrink(ctx, b.Used())
}

// Close releases all the bytes reserved by the account and detaches it from
// its monitor.
func (b *BoundAccount) Close(ctx context.Context) {
	if b == nil {
		return
	}
	b.Clear(ctx)
	b.mon = nil
}
