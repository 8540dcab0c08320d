// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package list implements a generic doubly linked list.
//
// Nodes live in an arena owned by the List and are referred to by Handle
// values rather than pointers. A Handle carries the generation of the slot it
// points at, so a handle that outlives its node is detected instead of
// silently aliasing whatever node reuses the slot.
//
// Whether the list owns the payloads it holds is fixed when the list is
// created (see Ownership). A list-owned payload is handed to Config.Release
// exactly once, when its node is removed by any means.
//
// To iterate over a list (where l is a *List[T]):
//
//	for h := l.Front(); !h.IsNone(); h = l.Next(h) {
//		v, _ := l.Value(h)
//		// do something with v
//	}
//
// A List is not safe for concurrent use.
package list

import (
	"context"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/linkedlist/pkg/util/buildutil"
	"github.com/cockroachdb/linkedlist/pkg/util/humanizeutil"
	"github.com/cockroachdb/linkedlist/pkg/util/log"
	"github.com/cockroachdb/linkedlist/pkg/util/mon"
	"github.com/cockroachdb/redact"
)

// Ownership is the payload lifetime policy of a list.
type Ownership int8

const (
	// CallerOwned lists never release payloads; the caller manages their
	// lifetime.
	CallerOwned Ownership = iota
	// ListOwned lists release every payload through Config.Release when its
	// node is removed.
	ListOwned
)

// SafeValue implements redact.SafeValue.
func (Ownership) SafeValue() {}

func (o Ownership) String() string {
	switch o {
	case CallerOwned:
		return "caller-owned"
	case ListOwned:
		return "list-owned"
	default:
		return "unknown"
	}
}

// Config configures a List. The zero value is a caller-owned list with no
// limits.
type Config[T any] struct {
	// Name identifies the list in errors, logs and metrics.
	Name string
	// Ownership is the payload policy. It cannot change after New.
	Ownership Ownership
	// Release is called with each payload removed from a ListOwned list.
	// Required for ListOwned, forbidden for CallerOwned.
	Release func(T)
	// Size reports the number of bytes held by a payload. It is consulted
	// once, at insertion, and only for ListOwned lists; the recorded size
	// is returned to Account when the payload is released.
	Size func(T) int64
	// MaxNodes bounds the number of nodes. Zero means no bound.
	MaxNodes int
	// Account, if set, is grown by the node overhead plus payload size on
	// every insertion. An insertion the account refuses fails with an
	// AllocationError.
	Account *mon.BoundAccount
	// Metrics, if set, is updated by every mutation. Several lists may share
	// one Metrics.
	Metrics *Metrics
	// AmbientCtx carries the log tags used when the list logs.
	AmbientCtx log.AmbientContext
}

// List is a doubly linked list of T. Create one with New or FromSlice.
type List[T any] struct {
	cfg  Config[T]
	name redact.SafeString
	id   uint64

	// slots[0] is never used so that index 0 can mean "none".
	slots []slot[T]
	// free is a stack of slot indexes available for reuse.
	free []int32
	// retired counts slots whose generation is exhausted. They are never
	// reused.
	retired int

	first, last int32
	count       int

	// overhead is the number of bytes charged to the account for a node,
	// on top of the payload size.
	overhead int64
	closed   bool
	every    log.EveryN
}

// New creates an empty list. It panics if cfg pairs a payload policy with
// callbacks that contradict it.
func New[T any](cfg Config[T]) *List[T] {
	if cfg.Name == "" {
		cfg.Name = "list"
	}
	name := redact.SafeString(cfg.Name)
	switch cfg.Ownership {
	case CallerOwned:
		if cfg.Release != nil || cfg.Size != nil {
			panic(errors.AssertionFailedf("list %s: Release and Size require %s payloads", name, ListOwned))
		}
	case ListOwned:
		if cfg.Release == nil {
			panic(errors.AssertionFailedf("list %s: %s payloads require a Release func", name, ListOwned))
		}
	default:
		panic(errors.AssertionFailedf("list %s: unknown ownership %d", name, int(cfg.Ownership)))
	}
	if cfg.MaxNodes < 0 {
		panic(errors.AssertionFailedf("list %s: negative MaxNodes %d", name, cfg.MaxNodes))
	}
	return &List[T]{
		cfg:      cfg,
		name:     name,
		id:       nextListID(),
		slots:    make([]slot[T], 1),
		overhead: int64(unsafe.Sizeof(slot[T]{})),
		every:    log.Every(allocationWarningInterval),
	}
}

// FromSlice creates a list holding items in order: items[0] becomes the
// front. If any insertion fails, everything inserted so far is removed
// (releasing list-owned payloads) and the error is returned.
func FromSlice[T any](cfg Config[T], items []T) (*List[T], error) {
	l := New(cfg)
	for i, v := range items {
		if _, err := l.PushBack(v); err != nil {
			l.Close()
			return nil, errors.Wrapf(err, "inserting item %d of %d", i+1, len(items))
		}
	}
	return l, nil
}

// Equal reports whether a == b. It is a ready-made predicate for Find and
// Remove.
func Equal[T comparable](a, b T) bool {
	return a == b
}

// Name returns the name of the list.
func (l *List[T]) Name() redact.SafeString {
	return l.name
}

// Ownership returns the payload policy of the list.
func (l *List[T]) Ownership() Ownership {
	return l.cfg.Ownership
}

// Empty returns true if the list has no nodes.
func (l *List[T]) Empty() bool {
	return l.count == 0
}

// Len returns the number of nodes in the list.
func (l *List[T]) Len() int {
	return l.count
}

// Front returns the first node of the list, or none if it is empty.
func (l *List[T]) Front() Handle {
	return l.handle(l.first)
}

// Back returns the last node of the list, or none if it is empty.
func (l *List[T]) Back() Handle {
	return l.handle(l.last)
}

// Value returns the payload of the node h refers to. It returns false if h
// is none or stale.
func (l *List[T]) Value(h Handle) (T, bool) {
	idx, ok := l.resolve(h)
	if !ok {
		var zero T
		return zero, false
	}
	return l.slots[idx].value, true
}

// Values returns the payloads in order, front to back.
func (l *List[T]) Values() []T {
	vals := make([]T, 0, l.count)
	for idx := l.first; idx != 0; idx = l.slots[idx].next {
		vals = append(vals, l.slots[idx].value)
	}
	return vals
}

// PushBack inserts v after the last node. On error the list is unchanged.
func (l *List[T]) PushBack(v T) (Handle, error) {
	return l.insert(v, l.last, 0)
}

// PushFront inserts v before the first node. On error the list is unchanged.
func (l *List[T]) PushFront(v T) (Handle, error) {
	return l.insert(v, 0, l.first)
}

// InsertBefore inserts v immediately before mark. On error the list is
// unchanged.
func (l *List[T]) InsertBefore(v T, mark Handle) (Handle, error) {
	idx, err := l.mustResolve(mark)
	if err != nil {
		return Handle{}, err
	}
	return l.insert(v, l.slots[idx].prev, idx)
}

// InsertAfter inserts v immediately after mark. On error the list is
// unchanged.
func (l *List[T]) InsertAfter(v T, mark Handle) (Handle, error) {
	idx, err := l.mustResolve(mark)
	if err != nil {
		return Handle{}, err
	}
	return l.insert(v, idx, l.slots[idx].next)
}

// Find returns the first node, front to back, whose payload satisfies
// eq(payload, v), or none.
func (l *List[T]) Find(v T, eq func(a, b T) bool) Handle {
	for idx := l.first; idx != 0; idx = l.slots[idx].next {
		if eq(l.slots[idx].value, v) {
			return l.handle(idx)
		}
	}
	return Handle{}
}

// Drop removes the node h refers to. Its payload is released if the list
// owns it. Dropping a none, stale or foreign handle returns an error marked
// ErrStaleHandle and leaves the list unchanged.
func (l *List[T]) Drop(h Handle) error {
	idx, err := l.mustResolve(h)
	if err != nil {
		return err
	}
	l.remove(idx)
	return nil
}

// Remove drops the first node whose payload satisfies eq(payload, v). It
// returns false, and does nothing, if there is no such node.
func (l *List[T]) Remove(v T, eq func(a, b T) bool) bool {
	h := l.Find(v, eq)
	if h.IsNone() {
		return false
	}
	idx, _ := l.resolve(h)
	l.remove(idx)
	return true
}

// PopFront drops the first node. It returns false if the list is empty.
func (l *List[T]) PopFront() bool {
	if l.first == 0 {
		return false
	}
	l.remove(l.first)
	return true
}

// PopBack drops the last node. It returns false if the list is empty.
func (l *List[T]) PopBack() bool {
	if l.last == 0 {
		return false
	}
	l.remove(l.last)
	return true
}

// Clear drops every node, front to back.
func (l *List[T]) Clear() {
	for l.first != 0 {
		l.remove(l.first)
	}
}

// Close clears the list and makes further insertions fail. All bytes the
// list reserved in Config.Account have been returned when Close returns.
// Close is idempotent.
func (l *List[T]) Close() {
	if l.closed {
		return
	}
	if l.count > 0 {
		log.VEventf(l.ctx(), 2, "closing list %s with %d nodes", l.name, l.count)
	}
	l.Clear()
	l.closed = true
	l.slots = l.slots[:1]
	l.free = nil
	l.retired = 0
}

func (l *List[T]) ctx() context.Context {
	return l.cfg.AmbientCtx.AnnotateCtx(context.Background())
}

// insert links a new node holding v between prev and next, which must be
// adjacent (either may be 0 at the ends of the list).
func (l *List[T]) insert(v T, prev, next int32) (Handle, error) {
	if l.closed {
		return Handle{}, errors.Mark(errors.AssertionFailedf("list %s: insert into closed list", l.name), ErrClosed)
	}
	if l.cfg.MaxNodes > 0 && l.count >= l.cfg.MaxNodes {
		return Handle{}, l.allocationFailed(nil)
	}
	var size int64
	if l.cfg.Size != nil {
		if size = l.cfg.Size(v); size < 0 {
			return Handle{}, errors.AssertionFailedf("list %s: negative payload size %d", l.name, size)
		}
	}
	if len(l.free) == 0 && len(l.slots) > maxSlotIndex {
		return Handle{}, l.allocationFailed(errors.Newf("all %d slots in use", maxSlotIndex))
	}
	if err := l.cfg.Account.Grow(l.ctx(), l.overhead+size); err != nil {
		return Handle{}, l.allocationFailed(err)
	}

	idx := l.alloc()
	s := &l.slots[idx]
	s.value = v
	s.size = size
	s.prev, s.next = prev, next
	if prev != 0 {
		l.slots[prev].next = idx
	} else {
		l.first = idx
	}
	if next != 0 {
		l.slots[next].prev = idx
	} else {
		l.last = idx
	}
	l.count++

	l.cfg.Metrics.pushed(l.overhead + size)
	l.maybeAssertInvariants()
	return l.handle(idx), nil
}

// remove unlinks the live node at idx, releases its payload if the list owns
// it, and returns its bytes to the account.
func (l *List[T]) remove(idx int32) {
	s := &l.slots[idx]
	if s.prev != 0 {
		l.slots[s.prev].next = s.next
	} else {
		l.first = s.next
	}
	if s.next != 0 {
		l.slots[s.next].prev = s.prev
	} else {
		l.last = s.prev
	}
	l.count--

	v, size := s.value, s.size
	l.release(idx)
	l.cfg.Account.Shrink(l.ctx(), l.overhead+size)
	l.cfg.Metrics.popped(l.overhead + size)
	l.maybeAssertInvariants()
	// Release must run last: the node is unlinked and its bytes returned
	// even if it panics.
	if l.cfg.Ownership == ListOwned {
		l.cfg.Release(v)
		log.VEventf(l.ctx(), 3, "list %s: released payload of %s", l.name, humanizeutil.IBytes(size))
	}
}

func (l *List[T]) allocationFailed(cause error) error {
	err := newAllocationError(l.name, l.count, l.cfg.MaxNodes, cause)
	l.cfg.Metrics.allocationFailed()
	if l.every.ShouldLog() {
		log.Warningf(l.ctx(), "%v", err)
	}
	return err
}

func (l *List[T]) maybeAssertInvariants() {
	if buildutil.Invariants {
		if err := l.checkInvariants(); err != nil {
			panic(err)
		}
	}
}
