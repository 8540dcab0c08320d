// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package list

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/linkedlist/pkg/util/log"
	"github.com/cockroachdb/linkedlist/pkg/util/mon"
	"github.com/cockroachdb/linkedlist/pkg/util/randutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func checkInvariants[T any](t *testing.T, l *List[T]) {
	t.Helper()
	require.NoError(t, l.checkInvariants())
	require.Equal(t, l.Len() == 0, l.Empty())
	require.Equal(t, l.Empty(), l.Front().IsNone())
	require.Equal(t, l.Empty(), l.Back().IsNone())
}

// backward collects the payloads walking from the back with Prev.
func backward[T any](l *List[T]) []T {
	var vals []T
	for h := l.Back(); !h.IsNone(); h = l.Prev(h) {
		v, _ := l.Value(h)
		vals = append(vals, v)
	}
	return vals
}

func mustValue[T any](t *testing.T, l *List[T], h Handle) T {
	t.Helper()
	v, ok := l.Value(h)
	require.True(t, ok, "handle %s", h)
	return v
}

func isPositive(v int) bool { return v > 0 }

func TestEmptyList(t *testing.T) {
	l := New(Config[int]{})
	checkInvariants(t, l)
	require.True(t, l.Empty())
	require.Zero(t, l.Len())
	require.False(t, l.PopFront())
	require.False(t, l.PopBack())
	require.True(t, l.Find(1, Equal[int]).IsNone())
	require.False(t, l.Remove(1, Equal[int]))
	require.True(t, l.ForEach(func(int) bool { t.Fatal("visited"); return false }))
	l.Clear()
	require.Empty(t, l.Values())
	require.Equal(t, "[]", l.String())
	checkInvariants(t, l)
}

func TestFromSliceRoundTrip(t *testing.T) {
	l, err := FromSlice(Config[string]{}, []string{"a", "b", "c"})
	require.NoError(t, err)
	checkInvariants(t, l)
	require.Equal(t, 3, l.Len())
	require.Equal(t, []string{"a", "b", "c"}, l.Values())
	require.Equal(t, []string{"c", "b", "a"}, backward(l))
	require.Equal(t, "a", mustValue(t, l, l.Front()))
	require.Equal(t, "c", mustValue(t, l, l.Back()))
}

func TestPushBothEnds(t *testing.T) {
	for _, backFirst := range []bool{true, false} {
		l := New(Config[string]{})
		if backFirst {
			_, err := l.PushBack("back")
			require.NoError(t, err)
			_, err = l.PushFront("front")
			require.NoError(t, err)
		} else {
			_, err := l.PushFront("front")
			require.NoError(t, err)
			_, err = l.PushBack("back")
			require.NoError(t, err)
		}
		checkInvariants(t, l)
		require.Equal(t, 2, l.Len())
		require.Equal(t, "front", mustValue(t, l, l.Front()))
		require.Equal(t, "back", mustValue(t, l, l.Back()))
	}
}

func TestDropOnlyNode(t *testing.T) {
	l := New(Config[int]{})
	h, err := l.PushBack(7)
	require.NoError(t, err)
	require.NoError(t, l.Drop(h))
	checkInvariants(t, l)
	require.True(t, l.Empty())
	require.True(t, l.Front().IsNone())
	require.True(t, l.Back().IsNone())
}

func TestFindDropScenario(t *testing.T) {
	l, err := FromSlice(Config[int]{}, []int{10, 20, 30})
	require.NoError(t, err)

	h := l.Find(20, Equal[int])
	require.False(t, h.IsNone())
	require.Equal(t, l.Next(l.Front()), h)

	require.NoError(t, l.Drop(h))
	checkInvariants(t, l)
	require.Equal(t, []int{10, 30}, l.Values())
	require.Equal(t, 2, l.Len())
	require.True(t, l.ForEach(isPositive))
}

func TestDropBoundaries(t *testing.T) {
	l, err := FromSlice(Config[int]{}, []int{1, 2, 3, 4})
	require.NoError(t, err)

	require.NoError(t, l.Drop(l.Front()))
	require.Equal(t, []int{2, 3, 4}, l.Values())
	require.NoError(t, l.Drop(l.Back()))
	require.Equal(t, []int{2, 3}, l.Values())
	require.Equal(t, []int{3, 2}, backward(l))
	checkInvariants(t, l)
}

func TestInsertAroundMark(t *testing.T) {
	l, err := FromSlice(Config[int]{}, []int{1, 4})
	require.NoError(t, err)

	mark := l.Find(4, Equal[int])
	_, err = l.InsertBefore(3, mark)
	require.NoError(t, err)
	_, err = l.InsertAfter(2, l.Front())
	require.NoError(t, err)
	_, err = l.InsertAfter(5, l.Back())
	require.NoError(t, err)
	_, err = l.InsertBefore(0, l.Front())
	require.NoError(t, err)

	checkInvariants(t, l)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5}, l.Values())
	require.Equal(t, []int{5, 4, 3, 2, 1, 0}, backward(l))
}

func TestRemoveMatching(t *testing.T) {
	l, err := FromSlice(Config[int]{}, []int{1, 2, 3, 2})
	require.NoError(t, err)

	require.False(t, l.Remove(9, Equal[int]))
	require.Equal(t, []int{1, 2, 3, 2}, l.Values())

	// Only the first match is removed.
	require.True(t, l.Remove(2, Equal[int]))
	require.Equal(t, []int{1, 3, 2}, l.Values())

	// The predicate receives the payload first and the probe second.
	var gotPayloads, gotProbes []int
	l.Find(100, func(a, b int) bool {
		gotPayloads = append(gotPayloads, a)
		gotProbes = append(gotProbes, b)
		return false
	})
	require.Equal(t, []int{1, 3, 2}, gotPayloads)
	require.Equal(t, []int{100, 100, 100}, gotProbes)
	checkInvariants(t, l)
}

func TestStaleHandles(t *testing.T) {
	l, err := FromSlice(Config[int]{}, []int{1, 2, 3})
	require.NoError(t, err)

	h := l.Find(2, Equal[int])
	require.NoError(t, l.Drop(h))

	// The freed slot is reused by the next insertion; the old handle must
	// not alias the new node.
	h4, err := l.PushBack(4)
	require.NoError(t, err)
	require.NotEqual(t, h, h4)

	err = l.Drop(h)
	require.True(t, errors.Is(err, ErrStaleHandle))
	require.True(t, errors.HasAssertionFailure(err))
	require.Equal(t, []int{1, 3, 4}, l.Values())

	_, ok := l.Value(h)
	require.False(t, ok)
	require.True(t, l.Next(h).IsNone())
	require.True(t, l.Prev(h).IsNone())
	_, err = l.InsertAfter(5, h)
	require.True(t, errors.Is(err, ErrStaleHandle))

	require.True(t, errors.Is(l.Drop(Handle{}), ErrStaleHandle))

	// Handles of another list are rejected even if they happen to match a
	// slot of this one.
	other, err := FromSlice(Config[int]{}, []int{1, 3, 4})
	require.NoError(t, err)
	require.True(t, errors.Is(l.Drop(other.Front()), ErrStaleHandle))
	checkInvariants(t, l)
	checkInvariants(t, other)
}

func TestRandomOperations(t *testing.T) {
	rng, _ := randutil.NewTestRand()
	l := New(Config[int]{})
	var model []int
	pushes, pops := 0, 0

	for i := 0; i < 2000; i++ {
		switch op := rng.Intn(6); op {
		case 0:
			_, err := l.PushBack(i)
			require.NoError(t, err)
			model = append(model, i)
			pushes++
		case 1:
			_, err := l.PushFront(i)
			require.NoError(t, err)
			model = append([]int{i}, model...)
			pushes++
		case 2:
			if l.PopBack() {
				model = model[:len(model)-1]
				pops++
			} else {
				require.Empty(t, model)
			}
		case 3:
			if l.PopFront() {
				model = model[1:]
				pops++
			} else {
				require.Empty(t, model)
			}
		case 4:
			if len(model) == 0 {
				continue
			}
			pos := rng.Intn(len(model))
			h := l.Advance(l.Front(), pos)
			_, err := l.InsertAfter(i, h)
			require.NoError(t, err)
			model = append(model[:pos+1], append([]int{i}, model[pos+1:]...)...)
			pushes++
		case 5:
			if len(model) == 0 {
				continue
			}
			pos := rng.Intn(len(model))
			require.NoError(t, l.Drop(l.Rewind(l.Back(), len(model)-1-pos)))
			model = append(model[:pos], model[pos+1:]...)
			pops++
		}
		require.Equal(t, pushes-pops, l.Len())
		if i%100 == 0 {
			checkInvariants(t, l)
			require.Equal(t, len(model) == 0, l.Empty())
			if len(model) > 0 {
				require.Equal(t, model, l.Values())
			}
		}
	}
	checkInvariants(t, l)
	l.Clear()
	checkInvariants(t, l)
}

func TestListOwnedRelease(t *testing.T) {
	released := map[string]int{}
	l, err := FromSlice(Config[string]{
		Ownership: ListOwned,
		Release:   func(s string) { released[s]++ },
	}, []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)

	require.NoError(t, l.Drop(l.Find("c", Equal[string])))
	require.True(t, l.Remove("b", Equal[string]))
	require.True(t, l.PopFront())
	require.True(t, l.PopBack())
	require.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1, "e": 1}, released)

	l.Close()
	l.Close()
	require.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1}, released)
}

func TestCallerOwnedNeverReleases(t *testing.T) {
	type payload struct{ freed bool }
	p := &payload{}
	l := New(Config[*payload]{})
	_, err := l.PushBack(p)
	require.NoError(t, err)
	l.Close()
	require.False(t, p.freed)
	require.Equal(t, CallerOwned, l.Ownership())
}

func TestMismatchedOwnershipPanics(t *testing.T) {
	require.Panics(t, func() {
		New(Config[int]{Ownership: ListOwned})
	})
	require.Panics(t, func() {
		New(Config[int]{Release: func(int) {}})
	})
	require.Panics(t, func() {
		New(Config[int]{Size: func(int) int64 { return 1 }})
	})
	require.Panics(t, func() {
		New(Config[int]{MaxNodes: -1})
	})
}

func TestClosedList(t *testing.T) {
	l, err := FromSlice(Config[int]{}, []int{1, 2})
	require.NoError(t, err)
	h := l.Front()
	l.Close()
	checkInvariants(t, l)

	_, err = l.PushBack(3)
	require.True(t, errors.Is(err, ErrClosed))
	_, ok := l.Value(h)
	require.False(t, ok)
	require.True(t, l.Empty())
}

func TestMaxNodes(t *testing.T) {
	m := NewMetrics("bounded")
	l := New(Config[int]{Name: "bounded", MaxNodes: 2, Metrics: m})
	_, err := l.PushBack(1)
	require.NoError(t, err)
	_, err = l.PushBack(2)
	require.NoError(t, err)

	_, err = l.PushFront(0)
	require.True(t, errors.Is(err, ErrAllocation))
	var ae *AllocationError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, 2, ae.Nodes)
	require.Equal(t, "list bounded: cannot allocate node: limit of 2 nodes reached", err.Error())

	_, err = l.InsertAfter(3, l.Front())
	require.True(t, errors.Is(err, ErrAllocation))
	require.Equal(t, []int{1, 2}, l.Values())
	require.Equal(t, float64(2), testutil.ToFloat64(m.AllocationFailures))

	require.True(t, l.PopFront())
	_, err = l.PushFront(0)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, l.Values())
	checkInvariants(t, l)
}

func TestAccountedAllocation(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	defer log.SetOutput(&buf)()

	l0 := New(Config[[]byte]{})
	overhead := l0.overhead

	// Room for two nodes and 10 bytes of payload.
	mm := mon.NewMonitor("root", 2*overhead+10)
	acc := mm.MakeBoundAccount()
	m := NewMetrics("accounted")
	released := 0
	cfg := Config[[]byte]{
		Name:      "accounted",
		Ownership: ListOwned,
		Release:   func([]byte) { released++ },
		Size:      func(b []byte) int64 { return int64(len(b)) },
		Account:   &acc,
		Metrics:   m,
	}
	var ac log.AmbientContext
	ac.AddLogTag("q", nil)
	cfg.AmbientCtx = ac
	l := New(cfg)

	_, err := l.PushBack(make([]byte, 6))
	require.NoError(t, err)
	require.Equal(t, overhead+6, acc.Used())

	// 6 more bytes of payload don't fit: the list and the account must be
	// unchanged.
	_, err = l.PushBack(make([]byte, 6))
	require.True(t, errors.Is(err, ErrAllocation))
	require.True(t, errors.Is(err, mon.ErrBudgetExceeded))
	require.Contains(t, err.Error(), "list accounted: cannot allocate node 2: root: memory budget exceeded")
	require.Equal(t, 1, l.Len())
	require.Equal(t, overhead+6, acc.Used())
	require.Contains(t, buf.String(), "[q] list accounted: cannot allocate node 2")

	_, err = l.PushFront(make([]byte, 4))
	require.NoError(t, err)
	require.Equal(t, 2*overhead+10, mm.AllocBytes())
	require.Equal(t, float64(2), testutil.ToFloat64(m.Nodes))
	require.Equal(t, float64(2*overhead+10), testutil.ToFloat64(m.Bytes))

	require.True(t, l.PopBack())
	require.Equal(t, overhead+4, acc.Used())
	require.Equal(t, 1, released)

	l.Close()
	require.Equal(t, 2, released)
	require.Zero(t, acc.Used())
	require.Zero(t, testutil.ToFloat64(m.Nodes))
	require.Zero(t, testutil.ToFloat64(m.Bytes))
	require.Equal(t, float64(2), testutil.ToFloat64(m.Pushes))
	require.Equal(t, float64(2), testutil.ToFloat64(m.Pops))
	mm.Stop(ctx)
}

func TestFromSliceUnwindsOnFailure(t *testing.T) {
	l0 := New(Config[int]{})
	mm := mon.NewMonitor("root", 2*l0.overhead)
	acc := mm.MakeBoundAccount()
	var released []int
	l, err := FromSlice(Config[int]{
		Ownership: ListOwned,
		Release:   func(v int) { released = append(released, v) },
		Account:   &acc,
	}, []int{1, 2, 3, 4})
	require.Nil(t, l)
	require.True(t, errors.Is(err, ErrAllocation))
	require.Contains(t, err.Error(), "inserting item 3 of 4: ")
	// Nodes inserted before the failure are released, the rest were never
	// handed to the list.
	require.Equal(t, []int{1, 2}, released)
	require.Zero(t, mm.AllocBytes())
	mm.Stop(context.Background())
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics("registered")
	for _, c := range m.Collectors() {
		require.NoError(t, reg.Register(c))
	}
	l := New(Config[int]{Metrics: m})
	_, err := l.PushBack(1)
	require.NoError(t, err)
	n, err := testutil.GatherAndCount(reg, "list_nodes")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Metrics may be shared; gauges aggregate across lists.
	l2 := New(Config[int]{Metrics: m})
	_, err = l2.PushBack(2)
	require.NoError(t, err)
	require.Equal(t, float64(2), testutil.ToFloat64(m.Nodes))
}

func TestReleaseLogging(t *testing.T) {
	var buf bytes.Buffer
	defer log.SetOutput(&buf)()
	defer log.SetVerbosity(3)()

	l, err := FromSlice(Config[int]{
		Name:      "logged",
		Ownership: ListOwned,
		Release:   func(int) {},
	}, []int{1, 2})
	require.NoError(t, err)
	require.True(t, l.PopFront())
	require.Contains(t, buf.String(), "list logged: released payload of 0 B")
	l.Close()
	require.Contains(t, buf.String(), "closing list logged with 1 nodes")
}

func TestFormat(t *testing.T) {
	l, err := FromSlice(Config[string]{}, []string{"x", "y"})
	require.NoError(t, err)
	require.Equal(t, "[x y]", l.String())

	var h Handle
	require.Equal(t, "none", h.String())
	require.NotEqual(t, "none", l.Front().String())
}

func TestPanickingReleaseKeepsAccounting(t *testing.T) {
	ctx := context.Background()
	mm := mon.NewUnlimitedMonitor("root")
	acc := mm.MakeBoundAccount()
	m := NewMetrics("panicky")
	calls := 0
	l := New(Config[[]byte]{
		Name:      "panicky",
		Ownership: ListOwned,
		Release: func([]byte) {
			calls++
			if calls == 1 {
				panic("release failed")
			}
		},
		Size:    func(b []byte) int64 { return int64(len(b)) },
		Account: &acc,
		Metrics: m,
	})
	for i := 0; i < 2; i++ {
		_, err := l.PushBack(make([]byte, 4))
		require.NoError(t, err)
	}

	require.PanicsWithValue(t, "release failed", func() { l.PopFront() })
	require.Equal(t, 1, l.Len())
	require.Equal(t, l.overhead+4, acc.Used())
	require.Equal(t, l.overhead+4, mm.AllocBytes())
	require.Equal(t, float64(1), testutil.ToFloat64(m.Nodes))
	require.Equal(t, float64(l.overhead+4), testutil.ToFloat64(m.Bytes))
	checkInvariants(t, l)

	l.Close()
	require.Equal(t, 2, calls)
	require.Zero(t, acc.Used())
	require.Zero(t, mm.AllocBytes())
	require.Zero(t, testutil.ToFloat64(m.Bytes))
	mm.Stop(ctx)
}

func TestNegativeSizeRejected(t *testing.T) {
	m := NewMetrics("negative")
	l := New(Config[int]{
		Name:      "negative",
		Ownership: ListOwned,
		Release:   func(int) {},
		Size:      func(int) int64 { return -1000 },
		Metrics:   m,
	})
	_, err := l.PushBack(1)
	require.True(t, errors.HasAssertionFailure(err))
	require.False(t, errors.Is(err, ErrAllocation))
	require.Contains(t, err.Error(), "negative payload size -1000")
	require.True(t, l.Empty())
	require.Zero(t, testutil.ToFloat64(m.Bytes))
	require.Zero(t, testutil.ToFloat64(m.Pushes))
	checkInvariants(t, l)
}

func TestExhaustedGenerationRetiresSlot(t *testing.T) {
	l := New(Config[int]{})
	h, err := l.PushBack(1)
	require.NoError(t, err)
	l.slots[h.idx].gen = math.MaxUint32 - 1
	h = l.Front()

	require.NoError(t, l.Drop(h))
	require.Equal(t, 1, l.retired)
	require.Empty(t, l.free)

	h2, err := l.PushBack(2)
	require.NoError(t, err)
	require.NotEqual(t, h.idx, h2.idx)
	_, ok := l.Value(h)
	require.False(t, ok)
	require.True(t, errors.Is(l.Drop(h), ErrStaleHandle))
	checkInvariants(t, l)

	l.Close()
	require.Zero(t, l.retired)
}

func TestSlotIndexLimit(t *testing.T) {
	defer func(prev int) { maxSlotIndex = prev }(maxSlotIndex)
	maxSlotIndex = 2

	l := New(Config[int]{Name: "small"})
	for _, v := range []int{1, 2} {
		_, err := l.PushBack(v)
		require.NoError(t, err)
	}
	_, err := l.PushBack(3)
	require.True(t, errors.Is(err, ErrAllocation))
	require.Contains(t, err.Error(), "all 2 slots in use")
	require.Equal(t, []int{1, 2}, l.Values())

	// A freed slot is reused without growing the arena.
	require.True(t, l.PopFront())
	_, err = l.PushBack(3)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, l.Values())
	checkInvariants(t, l)
}
