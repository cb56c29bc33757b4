// Package scheduletree implements the interval tree that tracks scheduled versus free time: an
// unusual tree whose leaves are placed tasks (or sentinels) and whose intermediate nodes carry
// the free gap between their children. It supports both "schedule close before a deadline" and
// "schedule close after a start" placement, plus removal.
package scheduletree

import (
	"time"

	. "github.com/stevegt/goadapt"
)

// Entry is a placed (or just-removed) leaf: a span plus its payload.
type Entry[D comparable] struct {
	Start time.Time
	End   time.Time
	Data  D
}

// span is a half-open time range, used internally for free intervals and tree scope.
type span struct {
	Start time.Time
	End   time.Time
}

// node is either a leaf (Left == Right == nil, Start/End/Data meaningful) or an intermediate node
// (Left and Right both non-nil, FreeStart/FreeEnd meaningful). This mirrors the Leaf/Intermediate
// enum of the tree this package is modeled on, using nil children as the discriminant.
type node[D comparable] struct {
	Start, End time.Time
	Data       D

	FreeStart, FreeEnd time.Time
	Left, Right        *node[D]
}

func (n *node[D]) isLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// findScope recomputes the [min(start), max(end)) span covered by this node's subtree.
func (n *node[D]) findScope() span {
	if n.isLeaf() {
		return span{n.Start, n.End}
	}
	return span{n.Left.findScope().Start, n.Right.findScope().End}
}

// Tree is a schedule tree: it starts empty and grows as tasks (or sentinels) are placed into it.
// D is the payload type; it must be comparable because a side index maps each live payload to
// its current leaf start. Scheduling the same payload twice is an invariant violation and
// panics; unscheduling a payload that is not live just reports false.
type Tree[D comparable] struct {
	root  *node[D]
	scope *span
	index map[D]time.Time
}

// New returns an empty schedule tree.
func New[D comparable]() *Tree[D] {
	return &Tree[D]{index: make(map[D]time.Time)}
}

// IsEmpty reports whether the tree holds no leaves.
func (t *Tree[D]) IsEmpty() bool {
	return t.root == nil
}

// WhenScheduled returns the current start time of data, if it is live in the tree.
func (t *Tree[D]) WhenScheduled(data D) (time.Time, bool) {
	start, ok := t.index[data]
	return start, ok
}

func (t *Tree[D]) updateIndex(data D, start time.Time) {
	_, exists := t.index[data]
	Assert(!exists, "scheduletree: data scheduled twice in the same tree")
	t.index[data] = start
}

// tryTrivialCases handles the three common-prefix cases shared by every placement family: empty
// tree, new leaf entirely before the current scope, new leaf entirely after it.
func (t *Tree[D]) tryTrivialCases(start, end time.Time, data D) (time.Time, bool) {
	leaf := &node[D]{Start: start, End: end, Data: data}

	if t.root == nil {
		t.root = leaf
		t.scope = &span{start, end}
		return start, true
	}

	scope := *t.scope
	switch {
	case !end.After(scope.Start):
		t.root = &node[D]{FreeStart: end, FreeEnd: scope.Start, Left: leaf, Right: t.root}
		t.scope = &span{start, scope.End}
		return start, true
	case !scope.End.After(start):
		t.root = &node[D]{FreeStart: scope.End, FreeEnd: start, Left: t.root, Right: leaf}
		t.scope = &span{scope.Start, end}
		return start, true
	default:
		return time.Time{}, false
	}
}

// commit converts an intermediate node's free interval [a, b) into two adjacent gaps flanking a
// new leaf [start, end), per §4.2.6. Shared by schedule_exact, schedule_close_before and
// schedule_close_after's recursive insert steps, which all reduce to the same splice once the
// target span has been found.
func (n *node[D]) commit(start, end time.Time, data D) {
	Assert(!start.Before(n.FreeStart) && !end.After(n.FreeEnd),
		"scheduletree: commit span %v..%v outside free range %v..%v", start, end, n.FreeStart, n.FreeEnd)
	leaf := &node[D]{Start: start, End: end, Data: data}
	n.Right = &node[D]{FreeStart: end, FreeEnd: n.FreeEnd, Left: leaf, Right: n.Right}
	n.FreeEnd = start
}

// ScheduleExact tries to place data at exactly [start, start+duration).
func (t *Tree[D]) ScheduleExact(start time.Time, duration time.Duration, data D) bool {
	end := start.Add(duration)
	if s, ok := t.tryTrivialCases(start, end, data); ok {
		t.updateIndex(data, s)
		return true
	}
	s, ok := t.root.insert(start, end, data)
	if !ok {
		return false
	}
	t.updateIndex(data, s)
	return true
}

func (n *node[D]) insert(start, end time.Time, data D) (time.Time, bool) {
	if n.isLeaf() {
		return time.Time{}, false
	}
	switch {
	case !end.After(n.FreeStart):
		return n.Left.insert(start, end, data)
	case !n.FreeEnd.After(start):
		return n.Right.insert(start, end, data)
	case !n.FreeStart.After(start) && !end.After(n.FreeEnd):
		n.commit(start, end, data)
		return start, true
	default:
		return time.Time{}, false
	}
}

// ScheduleCloseBefore tries to place data as close as possible before end, no sooner than
// minStart when given. minStart+duration must not exceed end.
func (t *Tree[D]) ScheduleCloseBefore(end time.Time, duration time.Duration, minStart *time.Time, data D) bool {
	Assert(minStart == nil || !minStart.Add(duration).After(end),
		"scheduletree: min_start+duration must not exceed end")

	optimalStart := end.Add(-duration)
	if s, ok := t.tryTrivialCases(optimalStart, end, data); ok {
		t.updateIndex(data, s)
		return true
	}
	if s, ok := t.root.insertBefore(end, duration, minStart, data); ok {
		t.updateIndex(data, s)
		return true
	}

	scope := *t.scope
	limit := scope.Start.Add(-duration)
	if minStart == nil || !minStart.After(limit) {
		leaf := &node[D]{Start: limit, End: scope.Start, Data: data}
		t.root = &node[D]{FreeStart: scope.Start, FreeEnd: scope.Start, Left: leaf, Right: t.root}
		t.scope = &span{limit, scope.End}
		t.updateIndex(data, limit)
		return true
	}
	return false
}

func (n *node[D]) insertBefore(end time.Time, duration time.Duration, minStart *time.Time, data D) (time.Time, bool) {
	if n.isLeaf() {
		return time.Time{}, false
	}
	if n.FreeEnd.Before(end) {
		if s, ok := n.Right.insertBefore(end, duration, minStart, data); ok {
			return s, true
		}
	}
	clampedEnd := end
	if n.FreeEnd.Before(clampedEnd) {
		clampedEnd = n.FreeEnd
	}
	candidateStart := clampedEnd.Add(-duration)
	if !n.FreeStart.After(candidateStart) && (minStart == nil || !minStart.After(candidateStart)) {
		n.commit(candidateStart, clampedEnd, data)
		return candidateStart, true
	}
	if minStart != nil && !n.FreeStart.After(*minStart) {
		return time.Time{}, false
	}
	return n.Left.insertBefore(end, duration, minStart, data)
}

// ScheduleCloseAfter tries to place data as close as possible after start, no later than maxEnd
// when given. start+duration must not exceed maxEnd.
func (t *Tree[D]) ScheduleCloseAfter(start time.Time, duration time.Duration, maxEnd *time.Time, data D) bool {
	Assert(maxEnd == nil || !start.Add(duration).After(*maxEnd),
		"scheduletree: start+duration must not exceed max_end")

	optimalEnd := start.Add(duration)
	if s, ok := t.tryTrivialCases(start, optimalEnd, data); ok {
		t.updateIndex(data, s)
		return true
	}
	if s, ok := t.root.insertAfter(start, duration, maxEnd, data); ok {
		t.updateIndex(data, s)
		return true
	}

	scope := *t.scope
	limit := scope.End.Add(duration)
	if maxEnd == nil || !limit.After(*maxEnd) {
		leaf := &node[D]{Start: scope.End, End: limit, Data: data}
		t.root = &node[D]{FreeStart: scope.End, FreeEnd: scope.End, Left: t.root, Right: leaf}
		t.scope = &span{scope.Start, limit}
		t.updateIndex(data, scope.End)
		return true
	}
	return false
}

func (n *node[D]) insertAfter(start time.Time, duration time.Duration, maxEnd *time.Time, data D) (time.Time, bool) {
	if n.isLeaf() {
		return time.Time{}, false
	}
	if start.Before(n.FreeStart) {
		if s, ok := n.Left.insertAfter(start, duration, maxEnd, data); ok {
			return s, true
		}
	}
	clampedStart := start
	if n.FreeStart.After(clampedStart) {
		clampedStart = n.FreeStart
	}
	candidateEnd := clampedStart.Add(duration)
	if !candidateEnd.After(n.FreeEnd) && (maxEnd == nil || !candidateEnd.After(*maxEnd)) {
		n.commit(clampedStart, candidateEnd, data)
		return clampedStart, true
	}
	if maxEnd != nil && !maxEnd.After(n.FreeEnd) {
		return time.Time{}, false
	}
	return n.Right.insertAfter(start, duration, maxEnd, data)
}

// Unschedule removes data from the tree, returning its former span. It reports false if data was
// not live.
func (t *Tree[D]) Unschedule(data D) (Entry[D], bool) {
	start, ok := t.index[data]
	if !ok {
		return Entry[D]{}, false
	}
	delete(t.index, data)

	if t.root.isLeaf() {
		entry := Entry[D]{t.root.Start, t.root.End, t.root.Data}
		t.root = nil
		t.scope = nil
		return entry, true
	}

	entry, newScope, ok := t.root.unschedule(start, data)
	Assert(ok, "scheduletree: side index pointed at a start no leaf holds")
	t.scope = &newScope
	return entry, true
}

func (n *node[D]) unschedule(start time.Time, data D) (Entry[D], span, bool) {
	if start.Before(n.FreeStart) {
		if n.Left.isLeaf() {
			if !n.Left.Start.Equal(start) || n.Left.Data != data {
				return Entry[D]{}, span{}, false
			}
			entry := Entry[D]{n.Left.Start, n.Left.End, n.Left.Data}
			*n = *n.Right
			return entry, n.findScope(), true
		}
		entry, childScope, ok := n.Left.unschedule(start, data)
		if !ok {
			return Entry[D]{}, span{}, false
		}
		n.FreeStart = childScope.End
		return entry, span{childScope.Start, n.Right.findScope().End}, true
	}

	if !start.Before(n.FreeEnd) {
		if n.Right.isLeaf() {
			if !n.Right.Start.Equal(start) || n.Right.Data != data {
				return Entry[D]{}, span{}, false
			}
			entry := Entry[D]{n.Right.Start, n.Right.End, n.Right.Data}
			*n = *n.Left
			return entry, n.findScope(), true
		}
		entry, childScope, ok := n.Right.unschedule(start, data)
		if !ok {
			return Entry[D]{}, span{}, false
		}
		n.FreeEnd = childScope.Start
		return entry, span{n.Left.findScope().Start, childScope.End}, true
	}

	return Entry[D]{}, span{}, false
}

// Entries returns every leaf in chronological order, without removing them from the tree.
func (t *Tree[D]) Entries() []Entry[D] {
	var out []Entry[D]
	var walk func(n *node[D])
	walk = func(n *node[D]) {
		if n == nil {
			return
		}
		if n.isLeaf() {
			out = append(out, Entry[D]{n.Start, n.End, n.Data})
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.root)
	return out
}

// Drain returns every leaf in chronological order and empties the tree, dropping each leaf's
// payload from the side index as it goes.
func (t *Tree[D]) Drain() []Entry[D] {
	out := t.Entries()
	t.root = nil
	t.scope = nil
	for _, e := range out {
		delete(t.index, e.Data)
	}
	return out
}
