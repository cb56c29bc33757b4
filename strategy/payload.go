// Package strategy implements the two deadline-aware placement strategies: Importance, which
// schedules the most important work closest to now, and Urgency ("Myrjam's method"), which leaves
// relative order alone and only compacts towards now. Both operate on a schedule tree that the
// caller has already seeded with sentinel leaves marking time the task's segment forbids.
package strategy

import "github.com/stijnseghers/eva/task"

// Payload is what actually lives in a schedule tree's leaves while a strategy runs: either a real
// task, or a sentinel blocking out time outside a segment's allowed ranges. Every sentinel is
// created fresh, so pointer identity alone keeps them from ever comparing equal to one another —
// the schedule tree's side index can hold any number of live sentinels at once without them
// colliding.
type Payload struct {
	Task *task.Task
}

// NewSentinel returns a payload that represents forbidden time, not a task.
func NewSentinel() *Payload {
	return &Payload{}
}

// NewTaskPayload wraps t for insertion into a schedule tree.
func NewTaskPayload(t *task.Task) *Payload {
	return &Payload{Task: t}
}

// IsSentinel reports whether p represents forbidden time rather than a real task.
func (p *Payload) IsSentinel() bool {
	return p.Task == nil
}
