// Package task holds the unit of work the scheduling core places on a timeline.
package task

import (
	"fmt"
	"time"
)

// Task is an immutable unit of work with a deadline, a duration, an importance and the time
// segment it's allowed to run in. The scheduling core reads tasks but never mutates them.
type Task struct {
	ID            uint64
	Content       string
	Deadline      time.Time
	Duration      time.Duration
	Importance    uint32
	TimeSegmentID uint32
}

// New describes a task submitted to a store, before it has been assigned an id.
type New struct {
	Content       string
	Deadline      time.Time
	Duration      time.Duration
	Importance    uint32
	TimeSegmentID uint32
}

// String renders the task the way a schedule listing would.
func (t *Task) String() string {
	return fmt.Sprintf("%d. %s\n    (deadline: %s, duration: %s, importance: %d)",
		t.ID, t.Content, t.Deadline.Format(time.RFC3339), t.Duration, t.Importance)
}
