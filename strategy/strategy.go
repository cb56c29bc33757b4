package strategy

import (
	"time"

	"github.com/stijnseghers/eva/schederr"
	"github.com/stijnseghers/eva/scheduletree"
	"github.com/stijnseghers/eva/task"
)

// Strategy places tasks into a schedule tree that the caller has already created and seeded with
// sentinel leaves for forbidden time. It must schedule every task in tasks or return an error;
// it must never touch leaves whose payload IsSentinel().
type Strategy interface {
	Schedule(tree *scheduletree.Tree[*Payload], tasks []*task.Task, now time.Time) error
}

// ByName resolves one of the two strategy names accepted by the top-level entrypoint. Matching is
// case-sensitive; an unrecognized name is a programmer error, not a user-facing one.
func ByName(name string) (Strategy, bool) {
	switch name {
	case "importance":
		return Importance{}, true
	case "urgency":
		return Urgency{}, true
	default:
		return nil, false
	}
}

// checkDeadline panics with schederr.DeadlineMissed if t cannot possibly be scheduled by its
// deadline given now. Both strategies check this before ever trying to place a task.
func checkDeadline(t *task.Task, now time.Time) {
	if !t.Deadline.Before(now.Add(t.Duration)) {
		return
	}
	tense := "will miss"
	if !t.Deadline.After(now) {
		tense = "missed"
	}
	panic(schederr.DeadlineMissed{Task: t, Tense: tense})
}
