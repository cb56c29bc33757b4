// Package schederr holds the error taxonomy the scheduling core raises: a task's deadline was
// missed, a task could not be fit in at all, or an internal invariant broke.
package schederr

import "fmt"

// DeadlineMissed means a task's deadline has already passed, or would pass before the task could
// be finished even if it started right away, so scheduling never attempted to place it.
type DeadlineMissed struct {
	Task interface{ String() string }
	// Tense is "missed" when the deadline is already in the past, "will miss" when it is still
	// ahead but too close to leave room for the task's duration.
	Tense string
}

func (e DeadlineMissed) Error() string {
	return fmt.Sprintf("I could not schedule %s because you %s the deadline.\n"+
		"You might want to postpone this task or remove it if it's no longer relevant",
		e.Task, e.Tense)
}

// NotEnoughTime means a task's deadline has not passed, but no open time remained to fit it in
// given everything else that had to be scheduled first.
type NotEnoughTime struct {
	Task interface{ String() string }
}

func (e NotEnoughTime) Error() string {
	return fmt.Sprintf("I could not schedule %s because you don't have enough time to do "+
		"everything.\nYou might want to decide not to do some things or relax their deadlines",
		e.Task)
}

// Internal signals a broken invariant in the scheduling core itself, never a user mistake.
type Internal struct {
	MoreInfo string
}

func (e Internal) Error() string {
	return fmt.Sprintf("An internal error occurred (this shouldn't happen): %s", e.MoreInfo)
}
