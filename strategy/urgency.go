package strategy

import (
	"sort"
	"time"

	. "github.com/stevegt/goadapt"

	"github.com/stijnseghers/eva/schederr"
	"github.com/stijnseghers/eva/scheduletree"
	"github.com/stijnseghers/eva/task"
)

// Urgency schedules tasks according to deadline first and then according to importance.
//
// First, all tasks — starting with the least important until the most important — are scheduled
// as close as possible to their deadline. Next, all tasks are put as close to the present as
// possible, keeping the order from the first scheduling phase.
//
// This is how Myrjam Van de Vijver does her personal scheduling. A benefit of doing it this way
// is that it's highly robust against contingencies like falling sick. A disadvantage is that it
// gives more priority to urgent but less important tasks than to important but less urgent ones.
type Urgency struct{}

func (Urgency) Schedule(tree *scheduletree.Tree[*Payload], tasks []*task.Task, now time.Time) (err error) {
	defer Return(&err)

	sorted := append([]*task.Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Importance < sorted[j].Importance })

	for _, t := range sorted {
		checkDeadline(t, now)
		minStart := now
		if !tree.ScheduleCloseBefore(t.Deadline, t.Duration, &minStart, NewTaskPayload(t)) {
			panic(schederr.NotEnoughTime{Task: t})
		}
	}

	// Next, shift all tasks towards the present, filling up the gaps, in one forward pass in
	// chronological order. Sentinel leaves (forbidden time outside the segment) are left alone.
	for _, entry := range tree.Entries() {
		if entry.Data.IsSentinel() {
			continue
		}
		unscheduled, ok := tree.Unschedule(entry.Data)
		Assert(ok, "urgency scheduling: couldn't unschedule a task it had just iterated over")

		t := unscheduled.Data.Task
		maxEnd := unscheduled.End
		if !tree.ScheduleCloseAfter(now, t.Duration, &maxEnd, unscheduled.Data) {
			panic(schederr.Internal{MoreInfo: "urgency scheduling couldn't reschedule a task"})
		}
	}

	return nil
}
