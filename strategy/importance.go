package strategy

import (
	"sort"
	"time"

	. "github.com/stevegt/goadapt"

	"github.com/stijnseghers/eva/schederr"
	"github.com/stijnseghers/eva/scheduletree"
	"github.com/stijnseghers/eva/task"
)

// Importance schedules tasks according to importance while making sure all deadlines are met.
//
// First, all tasks — starting with the least important until the most important — are scheduled
// as close as possible to their deadline. Next, all tasks — starting with the most important
// until the least important — are put as close to the present as possible. For ties on
// importance, more urgent tasks are scheduled later in the first phase and sooner in the second
// phase.
type Importance struct{}

func (Importance) Schedule(tree *scheduletree.Tree[*Payload], tasks []*task.Task, now time.Time) (err error) {
	defer Return(&err)

	sorted := append([]*task.Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Importance != sorted[j].Importance {
			return sorted[i].Importance < sorted[j].Importance
		}
		return now.Sub(sorted[i].Deadline) < now.Sub(sorted[j].Deadline)
	})

	payloads := make(map[*task.Task]*Payload, len(sorted))
	for _, t := range sorted {
		checkDeadline(t, now)
		p := NewTaskPayload(t)
		payloads[t] = p
		minStart := now
		if !tree.ScheduleCloseBefore(t.Deadline, t.Duration, &minStart, p) {
			panic(schederr.NotEnoughTime{Task: t})
		}
	}

	// Next, shift the most important tasks towards now, and so on, filling up the gaps. Keep
	// repeating that until nothing changes anymore (i.e. all gaps are filled). A tree built from
	// n tasks has depth at most n, so n*(n+1) outer passes is a safe bound on convergence; more
	// than that means something is oscillating, which is a bug rather than a slow case.
	maxIterations := len(sorted) * (len(sorted) + 1)
	changed := !tree.IsEmpty()
	for iterations := 0; changed; iterations++ {
		if iterations > maxIterations {
			panic(schederr.Internal{MoreInfo: "importance scheduling's second phase did not converge"})
		}
		changed = false
		for i := len(sorted) - 1; i >= 0; i-- {
			t := sorted[i]
			p := payloads[t]

			entry, ok := tree.Unschedule(p)
			Assert(ok, "importance scheduling: couldn't unschedule a task it had just placed")

			maxEnd := entry.End
			if !tree.ScheduleCloseAfter(now, t.Duration, &maxEnd, p) {
				panic(schederr.Internal{MoreInfo: "importance scheduling couldn't reschedule a task"})
			}

			newStart, ok := tree.WhenScheduled(p)
			Assert(ok, "importance scheduling: couldn't find a task that was just scheduled")
			if !newStart.Equal(entry.Start) {
				changed = true
				break
			}
		}
	}

	return nil
}
