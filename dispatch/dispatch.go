// Package dispatch runs a placement strategy once per time segment, each time blocking out the
// time the segment doesn't cover, then merges the per-segment results into one chronological
// schedule.
package dispatch

import (
	"sort"
	"time"

	. "github.com/stevegt/goadapt"

	"github.com/stijnseghers/eva/scheduletree"
	"github.com/stijnseghers/eva/segment"
	"github.com/stijnseghers/eva/strategy"
	"github.com/stijnseghers/eva/task"
)

// Scheduled binds a task to the instant it was placed at.
type Scheduled struct {
	Task task.Task
	When time.Time
}

// Schedule is the final, chronologically ordered result of a scheduling call.
type Schedule []Scheduled

// TasksBySegment is one segment's tasks, keyed by the segment's id. horizon bounds how far past
// start the segment's forbidden ranges need to be generated; callers typically pick the latest
// deadline among all tasks across all segments.
type TasksBySegment struct {
	SegmentID uint32
	Segment   segment.Segment
	Tasks     []*task.Task
}

// Run schedules every segment's tasks independently with s, seeding each segment's tree with
// sentinels for the time the segment doesn't cover, then merges the results chronologically.
// Ties between segments are broken by ascending segment id, since the algorithm this is grounded
// on does not specify a tie-break for simultaneous placements in different segments.
func Run(s strategy.Strategy, groups []TasksBySegment, start, horizon time.Time) (sched Schedule, err error) {
	defer Return(&err)

	type segmentResult struct {
		segmentID uint32
		when      time.Time
		task      task.Task
	}
	var results []segmentResult

	for _, g := range groups {
		tree := scheduletree.New[*strategy.Payload]()
		seedSentinels(tree, g.Segment, start, horizon)

		if err := s.Schedule(tree, g.Tasks, start); err != nil {
			return nil, err
		}

		for _, e := range tree.Entries() {
			if e.Data.IsSentinel() {
				continue
			}
			results = append(results, segmentResult{segmentID: g.SegmentID, when: e.Start, task: *e.Data.Task})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].when.Equal(results[j].when) {
			return results[i].when.Before(results[j].when)
		}
		return results[i].segmentID < results[j].segmentID
	})

	sched = make(Schedule, len(results))
	for i, r := range results {
		sched[i] = Scheduled{Task: r.task, When: r.when}
	}
	return sched, nil
}

// seedSentinels blocks out, with sentinel leaves, every range in [start, horizon) that seg does
// not cover — i.e. seg's inverse. Sentinel insertion must succeed: the ranges come straight from
// the segment itself and by construction cannot overlap each other or anything else in a fresh
// tree, so any failure here is an invariant violation, not a user-facing outcome.
func seedSentinels(tree *scheduletree.Tree[*strategy.Payload], seg segment.Segment, start, horizon time.Time) {
	for _, r := range seg.Inverse().GenerateRanges(start, horizon) {
		if !r.End.After(r.Start) {
			continue
		}
		ok := tree.ScheduleExact(r.Start, r.Duration(), strategy.NewSentinel())
		Assert(ok, "dispatch: could not seed sentinel %v..%v", r.Start, r.End)
	}
}

// LatestDeadline returns the latest deadline across every task in groups, or ok=false when there
// are none. Callers use this to pick a horizon that's guaranteed to cover every task's deadline.
func LatestDeadline(groups []TasksBySegment) (latest time.Time, ok bool) {
	for _, g := range groups {
		for _, t := range g.Tasks {
			if !ok || t.Deadline.After(latest) {
				latest = t.Deadline
				ok = true
			}
		}
	}
	return latest, ok
}
