// Package eva is a personal task scheduler: given a pool of tasks with deadlines, durations and
// importances, it places each one at a concrete instant that respects its deadline and the time
// segment it's allowed to run in.
package eva

import (
	"context"
	"time"

	. "github.com/stevegt/goadapt"

	"github.com/stijnseghers/eva/config"
	"github.com/stijnseghers/eva/dispatch"
	"github.com/stijnseghers/eva/schederr"
	"github.com/stijnseghers/eva/strategy"
	"github.com/stijnseghers/eva/task"
)

// Task and Scheduled are re-exported so callers don't need to import the subpackages that define
// them just to call Schedule. The schedule itself is returned as a dispatch.Schedule, since an
// alias named Schedule would collide with the Schedule function below.
type Task = task.Task
type Scheduled = dispatch.Scheduled

// DeadlineMissed, NotEnoughTime and Internal are re-exported from schederr for the same reason.
type DeadlineMissed = schederr.DeadlineMissed
type NotEnoughTime = schederr.NotEnoughTime
type Internal = schederr.Internal

// guard is added to "now" before scheduling starts, so nothing ever gets placed at a past or
// in-progress instant.
const guard = time.Minute

// Schedule fetches every task and time segment from configuration.Store, resolves
// configuration.SchedulingStrategy by name, and runs it to produce a chronologically ordered
// Schedule. An unrecognised strategy name is a programmer bug and panics.
func Schedule(ctx context.Context, configuration config.Configuration) (dispatch.Schedule, error) {
	return ScheduleWith(ctx, configuration, configuration.SchedulingStrategy)
}

// ScheduleWith is like Schedule but overrides configuration.SchedulingStrategy with
// strategyName.
func ScheduleWith(ctx context.Context, configuration config.Configuration, strategyName string) (sched dispatch.Schedule, err error) {
	s, ok := strategy.ByName(strategyName)
	Assert(ok, "unsupported scheduling strategy %q", strategyName)

	start := configuration.Now().Add(guard)

	perSegment, err := configuration.Store.AllTasksPerTimeSegment(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]dispatch.TasksBySegment, len(perSegment))
	for i, g := range perSegment {
		groups[i] = dispatch.TasksBySegment{SegmentID: g.Segment.ID, Segment: g.Segment.Segment, Tasks: g.Tasks}
	}

	horizon := start
	if latest, ok := dispatch.LatestDeadline(groups); ok && latest.After(horizon) {
		horizon = latest
	}

	return dispatch.Run(s, groups, start, horizon)
}
