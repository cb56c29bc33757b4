// Package store defines the task and time-segment persistence capability the scheduling core
// consumes but never implements: the core reads tasks and segments through this interface and
// never retries or wraps the errors it returns.
package store

import (
	"context"

	"github.com/stijnseghers/eva/segment"
	"github.com/stijnseghers/eva/task"
)

// TasksBySegment groups a time segment's persisted tasks with the segment itself, the shape
// AllTasksPerTimeSegment partitions the store's tasks into.
type TasksBySegment struct {
	Segment segment.Named
	Tasks   []*task.Task
}

// Store is the task-store capability the core consumes (addressed to as "database" there):
// ordinary CRUD over tasks and time segments, plus the partitioning query the dispatcher needs.
// Implementations are expected to provide their own atomicity; the core imposes no lock or
// transactional discipline of its own.
type Store interface {
	AddTask(ctx context.Context, n task.New) (*task.Task, error)
	DeleteTask(ctx context.Context, id uint64) error
	GetTask(ctx context.Context, id uint64) (*task.Task, error)
	UpdateTask(ctx context.Context, t *task.Task) error
	AllTasks(ctx context.Context) ([]*task.Task, error)

	// AllTasksPerTimeSegment partitions the stored tasks across every stored segment. Each task
	// whose TimeSegmentID names a stored segment appears in exactly one group, keyed by that id.
	AllTasksPerTimeSegment(ctx context.Context) ([]TasksBySegment, error)

	AddTimeSegment(ctx context.Context, n segment.NewNamed) (*segment.Named, error)

	// DeleteTimeSegment removes a time segment. Deleting the last remaining segment is
	// rejected: the core always needs at least one segment to partition tasks into.
	DeleteTimeSegment(ctx context.Context, id uint32) error
	UpdateTimeSegment(ctx context.Context, s *segment.Named) error
	AllTimeSegments(ctx context.Context) ([]*segment.Named, error)
}
