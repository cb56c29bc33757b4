// Package mem is an in-memory reference implementation of store.Store, backed by go-memdb and
// guarded by a reentrant lock around the handle to keep concurrent callers consistent.
package mem

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/reugn/async"

	. "github.com/stevegt/goadapt"

	"github.com/stijnseghers/eva/segment"
	"github.com/stijnseghers/eva/store"
	"github.com/stijnseghers/eva/task"
)

const (
	tableTasks    = "tasks"
	tableSegments = "segments"
)

// dayZero anchors the default time segment; its absolute value doesn't matter, since every
// caller re-anchors a segment with WithStart before generating ranges from it.
var dayZero = time.Unix(0, 0).UTC()

// defaultSegment is the time segment a fresh store is seeded with: a daily 8-hour window
// starting at 09:00, matching the reference implementation's first-use default.
var defaultSegment = segment.NewNamed{
	Name: "default",
	Segment: segment.New(
		dayZero,
		24*time.Hour,
		[]segment.Range{{Start: dayZero.Add(9 * time.Hour), End: dayZero.Add(17 * time.Hour)}},
	),
}

// Store is an in-memory store.Store. The zero value is not usable; use New.
type Store struct {
	mu    async.ReentrantLock
	db    *memdb.MemDB
	nextT uint64
	nextS uint32
}

var _ store.Store = (*Store)(nil)

// New returns a Store seeded with the default time segment (id 0).
func New() (s *Store, err error) {
	defer Return(&err)

	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableTasks: {
				Name: tableTasks,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.UintFieldIndex{Field: "ID"},
					},
				},
			},
			tableSegments: {
				Name: tableSegments,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.UintFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	Ck(err)
	s = &Store{db: db}

	txn := s.db.Txn(true)
	Ck(txn.Insert(tableSegments, &segment.Named{ID: 0, Segment: defaultSegment.Segment, Name: defaultSegment.Name, Hue: defaultSegment.Hue}))
	txn.Commit()
	s.nextS = 1

	return s, nil
}

func (s *Store) AddTask(ctx context.Context, n task.New) (t *task.Task, err error) {
	defer Return(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := s.db.Txn(true)
	defer txn.Abort()

	t = &task.Task{
		ID:            s.nextT,
		Content:       n.Content,
		Deadline:      n.Deadline,
		Duration:      n.Duration,
		Importance:    n.Importance,
		TimeSegmentID: n.TimeSegmentID,
	}
	Ck(txn.Insert(tableTasks, t))
	txn.Commit()
	s.nextT++
	return t, nil
}

func (s *Store) DeleteTask(ctx context.Context, id uint64) (err error) {
	defer Return(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := s.db.Txn(true)
	defer txn.Abort()
	obj, err := txn.First(tableTasks, "id", id)
	Ck(err)
	Assert(obj != nil, "task %d does not exist", id)
	Ck(txn.Delete(tableTasks, obj))
	txn.Commit()
	return nil
}

func (s *Store) GetTask(ctx context.Context, id uint64) (t *task.Task, err error) {
	defer Return(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn := s.db.Txn(false)
	obj, err := txn.First(tableTasks, "id", id)
	Ck(err)
	Assert(obj != nil, "task %d does not exist", id)
	return obj.(*task.Task), nil
}

func (s *Store) UpdateTask(ctx context.Context, t *task.Task) (err error) {
	defer Return(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := s.db.Txn(true)
	defer txn.Abort()
	obj, err := txn.First(tableTasks, "id", t.ID)
	Ck(err)
	Assert(obj != nil, "task %d does not exist", t.ID)
	Ck(txn.Insert(tableTasks, t))
	txn.Commit()
	return nil
}

func (s *Store) AllTasks(ctx context.Context) (tasks []*task.Task, err error) {
	defer Return(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn := s.db.Txn(false)
	it, err := txn.Get(tableTasks, "id")
	Ck(err)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		tasks = append(tasks, obj.(*task.Task))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// AllTasksPerTimeSegment partitions every stored task across every stored segment, keyed by the
// task's TimeSegmentID. A task whose TimeSegmentID names no existing segment is dropped from the
// result, since the core only ever dispatches across segments that exist in the store.
func (s *Store) AllTasksPerTimeSegment(ctx context.Context) (groups []store.TasksBySegment, err error) {
	defer Return(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn := s.db.Txn(false)

	segIt, err := txn.Get(tableSegments, "id")
	Ck(err)
	bySegment := make(map[uint32]*store.TasksBySegment)
	var order []uint32
	for obj := segIt.Next(); obj != nil; obj = segIt.Next() {
		named := obj.(*segment.Named)
		bySegment[named.ID] = &store.TasksBySegment{Segment: *named}
		order = append(order, named.ID)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	taskIt, err := txn.Get(tableTasks, "id")
	Ck(err)
	for obj := taskIt.Next(); obj != nil; obj = taskIt.Next() {
		t := obj.(*task.Task)
		if g, ok := bySegment[t.TimeSegmentID]; ok {
			g.Tasks = append(g.Tasks, t)
		}
	}

	groups = make([]store.TasksBySegment, 0, len(order))
	for _, id := range order {
		groups = append(groups, *bySegment[id])
	}
	return groups, nil
}

func (s *Store) AddTimeSegment(ctx context.Context, n segment.NewNamed) (named *segment.Named, err error) {
	defer Return(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := s.db.Txn(true)
	defer txn.Abort()

	named = &segment.Named{ID: s.nextS, Segment: n.Segment, Name: n.Name, Hue: n.Hue}
	Ck(txn.Insert(tableSegments, named))
	txn.Commit()
	s.nextS++
	return named, nil
}

// DeleteTimeSegment removes a time segment. Deleting the last remaining segment is rejected: the
// core always needs at least one segment to partition tasks into.
func (s *Store) DeleteTimeSegment(ctx context.Context, id uint32) (err error) {
	defer Return(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := s.db.Txn(true)
	defer txn.Abort()

	obj, err := txn.First(tableSegments, "id", id)
	Ck(err)
	Assert(obj != nil, "time segment %d does not exist", id)

	count, err := txn.Get(tableSegments, "id")
	Ck(err)
	n := 0
	for o := count.Next(); o != nil; o = count.Next() {
		n++
	}
	Assert(n > 1, "cannot delete the last remaining time segment")

	Ck(txn.Delete(tableSegments, obj))
	txn.Commit()
	return nil
}

func (s *Store) UpdateTimeSegment(ctx context.Context, seg *segment.Named) (err error) {
	defer Return(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := s.db.Txn(true)
	defer txn.Abort()
	obj, err := txn.First(tableSegments, "id", seg.ID)
	Ck(err)
	Assert(obj != nil, "time segment %d does not exist", seg.ID)
	Ck(txn.Insert(tableSegments, seg))
	txn.Commit()
	return nil
}

func (s *Store) AllTimeSegments(ctx context.Context) (segs []*segment.Named, err error) {
	defer Return(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn := s.db.Txn(false)
	it, err := txn.Get(tableSegments, "id")
	Ck(err)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		segs = append(segs, obj.(*segment.Named))
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].ID < segs[j].ID })
	return segs, nil
}
