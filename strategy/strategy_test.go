package strategy

import (
	"testing"
	"time"

	"github.com/stijnseghers/eva/schederr"
	"github.com/stijnseghers/eva/scheduletree"
	"github.com/stijnseghers/eva/task"
)

var t0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n float64) time.Duration  { return time.Duration(n * float64(24*time.Hour)) }
func hour(n float64) time.Duration { return time.Duration(n * float64(time.Hour)) }

func myrjamTasks() []*task.Task {
	return []*task.Task{
		{ID: 1, Content: "take over the world", Deadline: t0.Add(day(6 * 365)), Duration: hour(1000), Importance: 10},
		{ID: 2, Content: "make onion soup", Deadline: t0.Add(hour(2)), Duration: hour(1), Importance: 3},
		{ID: 3, Content: "publish Commander Mango 3", Deadline: t0.Add(day(182)), Duration: hour(50), Importance: 6},
		{ID: 4, Content: "sculpt", Deadline: t0.Add(day(30)), Duration: hour(10), Importance: 4},
		{ID: 5, Content: "organise birthday present", Deadline: t0.Add(day(30)), Duration: hour(5), Importance: 10},
		{ID: 6, Content: "make dentist appointment", Deadline: t0.Add(day(7)), Duration: 10 * time.Minute, Importance: 5},
	}
}

func schedule(t *testing.T, s Strategy, tasks []*task.Task, now time.Time) map[uint64]time.Time {
	t.Helper()
	tree := scheduletree.New[*Payload]()
	if err := s.Schedule(tree, tasks, now); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	when := make(map[uint64]time.Time)
	for _, e := range tree.Entries() {
		when[e.Data.Task.ID] = e.Start
	}
	return when
}

func assertAt(t *testing.T, when map[uint64]time.Time, id uint64, expected time.Time) {
	t.Helper()
	got, ok := when[id]
	if !ok {
		t.Fatalf("task %d was not scheduled", id)
	}
	if !got.Equal(expected) {
		t.Fatalf("task %d: expected %v, got %v (%v off)", id, expected, got, got.Sub(expected))
	}
}

func TestUrgencyMyrjamTaskSet(t *testing.T) {
	when := schedule(t, Urgency{}, myrjamTasks(), t0)
	assertAt(t, when, 2, t0)                       // onion_soup
	assertAt(t, when, 6, t0.Add(hour(1)))           // dentist
	assertAt(t, when, 5, t0.Add(hour(1)+10*time.Minute)) // organise_birthday
	assertAt(t, when, 4, t0.Add(hour(6)+10*time.Minute)) // sculpt
	assertAt(t, when, 3, t0.Add(hour(16)+10*time.Minute)) // publish_CM3
	assertAt(t, when, 1, t0.Add(hour(66)+10*time.Minute)) // take_over_world
}

func TestImportanceMyrjamTaskSet(t *testing.T) {
	when := schedule(t, Importance{}, myrjamTasks(), t0)
	assertAt(t, when, 6, t0)                               // dentist
	assertAt(t, when, 2, t0.Add(10*time.Minute))            // onion_soup
	assertAt(t, when, 5, t0.Add(hour(1)+10*time.Minute))    // organise_birthday
	assertAt(t, when, 3, t0.Add(hour(6)+10*time.Minute))    // publish_CM3
	assertAt(t, when, 4, t0.Add(hour(56)+10*time.Minute))   // sculpt
	assertAt(t, when, 1, t0.Add(hour(66)+10*time.Minute))   // take_over_world
}

func gandalfTasks() []*task.Task {
	return []*task.Task{
		{ID: 0, Content: "Think of plan to get rid of The Ring", Deadline: t0.Add(day(12) + hour(15)), Duration: day(2), Importance: 9},
		{ID: 1, Content: "Ask advice from Saruman", Deadline: t0.Add(day(8) + hour(15)), Duration: day(3), Importance: 4},
		{ID: 2, Content: "Visit Bilbo in Rivendel", Deadline: t0.Add(day(13) + hour(15)), Duration: day(2), Importance: 2},
		{ID: 3, Content: "Make some firework for the hobbits", Deadline: t0.Add(hour(33)), Duration: hour(3), Importance: 3},
		{ID: 4, Content: "Get riders of Rohan to help Gondor", Deadline: t0.Add(day(21) + hour(15)), Duration: day(7), Importance: 7},
		{ID: 5, Content: "Find some good pipe-weed", Deadline: t0.Add(day(2) + hour(15)), Duration: hour(1), Importance: 8},
		{ID: 6, Content: "Go shop for white clothing", Deadline: t0.Add(day(33) + hour(15)), Duration: hour(2), Importance: 3},
		{ID: 7, Content: "Prepare epic-sounding one-liners", Deadline: t0.Add(hour(34)), Duration: hour(2), Importance: 10},
		{ID: 8, Content: "Recharge staff batteries", Deadline: t0.Add(day(1) + hour(15)), Duration: 30 * time.Minute, Importance: 5},
	}
}

func TestImportanceGandalfTaskSet(t *testing.T) {
	when := schedule(t, Importance{}, gandalfTasks(), t0)

	expected := t0
	assertAt(t, when, 7, expected) // Prepare epic-sounding one-liners
	expected = expected.Add(hour(2))
	assertAt(t, when, 5, expected) // Find some good pipe-weed
	expected = expected.Add(hour(1))
	assertAt(t, when, 8, expected) // Recharge staff batteries
	expected = expected.Add(30 * time.Minute)
	assertAt(t, when, 3, expected) // Make some firework for the hobbits
	expected = expected.Add(hour(3))
	assertAt(t, when, 0, expected) // Think of plan to get rid of The Ring
	expected = expected.Add(day(2))
	assertAt(t, when, 1, expected) // Ask advice from Saruman
	expected = expected.Add(day(3))
	assertAt(t, when, 6, expected) // Go shop for white clothing
	expected = expected.Add(hour(2))
	assertAt(t, when, 2, expected) // Visit Bilbo in Rivendel
	expected = expected.Add(day(2))
	assertAt(t, when, 4, expected) // Get riders of Rohan to help Gondor
}

func TestDeadlineMissedTense(t *testing.T) {
	past := []*task.Task{{ID: 1, Content: "save the world", Deadline: t0.Add(-day(1)), Duration: 5 * time.Minute, Importance: 5}}
	_, err := runSchedule(Importance{}, past, t0)
	var dm schederr.DeadlineMissed
	if !asDeadlineMissed(err, &dm) || dm.Tense != "missed" {
		t.Fatalf("expected DeadlineMissed with tense 'missed', got %v", err)
	}

	tooSoon := []*task.Task{{ID: 1, Content: "save the world", Deadline: t0.Add(hour(23)), Duration: day(1), Importance: 5}}
	_, err = runSchedule(Importance{}, tooSoon, t0)
	if !asDeadlineMissed(err, &dm) || dm.Tense != "will miss" {
		t.Fatalf("expected DeadlineMissed with tense 'will miss', got %v", err)
	}
}

func TestDeadlineExactlyAtDurationIsAccepted(t *testing.T) {
	exact := []*task.Task{{ID: 1, Content: "just in time", Deadline: t0.Add(day(1)), Duration: day(1), Importance: 5}}
	when := schedule(t, Importance{}, exact, t0)
	assertAt(t, when, 1, t0)
}

func TestNotEnoughTime(t *testing.T) {
	tasks := []*task.Task{
		{ID: 1, Content: "Learn Rust", Deadline: t0.Add(day(1)), Duration: day(1), Importance: 5},
		{ID: 2, Content: "Program Eva", Deadline: t0.Add(day(2)), Duration: day(1) + time.Minute, Importance: 5},
	}
	for _, s := range []Strategy{Importance{}, Urgency{}} {
		_, err := runSchedule(s, tasks, t0)
		if _, ok := err.(schederr.NotEnoughTime); !ok {
			t.Fatalf("expected NotEnoughTime, got %v", err)
		}
	}
}

func TestEmptyTaskList(t *testing.T) {
	for _, s := range []Strategy{Importance{}, Urgency{}} {
		when := schedule(t, s, nil, t0)
		if len(when) != 0 {
			t.Fatalf("expected empty schedule, got %v", when)
		}
	}
}

func TestSentinelsAreNeverMoved(t *testing.T) {
	tree := scheduletree.New[*Payload]()
	sentinelEnd := t0.Add(hour(5))
	if !tree.ScheduleExact(t0.Add(hour(3)), hour(2), NewSentinel()) {
		t.Fatal("expected sentinel to be placed")
	}

	tasks := []*task.Task{{ID: 1, Content: "short task", Deadline: t0.Add(hour(10)), Duration: hour(1), Importance: 1}}
	if err := (Urgency{}).Schedule(tree, tasks, t0); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	found := false
	for _, e := range tree.Entries() {
		if e.Data.IsSentinel() {
			found = true
			if !e.Start.Equal(t0.Add(hour(3))) || !e.End.Equal(sentinelEnd) {
				t.Fatalf("sentinel moved: %v..%v", e.Start, e.End)
			}
		}
	}
	if !found {
		t.Fatal("sentinel disappeared from the tree")
	}
}

func runSchedule(s Strategy, tasks []*task.Task, now time.Time) (*scheduletree.Tree[*Payload], error) {
	tree := scheduletree.New[*Payload]()
	err := s.Schedule(tree, tasks, now)
	return tree, err
}

func asDeadlineMissed(err error, out *schederr.DeadlineMissed) bool {
	dm, ok := err.(schederr.DeadlineMissed)
	if ok {
		*out = dm
	}
	return ok
}
