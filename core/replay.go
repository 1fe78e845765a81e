package core

import (
	"container/heap"
	"time"

	"github.com/trackline/trackline/schema"
)

// event is one pending status application in the replay queue.
type event struct {
	when       time.Time
	key        string
	seq        int
	status     string
	project    string
	priority   string
	components []string
	links      []string
	pack       string
}

// eventQueue is a min-heap of events ordered by time, then issue key,
// then per-issue sequence, so replays are deterministic even when many
// transitions share a timestamp.
type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if !q[i].when.Equal(q[j].when) {
		return q[i].when.Before(q[j].when)
	}
	if q[i].key != q[j].key {
		return q[i].key < q[j].key
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Engine replays sparse status histories in time order and materializes
// the state of every issue at requested checkpoints. Checkpoints must be
// requested in ascending order; events consumed by one advance are gone.
type Engine struct {
	queue    eventQueue
	snapshot schema.Snapshot
	earliest time.Time
	seeded   bool
}

// NewEngine seeds a replay engine from a fetched population.
//
// An issue with no recorded history contributes a single synthetic event
// carrying its current status at creation time, so it still shows up in
// every snapshot after it was born. When the profile declares an initial
// status, issues with history additionally start there at creation,
// attributing the span before the first recorded transition. Sources
// whose histories already include the birth transition leave the initial
// status empty.
func NewEngine(issues []schema.Issue, initialStatus string) *Engine {
	e := &Engine{snapshot: make(schema.Snapshot, len(issues))}
	for i := range issues {
		iss := &issues[i]
		seq := 0
		push := func(when time.Time, status string) {
			e.queue = append(e.queue, &event{
				when:       when,
				key:        iss.Key,
				seq:        seq,
				status:     status,
				project:    iss.Project,
				priority:   iss.Priority,
				components: iss.Components,
				links:      iss.Links,
				pack:       iss.Pack,
			})
			seq++
		}

		if iss.History.Len() == 0 {
			push(iss.Created, iss.Status)
			continue
		}
		if initialStatus != "" {
			push(iss.Created, initialStatus)
		}
		for j := range iss.History.Len() {
			push(iss.History.When[j], iss.History.New[j])
		}
	}
	heap.Init(&e.queue)
	if len(e.queue) > 0 {
		e.earliest = e.queue[0].when
		e.seeded = true
	}
	return e
}

// Earliest returns the time of the first event across the population.
// The boolean is false when the population contributed no events at all.
func (e *Engine) Earliest() (time.Time, bool) {
	return e.earliest, e.seeded
}

// Pending returns how many events remain to be replayed.
func (e *Engine) Pending() int {
	return len(e.queue)
}

// AdvanceTo applies every event whose day falls on or before the
// checkpoint and returns the resulting snapshot. Comparison is by UTC
// day, so a transition at any hour of the checkpoint day is included.
// The returned snapshot is the engine's live view; callers must finish
// reading it before the next advance.
func (e *Engine) AdvanceTo(checkpoint time.Time) schema.Snapshot {
	for len(e.queue) > 0 && !DayFloor(e.queue[0].when).After(checkpoint) {
		ev := heap.Pop(&e.queue).(*event)
		e.snapshot[ev.key] = schema.IssueState{
			Project:    ev.project,
			Status:     ev.status,
			Priority:   ev.priority,
			Components: ev.components,
			Links:      ev.links,
			Pack:       ev.pack,
		}
	}
	return e.snapshot
}
