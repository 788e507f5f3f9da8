package sim

import (
	"container/heap"
	"fmt"
)

// EventKind is the transition an event applies to its target component.
// The numeric value doubles as the same-timestamp priority: lower runs first,
// so repairs finishing at an instant are applied before failures at that instant.
type EventKind int

const (
	// RepairComplete ends a repair issued by a shared-resource dispatcher (naive, smart, batch).
	RepairComplete EventKind = iota
	// BecomesUp ends an unconstrained repair (immediate dispatcher).
	BecomesUp
	// BecomesDown is a component failure.
	BecomesDown
)

func (k EventKind) String() string {
	switch k {
	case RepairComplete:
		return "RepairComplete"
	case BecomesUp:
		return "BecomesUp"
	case BecomesDown:
		return "BecomesDown"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a pending transition of one component.
type Event struct {
	Time   float64   // absolute simulation time
	Kind   EventKind // transition to apply
	Target int       // row-major component index
	seq    uint64    // insertion order, assigned by EventQueue.Schedule
}

// EventBefore is the scheduler's ordering.
// Order by: time → kind priority → target index → insertion order.
func EventBefore(a, b Event) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Target != b.Target {
		return a.Target < b.Target
	}
	return a.seq < b.seq
}

// EventQueue is a min-priority queue of events ordered by EventBefore.
// It implements heap.Interface; use Schedule and PopMin rather than Push/Pop.
type EventQueue struct {
	events  []Event
	nextSeq uint64
}

// NewEventQueue creates an empty queue with room for capacity events.
func NewEventQueue(capacity int) *EventQueue {
	q := &EventQueue{events: make([]Event, 0, capacity)}
	heap.Init(q)
	return q
}

// Len implements heap.Interface
func (q *EventQueue) Len() int { return len(q.events) }

// Less implements heap.Interface
func (q *EventQueue) Less(i, j int) bool { return EventBefore(q.events[i], q.events[j]) }

// Swap implements heap.Interface
func (q *EventQueue) Swap(i, j int) { q.events[i], q.events[j] = q.events[j], q.events[i] }

// Push implements heap.Interface
func (q *EventQueue) Push(x any) {
	q.events = append(q.events, x.(Event))
}

// Pop implements heap.Interface
func (q *EventQueue) Pop() any {
	old := q.events
	n := len(old)
	item := old[n-1]
	q.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the queue.
func (q *EventQueue) Schedule(e Event) {
	e.seq = q.nextSeq
	q.nextSeq++
	heap.Push(q, e)
}

// PopMin removes and returns the earliest event.
// An empty queue means some component lost its follow-up event, which the
// engine never allows; PopMin panics rather than returning a zero event.
func (q *EventQueue) PopMin() Event {
	if q.Len() == 0 {
		panic("EventQueue.PopMin: queue is empty (a component has no scheduled follow-up event)")
	}
	return heap.Pop(q).(Event)
}

// Peek returns the earliest event without removing it; ok is false when empty.
func (q *EventQueue) Peek() (Event, bool) {
	if q.Len() == 0 {
		return Event{}, false
	}
	return q.events[0], true
}

// IsEmpty reports whether no events are pending.
func (q *EventQueue) IsEmpty() bool {
	return q.Len() == 0
}
