// Package sched runs deferred actions against the simulation clock.
//
// Every action is keyed by a Handle and an owner string. Handles cancel a
// single action; owners cancel everything an entity scheduled (an enemy's
// stun recovery, a weapon's reload) when that entity dies or is reset.
// Actions only fire from Advance, so callbacks always run on the tick
// goroutine.
package sched

import (
	"github.com/emirpasic/gods/trees/binaryheap"
)

// Handle identifies one scheduled action. The zero Handle is never issued.
type Handle uint64

// Func is a deferred action. now is the clock value passed to Advance.
type Func func(now int64)

type entry struct {
	id    Handle
	due   int64
	seq   uint64
	owner string
	fn    Func
}

// compactAfter is the number of cancelled entries tolerated in the heap
// before it is rebuilt.
const compactAfter = 64

// Scheduler is a min-heap of actions ordered by (due, insertion order).
// Cancellation is lazy: cancelled entries stay in the heap and are skipped.
// Not safe for concurrent use.
type Scheduler struct {
	heap   *binaryheap.Heap
	live   map[Handle]*entry
	owners map[string]map[Handle]struct{}
	nextID Handle
	seq    uint64
	now    int64
	stale  int
}

// New creates an empty scheduler with its clock at zero.
func New() *Scheduler {
	return &Scheduler{
		heap:   binaryheap.NewWith(byDueThenSeq),
		live:   make(map[Handle]*entry),
		owners: make(map[string]map[Handle]struct{}),
	}
}

func byDueThenSeq(a, b interface{}) int {
	ea := a.(*entry)
	eb := b.(*entry)
	switch {
	case ea.due < eb.due:
		return -1
	case ea.due > eb.due:
		return 1
	case ea.seq < eb.seq:
		return -1
	case ea.seq > eb.seq:
		return 1
	default:
		return 0
	}
}

// Now returns the clock value of the last Advance.
func (s *Scheduler) Now() int64 {
	return s.now
}

// ScheduleAt queues fn to run at the absolute time due.
// A due time at or before the current clock runs on the next Advance.
func (s *Scheduler) ScheduleAt(due int64, owner string, fn Func) Handle {
	s.nextID++
	s.seq++
	e := &entry{id: s.nextID, due: due, seq: s.seq, owner: owner, fn: fn}
	s.heap.Push(e)
	s.live[e.id] = e

	set, ok := s.owners[owner]
	if !ok {
		set = make(map[Handle]struct{})
		s.owners[owner] = set
	}
	set[e.id] = struct{}{}
	return e.id
}

// Schedule queues fn to run delay milliseconds after the current clock.
func (s *Scheduler) Schedule(delay int64, owner string, fn Func) Handle {
	return s.ScheduleAt(s.now+delay, owner, fn)
}

// Cancel drops a pending action. It returns false when the handle already
// ran, was cancelled, or was never issued.
func (s *Scheduler) Cancel(h Handle) bool {
	e, ok := s.live[h]
	if !ok {
		return false
	}
	s.forget(e)
	s.stale++
	s.maybeCompact()
	return true
}

// CancelOwner drops every pending action registered under owner and returns
// how many were dropped.
func (s *Scheduler) CancelOwner(owner string) int {
	set, ok := s.owners[owner]
	if !ok {
		return 0
	}
	n := 0
	for h := range set {
		if e, live := s.live[h]; live {
			delete(s.live, e.id)
			n++
		}
	}
	delete(s.owners, owner)
	s.stale += n
	s.maybeCompact()
	return n
}

// Pending reports whether h is still waiting to run.
func (s *Scheduler) Pending(h Handle) bool {
	_, ok := s.live[h]
	return ok
}

// DueAt returns the due time of a pending action.
func (s *Scheduler) DueAt(h Handle) (int64, bool) {
	e, ok := s.live[h]
	if !ok {
		return 0, false
	}
	return e.due, true
}

// Len returns the number of pending actions.
func (s *Scheduler) Len() int {
	return len(s.live)
}

// Advance moves the clock to now and runs every action due at or before it,
// in (due, insertion) order. Actions scheduled by callbacks that are already
// due run in the same call. Returns the number of actions run.
func (s *Scheduler) Advance(now int64) int {
	if now > s.now {
		s.now = now
	}
	ran := 0
	for {
		top, ok := s.heap.Peek()
		if !ok {
			break
		}
		e := top.(*entry)
		if e.due > s.now {
			break
		}
		s.heap.Pop()
		if _, live := s.live[e.id]; !live {
			s.stale--
			continue
		}
		s.forget(e)
		e.fn(s.now)
		ran++
	}
	return ran
}

// Reset drops every pending action and rewinds the clock to zero.
func (s *Scheduler) Reset() {
	s.heap.Clear()
	s.live = make(map[Handle]*entry)
	s.owners = make(map[string]map[Handle]struct{})
	s.now = 0
	s.stale = 0
}

func (s *Scheduler) forget(e *entry) {
	delete(s.live, e.id)
	if set, ok := s.owners[e.owner]; ok {
		delete(set, e.id)
		if len(set) == 0 {
			delete(s.owners, e.owner)
		}
	}
}

func (s *Scheduler) maybeCompact() {
	if s.stale < compactAfter || s.stale < len(s.live) {
		return
	}
	s.heap.Clear()
	for _, e := range s.live {
		s.heap.Push(e)
	}
	s.stale = 0
}
