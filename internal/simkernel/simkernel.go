// Package simkernel supplies the minimal wait/notify primitive a
// discrete-event simulator kernel delivers externally. internal/accel
// depends only on the Scheduler interface here, never on the concrete
// VClock below, so a real simulation-for-computer-architecture scheduler
// could stand in for it without internal/accel changing.
package simkernel

import "container/heap"

// Callback runs when a scheduled notification fires.
type Callback func()

// Scheduler is the minimal wait/notify primitive: schedule a callback to
// run after some amount of simulated time, and report the current
// simulated time.
type Scheduler interface {
	Now() float64
	Notify(delay float64, cb Callback)
}

type timer struct {
	at  float64
	seq uint64
	cb  Callback
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}

	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)        { *h = append(*h, x.(*timer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]

	return x
}

// VClock is the reference Scheduler: a single-threaded, cooperative
// priority queue of callbacks. Simulated time advances only when Run pops
// the next scheduled callback — never on a wall-clock tick, and never
// while a callback is running, so callbacks never race each other.
type VClock struct {
	now    float64
	seq    uint64
	timers timerHeap
}

// NewVClock creates a VClock whose simulated clock starts at zero.
func NewVClock() *VClock {
	return &VClock{}
}

// Now returns the current simulated time.
func (s *VClock) Now() float64 { return s.now }

// Notify schedules cb to run once delay units of simulated time have
// elapsed from now. Notify may itself be called from within a running
// callback; the new timer is simply added to the same queue Run is
// draining.
func (s *VClock) Notify(delay float64, cb Callback) {
	s.seq++
	heap.Push(&s.timers, &timer{at: s.now + delay, seq: s.seq, cb: cb})
}

// Run drains every scheduled callback in time order, advancing the
// simulated clock to each one's scheduled time before invoking it, until
// none remain.
func (s *VClock) Run() {
	for s.timers.Len() > 0 {
		t := heap.Pop(&s.timers).(*timer)
		s.now = t.at
		t.cb()
	}
}

// Event is a one-shot completion signal. The original this replaces gave
// every HwOp a reference to one shared Event instance, so two in-flight
// ops could observe each other's completion; here an Event is created
// fresh per use and fires exactly once.
type Event struct {
	fired   bool
	waiters []Callback
}

// NewEvent creates an unfired Event.
func NewEvent() *Event { return &Event{} }

// Wait registers cb to run once e fires. If e has already fired, cb runs
// immediately.
func (e *Event) Wait(cb Callback) {
	if e.fired {
		cb()
		return
	}

	e.waiters = append(e.waiters, cb)
}

// Fire marks e fired and runs every registered waiter in registration
// order. Firing an already-fired event panics: a one-shot signal fires
// exactly once.
func (e *Event) Fire() {
	if e.fired {
		panic("simkernel: event fired twice")
	}

	e.fired = true
	waiters := e.waiters
	e.waiters = nil

	for _, w := range waiters {
		w()
	}
}
