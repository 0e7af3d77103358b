// Package accel implements the accelerator model: it partitions a loaded
// command stream into a prefetch queue and a normal queue, chains every
// op to its single predecessor in issue order, and drives both queues
// against a shared runtime manager through a prefetch engine and a
// compute engine.
package accel

import (
	"errors"
	"fmt"

	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/log"
	"github.com/xyfuture/nandmachine/internal/macroop"
	"github.com/xyfuture/nandmachine/internal/rerr"
	"github.com/xyfuture/nandmachine/internal/runtime"
	"github.com/xyfuture/nandmachine/internal/simkernel"
)

// Accelerator owns the two command queues a loaded program is split into
// and the two engines that drain them, all sharing one runtime.Manager and
// one simkernel.Scheduler.
type Accelerator struct {
	manager   *runtime.Manager
	scheduler simkernel.Scheduler

	prefetch *PrefetchEngine
	compute  *ComputeEngine

	prefetchQueue []*macroop.HwOp
	normalQueue   []*macroop.HwOp
	nextID        uint64

	failed      error
	failedOpID  uint64
	failedChain []uint64
	log         *log.Logger
}

// Option configures an Accelerator at construction time.
type Option func(*Accelerator)

// WithLogger overrides the accelerator's logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Accelerator) { a.log = l }
}

// New creates an Accelerator over manager, driven by scheduler, with a
// roofline compute throughput of flopsPerNs and memory bandwidth of
// bytesPerNs.
func New(manager *runtime.Manager, scheduler simkernel.Scheduler, nandCfg config.NandConfig, flopsPerNs, bytesPerNs float64, opts ...Option) *Accelerator {
	a := &Accelerator{
		manager:   manager,
		scheduler: scheduler,
		prefetch:  NewPrefetchEngine(manager, nandCfg),
		compute:   NewComputeEngine(manager, flopsPerNs, bytesPerNs),
		log:       log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// LoadCommands partitions prologue and commands, in issue order, into the
// prefetch and normal queues: every SramPrefetch goes to the prefetch
// queue, everything else to the normal queue. Every enqueued op takes the
// previous op across both queues, in issue order, as its single input —
// this is what chains a SramPrefetchRelease to the compute op ahead of it
// without either queue needing to know the other exists.
func (a *Accelerator) LoadCommands(prologue, commands []macroop.Op) {
	var prev *macroop.HwOp

	all := make([]macroop.Op, 0, len(prologue)+len(commands))
	all = append(all, prologue...)
	all = append(all, commands...)

	for _, op := range all {
		a.nextID++
		hw := macroop.NewHwOp(a.nextID, op, prev)

		if _, ok := op.(macroop.SramPrefetch); ok {
			a.prefetchQueue = append(a.prefetchQueue, hw)
		} else {
			a.normalQueue = append(a.normalQueue, hw)
		}

		prev = hw
	}
}

// Run registers every loaded op's schedule: each op suspends on its
// dependency via WhenReady, dispatches to its engine once eligible, and
// fires its completion signal once the engine's simulated cost elapses.
// Run only registers the schedule — advancing simulated time is the
// scheduler's job (VClock.Run, for the reference scheduler).
func (a *Accelerator) Run() {
	for _, hw := range a.prefetchQueue {
		hw := hw
		hw.WhenReady(func() { a.runPrefetch(hw) })
	}

	for _, hw := range a.normalQueue {
		hw := hw
		hw.WhenReady(func() { a.runNormal(hw) })
	}
}

func (a *Accelerator) runPrefetch(hw *macroop.HwOp) {
	if a.failed != nil {
		return
	}

	op, ok := hw.MacroOp.(macroop.SramPrefetch)
	if !ok {
		a.fail(hw, fmt.Errorf("accel: prefetch queue: unexpected op %T", hw.MacroOp))
		return
	}

	cost, err := a.prefetch.Dispatch(op)
	if err != nil {
		a.fail(hw, fmt.Errorf("accel: prefetch op %d: %w", hw.ID, err))
		return
	}

	a.scheduler.Notify(cost, hw.Done)
}

func (a *Accelerator) runNormal(hw *macroop.HwOp) {
	if a.failed != nil {
		return
	}

	cost, err := a.compute.Dispatch(hw.MacroOp)
	if err != nil {
		a.fail(hw, fmt.Errorf("accel: normal queue op %d (%s): %w", hw.ID, hw.MacroOp.Kind(), err))
		return
	}

	a.scheduler.Notify(cost, hw.Done)
}

// fail records a run's first failure along with the chain of predecessor
// op IDs leading up to it, so Status can report not just that something
// went wrong but which op and what fed into it.
func (a *Accelerator) fail(hw *macroop.HwOp, err error) {
	if a.failed != nil {
		return
	}

	a.failed = err
	a.failedOpID = hw.ID
	a.failedChain = predecessorChain(hw)

	a.log.Error("accel run failed", log.Any("error", err), log.Any("op_id", hw.ID))
}

// predecessorChain walks hw's single-input dependency edge back to the
// start of the combined queue, returning the op IDs in predecessor-first
// order. The walk is unbounded only in principle: LoadCommands builds a
// strictly increasing ID chain, so it always terminates at the op with no
// input.
func predecessorChain(hw *macroop.HwOp) []uint64 {
	var chain []uint64

	for _, in := range hw.InputOps {
		chain = append(chain, predecessorChain(in)...)
		chain = append(chain, in.ID)
	}

	return chain
}

// Status reports how much of a loaded program has finished, and, if an op
// failed, which one, its error kind, and the chain of ops that ran before
// it.
type Status struct {
	Finished      int
	Total         int
	Err           error
	FailedOpID    uint64
	FailedOpKind  rerr.Kind
	FailedOpChain []uint64
}

// Status summarizes the accelerator's run so far.
func (a *Accelerator) Status() Status {
	finished := 0
	total := len(a.prefetchQueue) + len(a.normalQueue)

	for _, hw := range a.prefetchQueue {
		if hw.Finished {
			finished++
		}
	}

	for _, hw := range a.normalQueue {
		if hw.Finished {
			finished++
		}
	}

	s := Status{
		Finished:      finished,
		Total:         total,
		Err:           a.failed,
		FailedOpID:    a.failedOpID,
		FailedOpChain: a.failedChain,
	}

	var re *rerr.Error
	if errors.As(a.failed, &re) {
		s.FailedOpKind = re.Kind
	}

	return s
}
