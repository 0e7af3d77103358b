package accel

import (
	"math"

	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/macroop"
	"github.com/xyfuture/nandmachine/internal/runtime"
)

// NandController times the NAND page reads the prefetch engine issues
// underneath a SramPrefetch macro-op; it has no cost for page writes.
// It holds no state of its own — the runtime manager is the only thing
// that mutates tables — it only knows how long those micro-ops take.
type NandController struct {
	cfg config.NandConfig
}

// NewNandController creates a NandController timed by cfg.
func NewNandController(cfg config.NandConfig) NandController {
	return NandController{cfg: cfg}
}

// ReadCost returns the simulated time to read numPages NAND pages.
func (c NandController) ReadCost(numPages int) float64 {
	return float64(numPages) * c.cfg.TRead
}

// PrefetchEngine runs SramPrefetch ops: it reads the source pages off NAND
// through the NandController and drives the actual table mutation through
// the shared runtime manager, not just timing the operation.
type PrefetchEngine struct {
	manager    *runtime.Manager
	controller NandController
}

// NewPrefetchEngine creates a PrefetchEngine over manager, timed by cfg.
func NewPrefetchEngine(manager *runtime.Manager, cfg config.NandConfig) *PrefetchEngine {
	return &PrefetchEngine{manager: manager, controller: NewNandController(cfg)}
}

// Dispatch runs op's table mutation and returns the simulated cost of the
// underlying NAND reads.
func (e *PrefetchEngine) Dispatch(op macroop.SramPrefetch) (float64, error) {
	if err := e.manager.Dispatch(op); err != nil {
		return 0, err
	}

	return e.controller.ReadCost(op.NumPages), nil
}

// ComputeEngine runs every op that isn't a SramPrefetch: compute ops are
// costed with a roofline model, every other op (mmap/munmap/malloc/free/
// prefetch-release) is an administrative table mutation the engine treats
// as free. It drives table mutation through the shared runtime manager,
// the same as PrefetchEngine.
type ComputeEngine struct {
	manager    *runtime.Manager
	flopsPerNs float64
	bytesPerNs float64
}

// NewComputeEngine creates a ComputeEngine over manager with the given
// roofline throughput figures (flops/ns compute, bytes/ns memory
// bandwidth).
func NewComputeEngine(manager *runtime.Manager, flopsPerNs, bytesPerNs float64) *ComputeEngine {
	return &ComputeEngine{manager: manager, flopsPerNs: flopsPerNs, bytesPerNs: bytesPerNs}
}

// Dispatch runs op's table mutation (if any) and returns op's simulated
// cost: zero for every administrative op, roofline-bound for MatMul.
func (e *ComputeEngine) Dispatch(op macroop.Op) (float64, error) {
	if err := e.manager.Dispatch(op); err != nil {
		return 0, err
	}

	mm, ok := op.(macroop.MatMul)
	if !ok {
		return 0, nil
	}

	return e.matMulCost(mm), nil
}

// matMulCost applies a roofline model: time is bound by whichever of
// compute throughput or memory bandwidth is the bottleneck for this
// matmul's shape.
func (e *ComputeEngine) matMulCost(mm macroop.MatMul) float64 {
	flops := float64(2 * mm.Rows * mm.Cols * mm.Inner)
	bytes := float64((mm.Rows*mm.Inner + mm.Inner*mm.Cols + mm.Rows*mm.Cols) * config.BytesPerElement)

	computeTime := flops / e.flopsPerNs
	memoryTime := bytes / e.bytesPerNs

	return math.Max(computeTime, memoryTime)
}
