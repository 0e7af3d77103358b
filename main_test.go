package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/xyfuture/nandmachine/internal/accel"
	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/kernel"
	"github.com/xyfuture/nandmachine/internal/log"
	"github.com/xyfuture/nandmachine/internal/runtime"
	"github.com/xyfuture/nandmachine/internal/simkernel"
)

type testHarness struct {
	*testing.T
}

// timeout is how long to wait for the simulated run to finish. Simulated
// time has no relation to wall-clock time, so this only guards against the
// scheduler looping forever.
var timeout = 1 * time.Second

func (testHarness) Context() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// TestMain runs a two-node compute graph end to end: mapper assignment,
// kernel lowering, accelerator scheduling, and a VClock drain, then checks
// every op finished without error.
func TestMain(tt *testing.T) {
	t := testHarness{tt}
	log.LogLevel.Set(log.Error)

	ctx, cancel := t.Context()
	defer cancel()

	nandCfg := config.NandConfig{
		NumChannels: 2, NumPlanes: 2, NumBlocks: 4, NumPages: 64,
		TRead: 25_000, TWrite: 200_000, TErase: 1_500_000,
	}
	dramCfg := config.DramConfig{TotalPages: 256}
	sramCfg := config.SramConfig{TotalPages: 64}

	manager, err := runtime.New(nandCfg, dramCfg, sramCfg)
	if err != nil {
		t.Fatalf("new manager: %s", err)
	}

	mapper := kernel.NewMapper(manager.Files())
	clock := simkernel.NewVClock()
	acc := accel.New(manager, clock, nandCfg, 32, 64)

	nodes := []kernel.NodeAnnotation{
		{NandStorePages: 4, ModuleType: "linear0", WeightShape: []int{32, 32}},
		{NandStorePages: 4, ModuleType: "linear1", WeightShape: []int{32, 32}},
	}

	for i := range nodes {
		if err := mapper.Assign(&nodes[i]); err != nil {
			t.Fatalf("assign %s: %s", nodes[i].ModuleType, err)
		}

		prologue, commands, err := kernel.Lower(nodes[i], manager.Allocator())
		if err != nil {
			t.Fatalf("lower %s: %s", nodes[i].ModuleType, err)
		}

		acc.LoadCommands(prologue, commands)
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		acc.Run()
		clock.Run()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("simulation did not finish: %s", ctx.Err())
	}

	status := acc.Status()

	if status.Err != nil {
		t.Errorf("accelerator run failed: %s", status.Err)
	}

	if status.Finished != status.Total {
		t.Errorf("finished %d/%d ops", status.Finished, status.Total)
	}
}
