// Package cmd holds cmd/nandsim's subcommands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/xyfuture/nandmachine/internal/accel"
	"github.com/xyfuture/nandmachine/internal/cli"
	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/kernel"
	"github.com/xyfuture/nandmachine/internal/log"
	"github.com/xyfuture/nandmachine/internal/runtime"
	"github.com/xyfuture/nandmachine/internal/simkernel"
)

// Run loads a small demonstration compute graph (two matmul nodes sharing
// one runtime manager) and drives it to completion on a VClock, printing
// the accelerator's final status.
func Run() cli.Command {
	return &run{}
}

type run struct {
	channels int
	planes   int
	blocks   int
	pages    int
	dram     int
	sram     int
	flops    float64
	bw       float64
}

func (r *run) Register(app *kingpin.Application) *kingpin.CmdClause {
	clause := app.Command("run", "Run a demonstration compute graph against a simulated accelerator.")

	clause.Flag("nand-channels", "NAND channel count").Default("2").IntVar(&r.channels)
	clause.Flag("nand-planes", "NAND planes per channel").Default("2").IntVar(&r.planes)
	clause.Flag("nand-blocks", "NAND blocks per plane").Default("4").IntVar(&r.blocks)
	clause.Flag("nand-pages", "NAND pages per block").Default("64").IntVar(&r.pages)
	clause.Flag("dram-pages", "total DRAM pages").Default("256").IntVar(&r.dram)
	clause.Flag("sram-pages", "total SRAM pages").Default("64").IntVar(&r.sram)
	clause.Flag("flops-per-ns", "roofline compute throughput").Default("32").Float64Var(&r.flops)
	clause.Flag("bytes-per-ns", "roofline memory bandwidth").Default("64").Float64Var(&r.bw)

	return clause
}

func (r *run) Run(ctx context.Context, out io.Writer, logger *log.Logger) int {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	nandCfg := config.NandConfig{
		NumChannels: r.channels, NumPlanes: r.planes, NumBlocks: r.blocks, NumPages: r.pages,
		TRead: 25_000, TWrite: 200_000, TErase: 1_500_000,
	}
	dramCfg := config.DramConfig{TotalPages: r.dram}
	sramCfg := config.SramConfig{TotalPages: r.sram}

	manager, err := runtime.New(nandCfg, dramCfg, sramCfg, runtime.WithLogger(logger))
	if err != nil {
		logger.Error("create runtime manager", log.Any("error", err))
		return 1
	}

	mapper := kernel.NewMapper(manager.Files())

	nodes := []kernel.NodeAnnotation{
		{NandStorePages: 4, ModuleType: "linear0", WeightShape: []int{64, 64}},
		{NandStorePages: 4, ModuleType: "linear1", WeightShape: []int{64, 64}},
	}

	clock := simkernel.NewVClock()
	acc := accel.New(manager, clock, nandCfg, r.flops, r.bw, accel.WithLogger(logger))

	for i := range nodes {
		if err := mapper.Assign(&nodes[i]); err != nil {
			logger.Error("assign backing file", log.Any("error", err), log.Any("node", nodes[i].ModuleType))
			return 1
		}

		prologue, commands, err := kernel.Lower(nodes[i], manager.Allocator())
		if err != nil {
			logger.Error("lower node", log.Any("error", err), log.Any("node", nodes[i].ModuleType))
			return 1
		}

		acc.LoadCommands(prologue, commands)
	}

	acc.Run()
	clock.Run()

	status := acc.Status()
	fmt.Fprintf(out, "finished %d/%d ops at t=%.0fns\n", status.Finished, status.Total, clock.Now())

	if status.Err != nil {
		fmt.Fprintf(out, "error: op %d (%s): %s\n", status.FailedOpID, status.FailedOpKind, status.Err)

		if len(status.FailedOpChain) > 0 {
			fmt.Fprintf(out, "preceded by ops: %v\n", status.FailedOpChain)
		}

		return 1
	}

	return 0
}
