package cmd

import (
	"context"
	"errors"
	"io"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/xyfuture/nandmachine/internal/cli"
	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/inspect"
	"github.com/xyfuture/nandmachine/internal/log"
	"github.com/xyfuture/nandmachine/internal/runtime"
)

// Inspect opens a read-only terminal REPL over a freshly initialized
// runtime manager, letting a human dump its tables interactively.
func Inspect() cli.Command {
	return &inspectCmd{}
}

type inspectCmd struct {
	channels int
	planes   int
	blocks   int
	pages    int
	dram     int
	sram     int
}

func (c *inspectCmd) Register(app *kingpin.Application) *kingpin.CmdClause {
	clause := app.Command("inspect", "Open a read-only terminal REPL over an empty runtime manager's tables.")

	clause.Flag("nand-channels", "NAND channel count").Default("2").IntVar(&c.channels)
	clause.Flag("nand-planes", "NAND planes per channel").Default("2").IntVar(&c.planes)
	clause.Flag("nand-blocks", "NAND blocks per plane").Default("4").IntVar(&c.blocks)
	clause.Flag("nand-pages", "NAND pages per block").Default("64").IntVar(&c.pages)
	clause.Flag("dram-pages", "total DRAM pages").Default("256").IntVar(&c.dram)
	clause.Flag("sram-pages", "total SRAM pages").Default("64").IntVar(&c.sram)

	return clause
}

func (c *inspectCmd) Run(ctx context.Context, out io.Writer, logger *log.Logger) int {
	nandCfg := config.NandConfig{
		NumChannels: c.channels, NumPlanes: c.planes, NumBlocks: c.blocks, NumPages: c.pages,
		TRead: 25_000, TWrite: 200_000, TErase: 1_500_000,
	}
	dramCfg := config.DramConfig{TotalPages: c.dram}
	sramCfg := config.SramConfig{TotalPages: c.sram}

	manager, err := runtime.New(nandCfg, dramCfg, sramCfg, runtime.WithLogger(logger))
	if err != nil {
		logger.Error("create runtime manager", log.Any("error", err))
		return 1
	}

	err = inspect.Serve(ctx, manager)

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	default:
		logger.Error("inspector exited", log.Any("error", err))
		return 1
	}
}
