// nandsim is the command-line interface to the accelerator runtime
// simulator: it loads a compute graph, runs it against a simulated NAND/
// DRAM/SRAM accelerator, and can open a read-only terminal inspector over
// the runtime manager's tables.
package main

import (
	"context"
	"os"

	"github.com/xyfuture/nandmachine/cmd/nandsim/cmd"
	"github.com/xyfuture/nandmachine/internal/cli"
)

var commands = []cli.Command{
	cmd.Run(),
	cmd.Inspect(),
}

func main() {
	result :=
		cli.New(context.Background(), "nandsim", "Simulated NAND accelerator runtime.").
			WithLogger(os.Stderr).
			WithCommands(commands).
			Execute(os.Args[1:])

	os.Exit(result)
}
