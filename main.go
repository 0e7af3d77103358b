// nandmachine is a simulator for an accelerator's runtime memory
// subsystem: NAND/DRAM/SRAM allocation, a page table, and a cooperative
// discrete-event accelerator model, driven through a command-line
// interface.
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

// Entry point.
func main() {
	result :=
		cli.New(context.Background(), "nandmachine", "Simulated NAND accelerator runtime.").
			WithLogger(os.Stderr).
			WithCommands(commands).
			Execute(os.Args[1:])

	os.Exit(result)
}
