// Package inspect implements a read-only terminal REPL over a runtime
// manager's tables: a raw-mode console feeds it one key at a time, and it
// buffers keys into lines rather than dispatching on single keystrokes.
package inspect

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xyfuture/nandmachine/cmd/internal/tty"
	"github.com/xyfuture/nandmachine/internal/page"
	"github.com/xyfuture/nandmachine/internal/runtime"
)

// Repl accumulates keys from a tty.Console into lines and dispatches each
// complete line as a "dump <table>" command, writing results to out.
type Repl struct {
	manager *runtime.Manager
	out     io.Writer
	line    []byte
}

// NewRepl creates a Repl over manager, writing command output to out.
func NewRepl(manager *runtime.Manager, out io.Writer) *Repl {
	return &Repl{manager: manager, out: out}
}

// Update implements tty.KeyReceiver: it buffers keys until a carriage
// return or newline, then runs the accumulated line as a command.
func (r *Repl) Update(key uint16) {
	switch key {
	case '\r', '\n':
		line := strings.TrimSpace(string(r.line))
		r.line = r.line[:0]

		if line == "" {
			return
		}

		r.Run(line)
	default:
		r.line = append(r.line, byte(key))
	}
}

// Run executes a single command line, e.g. "dump pagetable". Unrecognized
// commands print a usage message rather than returning an error: a REPL
// has no caller to hand an error back to.
func (r *Repl) Run(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	if fields[0] != "dump" || len(fields) < 2 {
		fmt.Fprintf(r.out, "usage: dump {nand|dram|sram|pagetable|resources}\r\n")
		return
	}

	switch fields[1] {
	case "nand":
		r.dumpNand()
	case "dram":
		r.dumpPool("dram", r.manager.Dram().FreeCount(), r.manager.Dram().Total())
	case "sram":
		r.dumpPool("sram", r.manager.Sram().FreeCount(), r.manager.Sram().Total())
	case "pagetable":
		r.dumpPageTable()
	case "resources":
		r.dumpResources()
	default:
		fmt.Fprintf(r.out, "unknown table %q\r\n", fields[1])
	}
}

func (r *Repl) dumpNand() {
	fmt.Fprintf(r.out, "nand files: %d\r\n", r.manager.Files().Count())
}

func (r *Repl) dumpPool(name string, free, total int) {
	fmt.Fprintf(r.out, "%s pool: %d/%d pages free\r\n", name, free, total)
}

func (r *Repl) dumpPageTable() {
	for _, device := range []page.Device{page.NAND, page.DRAM, page.SRAM} {
		pages := r.manager.Pages().GetDevicePages(device)
		sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })

		fmt.Fprintf(r.out, "%s: %v\r\n", device, pages)
	}
}

func (r *Repl) dumpResources() {
	entries := r.manager.Registry().GetAll()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Base() < entries[j].Base() })

	for _, e := range entries {
		fmt.Fprintf(r.out, "base=%#x size=%d valid=%t %T\r\n", e.Base(), e.Size(), e.IsValid(), e)
	}
}

// Serve puts the terminal in raw mode and runs an inspection REPL over
// manager until parent is cancelled or the console errors out (e.g.
// because stdin isn't a terminal). It returns the reason the REPL stopped.
func Serve(parent tty.Context, manager *runtime.Manager) error {
	repl := NewRepl(manager, nil)

	ctx, console, cancel := tty.WithConsole(parent, repl)
	defer cancel()

	if console == nil {
		return context.Cause(ctx)
	}

	repl.out = console.Writer()
	fmt.Fprintf(repl.out, "nandmachine inspector: dump {nand|dram|sram|pagetable|resources}\r\n")

	<-ctx.Done()

	return context.Cause(ctx)
}
