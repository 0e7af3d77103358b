// Package cli contains the command-line interface shared by cmd/nandsim's
// subcommands.
package cli

import (
	"context"
	"io"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/xyfuture/nandmachine/internal/log"
)

// Command represents a sub-command in the CLI. Each sub-command registers
// its own kingpin flags/args against the application and performs an
// action once selected.
type Command interface {
	// Register declares the command's name, description, and flags/args
	// against app, returning the clause kingpin matched on.
	Register(app *kingpin.Application) *kingpin.CmdClause

	// Run executes the command. Command output should be written to out. It
	// returns an exit code.
	Run(ctx context.Context, out io.Writer, logger *log.Logger) int
}

// Commander is a CLI command-runner that handles the life cycle of a CLI
// command execution, backed by a kingpin.Application for flag parsing and
// subcommand dispatch.
type Commander struct {
	ctx context.Context
	log *log.Logger

	app      *kingpin.Application
	commands map[string]Command
}

// New creates a Commander named name that can register and run
// sub-commands.
func New(ctx context.Context, name, help string) *Commander {
	return &Commander{
		ctx:      ctx,
		app:      kingpin.New(name, help),
		commands: make(map[string]Command),
	}
}

// WithCommands registers every command's clause against the application.
func (cli *Commander) WithCommands(cmds []Command) *Commander {
	for _, cmd := range cmds {
		clause := cmd.Register(cli.app)
		cli.commands[clause.FullCommand()] = cmd
	}

	return cli
}

// WithLogger configures the logger for the CLI. Logs are written to
// os.Stderr to leave os.Stdout for program output.
func (cli *Commander) WithLogger(out *os.File) *Commander {
	logger := log.NewFormattedLogger(out)
	cli.log = logger

	log.SetDefault(logger)

	return cli
}

// Execute parses args against the registered commands and runs whichever
// one matched.
func (cli *Commander) Execute(args []string) int {
	name, err := cli.app.Parse(args)
	if err != nil {
		cli.log.Error("parse error", log.Any("error", err))
		return 1
	}

	cmd, ok := cli.commands[name]
	if !ok {
		cli.log.Error("no such command", log.Any("name", name))
		return 1
	}

	return cmd.Run(cli.ctx, os.Stdout, cli.log)
}
