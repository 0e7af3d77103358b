package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/xyfuture/nandmachine/internal/log"
)

// fakeCommand records whether it ran and echoes a fixed string to out.
type fakeCommand struct {
	name string
	ran  bool
}

func (f *fakeCommand) Register(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command(f.name, "a fake command for testing")
}

func (f *fakeCommand) Run(ctx context.Context, out io.Writer, logger *log.Logger) int {
	f.ran = true
	io.WriteString(out, f.name+" ran\n")

	return 0
}

func TestCommanderDispatchesMatchedCommand(tt *testing.T) {
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		tt.Fatalf("open devnull: %s", err)
	}
	defer devNull.Close()

	var buf bytes.Buffer

	cmd := &fakeCommand{name: "widget"}
	commander := New(context.Background(), "testapp", "a test app").
		WithCommands([]Command{cmd}).
		WithLogger(devNull)

	// Execute writes command output to os.Stdout directly; redirect it so the
	// test doesn't spam the real stdout and so we can assert on it.
	r, w, err := os.Pipe()
	if err != nil {
		tt.Fatalf("pipe: %s", err)
	}

	origStdout := os.Stdout
	os.Stdout = w

	code := commander.Execute([]string{"widget"})

	w.Close()
	os.Stdout = origStdout

	io.Copy(&buf, r)

	if code != 0 {
		tt.Errorf("exit code: got %d, want 0", code)
	}

	if !cmd.ran {
		tt.Error("widget command should have run")
	}

	if got := buf.String(); got != "widget ran\n" {
		tt.Errorf("stdout: got %q, want %q", got, "widget ran\n")
	}
}

func TestCommanderUnknownCommandNameFails(tt *testing.T) {
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		tt.Fatalf("open devnull: %s", err)
	}
	defer devNull.Close()

	commander := New(context.Background(), "testapp", "a test app").
		WithCommands([]Command{&fakeCommand{name: "widget"}}).
		WithLogger(devNull)

	if code := commander.Execute([]string{"does-not-exist"}); code != 1 {
		tt.Errorf("exit code for an unparseable command line: got %d, want 1", code)
	}
}
