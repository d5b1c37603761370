package cli

import (
	"io"
	"testing"

	"github.com/sortiz4/pipit/pkg/errors"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("root.Use = %q, want %q", root.Use, appName)
	}

	want := []string{"new", "install", "uninstall", "update", "list", "import", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestRootCommandSilencesUsage(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if !root.SilenceUsage {
		t.Error("root command should silence usage on runtime errors")
	}
}

func TestMinArgs(t *testing.T) {
	validate := minArgs(1, "package")

	if err := validate(nil, []string{"flask"}); err != nil {
		t.Errorf("minArgs with enough args: unexpected error %v", err)
	}

	err := validate(nil, nil)
	if err == nil {
		t.Fatal("minArgs with no args should fail")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("minArgs error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, LogInfo)

	c.SetLogLevel(LogDebug)
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("logger level = %v, want %v", c.Logger.GetLevel(), LogDebug)
	}
}
