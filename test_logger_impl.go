package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/galactic-filament/apiserver-contract-tests/framework"
	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"

	"github.com/fatih/color"
)

var (
	passedLabel  = color.New(color.FgGreen).SprintFunc()
	failedLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	skippedLabel = color.New(color.FgYellow).SprintFunc()
	errorText    = color.New(color.FgRed).SprintFunc()
)

type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

func (c *ConsoleTestLogger) out() io.Writer {
	if c.Output == nil {
		return os.Stdout
	}
	return c.Output
}

func (c *ConsoleTestLogger) TestStarted(id ldtest.TestID) {
	fmt.Fprintf(c.out(), "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id ldtest.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.out(), "  %s\n", errorText(line))
	}
}

func (c *ConsoleTestLogger) TestFinished(id ldtest.TestID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		fmt.Fprintf(c.out(), "  %s %s\n", failedLabel("FAILED:"), id)
	} else {
		fmt.Fprintf(c.out(), "  %s\n", passedLabel("PASSED"))
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.out(), "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id ldtest.TestID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.out(), "  %s %s\n", skippedLabel("SKIPPED:"), id)
	} else {
		fmt.Fprintf(c.out(), "  %s %s (%s)\n", skippedLabel("SKIPPED:"), id, reason)
	}
}
