package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/galactic-filament/apiserver-contract-tests/apitests"
	"github.com/galactic-filament/apiserver-contract-tests/framework"
	"github.com/galactic-filament/apiserver-contract-tests/framework/harness"
	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"
	"github.com/galactic-filament/apiserver-contract-tests/framework/report"
	"github.com/galactic-filament/apiserver-contract-tests/stubservice"

	"github.com/fatih/color"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var params commandParams
	if !params.Read(args, stderr) {
		return 1
	}
	if params.noColor {
		color.NoColor = true
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(stdout, "", log.LstdFlags)
	}

	if params.selfTest {
		svc, err := stubservice.Start(framework.LoggerWithPrefix(mainDebugLogger, "[stand-in] "))
		if err != nil {
			fmt.Fprintf(stderr, "Could not start stand-in API server: %s\n", err)
			return 1
		}
		defer svc.Close()
		params.serviceURL = svc.URL
	}

	testHarness, err := harness.NewTestHarness(
		params.serviceURL,
		params.timeout,
		params.readyTimeout,
		mainDebugLogger,
		stdout,
	)
	if err != nil {
		fmt.Fprintf(stderr, "API server error: %s\n", err)
		return 1
	}

	fmt.Fprintln(stdout)
	ldtest.PrintFilterDescription(stdout, params.filters)

	fmt.Fprintln(stdout, "Running test suite")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
		Output:               stdout,
	}
	transcript := apitests.NewTranscript()
	startedAt := time.Now()

	results := apitests.RunTestSuite(testHarness, params.filters.AsFilter, testLogger, apitests.SuiteOptions{
		Concurrency: params.parallel,
		TestTimeout: params.timeout,
		Transcript:  transcript,
	})

	fmt.Fprintln(stdout)
	ldtest.PrintResults(stdout, results)

	if params.xlsxPath != "" {
		reportRun := report.Run{
			ID:        testHarness.RunID(),
			TargetURL: testHarness.ServiceBaseURL(),
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
		}
		commands := func(id ldtest.TestID) []string {
			var ret []string
			for _, r := range transcript.Requests(id) {
				ret = append(ret, r.CurlCommand(testHarness.ServiceBaseURL()))
			}
			return ret
		}
		if err := report.WriteXLSX(params.xlsxPath, reportRun, results, commands); err != nil {
			fmt.Fprintf(stderr, "Could not write report: %s\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Wrote report to %s\n", params.xlsxPath)
	}

	if !results.OK() {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "To run only the failed tests again:")
		fmt.Fprintf(stdout, "  %s\n", params.rerunCommand(args[0], results.Failures))
		return 1
	}
	return 0
}
