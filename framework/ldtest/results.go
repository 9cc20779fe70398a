package ldtest

import (
	"fmt"
	"io"
	"strings"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Passed returns the number of tests that ran to completion without failing.
func (r Results) Passed() int {
	return len(r.Tests) - len(r.Failures) - r.Skipped()
}

// Skipped returns the number of tests that were skipped, either by the filter or by the test itself.
func (r Results) Skipped() int {
	n := 0
	for _, t := range r.Tests {
		if t.Skipped {
			n++
		}
	}
	return n
}

func (r *Results) add(result TestResult, failed bool) {
	r.Tests = append(r.Tests, result)
	if failed {
		r.Failures = append(r.Failures, result)
	}
}

func (r *Results) merge(other Results) {
	r.Tests = append(r.Tests, other.Tests...)
	r.Failures = append(r.Failures, other.Failures...)
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Group returns the first element of the path, which is the name of the top-level group the
// test belongs to.
func (t TestID) Group() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[0]
}

// Plus returns a new TestID for a subtest of this one.
func (t TestID) Plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

// PrintResults writes a summary of the test run, followed by the errors of every failed test.
func PrintResults(w io.Writer, results Results) {
	fmt.Fprintf(w, "Ran %d tests: %d passed, %d failed, %d skipped\n",
		len(results.Tests), results.Passed(), len(results.Failures), results.Skipped())
	if results.OK() {
		return
	}
	fmt.Fprintln(w, "Failed tests:")
	for _, f := range results.Failures {
		fmt.Fprintf(w, "  %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
}
