package ldtest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestIDPlusDoesNotShareBackingArray(t *testing.T) {
	parent := TestID{Path: make([]string, 1, 4)}
	parent.Path[0] = "group"
	a := parent.Plus("a")
	b := parent.Plus("b")
	assert.Equal(t, "group/a", a.String())
	assert.Equal(t, "group/b", b.String())
	assert.Equal(t, "group", a.Group())
	assert.Equal(t, "", TestID{}.Group())
}

func TestPrintResults(t *testing.T) {
	var r Results
	r.add(TestResult{TestID: id("a", "ok")}, false)
	r.add(TestResult{TestID: id("a", "skip"), Skipped: true}, false)
	failure := TestResult{TestID: id("b", "bad"), Errors: []error{errors.New("line 1\nline 2")}}
	r.add(failure, true)

	var buf bytes.Buffer
	PrintResults(&buf, r)
	assert.Equal(t,
		"Ran 3 tests: 1 passed, 1 failed, 1 skipped\n"+
			"Failed tests:\n"+
			"  b/bad\n"+
			"    line 1\n"+
			"    line 2\n",
		buf.String())
}

func TestPrintResultsWhenOK(t *testing.T) {
	var r Results
	r.add(TestResult{TestID: id("a", "ok")}, false)
	var buf bytes.Buffer
	PrintResults(&buf, r)
	assert.Equal(t, "Ran 1 tests: 1 passed, 0 failed, 0 skipped\n", buf.String())
}
