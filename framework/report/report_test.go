package report

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"

	"github.com/xuri/excelize/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResults() ldtest.Results {
	pass := ldtest.TestResult{TestID: ldtest.TestID{Path: []string{"Ping endpoint", "Should respond to standard ping"}}}
	skip := ldtest.TestResult{TestID: ldtest.TestID{Path: []string{"Homepage", "Should return standard greeting"}}, Skipped: true}
	fail := ldtest.TestResult{
		TestID: ldtest.TestID{Path: []string{"Post creation endpoint", "Should return the new post's id"}},
		Errors: []error{errors.New("expected status 200 but got 500")},
	}
	return ldtest.Results{
		Tests:    []ldtest.TestResult{pass, skip, fail},
		Failures: []ldtest.TestResult{fail},
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "PASS", Outcome(ldtest.TestResult{}, false))
	assert.Equal(t, "SKIP", Outcome(ldtest.TestResult{Skipped: true}, false))
	assert.Equal(t, "FAIL", Outcome(ldtest.TestResult{}, true))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	run := Run{
		ID:        "run-1",
		TargetURL: "http://localhost:8080",
		StartedAt: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
		Duration:  time.Second,
	}
	commands := func(id ldtest.TestID) []string {
		if id.Group() == "Post creation endpoint" {
			return []string{"curl -sS -X POST http://localhost:8080/posts"}
		}
		return nil
	}

	require.NoError(t, WriteXLSX(path, run, makeResults(), commands))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.True(t, len(rows) >= 4)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"Ping endpoint", "Should respond to standard ping", "PASS"}, rows[1])
	assert.Equal(t, []string{"Homepage", "Should return standard greeting", "SKIP"}, rows[2])
	assert.Equal(t, []string{
		"Post creation endpoint",
		"Should return the new post's id",
		"FAIL",
		"expected status 200 but got 500",
		"curl -sS -X POST http://localhost:8080/posts",
	}, rows[3])

	id, err := f.GetCellValue(SheetName, "B6")
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)
	failed, err := f.GetCellValue(SheetName, "B11")
	require.NoError(t, err)
	assert.Equal(t, "1", failed)
}

func TestWriteXLSXBadPath(t *testing.T) {
	err := WriteXLSX(filepath.Join(t.TempDir(), "missing", "results.xlsx"), Run{}, makeResults(), nil)
	assert.Error(t, err)
}
