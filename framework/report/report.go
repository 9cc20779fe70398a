// Package report writes the results of a test run to a spreadsheet, one row per test.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Results"

	minColumn          = 'A'
	defaultColumnWidth = 24
	wideColumnWidth    = 60

	patternType  = "pattern"
	patternValue = 1
	failBgColor  = "FF5900"
	skipBgColor  = "FFEB9C"
)

var headers = []string{"Group", "Test", "Result", "Errors", "Reproduce"}

// Run describes the test run as a whole.
type Run struct {
	ID        string
	TargetURL string
	StartedAt time.Time
	Duration  time.Duration
}

// CommandsFunc returns shell commands that reproduce what a test did.
type CommandsFunc func(ldtest.TestID) []string

// Outcome returns "PASS", "FAIL", or "SKIP" for a test result.
func Outcome(r ldtest.TestResult, failed bool) string {
	switch {
	case failed:
		return "FAIL"
	case r.Skipped:
		return "SKIP"
	default:
		return "PASS"
	}
}

// WriteXLSX saves the results as a new workbook at path, replacing any existing file.
func WriteXLSX(path string, run Run, results ldtest.Results, commands CommandsFunc) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "C", defaultColumnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "D", "E", wideColumnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	failStyle, err := fillStyle(f, failBgColor)
	if err != nil {
		return err
	}
	skipStyle, err := fillStyle(f, skipBgColor)
	if err != nil {
		return err
	}

	for i, h := range headers {
		if err := f.SetCellValue(SheetName, cellName(i, 1), h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	failed := make(map[string]bool, len(results.Failures))
	for _, r := range results.Failures {
		failed[r.TestID.String()] = true
	}

	for i, r := range results.Tests {
		row := i + 2
		isFailed := failed[r.TestID.String()]
		var errs []string
		for _, e := range r.Errors {
			errs = append(errs, e.Error())
		}
		var reproduce []string
		if commands != nil {
			reproduce = commands(r.TestID)
		}
		name := ""
		if len(r.TestID.Path) > 1 {
			name = strings.Join(r.TestID.Path[1:], "/")
		}
		cells := []interface{}{
			r.TestID.Group(),
			name,
			Outcome(r, isFailed),
			strings.Join(errs, "\n"),
			strings.Join(reproduce, "\n"),
		}
		for col, v := range cells {
			if err := f.SetCellValue(SheetName, cellName(col, row), v); err != nil {
				return fmt.Errorf("write result row: %w", err)
			}
		}

		style := 0
		if isFailed {
			style = failStyle
		} else if r.Skipped {
			style = skipStyle
		}
		if style != 0 {
			if err := f.SetCellStyle(SheetName, cellName(0, row), cellName(len(cells)-1, row), style); err != nil {
				return fmt.Errorf("style result row: %w", err)
			}
		}
	}

	summaryRow := len(results.Tests) + 3
	summary := [][2]interface{}{
		{"Run ID", run.ID},
		{"Target", run.TargetURL},
		{"Started", run.StartedAt.UTC().Format(time.RFC3339)},
		{"Duration", run.Duration.String()},
		{"Passed", results.Passed()},
		{"Failed", len(results.Failures)},
		{"Skipped", results.Skipped()},
	}
	for i, kv := range summary {
		if err := f.SetCellValue(SheetName, cellName(0, summaryRow+i), kv[0]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		if err := f.SetCellValue(SheetName, cellName(1, summaryRow+i), kv[1]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func cellName(col, row int) string {
	return fmt.Sprintf("%c%d", minColumn+col, row)
}

func fillStyle(f *excelize.File, color string) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    patternType,
			Pattern: patternValue,
			Color:   []string{color},
		},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	return style, nil
}
