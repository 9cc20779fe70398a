package ldtest

import "github.com/galactic-filament/apiserver-contract-tests/framework"

type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, failed bool, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                  {}
func (n nullTestLogger) TestError(TestID, error)                             {}
func (n nullTestLogger) TestFinished(TestID, bool, framework.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                          {}
