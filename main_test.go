package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(urlEnvVar, "")
	t.Setenv(timeoutEnvVar, "")
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"apiserver-contract-tests", "-no-color"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunSelfTestPasses(t *testing.T) {
	code, stdout, stderr := runCommand(t, "-self-test")
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Running test suite")
	assert.Contains(t, stdout, "Ran 4 tests: 4 passed, 0 failed, 0 skipped")
	assert.NotContains(t, stdout, "To run only the failed tests again")
}

func TestRunWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	code, stdout, stderr := runCommand(t, "-self-test", "-parallel", "2", "-xlsx", path)
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Wrote report to "+path)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRunFailsAgainstBrokenServer(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		code, stdout, _ := runCommand(t, "-url", server.URL, "-skip", "^Post creation endpoint/")
		assert.Equal(t, 1, code)
		assert.Contains(t, stdout, "Ran 4 tests: 0 passed, 3 failed, 1 skipped")
		assert.Contains(t, stdout, "FAILED: Ping endpoint/Should respond to standard ping")
		assert.Contains(t, stdout, "To run only the failed tests again:")
		assert.Contains(t, stdout, "-url "+server.URL+" -run '^Homepage/Should return standard greeting(/|$)'")
	})
}

func TestRunFailsWhenServerIsUnreachable(t *testing.T) {
	var url string
	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		url = server.URL
	})
	code, _, stderr := runCommand(t, "-url", url, "-ready-timeout", "50ms")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "API server error: timed out waiting for API server")
}

func TestRunRejectsBadArguments(t *testing.T) {
	code, _, stderr := runCommand(t)
	require.Equal(t, 1, code)
	assert.Contains(t, stderr, "-url is required")
}
