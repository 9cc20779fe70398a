package harness

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/galactic-filament/apiserver-contract-tests/framework"

	"github.com/google/uuid"
)

const (
	// RunIDHeader carries the identifier of the current test run on every request.
	RunIDHeader = "X-Run-Id"
	// RequestIDHeader carries an identifier that is unique to each request.
	RequestIDHeader = "X-Request-Id"

	readyPollInterval = time.Millisecond * 100
)

// TestHarness manages communication with the API server under test. The server is assumed to
// be running already; the harness only needs its base URL.
type TestHarness struct {
	serviceBaseURL string
	runID          string
	client         *http.Client
	logger         framework.Logger
}

// NewTestHarness creates a TestHarness instance, and verifies that the API server is
// responding by querying its root resource until it gets any HTTP response or until
// readyTimeout elapses. The requestTimeout applies to each request made through the harness
// afterward; zero means no limit other than the caller's context.
func NewTestHarness(
	serviceBaseURL string,
	requestTimeout time.Duration,
	readyTimeout time.Duration,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}

	h := &TestHarness{
		serviceBaseURL: strings.TrimSuffix(serviceBaseURL, "/"),
		runID:          uuid.NewString(),
		client:         &http.Client{Timeout: requestTimeout},
		logger:         debugLogger,
	}

	if err := h.awaitService(readyTimeout, startupOutput); err != nil {
		return nil, err
	}
	return h, nil
}

// ServiceBaseURL returns the base URL of the API server, without a trailing slash.
func (h *TestHarness) ServiceBaseURL() string {
	return h.serviceBaseURL
}

// RunID returns the identifier that this harness sends in the X-Run-Id header.
func (h *TestHarness) RunID() string {
	return h.runID
}

func (h *TestHarness) awaitService(timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to API server at %s", h.serviceBaseURL)

	url := h.serviceBaseURL + "/"
	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := h.client.Get(url)
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			fmt.Fprintln(output)
			fmt.Fprintf(output, "API server responded with status %d\n", resp.StatusCode)
			h.logger.Printf("API server at %s is up (run ID %s)", h.serviceBaseURL, h.runID)
			return nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out waiting for API server, result of last query was: %w", err)
		}
		time.Sleep(readyPollInterval)
	}
}
