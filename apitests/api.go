package apitests

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/galactic-filament/apiserver-contract-tests/framework/harness"
	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/require"
)

type APITestContext struct {
	harness    *harness.TestHarness
	transcript *Transcript
}

func requireContext(t *ldtest.T) APITestContext {
	if c, ok := t.Context().(APITestContext); ok {
		return c
	}
	panic("APITestContext was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}

// Transcript remembers which requests each test sent, so that a report can show how to
// reproduce them. It is safe for concurrent use.
type Transcript struct {
	requests map[string][]harness.Request
	lock     sync.Mutex
}

func NewTranscript() *Transcript {
	return &Transcript{requests: make(map[string][]harness.Request)}
}

func (tr *Transcript) add(id ldtest.TestID, r harness.Request) {
	if tr == nil {
		return
	}
	tr.lock.Lock()
	tr.requests[id.String()] = append(tr.requests[id.String()], r)
	tr.lock.Unlock()
}

// Requests returns the requests that the specified test sent, in order.
func (tr *Transcript) Requests(id ldtest.TestID) []harness.Request {
	if tr == nil {
		return nil
	}
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return append([]harness.Request(nil), tr.requests[id.String()]...)
}

// Expectation describes the parts of a response that a test cares about. Zero-valued fields are
// not checked.
type Expectation struct {
	StatusCode int
	// Text is the exact expected response body.
	Text ldvalue.OptionalString
	// JSONFields maps top-level property names of a JSON object body to their expected values.
	JSONFields map[string]ldvalue.Value
	// JSONTypes maps top-level property names of a JSON object body to their expected types.
	JSONTypes map[string]ldvalue.ValueType
}

// Check compares a response with the expectation and returns one error per mismatch. If the
// exchange itself failed, the only error returned is the transport error.
func (e Expectation) Check(resp harness.Response) []error {
	if resp.Err != nil {
		return []error{resp.Err}
	}

	var errs []error
	if e.StatusCode != 0 && resp.StatusCode != e.StatusCode {
		errs = append(errs, fmt.Errorf("expected status %d but got %d (body: %q)",
			e.StatusCode, resp.StatusCode, resp.Text))
	}
	if e.Text.IsDefined() && resp.Text != e.Text.StringValue() {
		errs = append(errs, fmt.Errorf("expected response body %q but got %q",
			e.Text.StringValue(), resp.Text))
	}
	if len(e.JSONFields) == 0 && len(e.JSONTypes) == 0 {
		return errs
	}
	if resp.JSON.Type() != ldvalue.ObjectType {
		return append(errs, fmt.Errorf("expected a JSON object in response body but got %q (Content-Type %q)",
			resp.Text, resp.Header.Get("Content-Type")))
	}

	for _, name := range sortedKeys(e.JSONFields) {
		expected, actual := e.JSONFields[name], resp.JSON.GetByKey(name)
		if !expected.Equal(actual) {
			errs = append(errs, fmt.Errorf("expected JSON property %q to be %s but got %s",
				name, expected.JSONString(), actual.JSONString()))
		}
	}
	for _, name := range sortedKeys(e.JSONTypes) {
		expected, actual := e.JSONTypes[name], resp.JSON.GetByKey(name)
		if actual.Type() != expected {
			errs = append(errs, fmt.Errorf("expected JSON property %q to be of type %s but got %s (%s)",
				name, expected, actual.Type(), actual.JSONString()))
		}
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Exchange sends a request to the API server and waits for the outcome. The request runs on
// its own goroutine and hands the response back through a callback; the wait is bounded by
// the run's test timeout, after which the outcome is a transport error.
func Exchange(t *ldtest.T, req harness.Request) harness.Response {
	c := requireContext(t)
	c.transcript.add(t.ID(), req)
	t.Debug("%s", req.CurlCommand(c.harness.ServiceBaseURL()))

	ctx, cancel := context.WithTimeout(context.Background(), t.Timeout())
	defer cancel()

	done := make(chan harness.Response, 1)
	c.harness.Go(ctx, req, func(resp harness.Response) {
		done <- resp
	})
	return <-done
}

// RequireExchange sends a request and checks the response against the expectation.
//
// A transport error fails the test and immediately exits it. Each mismatch between the response
// and the expectation is reported as a separate failure, and the test continues.
func RequireExchange(t *ldtest.T, req harness.Request, expect Expectation) harness.Response {
	resp := Exchange(t, req)
	require.NoError(t, resp.Err, "request %s did not complete", req)
	for _, err := range expect.Check(resp) {
		t.Errorf("%s: %s", req, err)
	}
	return resp
}
