package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Request describes a single HTTP request to the API server.
type Request struct {
	Method string
	// Path is appended to the service base URL. It should start with a slash.
	Path string
	// JSON is the request body. If it is a null value, the request has no body.
	JSON ldvalue.Value
	// Headers are added to the request; Content-Type is set automatically when there is a body.
	Headers http.Header
}

// Get builds a body-less GET request.
func Get(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

// PostJSON builds a POST request whose body is the JSON encoding of the given value.
func PostJSON(path string, body ldvalue.Value) Request {
	return Request{Method: http.MethodPost, Path: path, JSON: body}
}

func (r Request) String() string {
	if r.JSON.IsNull() {
		return r.Method + " " + r.Path
	}
	return r.Method + " " + r.Path + " " + r.JSON.JSONString()
}

func (r Request) body() []byte {
	if r.JSON.IsNull() {
		return nil
	}
	return []byte(r.JSON.JSONString())
}

// Response is the outcome of one exchange with the API server.
//
// If Err is non-nil, the exchange did not complete and the other fields are zero values.
type Response struct {
	StatusCode int
	Header     http.Header
	// Text is the raw response body.
	Text string
	// JSON is the parsed response body. It is a null value if the Content-Type is not a JSON
	// media type or the body is not valid JSON.
	JSON ldvalue.Value
	Err  error
}

// TransportError means that an HTTP exchange could not be completed, for instance because the
// connection was refused. An HTTP error status is not a TransportError.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// URL returns the full URL for a request path.
func (h *TestHarness) URL(path string) string {
	return h.serviceBaseURL + path
}

// Do performs a request synchronously. It never returns an error separately; any failure to
// complete the exchange is in Response.Err as a *TransportError.
func (h *TestHarness) Do(ctx context.Context, r Request) Response {
	url := h.URL(r.Path)
	fail := func(err error) Response {
		h.logger.Printf("<< %s %s: %s", r.Method, url, err)
		return Response{Err: &TransportError{Method: r.Method, URL: url, Err: err}}
	}

	body := r.body()
	req, err := http.NewRequestWithContext(ctx, r.Method, url, bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}
	for k, vv := range r.Headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RunIDHeader, h.runID)
	req.Header.Set(RequestIDHeader, uuid.NewString())

	if body != nil {
		h.logger.Printf(">> %s %s %s", r.Method, url, string(body))
	} else {
		h.logger.Printf(">> %s %s", r.Method, url)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("error reading response body: %w", err))
	}
	h.logger.Printf("<< %d %s", resp.StatusCode, string(data))

	ret := Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Text:       string(data),
		JSON:       ldvalue.Null(),
	}
	if IsJSONContentType(resp.Header.Get("Content-Type")) {
		ret.JSON = ldvalue.Parse(data)
	}
	return ret
}

// IsJSONContentType reports whether a Content-Type header value denotes JSON, that is
// application/json or any type with a +json suffix. Parameters such as charset are ignored.
func IsJSONContentType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

// Go performs a request on a separate goroutine and passes the outcome to the callback. The
// callback is called exactly once, whether or not the exchange succeeded.
func (h *TestHarness) Go(ctx context.Context, r Request, callback func(Response)) {
	go func() {
		callback(h.Do(ctx, r))
	}()
}
