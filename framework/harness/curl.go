package harness

import (
	"sort"
	"strings"

	"github.com/galactic-filament/apiserver-contract-tests/framework"
)

// CurlCommand returns a shell command that reproduces the request against the given base URL.
func (r Request) CurlCommand(baseURL string) string {
	var b framework.CommandBuilder
	b.Add("curl", "-sS", "-X", r.Method)

	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range r.Headers[k] {
			b.Add("-H", k+": "+v)
		}
	}
	if body := r.body(); body != nil {
		b.Add("-H", "Content-Type: application/json", "--data", string(body))
	}
	b.Add(strings.TrimSuffix(baseURL, "/") + r.Path)
	return b.String()
}
