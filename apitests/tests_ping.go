package apitests

import (
	"net/http"

	"github.com/galactic-filament/apiserver-contract-tests/framework/harness"
	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoPingTests(t *ldtest.T) {
	t.Run("Should respond to standard ping", func(t *ldtest.T) {
		RequireExchange(t, harness.Get("/ping"), Expectation{
			StatusCode: http.StatusOK,
			Text:       ldvalue.NewOptionalString("Pong"),
		})
	})
}
