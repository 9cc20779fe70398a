package apitests

import (
	"net/http"

	"github.com/galactic-filament/apiserver-contract-tests/framework/harness"
	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const standardGreeting = "Hello, world!"

func DoHomepageTests(t *ldtest.T) {
	t.Run("Should return standard greeting", func(t *ldtest.T) {
		RequireExchange(t, harness.Get("/"), Expectation{
			StatusCode: http.StatusOK,
			Text:       ldvalue.NewOptionalString(standardGreeting),
		})
	})
}
