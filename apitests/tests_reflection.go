package apitests

import (
	"net/http"

	"github.com/galactic-filament/apiserver-contract-tests/framework/harness"
	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoReflectionTests(t *ldtest.T) {
	t.Run("Should return identical Json in response as provided by request", func(t *ldtest.T) {
		greeting := ldvalue.String(standardGreeting)
		body := ldvalue.ObjectBuild().Set("greeting", greeting).Build()
		RequireExchange(t, harness.PostJSON("/reflection", body), Expectation{
			StatusCode: http.StatusOK,
			JSONFields: map[string]ldvalue.Value{"greeting": greeting},
		})
	})
}
