package apitests

import (
	"net/http"

	"github.com/galactic-filament/apiserver-contract-tests/framework/harness"
	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoPostCreationTests(t *ldtest.T) {
	t.Run("Should return the new post's id", func(t *ldtest.T) {
		body := ldvalue.ObjectBuild().Set("body", ldvalue.String(standardGreeting)).Build()
		resp := RequireExchange(t, harness.PostJSON("/posts", body), Expectation{
			StatusCode: http.StatusOK,
			JSONTypes:  map[string]ldvalue.ValueType{"id": ldvalue.NumberType},
		})
		t.Debug("created post %s", resp.JSON.GetByKey("id").JSONString())
	})
}
