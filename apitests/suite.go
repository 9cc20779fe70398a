package apitests

import (
	"time"

	"github.com/galactic-filament/apiserver-contract-tests/framework/harness"
	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"
)

// SuiteOptions are optional parameters for RunTestSuite.
type SuiteOptions struct {
	// Concurrency is the maximum number of test groups that run at once. Values of 1 or less
	// run the groups one after another.
	Concurrency int
	// TestTimeout bounds each request. Zero means ldtest.DefaultTestTimeout.
	TestTimeout time.Duration
	// Transcript, if not nil, receives every request that the tests send.
	Transcript *Transcript
}

func RunTestSuite(
	harness *harness.TestHarness,
	filter ldtest.Filter,
	testLogger ldtest.TestLogger,
	options SuiteOptions,
) ldtest.Results {
	config := APITestContext{
		harness:    harness,
		transcript: options.Transcript,
	}

	return ldtest.Run(filter, testLogger, func(t *ldtest.T) {
		t.RunGroups(options.Concurrency,
			ldtest.Subtest{Name: "Homepage", Action: DoHomepageTests},
			ldtest.Subtest{Name: "Ping endpoint", Action: DoPingTests},
			ldtest.Subtest{Name: "Json reflection", Action: DoReflectionTests},
			ldtest.Subtest{Name: "Post creation endpoint", Action: DoPostCreationTests},
		)
	}, ldtest.WithContext(config), ldtest.WithTestTimeout(options.TestTimeout))
}
