// Package ldtest is the test runner. Its T type plays the part of Go's *testing.T for checks
// that run outside of "go test": it has subtests, failure and skip signaling, per-test debug
// output, and deferred cleanups, and it accumulates everything into a Results value.
//
// T implements the TestingT interfaces of testify's assert and require packages, so those can
// be used directly in test logic.
package ldtest
