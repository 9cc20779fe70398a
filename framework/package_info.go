// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of API checks. The base package contains shared
// types such as Logger; other components are in the subpackages harness, ldtest, and report.
//
// The general model is:
//
// 1. The test harness talks to an API server that is already running somewhere else. It waits
// for the server's root resource to answer, and then sends it one request per test case.
//
// 2. There is a general notion of a test context which is similar to Go's testing.T, allowing
// pieces of test logic to be associated with a test identifier and to accumulate success/failure
// results.
//
// The domain-specific code that knows what is being tested is responsible for building the
// requests, describing the expected responses, and grouping test cases.
package framework
