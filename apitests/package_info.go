// Package apitests contains the API server contract tests themselves and their supporting API.
//
// Test harness infrastructure that is not specific to this API, such as the test runner and
// the HTTP client that talks to the server, is in the lower-level framework packages.
package apitests
