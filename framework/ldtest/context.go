package ldtest

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/galactic-filament/apiserver-contract-tests/framework"
)

// DefaultTestTimeout is the time limit that tests are expected to observe for any single
// blocking operation, unless the run was configured with WithTestTimeout.
const DefaultTestTimeout = time.Second * 10

// sharedEnv is the part of the run configuration that is the same for every test, regardless of
// which goroutine the test is running on.
type sharedEnv struct {
	filter      Filter
	testLogger  TestLogger
	context     interface{}
	testTimeout time.Duration
	logLock     sync.Mutex
}

// environment accumulates results. Tests that run concurrently each get their own environment,
// which is merged into the parent's once they have all finished.
type environment struct {
	shared  *sharedEnv
	results Results
}

// T represents a test, a group of tests, or the root of a test run.
type T struct {
	env         *environment
	id          TestID
	group       bool
	debugLogger framework.CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	cleanups    []func()
	lock        sync.Mutex
}

// Subtest is a named piece of test logic, used with RunGroups.
type Subtest struct {
	Name   string
	Action func(*T)
}

// RunOption is an optional parameter for Run.
type RunOption interface {
	apply(*sharedEnv)
}

type contextOption struct{ value interface{} }

func (o contextOption) apply(e *sharedEnv) { e.context = o.value }

// WithContext attaches a domain-specific value to the run, which every test can retrieve
// with T.Context.
func WithContext(value interface{}) RunOption { return contextOption{value} }

type timeoutOption time.Duration

func (o timeoutOption) apply(e *sharedEnv) { e.testTimeout = time.Duration(o) }

// WithTestTimeout overrides DefaultTestTimeout.
func WithTestTimeout(timeout time.Duration) RunOption { return timeoutOption(timeout) }

// Run starts a test run. The action receives the root T, which should call Group or Run to
// declare tests.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*T),
	options ...RunOption,
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	shared := &sharedEnv{
		filter:      filter,
		testLogger:  testLogger,
		testTimeout: DefaultTestTimeout,
	}
	for _, o := range options {
		o.apply(shared)
	}
	if shared.testTimeout <= 0 {
		shared.testTimeout = DefaultTestTimeout
	}
	env := &environment{shared: shared}
	t := &T{env: env, group: true}
	t.run(action)
	t.record()
	return env.results
}

func (t *T) run(action func(*T)) {
	defer func() {
		if r := recover(); r != nil {
			if t.skipped {
				return
			}
			t.lock.Lock()
			t.failed = true
			var addError error
			if _, ok := r.(*T); ok {
				if len(t.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				t.errors = append(t.errors, addError)
			}
			t.lock.Unlock()
			if addError != nil {
				t.log(func(l TestLogger) { l.TestError(t.id, addError) })
			}
		}
	}()
	defer t.runCleanups()

	action(t)
}

// record adds this test's outcome to the results. A group is only recorded if it failed on its
// own account, for instance by panicking between subtests.
func (t *T) record() {
	t.lock.Lock()
	result := TestResult{TestID: t.id, Errors: t.errors, Skipped: t.skipped}
	failed := t.failed
	t.lock.Unlock()
	if t.group && !failed {
		return
	}
	t.env.results.add(result, failed)
}

func (t *T) runCleanups() {
	for len(t.cleanups) > 0 {
		f := t.cleanups[len(t.cleanups)-1]
		t.cleanups = t.cleanups[:len(t.cleanups)-1]
		f()
	}
}

func (t *T) log(fn func(TestLogger)) {
	t.env.shared.logLock.Lock()
	fn(t.env.shared.testLogger)
	t.env.shared.logLock.Unlock()
}

func (t *T) ID() TestID {
	return t.id
}

// Context returns the domain-specific value that was passed to Run with WithContext, or nil.
func (t *T) Context() interface{} {
	return t.env.shared.context
}

// Timeout returns the time limit for blocking operations in this test run.
func (t *T) Timeout() time.Duration {
	return t.env.shared.testTimeout
}

// Run runs a single test case. It is skipped without running if the filter excludes it.
func (t *T) Run(name string, action func(*T)) {
	t.runChild(t.env, name, false, action)
}

// Group runs a named container of test cases. The filter is not applied to the group itself, only
// to the cases within it, so that a pattern naming a single case can still reach it.
func (t *T) Group(name string, action func(*T)) {
	t.runChild(t.env, name, true, action)
}

// RunGroups runs several groups, with at most maxConcurrent of them active at once. A value of
// 1 or less runs them one after another. The results are recorded in declaration order either way.
func (t *T) RunGroups(maxConcurrent int, groups ...Subtest) {
	if maxConcurrent <= 1 || len(groups) <= 1 {
		for _, g := range groups {
			t.Group(g.Name, g.Action)
		}
		return
	}

	envs := make([]*environment, len(groups))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	for i, g := range groups {
		envs[i] = &environment{shared: t.env.shared}
		wg.Add(1)
		sem <- struct{}{}
		go func(env *environment, g Subtest) {
			defer wg.Done()
			defer func() { <-sem }()
			t.runChild(env, g.Name, true, g.Action)
		}(envs[i], g)
	}
	wg.Wait()
	for _, env := range envs {
		t.env.results.merge(env.results)
	}
}

func (t *T) runChild(env *environment, name string, group bool, action func(*T)) {
	id := t.id.Plus(name)

	t.log(func(l TestLogger) { l.TestStarted(id) })
	if !group && env.shared.filter != nil && !env.shared.filter(id) {
		reason := "excluded by filter parameters"
		env.results.add(TestResult{TestID: id, Skipped: true}, false)
		t.log(func(l TestLogger) { l.TestSkipped(id, reason) })
		return
	}
	t1 := &T{
		id:    id,
		env:   env,
		group: group,
	}
	t1.run(action)
	t1.record()
	if t1.skipped {
		t.log(func(l TestLogger) { l.TestSkipped(id, t1.skipReason) })
	} else if !group || t1.failed {
		t.log(func(l TestLogger) { l.TestFinished(id, t1.failed, t1.debugLogger.Output()) })
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	t.lock.Lock()
	t.failed = true
	t.errors = append(t.errors, err)
	t.lock.Unlock()
	t.log(func(l TestLogger) { l.TestError(t.id, err) })
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow. It must be called on the goroutine that is running the test.
func (t *T) FailNow() {
	t.lock.Lock()
	t.failed = true
	t.lock.Unlock()
	panic(t)
}

// Failed reports whether the test has failed so far.
func (t *T) Failed() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.failed
}

func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Defer schedules a function to run when the test ends, whether it passed, failed, or panicked.
// Deferred functions run in reverse order of registration.
func (t *T) Defer(fn func()) {
	t.cleanups = append(t.cleanups, fn)
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}
