package ldtest

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	name := id.String()
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(name)) &&
		!r.MustNotMatch.AnyMatch(name)
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Patterns returns the source text of each pattern, in the order they were added.
func (r RegexList) Patterns() []string {
	ret := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		ret = append(ret, p.String())
	}
	return ret
}

// ExactMatch builds a pattern that matches only the given test and its subtests.
func ExactMatch(id TestID) string {
	return "^" + regexp.QuoteMeta(id.String()) + "(/|$)"
}

func PrintFilterDescription(w io.Writer, filters RegexFilters) {
	if !filters.MustMatch.IsDefined() && !filters.MustNotMatch.IsDefined() {
		return
	}
	fmt.Fprintln(w, "Some tests will be skipped based on the filter criteria for this test run:")
	if filters.MustMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Fprintln(w)
}
