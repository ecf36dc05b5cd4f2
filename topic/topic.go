// Package topic filters records by subject.
package topic

import (
	"fmt"
	"regexp"

	"github.com/miku/covpre/schema/preprint"
)

// DefaultPattern matches common spellings of COVID-19 and SARS-CoV-2.
const DefaultPattern = `coronavirus|covid-19|sars-cov|ncov-2019|2019-ncov|hcov-19|sars-2`

// Filter keeps records whose title or abstract match a pattern, ignoring case.
type Filter struct {
	re *regexp.Regexp
}

// New compiles a filter. An empty pattern means DefaultPattern.
func New(pattern string) (*Filter, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("topic: %w", err)
	}
	return &Filter{re: re}, nil
}

// MustNew is like New, but panics on an invalid pattern.
func MustNew(pattern string) *Filter {
	f, err := New(pattern)
	if err != nil {
		panic(err)
	}
	return f
}

// Match reports whether title or abstract of a record match.
func (f *Filter) Match(r preprint.Record) bool {
	return f.re.MatchString(r.Title) || f.re.MatchString(r.Abstract)
}

// String returns the pattern.
func (f *Filter) String() string {
	return f.re.String()
}
