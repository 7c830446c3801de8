package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Filter decides whether a test should run. It sees every level of the tree, so a group that is
// filtered out takes all of its scenarios with it.
type Filter func(TestID) bool

// RegexFilters is the filter built from the -run and -skip options.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

// AsFilter matches the test path, as in "auth/logout with invalid token". A test runs if it
// matches some MustMatch pattern (or there are none) and no MustNotMatch pattern.
//
// A group also passes MustMatch when it is on the way to a match: "users list/limit" lets the
// "users list" group run so that its "limit ..." scenarios can be reached.
func (r RegexFilters) AsFilter(id TestID) bool {
	path := id.String()
	if r.MustMatch.IsDefined() && !r.MustMatch.AnyMatch(path) && !r.MustMatch.AnyLeadsTo(id) {
		return false
	}
	return !r.MustNotMatch.AnyMatch(path)
}

// RegexList is a repeatable command-line flag of regular expressions. It implements pflag.Value.
type RegexList struct {
	patterns []*regexp.Regexp
	levels   [][]*regexp.Regexp
}

func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return errors.Wrapf(err, "invalid regex %q", value)
	}
	r.patterns = append(r.patterns, rx)
	r.levels = append(r.levels, compileLevels(value))
	return nil
}

// compileLevels splits a pattern on "/" and compiles each part, or returns nil if the pattern
// has only one part or some part is not a valid expression on its own.
func compileLevels(value string) []*regexp.Regexp {
	parts := strings.Split(value, "/")
	if len(parts) < 2 {
		return nil
	}
	ret := make([]*regexp.Regexp, len(parts))
	for i, part := range parts {
		rx, err := regexp.Compile(part)
		if err != nil {
			return nil
		}
		ret[i] = rx
	}
	return ret
}

// AnyLeadsTo is true if some multi-level pattern matches every level of id, so that id is a
// group containing the scenarios that pattern selects.
func (r RegexList) AnyLeadsTo(id TestID) bool {
	for _, levels := range r.levels {
		if levels == nil || len(id.Path) >= len(levels) {
			continue
		}
		matched := true
		for i, name := range id.Path {
			if !levels[i].MatchString(name) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func (r *RegexList) Type() string {
	return "regex"
}

func (r RegexList) String() string {
	quoted := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		quoted[i] = fmt.Sprintf("%q", p.String())
	}
	return strings.Join(quoted, " or ")
}

// Patterns returns the source of each pattern, in the order they were added.
func (r RegexList) Patterns() []string {
	ret := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		ret[i] = p.String()
	}
	return ret
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) > 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// PrintFilterDescription tells the user which scenarios the filters will exclude, and which
// tracked bugs will be tolerated.
func PrintFilterDescription(out io.Writer, filters RegexFilters, trackedBugs []string) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}
	if len(trackedBugs) > 0 {
		fmt.Fprintln(out, "Known defects that will be tolerated and reported if observed:")
		fmt.Fprintf(out, "  %s\n", strings.Join(trackedBugs, ", "))
		fmt.Fprintln(out)
	}
}
