package hub

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadPattern is returned for a pattern with an empty or unterminated
// character class.
var ErrBadPattern = errors.New("syntax error in pattern")

// Patterns is a compiled set of fnmatch-style allow-patterns.
type Patterns []*regexp.Regexp

// CompilePatterns compiles every pattern once. Unlike path.Match, '*' also
// matches '/', so "3/*" selects a whole subtree.
func CompilePatterns(patterns []string) (Patterns, error) {
	out := make(Patterns, 0, len(patterns))
	for _, p := range patterns {
		re, err := globRegexp(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Match reports whether name matches one of the patterns. An empty set
// matches everything.
func (ps Patterns) Match(name string) bool {
	if len(ps) == 0 {
		return true
	}
	for _, re := range ps {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Match reports whether name matches the single fnmatch-style pattern.
func Match(pattern, name string) (bool, error) {
	re, err := globRegexp(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(name), nil
}

func globRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := pattern[i+1 : i+1+end]
			negate := strings.HasPrefix(class, "!")
			if negate {
				class = class[1:]
			}
			if class == "" {
				return nil, ErrBadPattern
			}
			class = strings.ReplaceAll(class, `\`, `\\`)
			if negate {
				class = "^" + class
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	return re, nil
}
