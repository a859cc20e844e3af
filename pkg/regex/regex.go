package regex

import (
	"strconv"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

const matchTimeout = 5 * time.Second

type Pattern struct {
	Expression *regexp2.Regexp
}

// Compile compiles a pattern using .NET-style syntax, which allows named groups as (?<name>...).
func Compile(pattern string) (*Pattern, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, errors.Wrapf(err, "compile pattern %q", pattern)
	}

	re.MatchTimeout = matchTimeout
	return &Pattern{Expression: re}, nil
}

func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) String() string {
	if p == nil || p.Expression == nil {
		return ""
	}
	return p.Expression.String()
}

// Check reports whether text matches the pattern.
func Check(text string, p *Pattern) (bool, error) {
	if p == nil || p.Expression == nil {
		return false, errors.New("nil pattern")
	}

	match, err := p.Expression.MatchString(text)
	if err != nil {
		return false, errors.Wrapf(err, "match %q", p.String())
	}
	return match, nil
}

// CheckAny reports whether text matches at least one pattern.
func CheckAny(text string, patterns []*Pattern) (bool, error) {
	for _, p := range patterns {
		match, err := Check(text, p)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// Groups returns the named groups that participated in the first match of text.
// A nil map means the pattern did not match.
func Groups(text string, p *Pattern) (map[string]string, error) {
	if p == nil || p.Expression == nil {
		return nil, errors.New("nil pattern")
	}

	m, err := p.Expression.FindStringMatch(text)
	if err != nil {
		return nil, errors.Wrapf(err, "match %q", p.String())
	}
	if m == nil {
		return nil, nil
	}

	groups := make(map[string]string)
	for _, name := range p.Expression.GetGroupNames() {
		if _, numeric := strconv.Atoi(name); numeric == nil {
			continue
		}

		g := m.GroupByName(name)
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		groups[name] = g.String()
	}
	return groups, nil
}

// ReplaceAll substitutes every match in text; replacement may refer to groups as $1 or ${name}.
func ReplaceAll(text string, p *Pattern, replacement string) (string, error) {
	if p == nil || p.Expression == nil {
		return "", errors.New("nil pattern")
	}

	out, err := p.Expression.Replace(text, replacement, -1, -1)
	if err != nil {
		return "", errors.Wrapf(err, "replace %q", p.String())
	}
	return out, nil
}
