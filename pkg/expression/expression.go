package expression

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/corpus"
)

type CompiledExpression struct {
	Program *vm.Program
	Text    string
}

// Env is what an item filter sees, e.g. `Chapter == "1" && Meta.vritti == "kashika"`.
type Env struct {
	Vritti  string
	Index   string
	Chapter string
	Section string
	Item    string
	Content string
	Length  int
	Meta    map[string]string
}

func (e *Env) Has(key string) bool {
	_, ok := e.Meta[key]
	return ok
}

// Compile compiles each filter as a boolean expression over Env.
func Compile(filters []string) ([]CompiledExpression, error) {
	out := make([]CompiledExpression, 0, len(filters))
	for _, text := range filters {
		program, err := expr.Compile(text, expr.Env(&Env{}), expr.AsBool())
		if err != nil {
			return nil, errors.Wrapf(err, "compile expression %q", text)
		}
		out = append(out, CompiledExpression{Program: program, Text: text})
	}
	return out, nil
}

// Filter is a set of compiled expressions. All of them must match unless Any is set,
// in which case one is enough.
type Filter struct {
	Expressions []CompiledExpression
	Any         bool
}

func NewFilter(texts []string, matchAny bool) (Filter, error) {
	exprs, err := Compile(texts)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Expressions: exprs, Any: matchAny}, nil
}

// Match is true for an empty filter.
func (f Filter) Match(env *Env) (bool, error) {
	if f.Any && len(f.Expressions) > 0 {
		return CheckItemSingleMatch(env, f.Expressions)
	}
	return Match(env, f.Expressions)
}

func (f Filter) Texts() []string {
	out := make([]string, 0, len(f.Expressions))
	for _, e := range f.Expressions {
		out = append(out, e.Text)
	}
	return out
}

// Mode is "any" or "all".
func (f Filter) Mode() string {
	if f.Any {
		return "any"
	}
	return "all"
}

// NewEnv parses it without touching its caches.
func NewEnv(vritti string, it *corpus.Item) (*Env, error) {
	doc, err := it.Parsed(false)
	if err != nil {
		return nil, err
	}

	env := &Env{
		Vritti:  vritti,
		Index:   it.Index(),
		Chapter: it.ChapterIndex(),
		Section: it.SectionIndex(),
		Item:    it.ItemIndex(),
		Meta:    map[string]string{},
	}
	if doc != nil {
		env.Content = doc.Content
		env.Length = len([]rune(doc.Content))
		env.Meta = doc.Metadata()
	}
	return env, nil
}
