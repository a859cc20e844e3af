package sutraapi

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/pkg/errors"
)

var ErrCorruptDump = errors.New("corrupt dump")

// Record is one parsed payload: a JSON object keyed by vritti name among other fields.
type Record struct {
	ID   string
	data map[string]any
}

func Parse(id string, payload []byte) (*Record, error) {
	v, err := oj.Parse(payload)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptDump, "%s: %v", id, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(ErrCorruptDump, "%s: payload is %T, not an object", id, v)
	}
	return &Record{ID: id, data: obj}, nil
}

// Field returns a top level field rendered as text. Numbers and booleans are formatted,
// nested values are rendered as JSON.
func (r *Record) Field(key string) (string, bool) {
	v := jp.C(key).First(r.data)
	if v == nil {
		if _, present := r.data[key]; !present {
			return "", false
		}
		return "", true
	}
	return text(v), true
}

// VrittiIndex returns the "<vritti>_index" field some commentaries carry.
func (r *Record) VrittiIndex(vritti string) (string, bool) {
	v, ok := r.Field(vritti + "_index")
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Query evaluates a JSONPath expression against the payload.
func (r *Record) Query(path string) ([]any, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid jsonpath %q", path)
	}
	return x.Get(r.data), nil
}

func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.data))
	for k := range r.data {
		keys = append(keys, k)
	}
	return keys
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64, float64, bool:
		return fmt.Sprint(t)
	default:
		return oj.JSON(t, &oj.Options{Sort: true})
	}
}
