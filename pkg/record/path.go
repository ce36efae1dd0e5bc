package record

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
)

var (
	pathLanguage = gval.Full(jsonpath.PlaceholderExtension())
	compiled     sync.Map // path string -> gval.Evaluable
)

// Path is a compiled field path. Plain field names ("address",
// "publication_info") are shorthand for "$.address"; full JSONPath
// expressions are accepted as-is.
type Path struct {
	expr string
	eval gval.Evaluable
}

// Compile compiles a field path.
func Compile(path string) (*Path, error) {
	expr := path
	if !strings.HasPrefix(expr, "$") {
		expr = "$." + expr
	}
	if cached, ok := compiled.Load(expr); ok {
		return &Path{expr: expr, eval: cached.(gval.Evaluable)}, nil
	}
	eval, err := pathLanguage.NewEvaluable(expr)
	if err != nil {
		return nil, fmt.Errorf("compile field path %q: %w", path, err)
	}
	compiled.Store(expr, eval)
	return &Path{expr: expr, eval: eval}, nil
}

// MustCompile is Compile for paths known at init time.
func MustCompile(path string) *Path {
	p, err := Compile(path)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Path) String() string {
	return p.expr
}

// Lookup evaluates the path. A missing key is not an error: it reports ok=false.
func (p *Path) Lookup(rec Record) (any, bool, error) {
	v, err := p.eval(context.Background(), map[string]any(rec))
	if err != nil {
		if isMissing(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("evaluate %s: %w", p.expr, err)
	}
	return v, v != nil, nil
}

func isMissing(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown key") ||
		strings.HasPrefix(msg, "unknown parameter") ||
		strings.Contains(msg, "index out of range")
}

// Elements evaluates the path and flattens the result: a list yields its
// non-nil items in source order, any other value yields itself, a missing
// path yields nothing. Elements that lack one of musts are dropped.
func (p *Path) Elements(rec Record, musts ...string) ([]any, error) {
	v, ok, err := p.Lookup(rec)
	if err != nil || !ok {
		return nil, err
	}

	var items []any
	if list, isList := v.([]any); isList {
		items = make([]any, 0, len(list))
		for _, item := range list {
			if item != nil {
				items = append(items, item)
			}
		}
	} else {
		items = []any{v}
	}

	if len(musts) == 0 {
		return items, nil
	}
	out := items[:0]
	for _, item := range items {
		if HasAll(item, musts...) {
			out = append(out, item)
		}
	}
	return out, nil
}

// HasAll reports whether elem is an object carrying every key with a
// non-empty value.
func HasAll(elem any, keys ...string) bool {
	m := Map(elem)
	if m == nil {
		return false
	}
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			return false
		}
		if s, isString := v.(string); isString && s == "" {
			return false
		}
	}
	return true
}

// Extract is the one-shot form of Compile + Elements.
func (r Record) Extract(path string, musts ...string) ([]any, error) {
	p, err := Compile(path)
	if err != nil {
		return nil, err
	}
	return p.Elements(r, musts...)
}
