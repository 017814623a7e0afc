package htmlsnap

import (
	"fmt"
	"strings"
	"text/template"
)

// Default delimiters of template spans in reference fixtures.
const (
	DefaultLeftDelim  = "{{"
	DefaultRightDelim = "}}"
)

// EvaluationError reports a template span that could not be parsed or
// executed. It is fatal for a comparison and never a mismatch.
type EvaluationError struct {
	Name string
	err  error
}

func (e EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s:%s", e.Name, e.err)
}

func (e EvaluationError) Unwrap() error { return e.err }

// Evaluator expands the template spans of a reference fixture. Spans are
// evaluated against Vars only, which is exposed to spans as the dot value,
// e.g. {{.nonce}}. A zero value is valid for use and evaluates with the
// default delimiters and an empty scope.
type Evaluator struct {
	Name       string
	Vars       map[string]any
	Funcs      template.FuncMap
	LeftDelim  string
	RightDelim string
}

func (ev *Evaluator) delims() (l, r string) {
	l, r = ev.LeftDelim, ev.RightDelim
	if l == "" {
		l = DefaultLeftDelim
	}
	if r == "" {
		r = DefaultRightDelim
	}
	return l, r
}

// Evaluate returns tmpl with each span replaced by its result. Text without
// spans is returned verbatim.
func (ev *Evaluator) Evaluate(tmpl string) (string, error) {
	name := ev.Name
	if name == "" {
		name = "fixture"
	}
	l, r := ev.delims()
	if !strings.Contains(tmpl, l) {
		return tmpl, nil
	}
	t := template.New(name).Delims(l, r).Option("missingkey=error")
	if len(ev.Funcs) > 0 {
		t = t.Funcs(ev.Funcs)
	}
	t, err := t.Parse(tmpl)
	if err != nil {
		return "", EvaluationError{Name: name, err: err}
	}
	vars := ev.Vars
	if vars == nil {
		vars = map[string]any{}
	}
	var sb strings.Builder
	sb.Grow(len(tmpl))
	if err = t.Execute(&sb, vars); err != nil {
		return "", EvaluationError{Name: name, err: err}
	}
	return sb.String(), nil
}
