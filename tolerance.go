package htmlsnap

import (
	"slices"
	"strings"
)

// Tolerances is the frozen registry of tolerable differences. An actual value
// that matches is accepted in place of any expected value.
type Tolerances struct {
	values    map[string]struct{}
	prefixes  []string
	postfixes []string
}

func newTolerances(values, prefixes, postfixes []string) *Tolerances {
	t := &Tolerances{values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		if v != "" {
			t.values[v] = struct{}{}
		}
	}
	t.prefixes = wrappers(prefixes)
	t.postfixes = wrappers(postfixes)
	return t
}

func wrappers(ws []string) []string {
	res := make([]string, 0, len(ws))
	for _, w := range ws {
		if w != "" {
			res = append(res, w)
		}
	}
	slices.Sort(res)
	return slices.Compact(res)
}

// Empty reports whether no tolerable value is registered.
func (t *Tolerances) Empty() bool { return t == nil || len(t.values) == 0 }

// Matches reports whether observed is a registered value, optionally wrapped
// into a registered prefix and/or postfix.
func (t *Tolerances) Matches(observed string) bool {
	if t.Empty() {
		return false
	}
	if t.literal(observed) {
		return true
	}
	for _, p := range t.prefixes {
		if rest, ok := strings.CutPrefix(observed, p); ok && t.withPostfix(rest, true) {
			return true
		}
	}
	return t.withPostfix(observed, false)
}

func (t *Tolerances) literal(s string) bool {
	_, ok := t.values[s]
	return ok
}

func (t *Tolerances) withPostfix(s string, bare bool) bool {
	if bare && t.literal(s) {
		return true
	}
	for _, p := range t.postfixes {
		if rest, ok := strings.CutSuffix(s, p); ok && t.literal(rest) {
			return true
		}
	}
	return false
}

// Values returns the registered tolerable values in sorted order.
func (t *Tolerances) Values() []string {
	if t == nil {
		return nil
	}
	res := make([]string, 0, len(t.values))
	for v := range t.values {
		res = append(res, v)
	}
	slices.Sort(res)
	return res
}
