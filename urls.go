package htmlsnap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// BaseURLPlaceholder replaces base URL occurrences in canonical text. It must
// never contain a base URL itself to keep canonicalization idempotent.
const BaseURLPlaceholder = "htmlsnap-base:"

// Side tells which of the compared documents a text belongs to.
type Side int

const (
	Expected Side = iota
	Actual
)

func (s Side) String() string {
	switch s {
	case Expected:
		return "expected"
	case Actual:
		return "actual"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// BaseURLs is the pair of base URLs a comparison runs with. Current is the
// URL the system under test runs at, Snapshot the URL the reference was
// recorded against.
type BaseURLs struct {
	Current  *url.URL
	Snapshot *url.URL

	current, snapshot baseForms
}

type baseForms struct {
	plain   string
	escaped string
}

func newBaseForms(u *url.URL) baseForms {
	if u == nil {
		return baseForms{}
	}
	s := u.Scheme + "://" + u.Host + strings.TrimRight(u.EscapedPath(), "/")
	return baseForms{
		plain:   s,
		escaped: strings.ReplaceAll(s, "/", `\/`),
	}
}

// ParseBaseURLs parses the current and snapshot base URL. If snapshot is
// empty it defaults to current.
func ParseBaseURLs(current, snapshot string) (BaseURLs, error) {
	var res BaseURLs
	cu, err := parseBaseURL(current)
	if err != nil {
		return res, fmt.Errorf("current url: %w", err)
	}
	su := cu
	if snapshot != "" {
		if su, err = parseBaseURL(snapshot); err != nil {
			return res, fmt.Errorf("snapshot url: %w", err)
		}
	}
	return NewBaseURLs(cu, su), nil
}

// NewBaseURLs creates a BaseURLs from already parsed URLs. A nil snapshot
// defaults to current.
func NewBaseURLs(current, snapshot *url.URL) BaseURLs {
	if snapshot == nil {
		snapshot = current
	}
	return BaseURLs{
		Current:  current,
		Snapshot: snapshot,
		current:  newBaseForms(current),
		snapshot: newBaseForms(snapshot),
	}
}

func parseBaseURL(s string) (*url.URL, error) {
	if s == "" {
		return nil, errors.New("empty base url")
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url '%s' is not absolute", s)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("base url '%s' has query or fragment", s)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}

// IsZero reports whether no base URL is set. Canonicalization of a zero
// BaseURLs is the identity.
func (b BaseURLs) IsZero() bool { return b.current.plain == "" }

// Canonicalize rewrites all occurrences of the current and the snapshot base
// URL in text to BaseURLPlaceholder. The remainder of each URL is kept
// verbatim. The longer base is rewritten first so that a base which is a
// prefix of the other does not split it.
func (b BaseURLs) Canonicalize(text string) string {
	if b.current.plain == "" {
		return text
	}
	for _, base := range b.byLength() {
		text = replaceBase(text, base.plain, BaseURLPlaceholder)
		text = replaceBase(text, base.escaped, BaseURLPlaceholder)
	}
	return text
}

func (b BaseURLs) byLength() []baseForms {
	switch {
	case b.current == b.snapshot:
		return []baseForms{b.current}
	case len(b.snapshot.plain) > len(b.current.plain):
		return []baseForms{b.snapshot, b.current}
	}
	return []baseForms{b.current, b.snapshot}
}

// restore replaces BaseURLPlaceholder in canonical text with the base URL of
// side. The escaped form is used where an escaped slash follows.
func (b BaseURLs) restore(text string, side Side) string {
	base := b.current
	if side == Expected {
		base = b.snapshot
	}
	if base.plain == "" || !strings.Contains(text, BaseURLPlaceholder) {
		return text
	}
	var sb strings.Builder
	for {
		i := strings.Index(text, BaseURLPlaceholder)
		if i < 0 {
			sb.WriteString(text)
			break
		}
		sb.WriteString(text[:i])
		text = text[i+len(BaseURLPlaceholder):]
		if strings.HasPrefix(text, `\/`) {
			sb.WriteString(base.escaped)
		} else {
			sb.WriteString(base.plain)
		}
	}
	return sb.String()
}

// Restate rewrites occurrences of the current base URL in an actual text as
// if it was rendered under the snapshot base URL.
func (b BaseURLs) Restate(actual string) string {
	if b.current.plain == "" || b.current == b.snapshot {
		return actual
	}
	actual = replaceBase(actual, b.current.plain, b.snapshot.plain)
	return replaceBase(actual, b.current.escaped, b.snapshot.escaped)
}

func replaceBase(text, base, repl string) string {
	if base == "" || !strings.Contains(text, base) {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	for {
		i := strings.Index(text, base)
		if i < 0 {
			sb.WriteString(text)
			break
		}
		end := i + len(base)
		sb.WriteString(text[:i])
		if end < len(text) && continuesURL(text[end]) {
			sb.WriteString(base)
		} else {
			sb.WriteString(repl)
		}
		text = text[end:]
	}
	return sb.String()
}

// continuesURL reports whether c would extend the host, port or last path
// segment of a base URL.
func continuesURL(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', ':', '%', '~', '+', '@':
		return true
	}
	return false
}
