package htmlsnap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MismatchKind classifies the divergence reported by a Mismatch.
type MismatchKind int

const (
	// Node type, tag name or doctype differs.
	KindNode MismatchKind = iota + 1
	// Attribute value differs and no rule accepts the actual value.
	KindAttribute
	// Attribute of the expected node is missing on the actual node.
	KindMissingAttribute
	// Attribute of the actual node is not on the expected node.
	KindExtraAttribute
	// Text or comment content differs and no rule accepts the actual value.
	KindText
	// Nodes have different numbers of children.
	KindChildCount
)

func (k MismatchKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindAttribute:
		return "attribute"
	case KindMissingAttribute:
		return "missing attribute"
	case KindExtraAttribute:
		return "extra attribute"
	case KindText:
		return "text"
	case KindChildCount:
		return "child count"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Mismatch reports the first divergence between the expected and the actual
// document that no rule accepts.
type Mismatch struct {
	Kind MismatchKind
	// Path is the chain of nodes from the document root to the diverging
	// node, e.g. "div.container>p:nth-child(2)".
	Path string
	// Attr is the attribute name for attribute mismatches.
	Attr     string
	Expected string
	Actual   string
}

func (m *Mismatch) Location() string {
	if m.Attr == "" {
		return m.Path
	}
	return m.Path + "@" + m.Attr
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s mismatch at %s: expected %q, actual %q",
		m.Kind,
		m.Location(),
		m.Expected,
		m.Actual,
	)
}

// IsMismatch reports whether err is or wraps a *Mismatch.
func IsMismatch(err error) bool {
	var mm *Mismatch
	return errors.As(err, &mm)
}

// ParseError reports a document that could not be prepared for comparison.
type ParseError struct {
	Side Side
	err  error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse %s:%s", e.Side, e.err)
}

func (e ParseError) Unwrap() error { return e.err }

var bodyContext = &html.Node{
	Type:     html.ElementNode,
	Data:     "body",
	DataAtom: atom.Body,
}

func isDocument(s string) bool {
	s = strings.TrimLeftFunc(strings.TrimPrefix(s, "\uFEFF"), unicode.IsSpace)
	if len(s) > 9 {
		s = s[:9]
	}
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "<!doctype") || strings.HasPrefix(s, "<html")
}

// parseDoc returns a document node. Fragments are attached to a synthetic
// document node so that selectors and parent chains work the same way.
func parseDoc(s string, fullDoc bool) (*html.Node, error) {
	if fullDoc {
		return html.Parse(strings.NewReader(s))
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), bodyContext)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

type walker struct {
	drv    *Driver
	scopes scopeIndex
	path   []string
}

func (w *walker) pathString() string {
	if len(w.path) == 0 {
		return "/"
	}
	return strings.Join(w.path, ">")
}

func (w *walker) mismatch(kind MismatchKind, attr, exp, act string) *Mismatch {
	return &Mismatch{
		Kind:     kind,
		Path:     w.pathString(),
		Attr:     attr,
		Expected: w.drv.urls.restore(exp, Expected),
		Actual:   w.drv.urls.restore(act, Actual),
	}
}

func (w *walker) node(e, a *html.Node) *Mismatch {
	if e.Type != a.Type {
		return w.mismatch(KindNode, "", describe(e), describe(a))
	}
	switch e.Type {
	case html.ElementNode:
		if e.Data != a.Data || e.Namespace != a.Namespace {
			return w.mismatch(KindNode, "", describe(e), describe(a))
		}
		if mm := w.attrs(e, a); mm != nil {
			return mm
		}
	case html.TextNode, html.CommentNode:
		return w.text(e.Data, a.Data)
	case html.DoctypeNode:
		if !strings.EqualFold(e.Data, a.Data) {
			return w.mismatch(KindNode, "", describe(e), describe(a))
		}
		return nil
	}
	return w.children(e, a)
}

func (w *walker) children(e, a *html.Node) *Mismatch {
	ecs, acs := w.childNodes(e), w.childNodes(a)
	n := min(len(ecs), len(acs))
	elems := 0
	for _, c := range ecs {
		if c.Type == html.ElementNode {
			elems++
		}
	}
	elemNo := 0
	for i := 0; i < n; i++ {
		ec := ecs[i]
		if ec.Type == html.ElementNode {
			elemNo++
		}
		w.path = append(w.path, segment(ec, i+1, elemNo, elems))
		mm := w.node(ec, acs[i])
		w.path = w.path[:len(w.path)-1]
		if mm != nil {
			return mm
		}
	}
	if len(ecs) != len(acs) {
		return w.mismatch(KindChildCount, "",
			strconv.Itoa(len(ecs)),
			strconv.Itoa(len(acs)),
		)
	}
	return nil
}

func (w *walker) childNodes(n *html.Node) (res []*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode && w.drv.ignoreComments {
			continue
		}
		res = append(res, c)
	}
	return res
}

func (w *walker) attrs(e, a *html.Node) *Mismatch {
	for _, ea := range e.Attr {
		aa, ok := findAttr(a, ea)
		name := attrName(ea)
		if !ok {
			return w.mismatch(KindMissingAttribute, name, ea.Val, "")
		}
		if ea.Val == aa.Val {
			continue
		}
		if scope, ok := w.drv.td.tolerates(name, a, w.scopes); ok {
			w.drv.log.Debug("tolerated time dependent attribute",
				"path", w.pathString(),
				"attr", name,
				"scope", scope,
				"expected", ea.Val,
				"actual", aa.Val,
			)
			continue
		}
		if w.drv.tol.Matches(aa.Val) {
			w.drv.log.Debug("tolerated attribute difference",
				"path", w.pathString(),
				"attr", name,
				"expected", ea.Val,
				"actual", aa.Val,
			)
			continue
		}
		return w.mismatch(KindAttribute, name, ea.Val, aa.Val)
	}
	for _, aa := range a.Attr {
		if _, ok := findAttr(e, aa); !ok {
			return w.mismatch(KindExtraAttribute, attrName(aa), "", aa.Val)
		}
	}
	return nil
}

func (w *walker) text(exp, act string) *Mismatch {
	if exp == act {
		return nil
	}
	tol := w.drv.tol
	if tol.Matches(act) {
		w.drv.log.Debug("tolerated text difference",
			"path", w.pathString(),
			"expected", exp,
			"actual", act,
		)
		return nil
	}
	elead, _, etrail := splitSpace(exp)
	alead, acore, atrail := splitSpace(act)
	if acore != act && elead == alead && etrail == atrail && tol.Matches(acore) {
		w.drv.log.Debug("tolerated text difference",
			"path", w.pathString(),
			"expected", exp,
			"actual", act,
		)
		return nil
	}
	return w.mismatch(KindText, "", exp, act)
}

func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	core = strings.TrimRightFunc(core, unicode.IsSpace)
	trail = s[len(lead)+len(core):]
	return lead, core, trail
}

func findAttr(n *html.Node, like html.Attribute) (html.Attribute, bool) {
	for _, a := range n.Attr {
		if a.Key == like.Key && a.Namespace == like.Namespace {
			return a, true
		}
	}
	return html.Attribute{}, false
}

func attrName(a html.Attribute) string {
	if a.Namespace == "" {
		return a.Key
	}
	return a.Namespace + ":" + a.Key
}

func segment(n *html.Node, childNo, elemNo, elems int) string {
	switch n.Type {
	case html.ElementNode:
		var sb strings.Builder
		sb.WriteString(n.Data)
		for _, a := range n.Attr {
			switch a.Key {
			case "id":
				if a.Val != "" {
					sb.WriteByte('#')
					sb.WriteString(a.Val)
				}
			case "class":
				for _, c := range strings.Fields(a.Val) {
					sb.WriteByte('.')
					sb.WriteString(c)
				}
			}
		}
		if elems > 1 {
			fmt.Fprintf(&sb, ":nth-child(%d)", elemNo)
		}
		return sb.String()
	case html.TextNode:
		return "#text(" + strconv.Itoa(childNo) + ")"
	case html.CommentNode:
		return "#comment(" + strconv.Itoa(childNo) + ")"
	case html.DoctypeNode:
		return "!doctype"
	}
	return "#node(" + strconv.Itoa(childNo) + ")"
}

func describe(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return "<" + n.Data + ">"
	case html.TextNode:
		return "text " + strconv.Quote(n.Data)
	case html.CommentNode:
		return "comment " + strconv.Quote(n.Data)
	case html.DoctypeNode:
		return "<!DOCTYPE " + n.Data + ">"
	case html.DocumentNode:
		return "document"
	}
	return "node"
}
