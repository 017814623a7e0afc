package htmlsnap

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// TimeDependentRule declares attributes whose values may differ between
// recordings. With an empty Scope the attributes are tolerated everywhere,
// otherwise only on elements matching the Scope selector and their
// descendants. Once an attribute is declared with any scope, its scopes
// govern and an unscoped declaration of the same attribute has no effect.
type TimeDependentRule struct {
	Attributes []string `yaml:"attributes"`
	Scope      string   `yaml:"scope,omitempty"`
}

type scopedRule struct {
	scope string
	sel   cascadia.Selector
}

// timeDependence is the compiled form of all time-dependent rules.
type timeDependence struct {
	anywhere map[string]bool
	scoped   map[string][]int
	scopes   []scopedRule
}

func compileTimeDependence(rules []TimeDependentRule) (*timeDependence, error) {
	td := &timeDependence{
		anywhere: make(map[string]bool),
		scoped:   make(map[string][]int),
	}
	scopeIdx := make(map[string]int)
	for _, r := range rules {
		if r.Scope == "" {
			for _, a := range r.Attributes {
				td.anywhere[a] = true
			}
			continue
		}
		i, ok := scopeIdx[r.Scope]
		if !ok {
			sel, err := cascadia.Compile(r.Scope)
			if err != nil {
				return nil, fmt.Errorf("time dependent scope '%s': %w", r.Scope, err)
			}
			i = len(td.scopes)
			td.scopes = append(td.scopes, scopedRule{scope: r.Scope, sel: sel})
			scopeIdx[r.Scope] = i
		}
		for _, a := range r.Attributes {
			td.scoped[a] = append(td.scoped[a], i)
		}
	}
	return td, nil
}

func (td *timeDependence) empty() bool {
	return td == nil || (len(td.anywhere) == 0 && len(td.scoped) == 0)
}

// scopeIndex holds the elements of one document that match each scope
// selector.
type scopeIndex [][]*html.Node

func (td *timeDependence) index(doc *html.Node) scopeIndex {
	if td.empty() || len(td.scopes) == 0 {
		return nil
	}
	gq := goquery.NewDocumentFromNode(doc)
	idx := make(scopeIndex, len(td.scopes))
	for i, s := range td.scopes {
		idx[i] = gq.FindMatcher(s.sel).Nodes
	}
	return idx
}

// tolerates reports whether attribute attr on node n of the indexed document
// may differ.
func (td *timeDependence) tolerates(attr string, n *html.Node, idx scopeIndex) (scope string, ok bool) {
	if td.empty() {
		return "", false
	}
	scopes, ok := td.scoped[attr]
	if !ok {
		return "", td.anywhere[attr]
	}
	for _, si := range scopes {
		if si >= len(idx) {
			continue
		}
		for a := n; a != nil; a = a.Parent {
			if containsNode(idx[si], a) {
				return td.scopes[si].scope, true
			}
		}
	}
	return "", false
}

func containsNode(ns []*html.Node, n *html.Node) bool {
	for _, m := range ns {
		if m == n {
			return true
		}
	}
	return false
}
