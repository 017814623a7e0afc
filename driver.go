package htmlsnap

import (
	"errors"
	"io"
	"log/slog"
	"maps"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html"
)

// Driver matches HTML documents against reference snapshots. It is created
// from a Config by NewDriver and never changes afterwards. A Driver can be
// used concurrently.
type Driver struct {
	urls           BaseURLs
	tol            *Tolerances
	td             *timeDependence
	eval           Evaluator
	minifier       *minify.M
	ignoreComments bool
	log            *slog.Logger
}

// New creates a Driver without tolerances for the current base URL and an
// optional, different snapshot base URL.
func New(currentURL string, snapshotURL ...string) (*Driver, error) {
	cfg := Config{CurrentURL: currentURL}
	switch len(snapshotURL) {
	case 0:
	case 1:
		cfg.SnapshotURL = snapshotURL[0]
	default:
		return nil, ConfigError{err: errors.New("more than one snapshot url")}
	}
	return NewDriver(&cfg)
}

func NewDriver(cfg *Config) (*Driver, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	drv := &Driver{
		tol: newTolerances(
			cfg.TolerableDifferences,
			cfg.TolerableDifferencePrefixes,
			cfg.TolerableDifferencePostfixes,
		),
		ignoreComments: cfg.IgnoreComments,
		log:            cfg.Logger,
	}
	if drv.log == nil {
		drv.log = slog.New(slog.DiscardHandler)
	}
	switch {
	case cfg.CurrentURL != "":
		urls, err := ParseBaseURLs(cfg.CurrentURL, cfg.SnapshotURL)
		if err != nil {
			return nil, ConfigError{err: err}
		}
		drv.urls = urls
	case cfg.SnapshotURL != "":
		return nil, ConfigError{err: errors.New("snapshot url without current url")}
	}
	var err error
	if drv.td, err = compileTimeDependence(cfg.TimeDependentAttributes); err != nil {
		return nil, ConfigError{err: err}
	}
	drv.eval = Evaluator{
		Vars:  maps.Clone(cfg.Vars),
		Funcs: maps.Clone(cfg.Funcs),
	}
	switch len(cfg.Delims) {
	case 0:
	case 2:
		drv.eval.LeftDelim, drv.eval.RightDelim = cfg.Delims[0], cfg.Delims[1]
	default:
		return nil, ConfigError{err: errors.New("delims needs exactly left and right delimiter")}
	}
	if cfg.Minify {
		drv.minifier = minify.New()
		drv.minifier.Add("text/html", &mhtml.Minifier{
			KeepComments:        !cfg.IgnoreComments,
			KeepDefaultAttrVals: true,
			KeepDocumentTags:    true,
			KeepEndTags:         true,
			KeepQuotes:          true,
		})
	}
	return drv, nil
}

func (drv *Driver) URLs() BaseURLs { return drv.urls }

func (drv *Driver) Tolerances() *Tolerances { return drv.tol }

// Evaluate expands the template spans of a reference fixture.
func (drv *Driver) Evaluate(template string) (string, error) {
	return drv.eval.Evaluate(template)
}

// Match evaluates the expected reference fixture and compares the result to
// the actual HTML. It returns a *Mismatch on the first divergence that is not
// accepted by a rule, or a fatal EvaluationError or ParseError.
func (drv *Driver) Match(expected, actual string) error {
	exp, err := drv.Evaluate(expected)
	if err != nil {
		return err
	}
	return drv.Compare(exp, actual)
}

func (drv *Driver) MatchReaders(expected, actual io.Reader) error {
	exp, err := io.ReadAll(expected)
	if err != nil {
		return ParseError{Side: Expected, err: err}
	}
	act, err := io.ReadAll(actual)
	if err != nil {
		return ParseError{Side: Actual, err: err}
	}
	return drv.Match(string(exp), string(act))
}

// Compare compares two HTML documents or fragments without evaluating
// template spans.
func (drv *Driver) Compare(expectedHTML, actualHTML string) error {
	fullDoc := isDocument(expectedHTML) || isDocument(actualHTML)
	edoc, err := drv.prepare(expectedHTML, Expected, fullDoc)
	if err != nil {
		return err
	}
	adoc, err := drv.prepare(actualHTML, Actual, fullDoc)
	if err != nil {
		return err
	}
	w := walker{
		drv:    drv,
		scopes: drv.td.index(adoc),
	}
	if mm := w.node(edoc, adoc); mm != nil {
		drv.log.Debug("snapshot mismatch",
			"kind", mm.Kind,
			"location", mm.Location(),
		)
		return mm
	}
	return nil
}

func (drv *Driver) prepare(text string, side Side, fullDoc bool) (*html.Node, error) {
	text = drv.urls.Canonicalize(text)
	if drv.minifier != nil {
		var err error
		if text, err = drv.minifier.String("text/html", text); err != nil {
			return nil, ParseError{Side: side, err: err}
		}
	}
	doc, err := parseDoc(text, fullDoc)
	if err != nil {
		return nil, ParseError{Side: side, err: err}
	}
	return doc, nil
}

// Snapshot restates an actual HTML document as if it was rendered under the
// snapshot base URL. Use it to record new reference snapshots.
func (drv *Driver) Snapshot(actual string) string {
	return drv.urls.Restate(actual)
}
