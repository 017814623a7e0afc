// Package htmlsnapping supports the use of htmlsnap in your Go tests.
//
// Example reads the reference snapshot from testdata/TestPage.html:
//
//	var drv, _ = htmlsnap.New("http://localhost:8080", "http://example.com")
//
//	func TestPage(t *testing.T) {
//		resp, _ := http.Get("http://localhost:8080/page")
//		defer resp.Body.Close()
//		htmlsnapping.Config{Driver: drv}.Error(t, "", resp.Body)
//	}
//
// Reference snapshot:
//
//	<ul class="posts">
//	  <li><a href="http://example.com/post/1">{{.title}}</a></li>
//	</ul>
package htmlsnapping

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fractalqb/htmlsnap"
)

// When this environment variable is set to a regexp and the name of the current
// test matches calls to Error or Fatal will record the actual output as new
// reference snapshot instead of comparing it. E.g.
//
//	HTMLSNAP_RECORD=TestRecording go test .
const RecordEnv = "HTMLSNAP_RECORD"

// GoTestdataDir is the name of Go's default directory for testdata (see go help
// test).
const GoTestdataDir = "testdata"

func Error(t testing.TB, hint string, actual io.Reader) error {
	return defaultConfig.Error(t, hint, actual)
}

func Fatal(t testing.TB, hint string, actual io.Reader) {
	defaultConfig.Fatal(t, hint, actual)
}

func Record(t testing.TB, hint string, actual io.Reader) {
	defaultConfig.Record(t, hint, actual)
}

type RefRepo struct {
	Dir    string
	Suffix string
}

const (
	StdSuffix = ".html"
	NoSuffix  = "\x00"
)

// ActualInfix is inserted before the suffix of a reference file name to name
// the file that keeps mismatching actual output.
const ActualInfix = ".actual"

func (rr RefRepo) Filename(t testing.TB, hint string) string {
	suffix := rr.Suffix
	switch suffix {
	case "":
		suffix = StdSuffix
	case NoSuffix:
		suffix = ""
	}
	if hint == "" {
		return filepath.Join(rr.Dir, t.Name()+suffix)
	}
	if suffix == "" || strings.HasSuffix(hint, suffix) {
		return filepath.Join(rr.Dir, t.Name(), hint)
	}
	return filepath.Join(rr.Dir, t.Name(), hint+suffix)
}

type Config struct {
	RefFileName func(t testing.TB, hint string) string
	// Driver used for comparison. If nil, a driver without base URLs and
	// tolerances is used.
	Driver          *htmlsnap.Driver
	RecordOverwrite bool
	// KeepActual writes mismatching actual output next to the reference
	// snapshot.
	KeepActual bool
}

var defaultConfig = Config{
	RefFileName:     RefRepo{Dir: GoTestdataDir}.Filename,
	RecordOverwrite: false,
	KeepActual:      true,
}

var plainDriver, _ = htmlsnap.NewDriver(nil)

func (cfg Config) driver() *htmlsnap.Driver {
	if cfg.Driver == nil {
		return plainDriver
	}
	return cfg.Driver
}

func (cfg Config) refFile(t testing.TB, hint string) string {
	if cfg.RefFileName == nil {
		return defaultConfig.RefFileName(t, hint)
	}
	return cfg.RefFileName(t, hint)
}

func (cfg Config) Error(t testing.TB, hint string, actual io.Reader) error {
	t.Helper()
	if recordTest(t) {
		cfg.Record(t, hint, actual)
		return nil
	} else {
		err := cfg.compare(t, hint, actual)
		if err != nil {
			t.Error(err)
		}
		return err
	}
}

func (cfg Config) Fatal(t testing.TB, hint string, actual io.Reader) {
	t.Helper()
	if recordTest(t) {
		cfg.Record(t, hint, actual)
	} else {
		err := cfg.compare(t, hint, actual)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func recordTest(t testing.TB) bool {
	rec := os.Getenv(RecordEnv)
	if rec == "" {
		return false
	}
	r, err := regexp.Compile(rec)
	if err != nil {
		t.Logf("htmlsnapping: invalid regexp '%s' in %s, not recording: %s", rec, RecordEnv, err)
		return false
	}
	return r.MatchString(t.Name())
}

func (cfg Config) compare(t testing.TB, hint string, actual io.Reader) error {
	reffile := cfg.refFile(t, hint)
	ref, err := os.ReadFile(reffile)
	if errors.Is(err, os.ErrNotExist) {
		t.Logf("to record a reference snapshot run '%[1]s=%[2]s go test -run %[2]s'",
			RecordEnv,
			t.Name(),
		)
		return fmt.Errorf("reference snapshot %s does not exist", reffile)
	} else if err != nil {
		return err
	}
	act, err := io.ReadAll(actual)
	if err != nil {
		return err
	}
	err = cfg.driver().Match(string(ref), string(act))
	if err == nil || !cfg.KeepActual || !htmlsnap.IsMismatch(err) {
		return err
	}
	keepfile := ActualFilename(reffile)
	if kerr := os.WriteFile(keepfile, act, 0666); kerr != nil {
		t.Logf("htmlsnapping: cannot keep actual output: %s", kerr)
	} else {
		t.Logf("htmlsnapping: actual output kept in %s", keepfile)
	}
	return fmt.Errorf("%s: %w", reffile, err)
}

// ActualFilename returns the name of the file that keeps the mismatching
// actual output for reffile.
func ActualFilename(reffile string) string {
	ext := filepath.Ext(reffile)
	return strings.TrimSuffix(reffile, ext) + ActualInfix + ext
}

func (cfg Config) Record(t testing.TB, hint string, actual io.Reader) {
	t.Helper()
	reffile := cfg.refFile(t, hint)
	if _, err := os.Stat(reffile); !os.IsNotExist(err) && !cfg.RecordOverwrite {
		t.Fatalf("Record: reference snapshot '%s' already exists", reffile)
		return
	}
	dir := filepath.Dir(reffile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err = os.MkdirAll(dir, 0777); err != nil {
			t.Fatal(err)
			return
		}
	}
	wr, err := os.Create(reffile)
	if err != nil {
		t.Fatal(err)
		return
	}
	defer wr.Close()
	if err = cfg.driver().Prepare().Snapshot(wr, actual); err != nil {
		t.Error(err)
	}
	t.Errorf("htmlsnap test-recorder wrote: %s", reffile)
}
