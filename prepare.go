package htmlsnap

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

// Prepare writes reference snapshots from actual HTML output. Base URLs are
// restated to the snapshot base URL and left template delimiters in the
// output are escaped so that evaluating the snapshot yields the output again.
type Prepare struct {
	URLs       BaseURLs
	LeftDelim  string
	RightDelim string
	// MaxLine is the maximum accepted line length. If 0, bufio's default
	// applies.
	MaxLine int
}

// Prepare returns a Prepare configured like drv.
func (drv *Driver) Prepare() Prepare {
	l, r := drv.eval.delims()
	return Prepare{URLs: drv.urls, LeftDelim: l, RightDelim: r}
}

func (p Prepare) Snapshot(ref io.Writer, subj io.Reader) (err error) {
	ev := Evaluator{LeftDelim: p.LeftDelim, RightDelim: p.RightDelim}
	ldelim, rdelim := ev.delims()
	escaped := ldelim + strconv.Quote(ldelim) + rdelim
	var sep lineSepScanner
	scn := bufio.NewScanner(subj)
	if p.MaxLine > 0 {
		scn.Buffer(nil, p.MaxLine)
	}
	scn.Split(sep.ScanLines)
	for scn.Scan() {
		line := p.URLs.Restate(scn.Text())
		line = strings.ReplaceAll(line, ldelim, escaped)
		if _, err = io.WriteString(ref, line); err != nil {
			return err
		}
		if _, err = ref.Write(sep); err != nil {
			return err
		}
	}
	return scn.Err()
}

// SnapshotString is Snapshot for strings.
func (p Prepare) SnapshotString(subj string) (string, error) {
	var sb strings.Builder
	err := p.Snapshot(&sb, strings.NewReader(subj))
	return sb.String(), err
}

type lineSepScanner []byte

func (lsc *lineSepScanner) ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// modificated version of bufio.Scan
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		res, cr := dropCR(data[0:i])
		*lsc = data[i-cr : i+1]
		return i + 1, res, nil
	}
	if atEOF {
		res, cr := dropCR(data)
		*lsc = data[len(data)-cr:]
		return len(data), res, nil
	}
	return 0, nil, nil
}

func dropCR(data []byte) ([]byte, int) {
	// modificated version of bufio.dropCR
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[0 : len(data)-1], 1
	}
	return data, 0
}
