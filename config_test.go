package htmlsnap

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesYAML = `current_url: https://host:8080/some/path
snapshot_url: http://example.com
tolerable_differences: ["23", "89"]
tolerable_difference_prefixes: [prefix-]
tolerable_difference_postfixes: [-postfix]
time_dependent_attributes:
  - attributes: [data-id]
    scope: .container
  - attributes: [data-time]
vars:
  title: Hello
minify: true
`

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig("rules.yaml", strings.NewReader(rulesYAML))
	require.NoError(t, err)
	assert.Equal(t, "https://host:8080/some/path", cfg.CurrentURL)
	assert.Equal(t, "http://example.com", cfg.SnapshotURL)
	assert.Equal(t, []string{"23", "89"}, cfg.TolerableDifferences)
	assert.Equal(t, []string{"prefix-"}, cfg.TolerableDifferencePrefixes)
	assert.Equal(t, []string{"-postfix"}, cfg.TolerableDifferencePostfixes)
	assert.Equal(t, []TimeDependentRule{
		{Attributes: []string{"data-id"}, Scope: ".container"},
		{Attributes: []string{"data-time"}},
	}, cfg.TimeDependentAttributes)
	assert.Equal(t, map[string]any{"title": "Hello"}, cfg.Vars)
	assert.True(t, cfg.Minify)
	assert.False(t, cfg.IgnoreComments)

	drv, err := NewDriver(cfg)
	require.NoError(t, err)
	assert.NoError(t, drv.Match(
		`<div class="container"><a data-id="1" href="http://example.com/x">{{.title}}</a></div>
<time data-time="12:00">prefix-foo</time>`,
		`<div class="container"><a data-id="2" href="https://host:8080/some/path/x">Hello</a></div>
<time data-time="12:01">prefix-23</time>`,
	))
}

func TestReadConfig_errors(t *testing.T) {
	_, err := ReadConfig("bad.yaml", strings.NewReader("tolerable: [1]\n"))
	var cerr ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "bad.yaml", cerr.Source)

	cfg, err := ReadConfig("empty.yaml", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cfg.CurrentURL)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfig_WriteYAML(t *testing.T) {
	cfg := new(Config).
		RegisterTolerableDifferences("23").
		DeclareTimeDependentAttributes(".post", "data-id", "data-time")
	cfg.CurrentURL = "http://example.com"
	var buf bytes.Buffer
	require.NoError(t, cfg.WriteYAML(&buf))
	file := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0666))
	back, err := LoadConfigFile(file)
	require.NoError(t, err)
	assert.Equal(t, cfg.CurrentURL, back.CurrentURL)
	assert.Equal(t, cfg.TolerableDifferences, back.TolerableDifferences)
	assert.Equal(t, cfg.TimeDependentAttributes, back.TimeDependentAttributes)
}
