package htmlsnap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Config collects everything a Driver is created from. Use the Register and
// Declare methods or set the fields directly, then freeze the configuration
// with NewDriver. Changing a Config afterwards does not affect the Driver.
type Config struct {
	CurrentURL  string `yaml:"current_url"`
	SnapshotURL string `yaml:"snapshot_url,omitempty"`

	TolerableDifferences         []string            `yaml:"tolerable_differences,omitempty"`
	TolerableDifferencePrefixes  []string            `yaml:"tolerable_difference_prefixes,omitempty"`
	TolerableDifferencePostfixes []string            `yaml:"tolerable_difference_postfixes,omitempty"`
	TimeDependentAttributes      []TimeDependentRule `yaml:"time_dependent_attributes,omitempty"`

	// Vars is the variable scope of template spans in reference fixtures.
	Vars  map[string]any   `yaml:"vars,omitempty"`
	Funcs template.FuncMap `yaml:"-"`
	// Delims overrides the template span delimiters, e.g. ["<%", "%>"].
	Delims []string `yaml:"delims,omitempty"`

	// Minify drops insignificant whitespace from both documents before
	// parsing.
	Minify bool `yaml:"minify,omitempty"`
	// IgnoreComments skips comment nodes in both documents.
	IgnoreComments bool `yaml:"ignore_comments,omitempty"`

	Logger *slog.Logger `yaml:"-"`
}

type ConfigError struct {
	Source string
	err    error
}

func (e ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("config:%s", e.err)
	}
	return fmt.Sprintf("config %s:%s", e.Source, e.err)
}

func (e ConfigError) Unwrap() error { return e.err }

func (cfg *Config) RegisterTolerableDifferences(values ...string) *Config {
	cfg.TolerableDifferences = append(cfg.TolerableDifferences, values...)
	return cfg
}

func (cfg *Config) RegisterTolerableDifferencePrefixes(prefixes ...string) *Config {
	cfg.TolerableDifferencePrefixes = append(cfg.TolerableDifferencePrefixes, prefixes...)
	return cfg
}

func (cfg *Config) RegisterTolerableDifferencePostfixes(postfixes ...string) *Config {
	cfg.TolerableDifferencePostfixes = append(cfg.TolerableDifferencePostfixes, postfixes...)
	return cfg
}

// DeclareTimeDependentAttributes declares attribute names whose values may
// differ. An empty scope tolerates them everywhere.
func (cfg *Config) DeclareTimeDependentAttributes(scope string, names ...string) *Config {
	cfg.TimeDependentAttributes = append(cfg.TimeDependentAttributes, TimeDependentRule{
		Attributes: append([]string(nil), names...),
		Scope:      scope,
	})
	return cfg
}

// SetVar sets a variable of the template scope.
func (cfg *Config) SetVar(name string, value any) *Config {
	if cfg.Vars == nil {
		cfg.Vars = make(map[string]any)
	}
	cfg.Vars[name] = value
	return cfg
}

func ReadConfig(source string, r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, ConfigError{Source: source, err: err}
	}
	return &cfg, nil
}

func LoadConfigFile(name string) (*Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, ConfigError{Source: name, err: err}
	}
	defer f.Close()
	return ReadConfig(name, f)
}

func (cfg *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
