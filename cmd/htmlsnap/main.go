// A command line tool to compare HTML output with reference snapshots
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fractalqb/htmlsnap"
	"github.com/spf13/cobra"
)

var rootCmd = struct {
	cobra.Command
	config         string
	currentURL     string
	snapshotURL    string
	tolerate       []string
	prefixes       []string
	postfixes      []string
	timeDependent  []string
	scope          string
	vars           map[string]string
	minify         bool
	ignoreComments bool
	verbose        bool
}{
	Command: cobra.Command{
		Use:   "htmlsnap",
		Short: "Compare HTML output with reference snapshots",
		Long: `Compare HTML output with reference snapshots.

Snapshots are templates: spans like {{.name}} are evaluated with the
variables set by --var or the config file before comparison. Differences
in base URLs, registered tolerable values and time-dependent attributes
are accepted.`,
		SilenceUsage: true,
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootCmd.config, "config", "c", "",
		"Load comparison rules from YAML file")
	flags.StringVar(&rootCmd.currentURL, "current-url", "",
		"Base URL the compared output was rendered under")
	flags.StringVar(&rootCmd.snapshotURL, "snapshot-url", "",
		"Base URL the snapshots were recorded under (default current URL)")
	flags.StringSliceVarP(&rootCmd.tolerate, "tolerate", "t", nil,
		"Register tolerable difference values")
	flags.StringSliceVar(&rootCmd.prefixes, "prefix", nil,
		"Register prefixes for tolerable differences")
	flags.StringSliceVar(&rootCmd.postfixes, "postfix", nil,
		"Register postfixes for tolerable differences")
	flags.StringSliceVar(&rootCmd.timeDependent, "time-dependent", nil,
		"Declare time-dependent attributes")
	flags.StringVar(&rootCmd.scope, "scope", "",
		"Selector that limits --time-dependent attributes")
	flags.StringToStringVar(&rootCmd.vars, "var", nil,
		"Set template variables name=value")
	flags.BoolVar(&rootCmd.minify, "minify", false,
		"Ignore insignificant whitespace")
	flags.BoolVar(&rootCmd.ignoreComments, "ignore-comments", false,
		"Do not compare HTML comments")
	flags.BoolVarP(&rootCmd.verbose, "verbose", "v", false,
		"Log accepted differences")
}

func logger() *slog.Logger {
	lvl := slog.LevelInfo
	if rootCmd.verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func config() (*htmlsnap.Config, error) {
	cfg := new(htmlsnap.Config)
	if rootCmd.config != "" {
		var err error
		if cfg, err = htmlsnap.LoadConfigFile(rootCmd.config); err != nil {
			return nil, err
		}
	}
	if rootCmd.currentURL != "" {
		cfg.CurrentURL = rootCmd.currentURL
	}
	if rootCmd.snapshotURL != "" {
		cfg.SnapshotURL = rootCmd.snapshotURL
	}
	cfg.RegisterTolerableDifferences(rootCmd.tolerate...).
		RegisterTolerableDifferencePrefixes(rootCmd.prefixes...).
		RegisterTolerableDifferencePostfixes(rootCmd.postfixes...)
	switch {
	case len(rootCmd.timeDependent) > 0:
		cfg.DeclareTimeDependentAttributes(rootCmd.scope, rootCmd.timeDependent...)
	case rootCmd.scope != "":
		return nil, fmt.Errorf("--scope without --time-dependent attributes")
	}
	for k, v := range rootCmd.vars {
		cfg.SetVar(k, v)
	}
	cfg.Minify = cfg.Minify || rootCmd.minify
	cfg.IgnoreComments = cfg.IgnoreComments || rootCmd.ignoreComments
	cfg.Logger = logger()
	return cfg, nil
}

func driver() (*htmlsnap.Driver, error) {
	cfg, err := config()
	if err != nil {
		return nil, err
	}
	return htmlsnap.NewDriver(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
