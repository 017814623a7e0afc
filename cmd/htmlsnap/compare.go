package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fractalqb/htmlsnap"
	"github.com/spf13/cobra"
)

func init() {
	compareCmd.RunE = checkFiles
	compareCmd.Flags().StringVarP(&compareCmd.reffile, "reference", "r", "",
		"Set reference snapshot file name")
	compareCmd.MarkFlagRequired("reference")
	rootCmd.AddCommand(&compareCmd.Command)
}

var compareCmd = struct {
	cobra.Command
	reffile string
}{
	Command: cobra.Command{
		Use:   "compare -r <snapshot> [<file>...]",
		Short: "Compare HTML files to a reference snapshot",
	},
}

func checkFiles(cmd *cobra.Command, files []string) error {
	drv, err := driver()
	if err != nil {
		return err
	}
	ref, err := os.ReadFile(compareCmd.reffile)
	if err != nil {
		return err
	}
	log := logger()
	if len(files) == 0 {
		if !checkRd(log, drv, string(ref), "stdin", cmd.InOrStdin()) {
			return fmt.Errorf("stdin does not match %s", compareCmd.reffile)
		}
		return nil
	}
	failed := 0
	for _, f := range files {
		if !checkFile(log, drv, string(ref), f) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files do not match %s", failed, len(files), compareCmd.reffile)
	}
	return nil
}

func checkFile(log *slog.Logger, drv *htmlsnap.Driver, ref, name string) bool {
	r, err := os.Open(name)
	if err != nil {
		log.Error("cannot open subject", "file", name, "error", err)
		return false
	}
	defer r.Close()
	return checkRd(log, drv, ref, name, r)
}

func checkRd(log *slog.Logger, drv *htmlsnap.Driver, ref, name string, r io.Reader) bool {
	act, err := io.ReadAll(r)
	if err != nil {
		log.Error("cannot read subject", "file", name, "error", err)
		return false
	}
	err = drv.Match(ref, string(act))
	var mm *htmlsnap.Mismatch
	switch {
	case err == nil:
		log.Info("matches reference", "file", name, "reference", compareCmd.reffile)
		return true
	case errors.As(err, &mm):
		log.Error("mismatch",
			"file", name,
			"reference", compareCmd.reffile,
			"kind", mm.Kind,
			"at", mm.Location(),
			"expected", mm.Expected,
			"actual", mm.Actual,
		)
	default:
		log.Error("cannot compare", "file", name, "error", err)
	}
	return false
}
