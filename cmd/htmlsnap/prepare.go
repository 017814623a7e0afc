package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fractalqb/htmlsnap"
	"github.com/fractalqb/htmlsnap/htmlsnapping"
)

func init() {
	prepareCmd.RunE = prepareFiles
	prepareCmd.Flags().StringVarP(
		&prepareCmd.suffix,
		"suffix", "s",
		prepareCmd.suffix,
		"Set file suffix for created reference snapshots")
	prepareCmd.Flags().BoolVarP(
		&prepareCmd.force,
		"force", "f",
		prepareCmd.force,
		"Force to overwrite existing reference snapshots")
	rootCmd.AddCommand(&prepareCmd.Command)
}

var prepareCmd = struct {
	cobra.Command
	suffix string
	force  bool
}{
	Command: cobra.Command{
		Use:   "prepare [<file>...]",
		Short: "Prepare reference snapshots from HTML output",
	},
	suffix: ".snap" + htmlsnapping.StdSuffix,
	force:  false,
}

func prepareFiles(cmd *cobra.Command, files []string) error {
	drv, err := driver()
	if err != nil {
		return err
	}
	prep := drv.Prepare()
	if len(files) == 0 {
		return prep.Snapshot(cmd.OutOrStdout(), cmd.InOrStdin())
	}
	for _, f := range files {
		if err := prepareFile(prep, f); err != nil {
			return err
		}
	}
	return nil
}

func prepareFile(prep htmlsnap.Prepare, name string) error {
	snapfile := name + prepareCmd.suffix
	if _, err := os.Stat(snapfile); !os.IsNotExist(err) {
		if !prepareCmd.force {
			return fmt.Errorf("%s already exists", snapfile)
		}
	}
	rd, err := os.Open(name)
	if err != nil {
		return err
	}
	defer rd.Close()
	wr, err := os.Create(snapfile)
	if err != nil {
		return err
	}
	defer wr.Close()
	return prep.Snapshot(wr, rd)
}
