package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	evaluateCmd.RunE = evaluateFiles
	rootCmd.AddCommand(&evaluateCmd)
}

var evaluateCmd = cobra.Command{
	Use:   "evaluate [<snapshot>...]",
	Short: "Print snapshots with template spans evaluated",
}

func evaluateFiles(cmd *cobra.Command, files []string) error {
	drv, err := driver()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		tmpl, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		res, err := drv.Evaluate(string(tmpl))
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, res)
		return err
	}
	for _, f := range files {
		tmpl, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		res, err := drv.Evaluate(string(tmpl))
		if err != nil {
			return err
		}
		if _, err = io.WriteString(out, res); err != nil {
			return err
		}
	}
	return nil
}
