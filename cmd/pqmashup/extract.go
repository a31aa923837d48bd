package main

import (
	"fmt"

	"github.com/bradland/pqmashup-go/internal/config"
	"github.com/bradland/pqmashup-go/pkg/mashup"
	"github.com/spf13/cobra"
)

func (a *app) extractCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "extract <xlsx-path>",
		Short: "Unpack the Data Mashup of a workbook into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd.Context())
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = config.FromContext(cmd.Context()).OutputDir
			}

			result, err := mashup.Extract(args[0], outputDir, opts)
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}
			for _, f := range append(result.Files, result.QueryFiles...) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: current directory)")
	cmd.Flags().BoolP("split", "s", false, "Also write one file per query under the queries directory")
	cmd.Flags().String("queries-dir", "", "Directory for per-query files, relative to the output directory")

	return cmd
}
