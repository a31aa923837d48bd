package main

import (
	"fmt"

	"github.com/bradland/pqmashup-go/pkg/mashup"
	"github.com/spf13/cobra"
)

func (a *app) repackCmd() *cobra.Command {
	var sourceDir, target, output string

	cmd := &cobra.Command{
		Use:   "repack -s <dir> -t <template.xlsx> -o <output.xlsx>",
		Short: "Pack a directory into the Data Mashup of a copy of a template workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := options(cmd.Context())
			if err != nil {
				return err
			}
			if err := mashup.Repack(sourceDir, target, output, opts); err != nil {
				return fmt.Errorf("repack failed: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceDir, "source", "s", "", "Directory holding the extracted package files")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Template workbook")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output workbook")
	cmd.Flags().String("compression", "", "Entry compression (deflate|store)")
	cmd.Flags().StringSlice("exclude", nil, "Glob of source paths to leave out (repeatable)")
	cmd.Flags().Bool("strict-header", false, "Fail when the template's mashup header cannot be recovered")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
