package main

import (
	"fmt"

	"github.com/bradland/pqmashup-go/pkg/mashup"
	"github.com/bradland/pqmashup-go/pkg/mashup/models"
	"github.com/bradland/pqmashup-go/pkg/mashup/output"
	"github.com/spf13/cobra"
)

func (a *app) inspectCmd() *cobra.Command {
	var pretty, queriesOnly bool

	cmd := &cobra.Command{
		Use:   "inspect <xlsx-path>",
		Short: "Print a JSON summary of a workbook's Data Mashup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd.Context())
			if err != nil {
				return err
			}
			info, err := mashup.Inspect(args[0], opts)
			if err != nil {
				return fmt.Errorf("inspection failed: %w", err)
			}

			var data []byte
			if queriesOnly {
				var queries []models.Query
				if info.Mashup != nil {
					queries = info.Mashup.Queries
				}
				data, err = output.QueriesToJSON(queries, pretty)
			} else {
				data, err = output.ToJSON(info, pretty)
			}
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().BoolVar(&queriesOnly, "queries", false, "Print only the query list")

	return cmd
}
