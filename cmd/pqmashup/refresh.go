package main

import (
	"github.com/bradland/pqmashup-go/internal/config"
	"github.com/bradland/pqmashup-go/pkg/mashup"
	"github.com/spf13/cobra"
)

func (a *app) refreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh <xlsx-path>",
		Short: "Refresh all queries of a workbook in Excel and save it in place",
		Long: `refresh drives Excel through COM automation and is only available on
Windows with Excel installed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mashup.Refresh(args[0], mashup.RefreshOptions{
				Visible:  config.FromContext(cmd.Context()).Visible,
				Launcher: a.launcher,
				Logger:   config.GetLogger(cmd.Context()),
			})
		},
	}

	cmd.Flags().Bool("visible", false, "Show the Excel window while refreshing")

	return cmd
}
