// Package main provides the pqmashup command, which extracts, repacks and
// refreshes the Power Query Data Mashup of Excel workbooks.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bradland/pqmashup-go/internal/config"
	"github.com/bradland/pqmashup-go/pkg/mashup"
	"github.com/bradland/pqmashup-go/pkg/mashup/archive"
	"github.com/bradland/pqmashup-go/pkg/mashup/host"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// app carries state shared by all subcommands of one invocation.
type app struct {
	cfgFile  string
	stderr   io.Writer
	launcher host.Launcher
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	// Failures before the config is loaded still get a diagnostic.
	ctx = config.WithLogger(ctx, slog.New(slog.NewTextHandler(stderr, nil)))

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		logCtx := ctx
		if cmd != nil && cmd.Context() != nil {
			logCtx = cmd.Context()
		}
		config.GetLogger(logCtx).Error(err.Error())
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pqmashup",
		Short: "Extract and reinject Power Query definitions in Excel workbooks",
		Long: `pqmashup unpacks the Data Mashup embedded in an Excel workbook into plain
files, packs edited files back into a copy of a template workbook, and
refreshes workbooks through Excel on Windows.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg, a.stderr)
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithConfig(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./pqmashup.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(a.extractCmd())
	rootCmd.AddCommand(a.repackCmd())
	rootCmd.AddCommand(a.refreshCmd())
	rootCmd.AddCommand(a.inspectCmd())

	return rootCmd
}

// options builds pipeline options from the configuration on ctx.
func options(ctx context.Context) (mashup.Options, error) {
	cfg := config.FromContext(ctx)
	comp, err := archive.ParseCompression(cfg.Compression)
	if err != nil {
		return mashup.Options{}, err
	}
	return mashup.Options{
		Split:        cfg.Split,
		QueriesDir:   cfg.QueriesDir,
		Compression:  comp,
		Exclude:      cfg.Exclude,
		StrictHeader: cfg.StrictHeader,
		Logger:       config.GetLogger(ctx),
	}, nil
}
