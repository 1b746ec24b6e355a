// Package main provides the CLI entry point for pbiextract.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Larabi1/Data-Extractor/internal/config"
	"github.com/Larabi1/Data-Extractor/internal/logger"
	"github.com/Larabi1/Data-Extractor/pkg/pbiextract"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var errNoSpreadsheet = errors.New("no spreadsheet was produced")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "pbiextract [report.pbix]",
		Short: "Extract model and report metadata from Power BI files",
		Long: `pbiextract reads a Power BI report (.pbix, .pbit), converts its data model
with pbi-tools and writes the structure, granular columns and KPIs as
colour-coded spreadsheets.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfgFile, args[0])
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ./"+config.DefaultFile+")")
	flags.StringP("output-dir", "o", "", "Output directory (default: \""+config.DefaultOutputDir+"\")")
	flags.StringSlice("search-dir", nil, "Directory searched for the pbi-tools executables (repeatable)")
	flags.String("extract-tool", "", "File name of the pbi-tools executable")
	flags.String("compile-tool", "", "File name of the pbi-tools.core executable")
	flags.String("catalog", "", "Also export every record set to this SQLite file")
	flags.Bool("include-hidden", false, "List columns of hidden tables in the granular sheet")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pbiextract", version)
		},
	})

	return rootCmd
}

func run(cmd *cobra.Command, cfgFile, input string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Verbose)
	if cfg.FileUsed != "" {
		log.Debug("loaded config file", "path", cfg.FileUsed)
	}

	e := pbiextract.New(cfg.Options(), log)
	report := e.Extract(cmd.Context(), input)
	report.WriteSummary(cmd.OutOrStdout())

	if !report.WroteSpreadsheet() {
		if err := report.Err(); err != nil {
			return fmt.Errorf("%w: %w", errNoSpreadsheet, err)
		}
		return errNoSpreadsheet
	}
	return nil
}
