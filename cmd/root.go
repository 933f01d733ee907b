package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/luxboard/internal/config"
	"github.com/KaramelBytes/luxboard/internal/logging"
	"github.com/KaramelBytes/luxboard/internal/parser"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string

	// Ingestion flags shared by the file commands (override config if set)
	flagDelimiter   string
	flagDecimal     string
	flagValueColumn string
	flagSheet       string
	flagSheetIndex  int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "luxboard",
	Short: "luxboard: light-sensor data dashboard",
	Long: `luxboard loads light-sensor readings from CSV (or XLSX) files and lets you chart them,
summarize them, filter them by threshold and download the result, either in a browser
dashboard (luxboard serve) or from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.luxboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

// addIngestFlags registers the options that control how a file is read.
func addIngestFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (by extension if omitted)")
	c.Flags().StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.' | ','")
	c.Flags().StringVar(&flagValueColumn, "value-column", "", "column to use as the value series (first non-Time column if omitted)")
	c.Flags().StringVar(&flagSheet, "sheet", "", "XLSX: sheet name")
	c.Flags().IntVar(&flagSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet not provided)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// effectiveConfig returns the loaded config, or defaults when loading failed.
func effectiveConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return cfgpkg.Default()
}

// ingestOptions merges the ingestion flags over the configuration.
func ingestOptions(c *cobra.Command) (parser.Options, error) {
	g := *effectiveConfig()
	f := c.Flags()
	for _, o := range []struct {
		flag, key, val string
	}{
		{"delimiter", "delimiter", flagDelimiter},
		{"decimal", "decimal_separator", flagDecimal},
		{"value-column", "value_column", flagValueColumn},
	} {
		if !f.Changed(o.flag) {
			continue
		}
		if err := g.Set(o.key, o.val); err != nil {
			return parser.Options{}, fmt.Errorf("--%s: %w", o.flag, err)
		}
	}
	opt := g.ParserOptions()
	opt.Sheet = flagSheet
	opt.SheetIndex = flagSheetIndex
	return opt, nil
}

// newLogger builds the stderr logger; --debug wins over --log-level and config.
func newLogger() (*slog.Logger, error) {
	g := effectiveConfig()
	level := g.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if debug {
		level = "debug"
	}
	return logging.New(os.Stderr, level, g.LogFormat)
}
