package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/luxboard/internal/analysis"
	"github.com/KaramelBytes/luxboard/internal/chart"
	"github.com/KaramelBytes/luxboard/internal/parser"
	"github.com/KaramelBytes/luxboard/internal/termtable"
	"github.com/KaramelBytes/luxboard/internal/utils"
)

var (
	chtType   string
	chtFormat string
	chtOutput string
	chtWidth  int
	chtHeight int
	chtTitle  string
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Render the value series of a sensor file as a line, area or bar chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := analysis.ParseChartMode(chtType)
		if err != nil {
			return err
		}
		format := chtFormat
		if !cmd.Flags().Changed("format") && strings.EqualFold(filepath.Ext(chtOutput), ".svg") {
			format = "svg"
		}
		f, err := chart.ParseFormat(format)
		if err != nil {
			return err
		}
		opt, err := ingestOptions(cmd)
		if err != nil {
			return err
		}
		t, err := parser.LoadFile(args[0], opt)
		if err != nil {
			return err
		}
		series, err := analysis.ChartSeries(t, mode)
		if err != nil {
			return err
		}

		g := effectiveConfig()
		co := chart.Options{Width: g.ChartWidth, Height: g.ChartHeight, Title: chtTitle, Format: f}
		if chtWidth > 0 {
			co.Width = chtWidth
		}
		if chtHeight > 0 {
			co.Height = chtHeight
		}
		img, err := chart.Bytes(series, co)
		if err != nil {
			return err
		}
		out := chtOutput
		if out == "" {
			out = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])) + "." + string(f)
		}
		if err := utils.WriteOutput(cmd.OutOrStdout(), out, img); err != nil {
			return err
		}
		if out != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s chart to %s\n", mode.Label(), out)
		}
		return nil
	},
}

// termWidth sizes terminal tables for w; non-terminals get the default width.
func termWidth(w io.Writer) int {
	f, _ := w.(*os.File)
	return termtable.Width(f)
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chtType, "type", "t", "line", "chart type: line | area | bar")
	chartCmd.Flags().StringVar(&chtFormat, "format", "png", "image format: png | svg (from -o extension if omitted)")
	chartCmd.Flags().StringVarP(&chtOutput, "output", "o", "", "output path, '-' for stdout (default <file>.<format>)")
	chartCmd.Flags().IntVar(&chtWidth, "width", 0, "image width in pixels (overrides chart_width)")
	chartCmd.Flags().IntVar(&chtHeight, "height", 0, "image height in pixels (overrides chart_height)")
	chartCmd.Flags().StringVar(&chtTitle, "title", "", "optional chart title")
	addIngestFlags(chartCmd)
}
