package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/luxboard/internal/analysis"
	"github.com/KaramelBytes/luxboard/internal/parser"
	"github.com/KaramelBytes/luxboard/internal/termtable"
	"github.com/KaramelBytes/luxboard/internal/utils"
)

var (
	fltMin     float64
	fltMax     float64
	fltSide    string
	fltOutput  string
	fltPreview int
)

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Keep the rows above --min (side lower) or below --max (side upper) and write them as CSV",
	Long: `filter applies one of the two threshold filters to a sensor file.

  --side lower  keeps rows whose value is greater than --min
  --side upper  keeps rows whose value is less than --max

Omitted thresholds default to the mean of the value column; out-of-range thresholds
are clamped to the observed minimum and maximum. When every value is equal there is
nothing to filter and the command fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := ingestOptions(cmd)
		if err != nil {
			return err
		}
		t, err := parser.LoadFile(args[0], opt)
		if err != nil {
			return err
		}

		var th analysis.Thresholds
		if cmd.Flags().Changed("min") {
			th.Min = &fltMin
		}
		if cmd.Flags().Changed("max") {
			th.Max = &fltMax
		}
		res, err := analysis.Filter(t, th)
		if err != nil {
			return err
		}
		if res.Degenerate {
			return fmt.Errorf("%s", res.Warning)
		}

		view, desc := res.Lower, fmt.Sprintf("value > %g", res.Min)
		switch fltSide {
		case "lower":
		case "upper":
			view, desc = res.Upper, fmt.Sprintf("value < %g", res.Max)
		default:
			return fmt.Errorf("invalid --side: %s (use lower or upper)", fltSide)
		}
		data, err := view.EncodeCSV()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if err := utils.WriteOutput(w, fltOutput, data); err != nil {
			return err
		}
		if fltOutput == "" || fltOutput == "-" {
			return nil
		}
		fmt.Fprintf(w, "✓ Wrote %d of %d rows (%s) to %s\n", view.Len(), t.Len(), desc, fltOutput)
		if fltPreview <= 0 || view.Len() == 0 {
			return nil
		}
		rows := make([][]string, 0, fltPreview)
		for i := 0; i < view.Len() && i < fltPreview; i++ {
			rows = append(rows, view.Record(i))
		}
		return termtable.Render(w, view.Header(), rows, termWidth(w))
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().Float64Var(&fltMin, "min", 0, "lower threshold (default: mean)")
	filterCmd.Flags().Float64Var(&fltMax, "max", 0, "upper threshold (default: mean)")
	filterCmd.Flags().StringVar(&fltSide, "side", "lower", "which filter to write: lower (> min) | upper (< max)")
	filterCmd.Flags().StringVarP(&fltOutput, "output", "o", "", "CSV output path (stdout if omitted)")
	filterCmd.Flags().IntVar(&fltPreview, "preview", 10, "with -o: rows to preview in the terminal (0 disables)")
	addIngestFlags(filterCmd)
}
