package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/luxboard/internal/analysis"
	"github.com/KaramelBytes/luxboard/internal/parser"
	"github.com/KaramelBytes/luxboard/internal/utils"
	"github.com/KaramelBytes/luxboard/internal/watch"
)

var (
	anaOutputPath string
	anaSampleRows int
	anaJSON       bool
	anaWatch      bool
	anaDebounce   time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Summarize a sensor file: schema, time range, statistics and sample rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := ingestOptions(cmd)
		if err != nil {
			return err
		}
		if !anaWatch {
			return analyzeOnce(cmd.OutOrStdout(), path, opt)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return analyzeWatch(ctx, cmd, path, opt)
	},
}

func analyzeOnce(w io.Writer, path string, opt parser.Options) error {
	out, err := analyzeFile(path, opt)
	if err != nil {
		return err
	}
	if err := utils.WriteOutput(w, anaOutputPath, out); err != nil {
		return err
	}
	if anaOutputPath != "" && anaOutputPath != "-" {
		fmt.Fprintf(w, "✓ Wrote analysis to %s\n", anaOutputPath)
	}
	return nil
}

// analyzeWatch re-runs the report whenever the file settles after a change.
// Failed runs are reported and watching continues.
func analyzeWatch(ctx context.Context, cmd *cobra.Command, path string, opt parser.Options) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	fw, err := watch.NewFileWatcher(path, anaDebounce, log)
	if err != nil {
		return err
	}
	defer fw.Close()

	w, errw := cmd.OutOrStdout(), cmd.ErrOrStderr()
	run := func() {
		if err := analyzeOnce(w, path, opt); err != nil {
			fmt.Fprintf(errw, "⚠ Warning: %v\n", err)
		}
	}
	run()
	fmt.Fprintf(errw, "Watching %s (Ctrl+C to stop)\n", fw.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			log.Debug("file changed", "path", ev.Path, "op", ev.Operation)
			run()
		}
	}
}

// analyzeFile renders the report of path as Markdown or JSON.
func analyzeFile(path string, opt parser.Options) ([]byte, error) {
	t, err := parser.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	rep, err := analysis.NewReport(t, anaSampleRows)
	if err != nil {
		return nil, err
	}
	if anaJSON {
		b, err := utils.PrettyJSON(newReportJSON(rep))
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	return []byte(rep.Markdown() + "\n"), nil
}

// reportJSON is the --json form of a report; undefined statistics are null.
type reportJSON struct {
	Name     string              `json:"name"`
	Rows     int                 `json:"rows"`
	Columns  []string            `json:"columns"`
	From     *time.Time          `json:"from,omitempty"`
	To       *time.Time          `json:"to,omitempty"`
	Missing  int                 `json:"missing"`
	Stats    map[string]*float64 `json:"stats"`
	Samples  [][]string          `json:"samples,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`
}

func newReportJSON(r *analysis.Report) reportJSON {
	out := reportJSON{
		Name:     r.Name,
		Rows:     r.Rows,
		Columns:  r.Columns,
		Missing:  r.Missing,
		Stats:    map[string]*float64{},
		Samples:  r.Samples,
		Warnings: r.Warnings,
	}
	if r.HasTime && r.Rows > 0 {
		from, to := r.From, r.To
		out.From, out.To = &from, &to
	}
	for _, s := range r.Stats.Fields() {
		if math.IsNaN(s.Value) {
			out.Stats[s.Name] = nil
			continue
		}
		v := s.Value
		out.Stats[s.Name] = &v
	}
	return out
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit the report as JSON instead of Markdown")
	analyzeCmd.Flags().BoolVarP(&anaWatch, "watch", "w", false, "re-run the report whenever the file changes")
	analyzeCmd.Flags().DurationVar(&anaDebounce, "debounce", 300*time.Millisecond, "with --watch: quiet period before re-running")
	addIngestFlags(analyzeCmd)
}
