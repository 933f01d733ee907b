package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	abOutDir     string
	abSampleRows int
	abJSON       bool
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Summarize several sensor files (globs allowed), optionally into a directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		opt, err := ingestOptions(cmd)
		if err != nil {
			return err
		}
		// analyzeFile reads the single-file flags.
		anaSampleRows, anaJSON = abSampleRows, abJSON

		reports := make([][]byte, len(files))
		var g errgroup.Group
		g.SetLimit(runtime.NumCPU())
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				out, err := analyzeFile(path, opt)
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				reports[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		ext := ".summary.md"
		if abJSON {
			ext = ".summary.json"
		}
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(w, "[%d/%d] Processing %s...\n", i+1, len(files), filepath.Base(path))
			}
			if abOutDir == "" {
				if _, err := w.Write(reports[i]); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				continue
			}
			if err := os.MkdirAll(abOutDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			outFile := filepath.Join(abOutDir, base+ext)
			if _, statErr := os.Stat(outFile); statErr == nil {
				for idx := 2; ; idx++ {
					cand := filepath.Join(abOutDir, fmt.Sprintf("%s__%d%s", base, idx, ext))
					if _, err := os.Stat(cand); os.IsNotExist(err) {
						if !abQuiet {
							fmt.Fprintf(w, "⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(cand))
						}
						outFile = cand
						break
					}
				}
			}
			if err := os.WriteFile(outFile, reports[i], 0o644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(w, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, deduplicated and sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abOutDir, "out-dir", "d", "", "directory for <name>.summary.md files (stdout if omitted)")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	analyzeBatchCmd.Flags().BoolVar(&abJSON, "json", false, "emit JSON reports instead of Markdown")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	addIngestFlags(analyzeBatchCmd)
}
