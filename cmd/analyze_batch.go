package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/chartlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abInput      inputFlags
	abOutDir     string
	abFormat     string
	abSampleRows int
	abTopN       int
	abRankMin    int
	abRankMax    int
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Summarize several chart files (globs allowed) with progress output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		opt, err := reportOptions(cmd, abRankMin, abRankMax, abTopN, abSampleRows)
		if err != nil {
			return err
		}
		ext := ".md"
		if strings.EqualFold(abFormat, "json") {
			ext = ".json"
		}
		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		total := len(files)
		failed := 0
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			body, err := analyzeFile(path, &abInput, opt, abFormat)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", path, err)
				continue
			}
			if abOutDir == "" {
				fmt.Fprintln(out, strings.TrimRight(string(body), "\n"))
				continue
			}
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			target, renamed := uniqueName(abOutDir, base, ext)
			if renamed && !abQuiet {
				fmt.Fprintf(out, "⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(target))
			}
			if err := utils.SafeWriteFile(target, body); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", target)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and dedupes.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
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
	sort.Strings(files)
	return files
}

// uniqueName returns dir/base.summary<ext>, or dir/base__N.summary<ext> when taken.
func uniqueName(dir, base, ext string) (string, bool) {
	cand := filepath.Join(dir, base+".summary"+ext)
	for idx := 2; ; idx++ {
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand, idx > 2
		}
		cand = filepath.Join(dir, fmt.Sprintf("%s__%d.summary%s", base, idx, ext))
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abInput.register(analyzeBatchCmd.Flags())
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "write one summary per file into this directory")
	analyzeBatchCmd.Flags().StringVar(&abFormat, "format", "markdown", "output format: markdown | json")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of filtered sample rows to include (0 disables)")
	analyzeBatchCmd.Flags().IntVarP(&abTopN, "top-n", "n", 0, "number of top artists by longevity (default from config)")
	analyzeBatchCmd.Flags().IntVar(&abRankMin, "rank-min", 0, "lowest early peak rank to include (default from config)")
	analyzeBatchCmd.Flags().IntVar(&abRankMax, "rank-max", 0, "highest early peak rank to include (default from config)")
	analyzeBatchCmd.Flags().BoolVarP(&abQuiet, "quiet", "q", false, "suppress progress output")
}
