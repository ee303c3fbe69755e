package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaInput      inputFlags
	anaOutputPath string
	anaFormat     string
	anaSampleRows int
	anaTopN       int
	anaRankMin    int
	anaRankMax    int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Summarize early peak ranks and longevity for a chart file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := dataPath(args)
		if err != nil {
			return err
		}
		opt, err := reportOptions(cmd, anaRankMin, anaRankMax, anaTopN, anaSampleRows)
		if err != nil {
			return err
		}
		out, err := analyzeFile(path, &anaInput, opt, anaFormat)
		if err != nil {
			return err
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
		return nil
	},
}

func reportOptions(cmd *cobra.Command, rankMin, rankMax, topN, sampleRows int) (analysis.ReportOptions, error) {
	rr, err := rankRange(cmd, rankMin, rankMax)
	if err != nil {
		return analysis.ReportOptions{}, err
	}
	opt := analysis.ReportOptions{Range: rr, TopN: settings().TopN, SampleRows: sampleRows}
	if cmd.Flags().Changed("top-n") {
		opt.TopN = topN
	}
	if opt.SampleRows < 0 {
		return opt, fmt.Errorf("--sample-rows must be >= 0")
	}
	return opt, nil
}

// analyzeFile loads path and encodes its report as Markdown or JSON.
func analyzeFile(path string, in *inputFlags, opt analysis.ReportOptions, format string) ([]byte, error) {
	t, err := loadTable(path, in)
	if err != nil {
		return nil, err
	}
	rep, err := analysis.Summarize(t, opt)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		return []byte(rep.Markdown()), nil
	case "json":
		return utils.PrettyJSON(rep)
	}
	return nil, fmt.Errorf("unsupported --format: %s (use markdown or json)", format)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaInput.register(analyzeCmd.Flags())
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "markdown", "output format: markdown | json")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of filtered sample rows to include (0 disables)")
	analyzeCmd.Flags().IntVarP(&anaTopN, "top-n", "n", 0, "number of top artists by longevity (default from config)")
	analyzeCmd.Flags().IntVar(&anaRankMin, "rank-min", 0, "lowest early peak rank to include (default from config)")
	analyzeCmd.Flags().IntVar(&anaRankMax, "rank-max", 0, "highest early peak rank to include (default from config)")
}
