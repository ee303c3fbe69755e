package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/render"
	"github.com/KaramelBytes/chartlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	renInput      inputFlags
	renOutDir     string
	renRankMin    int
	renRankMax    int
	renTopN       int
	renSongs      []string
	renArtists    []string
	renMaxArtists int
	renWidth      int
	renHeight     int
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Write the dashboard charts (scatter, bar, line, heatmap) as PNG files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := dataPath(args)
		if err != nil {
			return err
		}
		rr, err := rankRange(cmd, renRankMin, renRankMax)
		if err != nil {
			return err
		}
		s := settings()
		sel := render.Selection{Range: rr, TopN: s.TopN, Songs: renSongs, Artists: renArtists, MaxArtists: s.HeatmapMaxArtists}
		if cmd.Flags().Changed("top-n") {
			sel.TopN = renTopN
		}
		if cmd.Flags().Changed("max-artists") {
			sel.MaxArtists = renMaxArtists
		}
		opt := chartOptions()
		if renWidth > 0 {
			opt.Width = renWidth
		}
		if renHeight > 0 {
			opt.Height = renHeight
		}

		t, err := loadTable(path, &renInput)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(renOutDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, kind := range render.Kinds {
			target := filepath.Join(renOutDir, string(kind)+".png")
			var buf bytes.Buffer
			err := render.Draw(&buf, t, sel, kind, opt)
			if analysis.IsEmptySelection(err) {
				fmt.Fprintf(out, "⚠ %s: %v (placeholder written)\n", kind, err)
				buf.Reset()
				err = render.Placeholder(&buf, err.Error(), opt)
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", kind, err)
			}
			if err := utils.SafeWriteFile(target, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", target)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renInput.register(renderCmd.Flags())
	renderCmd.Flags().StringVar(&renOutDir, "out-dir", ".", "directory for the PNG files")
	renderCmd.Flags().IntVar(&renRankMin, "rank-min", 0, "lowest early peak rank for the scatter plot (default from config)")
	renderCmd.Flags().IntVar(&renRankMax, "rank-max", 0, "highest early peak rank for the scatter plot (default from config)")
	renderCmd.Flags().IntVarP(&renTopN, "top-n", "n", 0, "artists in the bar chart (default from config)")
	renderCmd.Flags().StringArrayVar(&renSongs, "song", nil, "song title for the trend chart (repeatable)")
	renderCmd.Flags().StringArrayVar(&renArtists, "artist", nil, "restrict the heatmap to these artists (repeatable)")
	renderCmd.Flags().IntVar(&renMaxArtists, "max-artists", 0, "heatmap artist limit, 0 = all (default from config)")
	renderCmd.Flags().IntVar(&renWidth, "width", 0, "chart width in pixels (default from config)")
	renderCmd.Flags().IntVar(&renHeight, "height", 0, "chart height in pixels (default from config)")
}
