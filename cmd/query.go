package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	qInput      inputFlags
	qJSON       bool
	qRankMin    int
	qRankMax    int
	qLimit      int
	qSongLimit  int
	qTopN       int
	qSongs      []string
	qArtists    []string
	qMaxArtists int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the derived chart table",
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	return tw
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emptyResult reports an empty selection without failing the command.
func emptyResult(cmd *cobra.Command, err error) error {
	if !analysis.IsEmptySelection(err) {
		return err
	}
	if qJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"data": []any{}, "message": err.Error()})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚠ %v\n", err)
	return nil
}

func queryTable(args []string) (*analysis.Table, error) {
	path, err := dataPath(args)
	if err != nil {
		return nil, err
	}
	return loadTable(path, &qInput)
}

var queryFilterCmd = &cobra.Command{
	Use:   "filter [file]",
	Short: "Rows whose early peak rank lies in [rank-min, rank-max]",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rr, err := rankRange(cmd, qRankMin, qRankMax)
		if err != nil {
			return err
		}
		t, err := queryTable(args)
		if err != nil {
			return err
		}
		rows, err := t.FilterByPeakRank(rr)
		if err != nil {
			return emptyResult(cmd, err)
		}
		total := len(rows)
		if qLimit > 0 && len(rows) > qLimit {
			rows = rows[:qLimit]
		}
		if qJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"data": rows, "meta": map[string]any{"range": rr, "total": total}})
		}
		tw := newTable(cmd.OutOrStdout(), []string{"date", "song", "artist", "rank", "weeks", "peak (early)"})
		for _, r := range rows {
			tw.Append([]string{r.Date.Format("2006-01-02"), r.Song, r.Artist, strconv.Itoa(r.Rank), strconv.Itoa(r.TotalWeeksOnBoard), r.PeakRankFirst4Weeks.String()})
		}
		tw.Render()
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows with early peak in %s\n", len(rows), total, rr)
		return nil
	},
}

var queryTopArtistsCmd = &cobra.Command{
	Use:   "top-artists [file]",
	Short: "Artists ranked by mean weeks on board",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := settings().TopN
		if cmd.Flags().Changed("top-n") {
			n = qTopN
		}
		t, err := queryTable(args)
		if err != nil {
			return err
		}
		artists, err := t.TopArtistsByLongevity(n)
		if err != nil {
			return emptyResult(cmd, err)
		}
		if qJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"data": artists})
		}
		tw := newTable(cmd.OutOrStdout(), []string{"#", "artist", "mean weeks", "rows"})
		for i, a := range artists {
			tw.Append([]string{strconv.Itoa(i + 1), a.Artist, strconv.FormatFloat(a.MeanWeeks, 'f', 2, 64), strconv.Itoa(a.Rows)})
		}
		tw.Render()
		return nil
	},
}

var querySongsCmd = &cobra.Command{
	Use:   "songs [file]",
	Short: "Distinct song titles in order of first appearance",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := queryTable(args)
		if err != nil {
			return err
		}
		titles := t.SongTitles()
		if qSongLimit > 0 && len(titles) > qSongLimit {
			titles = titles[:qSongLimit]
		}
		if qJSON {
			if titles == nil {
				titles = []string{}
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"data": titles})
		}
		for _, s := range titles {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

var queryTrendsCmd = &cobra.Command{
	Use:   "trends [file] --song <title> [--song <title>...]",
	Short: "Rank over time for the selected songs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(qSongs) == 0 {
			return fmt.Errorf("select at least one --song")
		}
		t, err := queryTable(args)
		if err != nil {
			return err
		}
		trends, err := t.SongTrends(qSongs)
		if err != nil {
			return emptyResult(cmd, err)
		}
		if qJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"data": trends})
		}
		tw := newTable(cmd.OutOrStdout(), []string{"song", "date", "rank", "artist"})
		for _, tr := range trends {
			for _, p := range tr.Points {
				tw.Append([]string{tr.Song, p.Date.Format("2006-01-02"), strconv.Itoa(p.Rank), p.Artist})
			}
		}
		tw.Render()
		return nil
	},
}

var queryHeatmapCmd = &cobra.Command{
	Use:   "heatmap [file]",
	Short: "Mean rank per artist and year (blank where the artist did not chart)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxArtists := settings().HeatmapMaxArtists
		if cmd.Flags().Changed("max-artists") {
			maxArtists = qMaxArtists
		}
		t, err := queryTable(args)
		if err != nil {
			return err
		}
		m, err := t.ArtistYearMatrix(analysis.MatrixOptions{Artists: qArtists, MaxArtists: maxArtists})
		if err != nil {
			return emptyResult(cmd, err)
		}
		if qJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"data": m})
		}
		header := []string{"artist"}
		for _, y := range m.Years {
			header = append(header, strconv.Itoa(y))
		}
		tw := newTable(cmd.OutOrStdout(), header)
		for i, a := range m.Artists {
			row := []string{a}
			for j := range m.Years {
				cell := ""
				if c := m.Cell(i, j); c.Valid {
					cell = strconv.FormatFloat(c.Value, 'f', 1, 64)
				}
				row = append(row, cell)
			}
			tw.Append(row)
		}
		tw.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	qInput.register(queryCmd.PersistentFlags())
	queryCmd.PersistentFlags().BoolVar(&qJSON, "json", false, "print JSON instead of a table")
	queryCmd.AddCommand(queryFilterCmd, queryTopArtistsCmd, querySongsCmd, queryTrendsCmd, queryHeatmapCmd)

	queryFilterCmd.Flags().IntVar(&qRankMin, "rank-min", 0, "lowest early peak rank (default from config)")
	queryFilterCmd.Flags().IntVar(&qRankMax, "rank-max", 0, "highest early peak rank (default from config)")
	queryFilterCmd.Flags().IntVar(&qLimit, "limit", 20, "maximum rows to print (0 = all)")
	querySongsCmd.Flags().IntVar(&qSongLimit, "limit", 0, "maximum titles to print (0 = all)")
	queryTopArtistsCmd.Flags().IntVarP(&qTopN, "top-n", "n", 0, "number of artists (default from config)")
	queryTrendsCmd.Flags().StringArrayVar(&qSongs, "song", nil, "song title (repeatable)")
	queryHeatmapCmd.Flags().IntVar(&qMaxArtists, "max-artists", 0, "keep the N most charted artists, 0 = all (default from config)")
	queryHeatmapCmd.Flags().StringArrayVar(&qArtists, "artist", nil, "restrict to these artists (repeatable)")
}
