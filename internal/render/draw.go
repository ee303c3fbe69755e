package render

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/chartlens/internal/analysis"
)

// Selection holds the query inputs the dashboard charts depend on.
type Selection struct {
	Range      analysis.RankRange
	TopN       int
	Songs      []string
	Artists    []string
	MaxArtists int
}

// Draw queries t for kind and renders the chart. Empty selections are returned
// as analysis.EmptySelectionError with nothing written.
func Draw(w io.Writer, t *analysis.Table, sel Selection, kind Kind, opt Options) error {
	switch kind {
	case KindScatter:
		rows, err := t.FilterByPeakRank(sel.Range)
		if err != nil {
			return err
		}
		return Scatter(w, rows, opt)
	case KindBar:
		artists, err := t.TopArtistsByLongevity(sel.TopN)
		if err != nil {
			return err
		}
		return TopArtists(w, artists, opt)
	case KindLine:
		if len(sel.Songs) == 0 {
			return &analysis.EmptySelectionError{What: "no songs selected"}
		}
		trends, err := t.SongTrends(sel.Songs)
		if err != nil {
			return err
		}
		return Trends(w, trends, opt)
	case KindHeatmap:
		m, err := t.ArtistYearMatrix(analysis.MatrixOptions{Artists: sel.Artists, MaxArtists: sel.MaxArtists})
		if err != nil {
			return err
		}
		return Heatmap(w, m, opt)
	}
	return fmt.Errorf("unknown chart kind %q", kind)
}
