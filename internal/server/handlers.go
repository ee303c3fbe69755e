package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/view"
)

const noSongsMessage = "Select songs to view trends."

// load resolves request parameters and the current table.
func (s *Server) load(c *gin.Context) (*analysis.Table, Params, bool) {
	p, err := s.parseParams(c)
	if err != nil {
		s.fail(c, err)
		return nil, p, false
	}
	t, err := s.cfg.Tables.Load(s.cfg.DataPath)
	if err != nil {
		s.fail(c, err)
		return nil, p, false
	}
	return t, p, true
}

// fail maps err to a status: client input is 400, anything else (data format
// problems included) is 500.
func (s *Server) fail(c *gin.Context, err error) {
	var br *badRequest
	if errors.As(err, &br) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_ = c.Error(err)
	var dfe *analysis.DataFormatError
	if errors.As(err, &dfe) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": "data_format"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// empty answers an empty selection with 200, empty data and a message.
func empty(c *gin.Context, err error, meta gin.H) {
	c.JSON(http.StatusOK, gin.H{"data": []any{}, "message": err.Error(), "meta": meta})
}

// GetSummary returns the summary report as JSON, or Markdown with ?format=markdown.
func (s *Server) GetSummary(c *gin.Context) {
	t, p, ok := s.load(c)
	if !ok {
		return
	}
	rep, err := analysis.Summarize(t, analysis.ReportOptions{Range: p.Range, TopN: p.TopN, SampleRows: 0})
	if err != nil {
		s.fail(c, &badRequest{err: err})
		return
	}
	if strings.EqualFold(c.Query("format"), "markdown") {
		c.String(http.StatusOK, rep.Markdown())
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GetRows returns augmented rows whose early peak lies in the rank range.
// Query Params: rank_min, rank_max, limit (default 100, 0 = all)
func (s *Server) GetRows(c *gin.Context) {
	t, p, ok := s.load(c)
	if !ok {
		return
	}
	meta := gin.H{"range": p.Range, "limit": p.Limit}
	rows, err := t.FilterByPeakRank(p.Range)
	if analysis.IsEmptySelection(err) {
		meta["total"] = 0
		empty(c, err, meta)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	meta["total"] = len(rows)
	if p.Limit > 0 && len(rows) > p.Limit {
		rows = rows[:p.Limit]
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "meta": meta})
}

// GetTopArtists returns artists ranked by mean weeks on board.
func (s *Server) GetTopArtists(c *gin.Context) {
	t, p, ok := s.load(c)
	if !ok {
		return
	}
	artists, err := t.TopArtistsByLongevity(p.TopN)
	if analysis.IsEmptySelection(err) {
		empty(c, err, gin.H{"top_n": p.TopN})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": artists, "meta": gin.H{"top_n": p.TopN}})
}

// GetSongs lists distinct song titles in first-appearance order.
// Query Params: q (optional, case-insensitive substring)
func (s *Server) GetSongs(c *gin.Context) {
	t, _, ok := s.load(c)
	if !ok {
		return
	}
	titles := t.SongTitles()
	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		kept := titles[:0]
		for _, title := range titles {
			if strings.Contains(strings.ToLower(title), q) {
				kept = append(kept, title)
			}
		}
		titles = kept
	}
	if titles == nil {
		titles = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"data": titles, "meta": gin.H{"total": len(titles)}})
}

// GetTrends returns (date, rank) series for the selected songs.
// Query Params: song (repeatable)
func (s *Server) GetTrends(c *gin.Context) {
	t, p, ok := s.load(c)
	if !ok {
		return
	}
	meta := gin.H{"songs": p.Songs}
	if len(p.Songs) == 0 {
		c.JSON(http.StatusOK, gin.H{"data": []any{}, "message": noSongsMessage, "meta": meta})
		return
	}
	trends, err := t.SongTrends(p.Songs)
	if analysis.IsEmptySelection(err) {
		empty(c, err, meta)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trends, "meta": meta})
}

// GetHeatmap returns the artist by year mean-rank matrix. Cells without
// observations are null.
// Query Params: max_artists, artist (repeatable)
func (s *Server) GetHeatmap(c *gin.Context) {
	t, p, ok := s.load(c)
	if !ok {
		return
	}
	m, err := t.ArtistYearMatrix(analysis.MatrixOptions{Artists: p.Artists, MaxArtists: p.HeatmapMaxArtists})
	if analysis.IsEmptySelection(err) {
		empty(c, err, gin.H{"max_artists": p.HeatmapMaxArtists})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": m, "meta": gin.H{"max_artists": p.HeatmapMaxArtists}})
}

// GetViews lists the saved views.
func (s *Server) GetViews(c *gin.Context) {
	if s.cfg.ViewsDir == "" {
		c.JSON(http.StatusOK, gin.H{"data": []any{}})
		return
	}
	vs, err := view.List(s.cfg.ViewsDir)
	if err != nil {
		s.fail(c, err)
		return
	}
	if vs == nil {
		vs = []*view.View{}
	}
	c.JSON(http.StatusOK, gin.H{"data": vs})
}
