package analysis

import (
	"fmt"
	"strings"
)

// ReportOptions controls Summarize.
type ReportOptions struct {
	// Range selects rows for the correlation and the filtered count.
	Range RankRange
	// TopN bounds the top-artist list.
	TopN int
	// SampleRows is the number of filtered rows shown; 0 disables samples.
	SampleRows int
}

// DefaultReportOptions mirrors the dashboard defaults.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{Range: RankRange{Min: 1, Max: 50}, TopN: DefaultTopN, SampleRows: 5}
}

// Report is a Markdown-friendly summary of an augmented chart table.
type Report struct {
	Name         string            `json:"name"`
	Rows         int               `json:"rows"`
	Keys         int               `json:"keys"`
	FirstDate    string            `json:"first_date,omitempty"`
	LastDate     string            `json:"last_date,omitempty"`
	EarlyWeeks   int               `json:"early_weeks"`
	KeysNoPeak   int               `json:"keys_without_early_peak"`
	Range        RankRange         `json:"range"`
	FilteredRows int               `json:"filtered_rows"`
	TopArtists   []ArtistLongevity `json:"top_artists"`
	Correlation  Correlation       `json:"correlation"`
	Samples      []Row             `json:"samples,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// Summarize builds a Report. An empty filter selection is noted, not returned as an error.
func Summarize(t *Table, opt ReportOptions) (*Report, error) {
	if err := opt.Range.Validate(); err != nil {
		return nil, err
	}
	rep := &Report{
		Name:       t.Source(),
		Rows:       t.Len(),
		Keys:       t.Keys(),
		EarlyWeeks: t.EarlyWeeks(),
		Range:      opt.Range,
	}
	if t.Len() > 0 {
		first, last := t.DateSpan()
		rep.FirstDate = first.Format("2006-01-02")
		rep.LastDate = last.Format("2006-01-02")
	}
	noPeak := map[Key]struct{}{}
	for _, r := range t.rows {
		if !r.PeakRankFirst4Weeks.Valid {
			noPeak[r.Key()] = struct{}{}
		}
	}
	rep.KeysNoPeak = len(noPeak)

	filtered, err := t.FilterByPeakRank(opt.Range)
	switch {
	case IsEmptySelection(err):
		rep.Warnings = append(rep.Warnings, err.Error())
	case err != nil:
		return nil, err
	}
	rep.FilteredRows = len(filtered)
	rep.Correlation = Correlate(filtered)
	if opt.SampleRows > 0 {
		n := opt.SampleRows
		if n > len(filtered) {
			n = len(filtered)
		}
		rep.Samples = filtered[:n:n]
	}

	top, err := t.TopArtistsByLongevity(opt.TopN)
	switch {
	case IsEmptySelection(err):
		rep.Warnings = append(rep.Warnings, err.Error())
	case err != nil:
		return nil, err
	}
	rep.TopArtists = top
	return rep, nil
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[CHART SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Songs (song, artist): %d\n", r.Keys))
	if r.FirstDate != "" {
		b.WriteString(fmt.Sprintf("Dates: %s to %s\n", r.FirstDate, r.LastDate))
	}

	b.WriteString("\n[EARLY PEAK]\n")
	b.WriteString(fmt.Sprintf("- window: first %d weeks on board\n", r.EarlyWeeks))
	b.WriteString(fmt.Sprintf("- songs without an early peak: %d\n", r.KeysNoPeak))
	b.WriteString(fmt.Sprintf("- rows with peak rank in %s: %d\n", r.Range, r.FilteredRows))

	b.WriteString("\n[CORRELATION]\n")
	b.WriteString(fmt.Sprintf("- peak rank ~ weeks on board (rows, n=%d): %s\n", r.Correlation.RowCount, fmtR(r.Correlation.RowLevel)))
	b.WriteString(fmt.Sprintf("- peak rank ~ final weeks (songs, n=%d): %s\n", r.Correlation.SongCount, fmtR(r.Correlation.SongLevel)))

	if len(r.TopArtists) > 0 {
		b.WriteString("\n[TOP ARTISTS BY LONGEVITY]\n")
		for i, a := range r.TopArtists {
			b.WriteString(fmt.Sprintf("%d. %s: mean %.2f weeks (n=%d)\n", i+1, safeVal(a.Artist), a.MeanWeeks, a.Rows))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n")
		b.WriteString("| date | song | artist | rank | weeks | peak (early) |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, s := range r.Samples {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %d | %s |\n",
				s.Date.Format("2006-01-02"), safeVal(s.Song), safeVal(s.Artist), s.Rank, s.TotalWeeksOnBoard, s.PeakRankFirst4Weeks))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func fmtR(v NullFloat) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("r=%.3f", v.Value)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
