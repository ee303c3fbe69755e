package analysis

import (
	"fmt"
	"sort"
	"time"
)

// DefaultTopN is the number of artists returned by TopArtistsByLongevity when n <= 0.
const DefaultTopN = 10

// RankRange is an inclusive range over peak ranks.
type RankRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Validate rejects inverted ranges.
func (r RankRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("invalid rank range: min %d > max %d", r.Min, r.Max)
	}
	return nil
}

// Contains reports whether a present rank falls inside the range. Absent ranks never match.
func (r RankRange) Contains(n NullRank) bool {
	return n.Valid && n.Rank >= r.Min && n.Rank <= r.Max
}

func (r RankRange) String() string { return fmt.Sprintf("[%d, %d]", r.Min, r.Max) }

// FilterByPeakRank keeps rows whose early peak rank is present and within rr,
// preserving input order.
func (t *Table) FilterByPeakRank(rr RankRange) ([]Row, error) {
	if err := rr.Validate(); err != nil {
		return nil, err
	}
	var out []Row
	for _, r := range t.rows {
		if rr.Contains(r.PeakRankFirst4Weeks) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, &EmptySelectionError{What: fmt.Sprintf("no rows with peak rank in %s", rr)}
	}
	return out, nil
}

// ArtistLongevity is an artist's mean running week count across all of its rows.
type ArtistLongevity struct {
	Artist    string  `json:"artist"`
	MeanWeeks float64 `json:"mean_weeks_on_board"`
	Rows      int     `json:"rows"`
}

// TopArtistsByLongevity ranks artists by mean TotalWeeksOnBoard, descending.
// Ties are broken by artist name.
func (t *Table) TopArtistsByLongevity(n int) ([]ArtistLongevity, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	type acc struct {
		sum float64
		cnt int
	}
	by := map[string]*acc{}
	for _, r := range t.rows {
		a := by[r.Artist]
		if a == nil {
			a = &acc{}
			by[r.Artist] = a
		}
		a.sum += float64(r.TotalWeeksOnBoard)
		a.cnt++
	}
	if len(by) == 0 {
		return nil, &EmptySelectionError{What: "no artists"}
	}
	out := make([]ArtistLongevity, 0, len(by))
	for name, a := range by {
		out = append(out, ArtistLongevity{Artist: name, MeanWeeks: a.sum / float64(a.cnt), Rows: a.cnt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanWeeks == out[j].MeanWeeks {
			return out[i].Artist < out[j].Artist
		}
		return out[i].MeanWeeks > out[j].MeanWeeks
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// SongTitles returns distinct song titles in order of first appearance.
func (t *Table) SongTitles() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range t.rows {
		if _, ok := seen[r.Song]; ok {
			continue
		}
		seen[r.Song] = struct{}{}
		out = append(out, r.Song)
	}
	return out
}

// TrendPoint is one (date, rank) sample of a song's chart run.
type TrendPoint struct {
	Date   time.Time `json:"date"`
	Rank   int       `json:"rank"`
	Artist string    `json:"artist"`
}

// SongTrend is the rank history of one song title.
type SongTrend struct {
	Song   string       `json:"song"`
	Points []TrendPoint `json:"points"`
}

// SongTrends extracts (date, rank) series for the selected titles. Series follow
// the selection order (duplicates collapsed) and points are sorted by date.
// Titles are matched exactly; a title shared by several artists yields one series.
// Titles with no rows are omitted.
func (t *Table) SongTrends(songs []string) ([]SongTrend, error) {
	order := make([]string, 0, len(songs))
	want := make(map[string][]TrendPoint, len(songs))
	for _, s := range songs {
		if _, dup := want[s]; dup {
			continue
		}
		want[s] = nil
		order = append(order, s)
	}
	for _, r := range t.rows {
		pts, ok := want[r.Song]
		if !ok {
			continue
		}
		want[r.Song] = append(pts, TrendPoint{Date: r.Date, Rank: r.Rank, Artist: r.Artist})
	}
	var out []SongTrend
	for _, s := range order {
		pts := want[s]
		if len(pts) == 0 {
			continue
		}
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
		out = append(out, SongTrend{Song: s, Points: pts})
	}
	if len(out) == 0 {
		return nil, &EmptySelectionError{What: "no rows for the selected songs"}
	}
	return out, nil
}

// MatrixOptions restricts the artist x year matrix.
type MatrixOptions struct {
	// Artists limits the matrix to these names when non-empty.
	Artists []string
	// MaxArtists keeps the artists with the most observations; 0 keeps all.
	MaxArtists int
}

// YearMatrix holds mean ranks per artist (rows) and calendar year (columns).
// Cells without observations are absent rather than zero.
type YearMatrix struct {
	Artists []string      `json:"artists"`
	Years   []int         `json:"years"`
	Cells   [][]NullFloat `json:"cells"`
}

// Cell returns the mean rank of artist row i in year column j.
func (m *YearMatrix) Cell(i, j int) NullFloat { return m.Cells[i][j] }

// ArtistYearMatrix groups rows by (artist, year of date) and averages rank.
func (t *Table) ArtistYearMatrix(opt MatrixOptions) (*YearMatrix, error) {
	var allow map[string]struct{}
	if len(opt.Artists) > 0 {
		allow = make(map[string]struct{}, len(opt.Artists))
		for _, a := range opt.Artists {
			allow[a] = struct{}{}
		}
	}
	type cellKey struct {
		artist string
		year   int
	}
	type acc struct {
		sum float64
		cnt int
	}
	cells := map[cellKey]*acc{}
	counts := map[string]int{}
	for _, r := range t.rows {
		if allow != nil {
			if _, ok := allow[r.Artist]; !ok {
				continue
			}
		}
		k := cellKey{artist: r.Artist, year: r.Date.Year()}
		a := cells[k]
		if a == nil {
			a = &acc{}
			cells[k] = a
		}
		a.sum += float64(r.Rank)
		a.cnt++
		counts[r.Artist]++
	}
	if len(counts) == 0 {
		return nil, &EmptySelectionError{What: "no rows for the selected artists"}
	}

	artists := make([]string, 0, len(counts))
	for a := range counts {
		artists = append(artists, a)
	}
	if opt.MaxArtists > 0 && len(artists) > opt.MaxArtists {
		sort.Slice(artists, func(i, j int) bool {
			if counts[artists[i]] == counts[artists[j]] {
				return artists[i] < artists[j]
			}
			return counts[artists[i]] > counts[artists[j]]
		})
		artists = artists[:opt.MaxArtists]
	}
	sort.Strings(artists)

	keep := make(map[string]struct{}, len(artists))
	for _, a := range artists {
		keep[a] = struct{}{}
	}
	yearSet := map[int]struct{}{}
	for k := range cells {
		if _, ok := keep[k.artist]; ok {
			yearSet[k.year] = struct{}{}
		}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	m := &YearMatrix{Artists: artists, Years: years, Cells: make([][]NullFloat, len(artists))}
	for i, a := range artists {
		row := make([]NullFloat, len(years))
		for j, y := range years {
			if c := cells[cellKey{artist: a, year: y}]; c != nil {
				row[j] = NullFloat{Value: c.sum / float64(c.cnt), Valid: true}
			}
		}
		m.Cells[i] = row
	}
	return m, nil
}
