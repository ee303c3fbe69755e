package analysis

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical column names as they appear in the Billboard export.
const (
	ColDate         = "date"
	ColSong         = "song"
	ColArtist       = "artist"
	ColRank         = "rank"
	ColWeeksOnBoard = "weeks-on-board"
	ColLastWeek     = "last-week"
	ColPeakRank     = "peak-rank"
)

var requiredColumns = []string{ColDate, ColSong, ColArtist, ColRank, ColWeeksOnBoard}

// ColumnMap resolves canonical columns to record indexes.
type ColumnMap struct {
	idx map[string]int
}

// NewColumnMap matches a header row against the known columns. Matching ignores
// case, a leading BOM and the separators '-', '_' and space. A missing required
// column is a DataFormatError.
func NewColumnMap(header []string) (ColumnMap, error) {
	byNorm := make(map[string]int, len(header))
	for i, h := range header {
		n := normalizeHeader(h)
		if _, dup := byNorm[n]; !dup {
			byNorm[n] = i
		}
	}
	cm := ColumnMap{idx: map[string]int{}}
	for _, col := range append(append([]string{}, requiredColumns...), ColLastWeek, ColPeakRank) {
		if i, ok := byNorm[normalizeHeader(col)]; ok {
			cm.idx[col] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := cm.idx[col]; !ok {
			return ColumnMap{}, &DataFormatError{Column: col, Err: ErrMissingColumn}
		}
	}
	return cm, nil
}

// Has reports whether the optional column was found.
func (cm ColumnMap) Has(col string) bool {
	_, ok := cm.idx[col]
	return ok
}

// Index returns the record index of a known column.
func (cm ColumnMap) Index(col string) (int, bool) {
	i, ok := cm.idx[col]
	return i, ok
}

func (cm ColumnMap) cell(rec []string, col string) string {
	i, ok := cm.idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Observation decodes one record. line is used for error reporting only.
func (cm ColumnMap) Observation(line int, rec []string) (Observation, error) {
	var o Observation
	raw := cm.cell(rec, ColDate)
	t, ok := parseDate(raw)
	if !ok {
		return o, &DataFormatError{Line: line, Column: ColDate, Value: raw, Err: ErrBadDate}
	}
	o.Date = t
	o.Song = cm.cell(rec, ColSong)
	o.Artist = cm.cell(rec, ColArtist)

	var err error
	if o.Rank, err = cm.requiredInt(line, rec, ColRank); err != nil {
		return o, err
	}
	if o.WeeksOnBoard, err = cm.requiredInt(line, rec, ColWeeksOnBoard); err != nil {
		return o, err
	}
	if o.LastWeek, err = cm.optionalInt(line, rec, ColLastWeek); err != nil {
		return o, err
	}
	if o.PeakRank, err = cm.optionalInt(line, rec, ColPeakRank); err != nil {
		return o, err
	}
	return o, nil
}

func (cm ColumnMap) requiredInt(line int, rec []string, col string) (int, error) {
	raw := cm.cell(rec, col)
	v, ok := parseInt(raw)
	if !ok {
		return 0, &DataFormatError{Line: line, Column: col, Value: raw, Err: ErrNotInteger}
	}
	return v, nil
}

func (cm ColumnMap) optionalInt(line int, rec []string, col string) (NullRank, error) {
	raw := cm.cell(rec, col)
	if raw == "" {
		return NullRank{}, nil
	}
	v, ok := parseInt(raw)
	if !ok {
		return NullRank{}, &DataFormatError{Line: line, Column: col, Value: raw, Err: ErrNotInteger}
	}
	return SomeRank(v), nil
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// parseInt accepts plain integers and integral decimals such as "3.0", which
// spreadsheet exports tend to produce. Both forms must fit in an int32.
func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(v), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

var dateLayouts = []string{
	"2006-01-02", time.RFC3339, "2006/01/02", "2006-01-02 15:04", "2006-01-02 15:04:05",
	"01/02/2006", "1/2/2006", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
