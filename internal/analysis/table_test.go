package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func sampleTable() *Table {
	in := []Observation{
		{Date: day(2019, 12, 28), Song: "A", Artist: "X", Rank: 5, WeeksOnBoard: 1},
		{Date: day(2020, 1, 4), Song: "A", Artist: "X", Rank: 3, WeeksOnBoard: 2},
		{Date: day(2020, 2, 15), Song: "A", Artist: "X", Rank: 10, WeeksOnBoard: 8},
		{Date: day(2020, 1, 4), Song: "B", Artist: "Y", Rank: 60, WeeksOnBoard: 1},
		{Date: day(2021, 1, 9), Song: "B", Artist: "Y", Rank: 80, WeeksOnBoard: 12},
		{Date: day(2020, 3, 7), Song: "Old", Artist: "Z", Rank: 2, WeeksOnBoard: 10},
		{Date: day(2020, 3, 14), Song: "Old", Artist: "Z", Rank: 4, WeeksOnBoard: 11},
	}
	return NewTable(in, DefaultDeriveOptions(), TableInfo{Source: "charts.csv"})
}

func TestTable_Basics(t *testing.T) {
	tb := sampleTable()
	if tb.Len() != 7 || tb.Keys() != 3 {
		t.Fatalf("len=%d keys=%d", tb.Len(), tb.Keys())
	}
	first, last := tb.DateSpan()
	if !first.Equal(day(2019, 12, 28)) || !last.Equal(day(2021, 1, 9)) {
		t.Fatalf("span %s..%s", first, last)
	}
	rows := tb.Rows()
	rows[0].Rank = 99
	if tb.Row(0).Rank != 5 {
		t.Fatalf("Rows must return a copy")
	}
}

func TestFilterByPeakRank(t *testing.T) {
	tb := sampleTable()
	rows, err := tb.FilterByPeakRank(RankRange{Min: 1, Max: 10})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want the 3 rows of A/X", len(rows))
	}
	for _, r := range rows {
		if r.Song != "A" {
			t.Fatalf("unexpected row %+v", r)
		}
	}

	_, err = tb.FilterByPeakRank(RankRange{Min: 90, Max: 100})
	if !IsEmptySelection(err) {
		t.Fatalf("expected empty selection, got %v", err)
	}
	if _, err := tb.FilterByPeakRank(RankRange{Min: 10, Max: 1}); err == nil || IsEmptySelection(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTopArtistsByLongevity(t *testing.T) {
	tb := sampleTable()
	top, err := tb.TopArtistsByLongevity(2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d artists", len(top))
	}
	if top[0].Artist != "Z" || top[0].MeanWeeks != 10.5 || top[0].Rows != 2 {
		t.Fatalf("unexpected leader %+v", top[0])
	}
	if top[1].Artist != "Y" || top[1].MeanWeeks != 6.5 {
		t.Fatalf("unexpected second %+v", top[1])
	}
	all, _ := tb.TopArtistsByLongevity(0)
	if len(all) != 3 {
		t.Fatalf("default n should keep all 3 artists, got %d", len(all))
	}
}

func TestTopArtistsTiesByName(t *testing.T) {
	tb := NewTable([]Observation{
		{Date: day(2020, 1, 4), Song: "s1", Artist: "Beta", Rank: 1, WeeksOnBoard: 3},
		{Date: day(2020, 1, 4), Song: "s2", Artist: "Alpha", Rank: 2, WeeksOnBoard: 3},
	}, DefaultDeriveOptions(), TableInfo{})
	top, err := tb.TopArtistsByLongevity(10)
	if err != nil {
		t.Fatal(err)
	}
	if top[0].Artist != "Alpha" || top[1].Artist != "Beta" {
		t.Fatalf("tie order: %+v", top)
	}
}

func TestSongTitlesAndTrends(t *testing.T) {
	tb := sampleTable()
	titles := tb.SongTitles()
	if strings.Join(titles, ",") != "A,B,Old" {
		t.Fatalf("titles = %v", titles)
	}

	trends, err := tb.SongTrends([]string{"Old", "A", "missing", "A"})
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if len(trends) != 2 || trends[0].Song != "Old" || trends[1].Song != "A" {
		t.Fatalf("unexpected series: %+v", trends)
	}
	a := trends[1].Points
	if len(a) != 3 || a[0].Rank != 5 || a[2].Rank != 10 {
		t.Fatalf("unexpected points: %+v", a)
	}
	for i := 1; i < len(a); i++ {
		if a[i].Date.Before(a[i-1].Date) {
			t.Fatalf("points not sorted by date")
		}
	}

	if _, err := tb.SongTrends([]string{"missing"}); !IsEmptySelection(err) {
		t.Fatalf("expected empty selection, got %v", err)
	}
	if _, err := tb.SongTrends(nil); !IsEmptySelection(err) {
		t.Fatalf("expected empty selection for no songs, got %v", err)
	}
}

func TestArtistYearMatrix_AbsentCells(t *testing.T) {
	tb := sampleTable()
	m, err := tb.ArtistYearMatrix(MatrixOptions{})
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if strings.Join(m.Artists, ",") != "X,Y,Z" {
		t.Fatalf("artists = %v", m.Artists)
	}
	if len(m.Years) != 3 || m.Years[0] != 2019 || m.Years[2] != 2021 {
		t.Fatalf("years = %v", m.Years)
	}
	// X: 2019 -> 5, 2020 -> mean(3,10)
	if c := m.Cell(0, 0); !c.Valid || c.Value != 5 {
		t.Fatalf("X/2019 = %+v", c)
	}
	if c := m.Cell(0, 1); !c.Valid || c.Value != 6.5 {
		t.Fatalf("X/2020 = %+v", c)
	}
	if c := m.Cell(0, 2); c.Valid || !math.IsNaN(c.Float()) {
		t.Fatalf("X/2021 must be absent, got %+v", c)
	}

	b, err := json.Marshal(m.Cells[2])
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[null,3,null]" {
		t.Fatalf("absent cells must encode as null, got %s", b)
	}
}

func TestArtistYearMatrix_Limits(t *testing.T) {
	tb := sampleTable()
	m, err := tb.ArtistYearMatrix(MatrixOptions{MaxArtists: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Artists) != 1 || m.Artists[0] != "X" {
		t.Fatalf("expected the busiest artist X, got %v", m.Artists)
	}
	if len(m.Years) != 2 {
		t.Fatalf("years should follow kept artists, got %v", m.Years)
	}

	named, err := tb.ArtistYearMatrix(MatrixOptions{Artists: []string{"Z"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(named.Artists) != 1 || named.Years[0] != 2020 {
		t.Fatalf("unexpected named matrix %+v", named)
	}
	if _, err := tb.ArtistYearMatrix(MatrixOptions{Artists: []string{"nobody"}}); !IsEmptySelection(err) {
		t.Fatalf("expected empty selection, got %v", err)
	}
}

func TestCorrelate(t *testing.T) {
	rows := DeriveMetrics([]Observation{
		obs("a", "x", 1, 1), obs("a", "x", 1, 2), obs("a", "x", 1, 3), obs("a", "x", 1, 20),
		obs("b", "y", 50, 1), obs("b", "y", 60, 2),
		obs("c", "z", 90, 1),
		obs("late", "w", 1, 30),
	}, DefaultDeriveOptions())
	c := Correlate(rows)
	if c.RowCount != 7 || c.SongCount != 3 {
		t.Fatalf("counts: rows=%d songs=%d", c.RowCount, c.SongCount)
	}
	if !c.SongLevel.Valid || c.SongLevel.Value >= 0 {
		t.Fatalf("better early peak should go with longer runs, got %+v", c.SongLevel)
	}
	if empty := Correlate(nil); empty.RowLevel.Valid || empty.SongLevel.Valid {
		t.Fatalf("empty input must give absent correlations")
	}
}

func TestSummarizeMarkdown(t *testing.T) {
	tb := sampleTable()
	rep, err := Summarize(tb, ReportOptions{Range: RankRange{Min: 1, Max: 10}, TopN: 2, SampleRows: 2})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if rep.FilteredRows != 3 || rep.KeysNoPeak != 1 || len(rep.Samples) != 2 {
		t.Fatalf("unexpected report %+v", rep)
	}
	md := rep.Markdown()
	for _, want := range []string{
		"[CHART SUMMARY]",
		"File: charts.csv",
		"Rows: 7",
		"Dates: 2019-12-28 to 2021-01-09",
		"songs without an early peak: 1",
		"rows with peak rank in [1, 10]: 3",
		"1. Z: mean 10.50 weeks (n=2)",
		"[SAMPLE ROWS]",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}

	empty, err := Summarize(tb, ReportOptions{Range: RankRange{Min: 95, Max: 100}})
	if err != nil {
		t.Fatalf("empty selection must not fail the report: %v", err)
	}
	if len(empty.Warnings) == 0 || !strings.Contains(empty.Markdown(), "[NOTES]") {
		t.Fatalf("expected a note for the empty selection")
	}
}
