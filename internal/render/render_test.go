package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chartlens/internal/analysis"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func sampleRows() []analysis.Row {
	mk := func(date, song, artist string, rank, weeks int, peak analysis.NullRank) analysis.Row {
		return analysis.Row{
			Observation: analysis.Observation{
				Date: day(date), Song: song, Artist: artist, Rank: rank, WeeksOnBoard: weeks,
			},
			PeakRankFirst4Weeks: peak,
			TotalWeeksOnBoard:   weeks,
		}
	}
	return []analysis.Row{
		mk("2020-01-04", "A", "X", 5, 1, analysis.SomeRank(3)),
		mk("2020-01-11", "A", "X", 3, 2, analysis.SomeRank(3)),
		mk("2021-01-02", "B", "Y", 40, 6, analysis.SomeRank(40)),
		mk("2021-01-09", "Old", "Z", 90, 30, analysis.NullRank{}),
	}
}

func assertPNG(t *testing.T, data []byte, w, h int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.InDelta(t, w, cfg.Width, 1)
	assert.InDelta(t, h, cfg.Height, 1)
}

func TestScatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Scatter(&buf, sampleRows(), Options{Width: 640, Height: 400}))
	assertPNG(t, buf.Bytes(), 640, 400)
}

func TestScatter_SinglePoint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Scatter(&buf, sampleRows()[:1], DefaultOptions()))
	assertPNG(t, buf.Bytes(), 800, 480)
}

func TestScatter_OnlyAbsentPeaksIsEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Scatter(&buf, sampleRows()[3:], DefaultOptions())
	assert.True(t, analysis.IsEmptySelection(err))
	assert.Zero(t, buf.Len())
}

func TestTopArtists(t *testing.T) {
	var buf bytes.Buffer
	artists := []analysis.ArtistLongevity{
		{Artist: "Z", MeanWeeks: 30, Rows: 1},
		{Artist: "A very long artist name that needs trimming", MeanWeeks: 6, Rows: 1},
		{Artist: "X", MeanWeeks: 1.5, Rows: 2},
	}
	require.NoError(t, TopArtists(&buf, artists, DefaultOptions()))
	assertPNG(t, buf.Bytes(), 800, 480)

	err := TopArtists(&bytes.Buffer{}, nil, DefaultOptions())
	assert.True(t, analysis.IsEmptySelection(err))
}

func TestTrends(t *testing.T) {
	var buf bytes.Buffer
	trends := []analysis.SongTrend{
		{Song: "A", Points: []analysis.TrendPoint{
			{Date: day("2020-01-04"), Rank: 5, Artist: "X"},
			{Date: day("2020-01-11"), Rank: 3, Artist: "X"},
		}},
		{Song: "B", Points: []analysis.TrendPoint{{Date: day("2020-01-04"), Rank: 40, Artist: "Y"}}},
	}
	require.NoError(t, Trends(&buf, trends, DefaultOptions()))
	assertPNG(t, buf.Bytes(), 800, 480)
}

func TestHeatmap_AbsentCellsRender(t *testing.T) {
	m := &analysis.YearMatrix{
		Artists: []string{"X", "Y"},
		Years:   []int{2020, 2021},
		Cells: [][]analysis.NullFloat{
			{{Value: 4, Valid: true}, {}},
			{{}, {Value: 40, Valid: true}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Heatmap(&buf, m, DefaultOptions()))
	assertPNG(t, buf.Bytes(), 800, 480)
}

func TestHeatmap_UniformValue(t *testing.T) {
	m := &analysis.YearMatrix{
		Artists: []string{"X"},
		Years:   []int{2020},
		Cells:   [][]analysis.NullFloat{{{Value: 7, Valid: true}}},
	}
	var buf bytes.Buffer
	require.NoError(t, Heatmap(&buf, m, DefaultOptions()))
	assertPNG(t, buf.Bytes(), 800, 480)
}

func TestHeatmap_Empty(t *testing.T) {
	err := Heatmap(&bytes.Buffer{}, &analysis.YearMatrix{}, DefaultOptions())
	assert.True(t, analysis.IsEmptySelection(err))
}

func TestPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Placeholder(&buf, "No songs match the selected rank range.", Options{Width: 320, Height: 200}))
	assertPNG(t, buf.Bytes(), 320, 200)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
}

func TestDraw(t *testing.T) {
	obs := analysis.Observations(sampleRows())
	tb := analysis.NewTable(obs, analysis.DefaultDeriveOptions(), analysis.TableInfo{Source: "charts.csv"})
	sel := Selection{Range: analysis.RankRange{Min: 1, Max: 50}, TopN: 10, MaxArtists: 25}

	for _, k := range []Kind{KindScatter, KindBar, KindHeatmap} {
		var buf bytes.Buffer
		require.NoError(t, Draw(&buf, tb, sel, k, DefaultOptions()), k)
		assertPNG(t, buf.Bytes(), 800, 480)
	}

	var buf bytes.Buffer
	err := Draw(&buf, tb, sel, KindLine, DefaultOptions())
	assert.True(t, analysis.IsEmptySelection(err), "no songs selected")

	sel.Songs = []string{"A"}
	require.NoError(t, Draw(&buf, tb, sel, KindLine, DefaultOptions()))

	assert.Error(t, Draw(&bytes.Buffer{}, tb, sel, Kind("pie"), DefaultOptions()))
}
