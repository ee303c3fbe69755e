package export_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/export"
)

func rows() []analysis.Row {
	d := time.Date(2021, 11, 6, 0, 0, 0, 0, time.UTC)
	return []analysis.Row{
		{
			Observation:         analysis.Observation{Date: d, Song: "Easy On Me", Artist: "Adele", Rank: 1, WeeksOnBoard: 3, LastWeek: analysis.SomeRank(1), PeakRank: analysis.SomeRank(1)},
			PeakRankFirst4Weeks: analysis.SomeRank(1),
			TotalWeeksOnBoard:   3,
		},
		{
			Observation:       analysis.Observation{Date: d, Song: "Old Song", Artist: "Z", Rank: 90, WeeksOnBoard: 30},
			TotalWeeksOnBoard: 30,
		},
	}
}

func TestFormatFor(t *testing.T) {
	f, err := export.FormatFor("out/Table.XLSX")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	_, err = export.FormatFor("table.parquet")
	assert.True(t, errors.Is(err, export.ErrUnknownFormat))
}

func TestWriteCSV_AbsentIsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, rows()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(export.Header, ","), lines[0])
	assert.Equal(t, "2021-11-06,1,Easy On Me,Adele,1,1,3,1,3", lines[1])
	assert.Equal(t, "2021-11-06,90,Old Song,Z,,,30,,30", lines[2])
}

func TestWriteJSON_AbsentIsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, rows()))
	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Nil(t, out[1]["peak_rank_first_4_weeks"])
	assert.EqualValues(t, 1, out[0]["peak_rank_first_4_weeks"])

	buf.Reset()
	require.NoError(t, export.WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteFile_XLSXRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "table.xlsx")
	require.NoError(t, export.WriteFile(p, rows()))

	f, err := excelize.OpenFile(p)
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetRows("chart")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, export.Header, got[0])
	assert.Equal(t, "Adele", got[1][3])
	// absent first-4-weeks peak stays blank
	assert.Equal(t, "", got[2][7])
	assert.Equal(t, "30", got[2][8])

	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
