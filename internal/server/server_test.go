package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/cache"
	"github.com/KaramelBytes/chartlens/internal/logging"
	"github.com/KaramelBytes/chartlens/internal/render"
	"github.com/KaramelBytes/chartlens/internal/view"
)

const chartsCSV = `date,rank,song,artist,last-week,peak-rank,weeks-on-board
2019-12-28,5,A,X,,5,1
2020-01-04,3,A,X,5,3,2
2020-02-15,10,A,X,9,3,8
2020-01-04,60,B,Y,,60,1
2021-01-09,80,B,Y,70,60,12
2020-03-07,2,Old,Z,2,1,10
2020-03-14,4,Old,Z,2,1,11
`

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, csv string) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "charts.csv")
	require.NoError(t, os.WriteFile(data, []byte(csv), 0o644))

	log := logging.Discard()
	loader, err := cache.NewLoader(&cache.Config{Logger: log, Derive: analysis.DefaultDeriveOptions()})
	require.NoError(t, err)

	viewsDir := filepath.Join(dir, "views")
	s, err := New(&Config{
		Logger:   log,
		Tables:   loader,
		DataPath: data,
		Defaults: Params{Range: analysis.RankRange{Min: 1, Max: 50}, TopN: 10, HeatmapMaxArtists: 25},
		ViewsDir: viewsDir,
		Chart:    render.Options{Width: 400, Height: 300},
	})
	require.NoError(t, err)
	return s, viewsDir
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(&Config{Logger: logging.Discard()})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	w := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestRows_FilterAndLimit(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	w := get(t, s, "/api/v1/rows?rank_min=1&rank_max=10&limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["data"], 2)
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 3, meta["total"])
}

func TestRows_EmptySelectionIs200WithMessage(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	w := get(t, s, "/api/v1/rows?rank_min=90&rank_max=100")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Empty(t, body["data"])
	assert.Contains(t, body["message"], "[90, 100]")
}

func TestBadParamsAre400(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	for _, target := range []string{
		"/api/v1/rows?rank_min=abc",
		"/api/v1/rows?rank_min=20&rank_max=5",
		"/api/v1/artists/top?top_n=-1",
		"/api/v1/rows?view=missing",
		"/charts/scatter.png?rank_max=0",
	} {
		w := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.NotEmpty(t, decode(t, w)["error"], target)
	}
}

func TestDataFormatErrorIs500(t *testing.T) {
	s, _ := newTestServer(t, "date,song,artist,rank\n2020-01-04,a,b,1\n")
	w := get(t, s, "/api/v1/summary")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "data_format", body["kind"])
	assert.Contains(t, body["error"], "weeks-on-board")
}

func TestTopArtistsAndSongs(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	w := get(t, s, "/api/v1/artists/top?top_n=2")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "Z", data[0].(map[string]any)["artist"])

	w = get(t, s, "/api/v1/songs?q=ol")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Old"}, decode(t, w)["data"])
}

func TestTrends(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	w := get(t, s, "/api/v1/trends")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, noSongsMessage, decode(t, w)["message"])

	w = get(t, s, "/api/v1/trends?song=B&song=A&song=Nope")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "B", data[0].(map[string]any)["song"])
}

func TestHeatmapAbsentCellsAreNull(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	w := get(t, s, "/api/v1/heatmap?artist=Y")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, []any{"Y"}, data["artists"])
	assert.Equal(t, []any{float64(2020), float64(2021)}, data["years"])

	w = get(t, s, "/api/v1/heatmap")
	data = decode(t, w)["data"].(map[string]any)
	cells := data["cells"].([]any)
	require.Len(t, cells, 3)
	// Z only charted in 2020
	z := cells[2].([]any)
	assert.Nil(t, z[0])
	assert.EqualValues(t, 3, z[1])
	assert.Nil(t, z[2])
}

func TestSummaryMarkdown(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	w := get(t, s, "/api/v1/summary?format=markdown")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "[CHART SUMMARY]")
}

func TestCharts(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	for _, target := range []string{
		"/charts/scatter.png",
		"/charts/bar.png",
		"/charts/line.png?song=A",
		"/charts/heatmap.png",
	} {
		w := get(t, s, target)
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"), target)
		_, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
		assert.NoError(t, err, target)
		assert.Empty(t, w.Header().Get("X-Chart-Message"), target)
	}
}

func TestChartPlaceholderForEmptySelection(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	w := get(t, s, "/charts/scatter.png?rank_min=90&rank_max=100")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("X-Chart-Message"), "[90, 100]")

	w = get(t, s, "/charts/line.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, noSongsMessage, w.Header().Get("X-Chart-Message"))
}

func TestViewSeedsParamsAndQueryOverrides(t *testing.T) {
	s, viewsDir := newTestServer(t, chartsCSV)
	v := view.New("tight", "", viewsDir)
	v.Range = &analysis.RankRange{Min: 1, Max: 3}
	v.Songs = []string{"Old"}
	require.NoError(t, v.Save())

	w := get(t, s, "/api/v1/rows?view=tight")
	require.Equal(t, http.StatusOK, w.Code)
	// A/X peaked at 3; Old/Z has no early peak and is never selected
	assert.EqualValues(t, 3, decode(t, w)["meta"].(map[string]any)["total"])

	w = get(t, s, "/api/v1/rows?view=tight&rank_max=1")
	assert.Contains(t, decode(t, w)["message"], "[1, 1]")

	w = get(t, s, "/api/v1/trends?view=tight")
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Old", data[0].(map[string]any)["song"])

	w = get(t, s, "/api/v1/views")
	assert.Len(t, decode(t, w)["data"], 1)
}

func TestIndexPage(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	w := get(t, s, "/?song=A&rank_max=20")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Music Chart Analysis Dashboard")
	assert.Contains(t, body, "/charts/heatmap.png?")
	assert.Contains(t, body, "rank_max=20")
	assert.True(t, strings.Contains(body, "<option selected>A</option>"))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, chartsCSV)
	get(t, s, "/health")
	w := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chartlens_http_requests_total")
}
