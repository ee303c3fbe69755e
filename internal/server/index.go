package server

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/render"
	"github.com/KaramelBytes/chartlens/internal/view"
)

const maxSongOptions = 500

type chartLink struct {
	Title string
	Src   template.URL
}

type songOption struct {
	Title    string
	Selected bool
}

type indexData struct {
	Params   Params
	Summary  *analysis.Report
	Charts   []chartLink
	Songs    []songOption
	Views    []*view.View
	Messages []string
}

var chartTitles = map[render.Kind]string{
	render.KindScatter: "Impact of Early Peak Rank on Longevity",
	render.KindBar:     "Top Artists by Average Longevity on Chart",
	render.KindLine:    "Time Series Trend of Song Rankings",
	render.KindHeatmap: "Heatmap of Artist Performance by Year",
}

// Index renders the dashboard page: a parameter form and the four charts.
func (s *Server) Index(c *gin.Context) {
	t, p, ok := s.load(c)
	if !ok {
		return
	}
	rep, err := analysis.Summarize(t, analysis.ReportOptions{Range: p.Range, TopN: p.TopN})
	if err != nil {
		s.fail(c, &badRequest{err: err})
		return
	}

	query := p.Values().Encode()
	data := indexData{Params: p, Summary: rep, Messages: rep.Warnings}
	for _, k := range render.Kinds {
		// query is built from parsed values only
		data.Charts = append(data.Charts, chartLink{
			Title: chartTitles[k],
			Src:   template.URL("/charts/" + string(k) + ".png?" + query),
		})
	}

	selected := map[string]bool{}
	for _, song := range p.Songs {
		selected[song] = true
	}
	for i, title := range t.SongTitles() {
		if i >= maxSongOptions && !selected[title] {
			continue
		}
		data.Songs = append(data.Songs, songOption{Title: title, Selected: selected[title]})
	}
	if len(p.Songs) == 0 {
		data.Messages = append(data.Messages, noSongsMessage)
	}
	if s.cfg.ViewsDir != "" {
		if vs, err := view.List(s.cfg.ViewsDir); err == nil {
			data.Views = vs
		}
	}
	c.HTML(http.StatusOK, "index", data)
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Music Chart Analysis Dashboard</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
aside { width: 260px; padding: 16px; background: #f3f3f3; min-height: 100vh; box-sizing: border-box; }
main { flex: 1; padding: 16px 24px; }
label { display: block; margin-top: 10px; font-size: 13px; }
input, select { width: 100%; box-sizing: border-box; }
figure { margin: 0 0 24px 0; }
.note { color: #8a5a00; }
</style>
</head>
<body>
<aside>
<form method="get" action="/">
<h3>User Input Features</h3>
{{if .Views}}<label>Saved view
<select name="view"><option value="">(none)</option>
{{range .Views}}<option value="{{.Name}}"{{if eq .Name $.Params.View}} selected{{end}}>{{.Name}}</option>{{end}}
</select></label>{{end}}
<label>Rank min <input type="number" name="rank_min" min="1" value="{{.Params.Range.Min}}"></label>
<label>Rank max <input type="number" name="rank_max" min="1" value="{{.Params.Range.Max}}"></label>
<label>Top artists <input type="number" name="top_n" min="0" value="{{.Params.TopN}}"></label>
<label>Heatmap artists <input type="number" name="max_artists" min="0" value="{{.Params.HeatmapMaxArtists}}"></label>
<label>Songs
<select name="song" multiple size="12">
{{range .Songs}}<option{{if .Selected}} selected{{end}}>{{.Title}}</option>{{end}}
</select></label>
<p><button type="submit">Apply</button></p>
</form>
</aside>
<main>
<h1>Music Chart Analysis Dashboard</h1>
<p>The impact of early success on longevity: does achieving a top rank early in a song's chart life predict its long-term success?</p>
{{with .Summary}}<p>{{.Rows}} rows, {{.Keys}} songs{{if .FirstDate}}, {{.FirstDate}} to {{.LastDate}}{{end}}. {{.FilteredRows}} rows with early peak in [{{.Range.Min}}, {{.Range.Max}}].</p>{{end}}
{{range .Messages}}<p class="note">{{.}}</p>{{end}}
{{range .Charts}}<figure><figcaption>{{.Title}}</figcaption><img src="{{.Src}}" alt="{{.Title}}"></figure>
{{end}}
</main>
</body>
</html>
`
