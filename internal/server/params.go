package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/render"
	"github.com/KaramelBytes/chartlens/internal/view"
)

const defaultRowLimit = 100

// Params are the per-request dashboard inputs. They are built fresh for every
// request from the configured defaults, an optional saved view and the query
// string, in that order of precedence.
type Params struct {
	View              string
	Range             analysis.RankRange
	Songs             []string
	TopN              int
	HeatmapMaxArtists int
	Artists           []string
	Limit             int
}

// badRequest marks errors caused by client input.
type badRequest struct{ err error }

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

func invalidParam(name, val string) error {
	return &badRequest{err: fmt.Errorf("invalid value for %s: %q", name, val)}
}

func (s *Server) parseParams(c *gin.Context) (Params, error) {
	p := s.cfg.Defaults
	p.Songs = append([]string(nil), p.Songs...)
	if p.Limit == 0 {
		p.Limit = defaultRowLimit
	}

	if name := strings.TrimSpace(c.Query("view")); name != "" {
		if s.cfg.ViewsDir == "" {
			return p, &badRequest{err: errors.New("saved views are not configured")}
		}
		v, err := view.Load(s.cfg.ViewsDir, name)
		if err != nil {
			return p, &badRequest{err: err}
		}
		p.View = v.Name
		applyView(&p, v)
	}

	intParam := func(name string, dst *int, min int) error {
		raw, ok := c.GetQuery(name)
		if !ok || strings.TrimSpace(raw) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < min {
			return invalidParam(name, raw)
		}
		*dst = n
		return nil
	}
	if err := intParam("rank_min", &p.Range.Min, 1); err != nil {
		return p, err
	}
	if err := intParam("rank_max", &p.Range.Max, 1); err != nil {
		return p, err
	}
	if err := intParam("top_n", &p.TopN, 0); err != nil {
		return p, err
	}
	if err := intParam("max_artists", &p.HeatmapMaxArtists, 0); err != nil {
		return p, err
	}
	if err := intParam("limit", &p.Limit, 0); err != nil {
		return p, err
	}
	if songs := nonEmpty(c.QueryArray("song")); len(songs) > 0 {
		p.Songs = songs
	}
	p.Artists = nonEmpty(c.QueryArray("artist"))

	if err := p.Range.Validate(); err != nil {
		return p, &badRequest{err: err}
	}
	return p, nil
}

func applyView(p *Params, v *view.View) {
	if v.Range != nil {
		p.Range = *v.Range
	}
	if len(v.Songs) > 0 {
		p.Songs = append([]string(nil), v.Songs...)
	}
	if v.TopN > 0 {
		p.TopN = v.TopN
	}
	if v.HeatmapMaxArtists > 0 {
		p.HeatmapMaxArtists = v.HeatmapMaxArtists
	}
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Values encodes the resolved parameters as a query string for chart links.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("rank_min", strconv.Itoa(p.Range.Min))
	v.Set("rank_max", strconv.Itoa(p.Range.Max))
	v.Set("top_n", strconv.Itoa(p.TopN))
	v.Set("max_artists", strconv.Itoa(p.HeatmapMaxArtists))
	for _, s := range p.Songs {
		v.Add("song", s)
	}
	for _, a := range p.Artists {
		v.Add("artist", a)
	}
	return v
}

func (p Params) selection() render.Selection {
	return render.Selection{
		Range:      p.Range,
		TopN:       p.TopN,
		Songs:      p.Songs,
		Artists:    p.Artists,
		MaxArtists: p.HeatmapMaxArtists,
	}
}
