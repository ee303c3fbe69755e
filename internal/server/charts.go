package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/render"
)

// chartHandler serves one chart as PNG. Empty selections get a placeholder
// image carrying the reason, still with status 200.
func (s *Server) chartHandler(kind render.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, p, ok := s.load(c)
		if !ok {
			chartRenders.WithLabelValues(string(kind), "error").Inc()
			return
		}
		var buf bytes.Buffer
		err := render.Draw(&buf, t, p.selection(), kind, s.cfg.Chart)
		if analysis.IsEmptySelection(err) {
			msg := err.Error()
			if kind == render.KindLine && len(p.Songs) == 0 {
				msg = noSongsMessage
			}
			buf.Reset()
			err = render.Placeholder(&buf, msg, s.cfg.Chart)
			if err == nil {
				chartRenders.WithLabelValues(string(kind), "placeholder").Inc()
				c.Header("X-Chart-Message", msg)
				c.Header("Cache-Control", "no-store")
				c.Data(http.StatusOK, "image/png", buf.Bytes())
				return
			}
		}
		if err != nil {
			chartRenders.WithLabelValues(string(kind), "error").Inc()
			s.log.Error("render chart", "kind", kind, "error", err)
			s.fail(c, err)
			return
		}
		chartRenders.WithLabelValues(string(kind), "ok").Inc()
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}
