package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartlens_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chartlens_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	chartRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartlens_chart_renders_total",
			Help: "Rendered chart images by kind and outcome (ok, placeholder, error)",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, chartRenders)
}

func instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
