package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartlens_cache_lookups_total",
			Help: "Table cache lookups by result (hit, revalidated, miss)",
		},
		[]string{"result"},
	)
	derivations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chartlens_table_derivations_total",
			Help: "Number of times a chart table was parsed and derived",
		},
	)
	invalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chartlens_cache_invalidations_total",
			Help: "Explicit cache invalidations",
		},
	)
)

func init() {
	prometheus.MustRegister(lookups, derivations, invalidations)
}
