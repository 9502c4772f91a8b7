package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journey_chat_duration_seconds",
			Help:    "Chat pipeline duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"transport"},
	)

	ChatTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journey_chat_total",
			Help: "Total number of chat queries processed",
		},
		[]string{"status"},
	)

	RetrievalResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "journey_retrieval_results_count",
			Help:    "Number of retrieved documents per query",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	CitationsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "journey_citations_returned_count",
			Help:    "Number of distinct sources cited per answer",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	PersonaSelected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journey_persona_selected_total",
			Help: "Answers grouped by selected persona",
		},
		[]string{"persona"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journey_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journey_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "journey_index_documents",
			Help: "Documents held by the embedding index",
		},
	)
)

func Init() {
	prometheus.MustRegister(ChatDuration)
	prometheus.MustRegister(ChatTotal)
	prometheus.MustRegister(RetrievalResults)
	prometheus.MustRegister(CitationsReturned)
	prometheus.MustRegister(PersonaSelected)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(IndexDocuments)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
