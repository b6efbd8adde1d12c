package generation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess    = "success"
	outcomeFailed     = "failed"
	outcomeSuperseded = "superseded"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipegen",
		Name:      "generations_total",
		Help:      "Generation sequences by outcome.",
	}, []string{"outcome"})

	placeholderImagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recipegen",
		Name:      "placeholder_images_total",
		Help:      "Successful generations that fell back to the placeholder image.",
	})

	stageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recipegen",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each remote model call.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
	}, []string{"stage"})
)
