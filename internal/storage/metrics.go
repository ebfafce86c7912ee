package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskOpsCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todosync_store_operations_total",
			Help: "Total number of task store operations by result",
		},
		[]string{"op", "status"},
	)

	taskOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todosync_store_operation_duration_seconds",
			Help:    "Duration of task store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	taskTitleLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "todosync_task_title_length_bytes",
			Help:    "Length distribution of created task titles",
			Buckets: []float64{10, 50, 100, 500, 1000},
		},
	)
)
