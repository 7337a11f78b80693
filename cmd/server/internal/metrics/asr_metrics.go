// Package metrics exposes prometheus instruments for the transcription
// API. Exported via /metrics using promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal 转写请求总数计数器
	// Labels: status (success/error/rejected)
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asr_request_total",
			Help: "Total number of transcription requests by status",
		},
		[]string{"status"},
	)

	// RequestLatency 转写请求耗时直方图（秒）
	// Buckets: 0.1s .. 300s, 转写耗时大致与音频时长同量级
	RequestLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asr_request_latency_seconds",
			Help:    "Transcription request latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// AudioSize 输入音频大小直方图（MB）
	AudioSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asr_audio_size_mb",
			Help:    "Input audio size in megabytes",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 200},
		},
	)

	// SegmentsCount 每次转写产出的分段数直方图
	SegmentsCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asr_segments_count",
			Help:    "Number of segments produced per transcription",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)

// RecordRequest 记录一次转写请求结果
func RecordRequest(status string, latencySeconds float64) {
	RequestTotal.WithLabelValues(status).Inc()
	RequestLatency.Observe(latencySeconds)
}

// RecordAudio 记录输入音频大小与产出分段数
func RecordAudio(sizeMB float64, segments int) {
	AudioSize.Observe(sizeMB)
	SegmentsCount.Observe(float64(segments))
}
