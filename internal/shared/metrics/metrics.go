package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rezum_uploads_total",
		Help: "Total files stored through the upload endpoint",
	})

	uploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rezum_upload_rejected_total",
		Help: "Uploads rejected before storage",
	}, []string{"reason"})

	filesStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rezum_files_stored",
		Help: "Files currently held by the file store",
	})

	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rezum_extractions_total",
		Help: "PDF text extractions by result",
	}, []string{"result"})

	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rezum_analyses_total",
		Help: "Resume analyses by result",
	}, []string{"result"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rezum_analysis_duration_seconds",
		Help:    "End-to-end resume analysis duration",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	llmAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rezum_llm_attempts_total",
		Help: "Outbound LLM calls by provider and result",
	}, []string{"provider", "result"})
)

// IncUpload increments the stored-upload counter.
func IncUpload() {
	uploadsTotal.Inc()
}

// IncUploadRejected counts an upload rejected for reason.
func IncUploadRejected(reason string) {
	uploadsRejected.WithLabelValues(reason).Inc()
}

// AddFilesStored moves the stored-files gauge by delta.
func AddFilesStored(delta float64) {
	filesStored.Add(delta)
}

// SetFilesStored sets the stored-files gauge.
func SetFilesStored(n float64) {
	filesStored.Set(n)
}

// IncExtraction counts a text extraction outcome.
func IncExtraction(result string) {
	extractionsTotal.WithLabelValues(result).Inc()
}

// IncAnalysis counts an analysis outcome.
func IncAnalysis(result string) {
	analysesTotal.WithLabelValues(result).Inc()
}

// ObserveAnalysisDuration records an analysis duration.
func ObserveAnalysisDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	analysisDuration.Observe(d.Seconds())
}

// IncLLMAttempt counts one outbound LLM call.
func IncLLMAttempt(provider, result string) {
	llmAttempts.WithLabelValues(provider, result).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
