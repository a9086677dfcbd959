package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	applicationsCreatedTotal  atomic.Uint64
	applicationsExistingTotal atomic.Uint64
	scoresRecordedTotal       atomic.Uint64
	scoresFailedTotal         atomic.Uint64
	resumesUploadedTotal      atomic.Uint64
	skillExtractionFailures   atomic.Uint64
	panicsRecoveredTotal      atomic.Uint64
	rateLimitedTotal          atomic.Uint64

	scoringDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncApplicationCreated counts a newly committed application.
func IncApplicationCreated() {
	applicationsCreatedTotal.Add(1)
}

// IncApplicationExisting counts an apply call answered from an existing application.
func IncApplicationExisting() {
	applicationsExistingTotal.Add(1)
}

// IncScoreRecorded counts a persisted NGMI score.
func IncScoreRecorded() {
	scoresRecordedTotal.Add(1)
}

// IncScoreFailed counts an application left unscored.
func IncScoreFailed() {
	scoresFailedTotal.Add(1)
}

// IncResumeUploaded counts a committed resume.
func IncResumeUploaded() {
	resumesUploadedTotal.Add(1)
}

// IncSkillExtractionFailed counts a resume whose skills could not be attached.
func IncSkillExtractionFailed() {
	skillExtractionFailures.Add(1)
}

// IncPanicRecovered counts a handler panic turned into a 500.
func IncPanicRecovered() {
	panicsRecoveredTotal.Add(1)
}

// IncRateLimited counts a request rejected with 429.
func IncRateLimited() {
	rateLimitedTotal.Add(1)
}

// ObserveScoringDurationMs records how long a scoring attempt took.
func ObserveScoringDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	scoringDuration.Observe(value)
}

// Since returns the elapsed milliseconds since start.
func Since(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "ngmi_applications_created_total", "Applications created", applicationsCreatedTotal.Load())
	writeCounter(&buf, "ngmi_applications_existing_total", "Apply calls answered with an existing application", applicationsExistingTotal.Load())
	writeCounter(&buf, "ngmi_scores_recorded_total", "NGMI scores persisted", scoresRecordedTotal.Load())
	writeCounter(&buf, "ngmi_scores_failed_total", "Applications left unscored", scoresFailedTotal.Load())
	writeCounter(&buf, "ngmi_resumes_uploaded_total", "Resumes uploaded", resumesUploadedTotal.Load())
	writeCounter(&buf, "ngmi_skill_extraction_failures_total", "Resumes whose skills could not be attached", skillExtractionFailures.Load())
	writeCounter(&buf, "ngmi_http_panics_recovered_total", "Handler panics recovered", panicsRecoveredTotal.Load())
	writeCounter(&buf, "ngmi_http_rate_limited_total", "Requests rejected by the write rate limit", rateLimitedTotal.Load())
	writeHistogram(&buf, "ngmi_scoring_duration_ms", "Scoring duration in milliseconds", scoringDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound holds it; the
// exposition makes the counts cumulative.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
