package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/ubxwire/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ubxwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ubxwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	streamFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ubxwire",
			Subsystem: "stream",
			Name:      "frames_total",
			Help:      "Frames seen on a UBX stream by outcome.",
		},
		[]string{"source", "outcome", "message"},
	)
	streamPayloadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ubxwire",
			Subsystem: "stream",
			Name:      "payload_bytes_total",
			Help:      "Declared payload bytes of frames seen on a UBX stream.",
		},
		[]string{"source", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, streamFrames, streamPayloadBytes)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordFrame counts one stream event.
func RecordFrame(source string, ev protocol.Event) {
	RegisterMetrics()
	outcome := ev.Kind.String()
	streamFrames.WithLabelValues(source, outcome, messageLabel(ev)).Inc()
	streamPayloadBytes.WithLabelValues(source, outcome).Add(float64(ev.Len))
}

// StreamObserver returns an observer that records every event under source.
func StreamObserver(source string) protocol.Observer {
	RegisterMetrics()
	return protocol.ObserverFunc(func(ev protocol.Event) {
		RecordFrame(source, ev)
	})
}

// messageLabel keeps the label set bounded: only registered names get
// their own series.
func messageLabel(ev protocol.Event) string {
	switch {
	case ev.Kind == protocol.EventRejected:
		return "invalid"
	case ev.Name != "":
		return ev.Name
	default:
		return "unrecognized"
	}
}
