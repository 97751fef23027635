package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumentation counts requests and observes their duration per path.
type Instrumentation struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewInstrumentation registers the HTTP metrics with reg.
func NewInstrumentation(reg prometheus.Registerer) (*Instrumentation, error) {
	m := &Instrumentation{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sketchboard",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Number of incoming HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sketchboard",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of incoming HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware instruments h. The live search socket is long lived, so its
// duration is not observed.
func (m *Instrumentation) Middleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w}
		h.ServeHTTP(rw, r)
		status := rw.Status()
		m.requests.WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(status)).Inc()
		if status != http.StatusSwitchingProtocols {
			m.duration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
		}
	})
}

// statusWriter remembers the status code the handler sent.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Hijack hands the connection to the websocket upgrader.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("middleware: response writer cannot be hijacked")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}
