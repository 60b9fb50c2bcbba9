// Package metrics exports Prometheus metrics for the SSH server.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

const namespace = "t2048"

// Metrics holds the collectors shared by all sessions.
type Metrics struct {
	Sessions    prometheus.Gauge
	Connections prometheus.Counter
	Runs        *prometheus.CounterVec   // by outcome
	Ops         *prometheus.CounterVec   // by op and result
	OpSeconds   *prometheus.HistogramVec // by op
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "SSH sessions currently connected.",
		}),
		Connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "SSH sessions accepted since start.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished level attempts by outcome.",
		}, []string{"outcome"}),
		Ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_ops_total",
			Help:      "Persistence calls by operation and result.",
		}, []string{"op", "result"}),
		OpSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_op_seconds",
			Help:      "Persistence call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
	}
	reg.MustRegister(m.Sessions, m.Connections, m.Runs, m.Ops, m.OpSeconds)
	return m
}

// observe records one persistence call.
func (m *Metrics) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Ops.WithLabelValues(op, result).Inc()
	m.OpSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// since records a call started at start once it returns *err.
func (m *Metrics) since(op string, start time.Time, err *error) {
	m.observe(op, start, *err)
}

// Instrument wraps p so every call is counted and timed.
func (m *Metrics) Instrument(p t2048.Persistence) t2048.Persistence {
	return &instrumented{next: p, m: m}
}

type instrumented struct {
	next t2048.Persistence
	m    *Metrics
}

func (i *instrumented) LoadSession(ctx context.Context, player string) (s t2048.SavedSession, found bool, err error) {
	defer i.m.since("load_session", time.Now(), &err)
	return i.next.LoadSession(ctx, player)
}

func (i *instrumented) SaveSession(ctx context.Context, player string, s t2048.SavedSession) (err error) {
	defer i.m.since("save_session", time.Now(), &err)
	return i.next.SaveSession(ctx, player, s)
}

func (i *instrumented) ClearSession(ctx context.Context, player string) (err error) {
	defer i.m.since("clear_session", time.Now(), &err)
	return i.next.ClearSession(ctx, player)
}

func (i *instrumented) LoadProgression(ctx context.Context, player string) (p t2048.Progression, found bool, err error) {
	defer i.m.since("load_progression", time.Now(), &err)
	return i.next.LoadProgression(ctx, player)
}

func (i *instrumented) SaveProgression(ctx context.Context, player string, p t2048.Progression) (err error) {
	defer i.m.since("save_progression", time.Now(), &err)
	return i.next.SaveProgression(ctx, player, p)
}

func (i *instrumented) RecordRun(ctx context.Context, player string, r t2048.RunRecord) (err error) {
	start := time.Now()
	err = i.next.RecordRun(ctx, player, r)
	i.m.observe("record_run", start, err)
	i.m.Runs.WithLabelValues(string(r.Outcome)).Inc()
	return err
}

// Serve exposes g on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics endpoint", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}
