package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

const namespace = "aim"

// Recorder счётчики конвейера в собственном реестре.
type Recorder struct {
	registry *prometheus.Registry

	frames       prometheus.Counter
	lightBars    prometheus.Counter
	armors       *prometheus.CounterVec
	poseFailures prometheus.Counter
	digits       prometheus.Counter
	latency      prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Processed frames",
		}),
		lightBars: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "light_bars_total",
			Help:      "Light bars accepted by the segmentor",
		}),
		armors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "armors_total",
			Help:      "Armor plates by size",
		}, []string{"type"}),
		poseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pose_failures_total",
			Help:      "Armor plates without a distance estimate",
		}),
		digits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digits_recognized_total",
			Help:      "Armor plates with a recognized digit",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Per-frame processing time",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	r.registry.MustRegister(
		r.frames, r.lightBars, r.armors, r.poseFailures, r.digits, r.latency,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return r
}

// Observe учитывает итоги кадра.
func (r *Recorder) Observe(result *entity.FrameResult) {
	if result == nil {
		return
	}
	r.frames.Inc()
	r.lightBars.Add(float64(len(result.LightBars)))
	r.latency.Observe(result.Elapsed.Seconds())

	for _, a := range result.Armors {
		r.armors.WithLabelValues(string(a.Type)).Inc()
		if !a.HasDistance() {
			r.poseFailures.Inc()
		}
		if a.Digit.Known() {
			r.digits.Inc()
		}
	}
}

// Handler HTTP-обработчик /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Serve отдаёт метрики до отмены контекста.
func (r *Recorder) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics endpoint started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var _ port.FrameObserver = (*Recorder)(nil)
