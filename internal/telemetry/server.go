package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gwillem/hanoiarm/pkg/choreo"
)

// StatusSource reports the current control loop status. *choreo.Controller
// implements it.
type StatusSource interface {
	Status() choreo.Status
}

// StatusView is the JSON form of a choreo.Status.
type StatusView struct {
	Mode      string    `json:"mode"`
	Cycle     int       `json:"cycle"`
	Move      string    `json:"move,omitempty"`
	Phase     string    `json:"phase,omitempty"`
	Peg       string    `json:"peg,omitempty"`
	Z         float64   `json:"z"`
	Gripper   float64   `json:"gripper"`
	Delay     string    `json:"delay,omitempty"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Error     string    `json:"error,omitempty"`
}

// ViewOf converts s for display.
func ViewOf(s choreo.Status) StatusView {
	v := StatusView{
		Mode:      s.Mode.String(),
		Cycle:     s.Cycle,
		Z:         s.Waypoint.Position.Z,
		Gripper:   s.Waypoint.Gripper,
		State:     s.State.String(),
		Timestamp: s.Timestamp,
	}
	if !s.Timestamp.IsZero() {
		v.Move = s.Move.String()
		v.Phase = s.Waypoint.Phase.String()
		v.Peg = s.Waypoint.Peg.String()
		v.Delay = s.Delay.String()
	}
	if s.Error != nil {
		v.Error = s.Error.Error()
	}
	return v
}

// NewHandler routes /metrics, /healthz and /status.
func NewHandler(m *Metrics, src StatusSource, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if src.Status().Mode == choreo.ModeStopped {
			http.Error(w, "stopped", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ViewOf(src.Status())); err != nil {
			logger.Warn("encode status", zap.Error(err))
		}
	})
	return r
}

// Serve runs an HTTP server on addr until ctx is done.
func Serve(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("telemetry listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
