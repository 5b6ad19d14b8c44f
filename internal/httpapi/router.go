package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux (no third-party router
// dependency needed for this surface).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterMonitorRoutes registers the monitoring and alert endpoints.
func (r *Router) RegisterMonitorRoutes(h *MonitorHandler) {
	r.Handle("/api/v1/monitor/check", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Check(w, req)
	})

	r.Handle("/api/v1/monitor/sos", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SendSOS(w, req)
	})

	r.Handle("/api/v1/monitor/status", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Status(w, req)
	})

	r.Handle("/api/v1/alerts/acknowledge", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Acknowledge(w, req)
	})

	r.Handle("/api/v1/alerts/unacknowledged", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Unacknowledged(w, req)
	})

	r.Handle("/api/v1/alerts/summary", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Summary(w, req)
	})

	r.Handle("/api/v1/alerts/daily-summary", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SendDailySummary(w, req)
	})
}
