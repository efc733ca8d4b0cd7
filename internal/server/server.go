package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goahttp "goa.design/goa/v3/http"
	"goa.design/goa/v3/http/middleware"

	"leadforms/internal/config"
	"leadforms/internal/metrics"
	"leadforms/internal/services"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second

	// maxBodyBytes matches the 100kb JSON limit the form clients were built against
	maxBodyBytes = 100 << 10
)

// Server is the HTTP surface of the lead forms service
type Server struct {
	cfg    *config.Config
	health *services.HealthService
	leads  *services.LeadService
	mux    goahttp.Muxer
}

// New mounts every route on a goa muxer
func New(cfg *config.Config, health *services.HealthService, leads *services.LeadService) *Server {
	s := &Server{
		cfg:    cfg,
		health: health,
		leads:  leads,
		mux:    goahttp.NewMuxer(),
	}

	log.Println("Mounting HTTP handlers...")
	s.mount("GET", "/health", s.handleHealth)
	s.mount("POST", "/api/form/submit", s.handleSubmit)
	s.mount("GET", "/api/leads", s.handleListLeads)
	return s
}

// mount registers h with the request id and request context middleware
func (s *Server) mount(method, path string, h http.HandlerFunc) {
	var handler http.Handler = h
	handler = middleware.PopulateRequestContext()(handler)
	handler = middleware.RequestID(middleware.UseXRequestIDHeaderOption(true))(handler)
	s.mux.Handle(method, path, handler.ServeHTTP)
	log.Printf("Mounted %s %s", method, path)
}

// Handler returns the root handler with the middleware chain applied:
// Security -> CORS -> Logging -> Prometheus -> routes
func (s *Server) Handler() http.Handler {
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			promhttp.Handler().ServeHTTP(w, r)
			return
		}
		s.mux.ServeHTTP(w, r)
	})

	return securityHeaders(cors(requestLogging(metrics.PrometheusMiddleware(root)), s.cfg), s.cfg)
}

// HTTPServer wraps Handler in an http.Server with the service timeouts
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.cfg.App.Host, s.cfg.App.Port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     log.New(os.Stderr, "[HTTP] ", log.LstdFlags),
	}
}
