package server

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/api"
	"github.com/Hekkura/LibraryAppBE/pkg/metrics"
)

// Server assembles the API handler, middleware and operational endpoints
type Server struct {
	router      *mux.Router
	handler     *api.Handler
	corsOrigins []string
}

// NewServer creates a new instance of Server. The API is mounted under /api;
// /health and /metrics sit at the root.
func NewServer(handler *api.Handler, corsOrigins []string) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		handler:     handler,
		corsOrigins: corsOrigins,
	}
	metrics.Register()
	s.routes()

	s.router.Use(requestIDMiddleware, requestLoggerMiddleware, metricsMiddleware)

	// Customize NotFoundHandler to log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Warn().Str("method", r.Method).Str("path", r.URL.Path).Msg("no route found")
		api.WriteJSONError(w, http.StatusNotFound, "route not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return s
}

// Router exposes the router wrapped in the CORS policy
func (s *Server) Router() http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(s.corsOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(s.router)
}

func (s *Server) routes() {
	s.handler.RegisterRoutes(s.router.PathPrefix("/api").Subrouter())
	s.router.HandleFunc("/health", s.handler.HandleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
