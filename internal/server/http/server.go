package internalhttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/kcmi-rcc/eventboard/internal/ingest"
	"github.com/kcmi-rcc/eventboard/internal/render"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Host string
	Port int
}

type Server struct {
	srv    *http.Server
	addr   string
	loader *ingest.Loader
}

func NewServer(config Config, loader *ingest.Loader) *Server {
	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	s := &Server{addr: addr, loader: loader}
	s.srv = &http.Server{Addr: addr, Handler: s.Handler()}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/api/events", s.handleEvents)

	return r
}

func (s *Server) Start(_ context.Context) error {
	log.Printf("starting http server on %s", s.addr)
	err := s.srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type eventsResponse struct {
	Events  []render.Card `json:"events"`
	Warning string        `json:"warning,omitempty"`
}

// responseRenderer captures the loader's outcome for one request.
type responseRenderer struct {
	cards   []render.Card
	notice  string
	message string
	failed  bool
}

func (r *responseRenderer) Render(cards []render.Card, notice string) {
	r.cards = cards
	r.notice = notice
}

func (r *responseRenderer) RenderError(message string) {
	r.failed = true
	r.message = message
}

func (s *Server) handleEvents(w http.ResponseWriter, req *http.Request) {
	rend := &responseRenderer{}
	s.loader.Load(req.Context(), rend)

	w.Header().Set("Content-Type", "application/json")
	if rend.failed {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"error": rend.message})
		return
	}
	writeJSON(w, eventsResponse{Events: rend.cards, Warning: rend.notice})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func getIP(req *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return "", fmt.Errorf("userip: %q is not IP:port", req.RemoteAddr)
	}

	if parsed := net.ParseIP(ip); parsed == nil {
		return "", fmt.Errorf("userip: %q is not IP:port", req.RemoteAddr)
	}
	return ip, nil
}
