package internalhttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lomoval/weekcal/internal/app"
	"github.com/lomoval/weekcal/internal/identity"
	"github.com/lomoval/weekcal/internal/metrics"
	"github.com/lomoval/weekcal/internal/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBasePath   = "/api/v1"
	readHeaderTimeout = 5 * time.Second
)

type Config struct {
	Host     string
	Port     int
	BasePath string
	// AllowedOrigins lists origins for CORS and websocket checks, "*" allows any.
	AllowedOrigins []string
	Owner          string
}

// Deps are optional collaborators, nil members disable their routes.
type Deps struct {
	Metrics *metrics.Metrics
	Hub     *websocket.Hub
}

type Server struct {
	srv      *http.Server
	addr     string
	app      *app.App
	deps     Deps
	basePath string
	owner    string
	origins  []string
}

func NewServer(config Config, calendar *app.App, deps Deps) *Server {
	s := &Server{
		addr:     net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		app:      calendar,
		deps:     deps,
		basePath: strings.TrimSuffix(config.BasePath, "/"),
		owner:    config.Owner,
		origins:  config.AllowedOrigins,
	}
	if config.BasePath == "" {
		s.basePath = DefaultBasePath
	}
	if s.owner == "" {
		s.owner = identity.DefaultOwner
	}
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler is the complete middleware chain and router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+s.basePath+"/event", s.listEvents)
	mux.HandleFunc("POST "+s.basePath+"/event", s.createEvent)
	mux.HandleFunc("PUT "+s.basePath+"/event/{id}", s.updateEvent)
	mux.HandleFunc("DELETE "+s.basePath+"/event/{id}", s.removeEvent)
	mux.HandleFunc("GET "+s.basePath+"/event.ics", s.exportEvents)
	mux.HandleFunc("GET "+s.basePath+"/ping", s.ping)
	if s.deps.Hub != nil {
		mux.Handle("GET "+s.basePath+"/ws", websocket.Handler(s.deps.Hub, wsOrigins(s.origins)))
	}
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	h := routeMiddleware(mux)
	h = ownerMiddleware(s.owner, h)
	h = corsMiddleware(s.origins, h)
	h = loggingMiddleware(s.deps.Metrics, h)
	h = requestIDMiddleware(h)
	return h
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

func wsOrigins(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		// coder/websocket matches host patterns, not full origins
		o = strings.TrimPrefix(strings.TrimPrefix(o, "https://"), "http://")
		patterns = append(patterns, o)
	}
	return patterns
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
