package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"sisnames/app/internal/names"
	"sisnames/app/internal/scrape"
)

// Options configures the HTTP server wiring.
type Options struct {
	NamesService names.Service
	Lookup       scrape.Lookup
	Logger       *logrus.Logger
	SentryHub    *sentry.Hub
	CacheEnabled bool
}

// Server wires the JSON API transport layer via Huma.
type Server struct {
	api          huma.API
	mux          *stdhttp.ServeMux
	names        names.Service
	lookup       scrape.Lookup
	logger       *logrus.Logger
	sentry       *sentry.Hub
	cacheEnabled bool
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.NamesService == nil {
		return nil, eris.New("names service is required")
	}
	if opts.Lookup == nil {
		return nil, eris.New("person lookup is required")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("SIS Names", "1.0.0")

	api := humago.New(mux, config)

	srv := &Server{
		api:          api,
		mux:          mux,
		names:        opts.NamesService,
		lookup:       opts.Lookup,
		logger:       opts.Logger,
		sentry:       opts.SentryHub,
		cacheEnabled: opts.CacheEnabled,
	}

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.registerGenerateNamesRoute()
	s.registerScrapeDataRoute()
	s.registerHealthRoute()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
	} else if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
