// Package server exposes the question service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csheth/whatif/internal/api"
	"github.com/csheth/whatif/internal/llm"
	"github.com/csheth/whatif/internal/store"
)

const (
	feedLimit       = 20
	shutdownTimeout = 5 * time.Second
)

// QuestionLog records asked questions and answers the feed queries.
// *store.Store satisfies it.
type QuestionLog interface {
	Record(ctx context.Context, e store.Entry) (int64, error)
	Inspiration(ctx context.Context, limit int) ([]api.Inspiration, error)
	Background(ctx context.Context, limit int) ([]string, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Generator llm.Generator
	Log       QuestionLog
	Logger    *zap.Logger
	// RatePerMinute bounds submissions per client address. Zero disables limiting.
	RatePerMinute int
}

// Server serves the question API.
type Server struct {
	gen     llm.Generator
	log     QuestionLog
	logger  *zap.Logger
	limiter *clientLimiter
	engine  *gin.Engine
}

// New builds the gin engine and its routes.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		gen:    deps.Generator,
		log:    deps.Log,
		logger: logger,
	}
	if deps.RatePerMinute > 0 {
		s.limiter = newClientLimiter(deps.RatePerMinute)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog(logger))
	engine.GET(api.PathHealth, s.health)
	engine.GET(api.PathInspiration, s.inspiration)
	engine.GET(api.PathBackground, s.background)
	submit := []gin.HandlerFunc{s.submit}
	if s.limiter != nil {
		submit = append([]gin.HandlerFunc{rateLimit(s.limiter, logger)}, submit...)
	}
	engine.POST(api.PathSubmit, submit...)
	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr), zap.String("generator", s.gen.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
