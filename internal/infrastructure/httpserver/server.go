// Package httpserver serves the prediction API over HTTP with gin.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ersonp/genepredictor/internal/application/handlers"
	"github.com/ersonp/genepredictor/internal/domain/entities"
	"github.com/ersonp/genepredictor/internal/infrastructure/config"
)

// Server is the HTTP front of a PredictHandler.
type Server struct {
	cfg     config.ServerConfig
	engine  *gin.Engine
	handler *handlers.PredictHandler
	logger  zerolog.Logger
}

// New creates a server and registers its routes.
func New(cfg config.ServerConfig, handler *handlers.PredictHandler, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  gin.New(),
		handler: handler,
		logger:  logger,
	}

	s.engine.Use(RequestID(logger), HTTPLogger(), HTTPRecovery())
	s.engine.POST("/predict", s.predict)
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Error: entities.KindInvalidRequest, Message: "route not found"})
	})

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is done, then shuts
// down gracefully within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return s.logger.WithContext(context.Background()) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Dur("timeout", s.cfg.ShutdownTimeout).Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) predict(c *gin.Context) {
	if s.cfg.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	}

	var req handlers.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := "request body must be a JSON object with a \"sequence\" field"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
		}
		zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("rejected request body")
		c.JSON(http.StatusBadRequest, handlers.ErrorResponse{Error: entities.KindInvalidRequest, Message: msg})
		return
	}

	resp, err := s.handler.Handle(c.Request.Context(), req)
	if err != nil {
		body := handlers.NewErrorResponse(err)
		c.JSON(StatusFor(body.Error), body)
		return
	}

	c.JSON(http.StatusOK, resp)
}
