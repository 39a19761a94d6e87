package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ersonp/genepredictor/internal/application/handlers"
	"github.com/ersonp/genepredictor/internal/domain/entities"
)

// HeaderRequestID carries the request identifier in both directions.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID propagates or generates a request id, echoes it in the
// response and attaches a logger carrying it to the request context.
func RequestID(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Set(HeaderRequestID, id)

		logger := base.With().Str("request_id", id).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
	}
}

// HTTPLogger logs one access line per request.
func HTTPLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		zerolog.Ctx(c.Request.Context()).Info().
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Msgf("[access] [%s] %s %s %d %v", c.ClientIP(), c.Request.Method, route, c.Writer.Status(), latency)
	}
}

// HTTPRecovery turns a panic into a 500 with the standard error body.
func HTTPRecovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		zerolog.Ctx(c.Request.Context()).Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.ErrorResponse{
			Error:   entities.KindInferenceFailure,
			Message: "internal error",
		})
	})
}
