package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.log.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// observe records request count and latency per route template.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// requireReady makes sure the schema and seed exist before any API call.
func (s *Server) requireReady() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.ensureReady(c.Request.Context()); err != nil {
			s.log.Error("store not ready", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(CodeNotReady, err.Error()))
			return
		}
		c.Next()
	}
}
