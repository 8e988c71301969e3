package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	httperr "github.com/aevon-lab/geopresence/internal/core/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	serviceName     = "telemetry"
	headerRequestID = "X-Request-ID"
	headerProcTime  = "X-Process-Time"
	healthTimeout   = 2 * time.Second
)

type Server struct {
	Engine *gin.Engine
	Addr   string
	health HealthChecker
}

// HealthChecker is an interface for components that can report their health status.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// New builds the gin engine with request ids, /health and, when gatherer is
// non-nil, /metrics.
func New(addr string, health HealthChecker, gatherer prometheus.Gatherer, mode string) *Server {
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(RequestID(), gin.CustomRecovery(recoverPanic))
	r.NoRoute(statusEnvelope(http.StatusNotFound, "Resource not found"))
	r.NoMethod(statusEnvelope(http.StatusMethodNotAllowed, "Method not allowed"))

	s := &Server{
		Engine: r,
		Addr:   addr,
		health: health,
	}

	r.GET("/health", s.healthHandler)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return s
}

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it
// on the response together with the handling time in seconds.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(httperr.RequestIDKey, id)
		c.Header(headerRequestID, id)

		// headers must be set before the handler writes the body
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: start}
		c.Next()
	}
}

type timingWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timingWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	elapsed := time.Since(w.start).Seconds()
	w.Header().Set(headerProcTime, strconv.FormatFloat(elapsed, 'f', 6, 64))
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// recoverPanic turns a handler panic into the standard 500 envelope.
func recoverPanic(c *gin.Context, recovered any) {
	slog.Error("Unhandled panic in request handler",
		"panic", fmt.Sprint(recovered),
		"path", c.Request.URL.Path,
		"request_id", c.GetString(httperr.RequestIDKey))
	httperr.Write(c, http.StatusInternalServerError, httperr.CodeInternalError, "An unexpected error occurred", nil)
	c.Abort()
}

// statusEnvelope answers unmatched routes and methods with code HTTP_<status>.
func statusEnvelope(status int, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		httperr.Write(c, status, httperr.HTTPStatusCode(status), message, map[string]interface{}{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	}
}

// healthHandler always answers 200 and reports substrate health in the body.
func (s *Server) healthHandler(c *gin.Context) {
	if s.health == nil {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"status":  "unhealthy",
			"redis":   "unconfigured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := s.health.Ping(ctx); err != nil {
		slog.Error("Health check failed: redis unreachable", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"status":  "degraded",
			"redis":   "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service": serviceName,
		"status":  "healthy",
		"redis":   "connected",
	})
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP Server...", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("Stopping HTTP Server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP Server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
