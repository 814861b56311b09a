// Package gin exposes engine diagnostics over HTTP.
package gin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/gin-gonic/gin"
)

// Prober runs single-page engine diagnostics.
type Prober interface {
	ProbeEngine(ctx context.Context, engine string) *serpwatch.ProbeResult
	ProbeAllEngines(ctx context.Context) []*serpwatch.ProbeResult
}

// HealthReporter reports accumulated per-engine health.
type HealthReporter interface {
	Snapshot() map[string]serpwatch.EngineHealth
}

// ProbeRecorder folds served diagnostics into engine health.
type ProbeRecorder interface {
	RecordProbe(p *serpwatch.ProbeResult)
}

// degradedRate is the success rate below which an engine that has been
// attempted marks the service degraded.
const degradedRate = 0.5

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string                            `json:"status"`
	Uptime  string                            `json:"uptime"`
	Engines map[string]serpwatch.EngineHealth `json:"engines"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler serves the diagnostics API.
type Handler struct {
	Engines serpwatch.EngineRegistry
	Prober  Prober
	Health  HealthReporter
	Logger  *slog.Logger

	// Recorder, when set, receives every probe result served, so /health
	// reflects engines probed since startup.
	Recorder ProbeRecorder

	// Started is reported as uptime by /health.
	Started time.Time
}

// Router returns a gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if h.Logger != nil {
		r.Use(requestLogger(h.Logger))
	}

	r.GET("/health", h.health())
	r.GET("/engines", h.engines())
	r.GET("/engines/:engine/probe", h.probeEngine())
	r.GET("/probe", h.probeAll())
	return r
}

func (h *Handler) health() gin.HandlerFunc {
	return func(c *gin.Context) {
		engines := h.Health.Snapshot()

		status := "ok"
		for _, e := range engines {
			if e.Attempts > 0 && e.SuccessRate() < degradedRate {
				status = "degraded"
				break
			}
		}

		c.JSON(http.StatusOK, HealthResponse{
			Status:  status,
			Uptime:  time.Since(h.Started).Round(time.Second).String(),
			Engines: engines,
		})
	}
}

func (h *Handler) engines() gin.HandlerFunc {
	return func(c *gin.Context) {
		names := h.Engines.Names()
		engines := make([]*serpwatch.EngineConfig, 0, len(names))
		for _, name := range names {
			e, err := h.Engines.Engine(name)
			if err != nil {
				writeError(c, err)
				return
			}
			engines = append(engines, e)
		}
		c.JSON(http.StatusOK, engines)
	}
}

func (h *Handler) probeEngine() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("engine")
		if _, err := h.Engines.Engine(name); err != nil {
			writeError(c, err)
			return
		}
		res := h.Prober.ProbeEngine(c.Request.Context(), name)
		h.record(c.Request.Context(), res)
		c.JSON(http.StatusOK, res)
	}
}

func (h *Handler) probeAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		results := h.Prober.ProbeAllEngines(c.Request.Context())
		h.record(c.Request.Context(), results...)
		c.JSON(http.StatusOK, results)
	}
}

// record passes results to the recorder unless the client went away
// mid-request, in which case the results describe the cancellation.
func (h *Handler) record(ctx context.Context, results ...*serpwatch.ProbeResult) {
	if h.Recorder == nil || ctx.Err() != nil {
		return
	}
	for _, res := range results {
		h.Recorder.RecordProbe(res)
	}
}

// writeError maps an application error code to an HTTP status.
func writeError(c *gin.Context, err error) {
	code := serpwatch.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case serpwatch.ENOTFOUND:
		status = http.StatusNotFound
	case serpwatch.EINVALID:
		status = http.StatusBadRequest
	case serpwatch.ECONFLICT:
		status = http.StatusConflict
	}
	c.JSON(status, ErrorResponse{Code: code, Message: serpwatch.ErrorMessage(err)})
}

// requestLogger logs each request through logger.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(begin),
		)
	}
}
