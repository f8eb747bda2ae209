package api

import (
	"net/http"

	"statcalc/app"
	"statcalc/domain/core"
	"statcalc/internal"
	"statcalc/internal/errors"
	"statcalc/internal/report"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// CalculatorHandler serves the calculators over JSON.
type CalculatorHandler struct {
	service *app.CalculatorService
	// sem caps the calculations in flight across all requests.
	sem    *semaphore.Weighted
	logger *internal.Logger
}

// RunRequest is the body of a calculator invocation.
type RunRequest struct {
	Args  []string `json:"args"`
	Graph bool     `json:"graph"`
}

// NewCalculatorHandler creates a handler allowing maxConcurrent calculations at once.
func NewCalculatorHandler(service *app.CalculatorService, maxConcurrent int64, logger *internal.Logger) *CalculatorHandler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CalculatorHandler{
		service: service,
		sem:     semaphore.NewWeighted(maxConcurrent),
		logger:  logger,
	}
}

// RegisterRoutes mounts the handler under /api/v1.
func (h *CalculatorHandler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	v1.GET("/calculators", h.ListCalculators)
	v1.POST("/calculators/:name", h.RunCalculator)
	v1.POST("/calculators/:name/points", h.StreamPoints)
}

// ListCalculators returns every calculator with its usage line.
func (h *CalculatorHandler) ListCalculators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"calculators": app.ListCalculators()})
}

// RunCalculator solves one invocation and returns the JSON report.
func (h *CalculatorHandler) RunCalculator(c *gin.Context) {
	name := c.Param("name")
	if _, err := app.LookupCalculator(name); err != nil {
		h.writeError(c, err)
		return
	}

	var body RunRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	if err := h.sem.Acquire(ctx, 1); err != nil {
		h.logger.Warn("calculation capacity exhausted for %s: %v", name, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calculation capacity exhausted", "code": "UNAVAILABLE"})
		return
	}
	defer h.sem.Release(1)

	out, err := h.service.Run(ctx, app.Invocation{
		Calculator: name,
		Args:       body.Args,
		Graph:      body.Graph,
		Remote:     true,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report.JSON(report.Report{ID: out.ID, Result: out.Result, Graph: out.Graph}))
}

func (h *CalculatorHandler) writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error(), "code": errors.CodeFor(err)}
	if param := core.ParamOf(err); param != "" {
		body["param"] = param
	}
	c.JSON(StatusFor(err), body)
}

// StatusFor maps an error category to its HTTP status.
func StatusFor(err error) int {
	switch errors.CodeFor(err) {
	case errors.CodeParse, errors.CodeInsufficientParameters, errors.CodeAmbiguousInput,
		errors.CodeDomain, errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNonConvergence:
		return http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
