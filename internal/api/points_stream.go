package api

import (
	"fmt"
	"net/http"

	"statcalc/app"
	"statcalc/internal/errors"

	"github.com/gin-gonic/gin"
)

// PointEvent is one support value of a streamed distribution.
type PointEvent struct {
	K          int     `json:"k"`
	P          float64 `json:"p"`
	Cumulative float64 `json:"cumulative"`
}

// StreamPoints runs a discrete calculator and streams its mass function as
// Server-Sent Events: one "point" event per support value, then "done".
func (h *CalculatorHandler) StreamPoints(c *gin.Context) {
	name := c.Param("name")
	info, err := app.LookupCalculator(name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !info.Plottable {
		h.writeError(c, errors.InvalidInput(fmt.Sprintf("%s has no distribution to stream", info.Name)))
		return
	}

	var body RunRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	if err := h.sem.Acquire(ctx, 1); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calculation capacity exhausted", "code": "UNAVAILABLE"})
		return
	}
	defer h.sem.Release(1)

	out, err := h.service.Run(ctx, app.Invocation{Calculator: name, Args: body.Args, Remote: true})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	sent := 0
	cumulative := 0.0
	for k, p := range out.Result.Points {
		if ctx.Err() != nil {
			h.logger.Debug("client left %s stream after %d points", info.Name, sent)
			return
		}
		cumulative = min(cumulative+p, 1)
		c.SSEvent("point", PointEvent{K: k, P: p, Cumulative: cumulative})
		c.Writer.Flush()
		sent++
	}

	c.SSEvent("done", gin.H{"id": out.ID.String(), "points": sent})
	c.Writer.Flush()
}
