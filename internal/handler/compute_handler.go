package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/middleware"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
	"github.com/noah-isme/edu-crm-api/pkg/response"
)

type computeService interface {
	Compute(ctx context.Context, req dto.ComputeRequest) (*dto.ComputeResponse, error)
}

// ComputeHandler exposes one-shot aggregation over a caller-supplied record set.
type ComputeHandler struct {
	service computeService
}

// NewComputeHandler constructs the handler.
func NewComputeHandler(service computeService) *ComputeHandler {
	return &ComputeHandler{service: service}
}

// Compute godoc
// @Summary Aggregate a supplied record set
// @Description Returns the complete dashboard view-model for the records in the request body.
// @Tags Metrics
// @Accept json
// @Produce json
// @Param payload body dto.ComputeRequest true "Records and parameters"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /metrics/compute [post]
func (h *ComputeHandler) Compute(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid compute payload"))
		return
	}
	start := time.Now()
	result, err := h.service.Compute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, false)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	meta["records"] = req.RecordCount()
	response.JSON(c, http.StatusOK, result, nil, meta)
}
