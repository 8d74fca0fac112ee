package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/service"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

type computeServiceStub struct {
	last dto.ComputeRequest
	err  error
}

func (s *computeServiceStub) Compute(_ context.Context, req dto.ComputeRequest) (*dto.ComputeResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ComputeResponse{AsOf: req.AsOf, Applications: dto.ApplicationInsights{Total: len(req.Applications)}}, nil
}

func TestComputeHandlerCompute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &computeServiceStub{}
	handler := NewComputeHandler(stub)

	payload := []byte(`{
		"asOf": "2024-06-15",
		"applications": [
			{"id": "app-1", "status": "enrolled", "created_at": "2024-06-01T08:00:00Z"},
			{"id": "app-2", "status": "offer_received", "created_at": "2024-06-02T08:00:00Z"}
		],
		"leads": [{"id": "lead-1", "status": "new", "created_at": "2024-06-01T08:00:00Z"}]
	}`)
	c, w := newGinContext(http.MethodPost, "/metrics/compute", payload)
	handler.Compute(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, stub.last.Applications, 2)

	var body struct {
		Data dto.ComputeResponse    `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2024-06-15", body.Data.AsOf)
	assert.Equal(t, 2, body.Data.Applications.Total)
	assert.Equal(t, float64(3), body.Meta["records"])
	assert.Equal(t, false, body.Meta["cache_hit"])
}

func TestComputeHandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newGinContext(http.MethodPost, "/metrics/compute", []byte(`[]`))
	NewComputeHandler(&computeServiceStub{}).Compute(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodPost, "/metrics/compute", []byte(`{"asOf":"2024-06-15"}`))
	NewComputeHandler(&computeServiceStub{err: appErrors.Clone(appErrors.ErrPayloadTooLarge, "too many records")}).Compute(c)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	c, w = newGinContext(http.MethodPost, "/metrics/compute", []byte(`{"asOf":"2024-06-15"}`))
	NewComputeHandler(nil).Compute(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestComputeHandlerWithRealService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewComputeHandler(service.NewComputeService(nil, nil, nil, service.ComputeServiceConfig{}))

	c, w := newGinContext(http.MethodPost, "/metrics/compute", []byte(`{"from":"2024-01-01"}`))
	handler.Compute(c)
	assert.Equal(t, http.StatusBadRequest, w.Code, "asOf is required")
}
