package dto

import "github.com/noah-isme/edu-crm-api/internal/models"

// ReportRequest captures POST /reports/generate payload.
type ReportRequest struct {
	Type     models.ReportType   `json:"type" validate:"required"`
	Format   models.ReportFormat `json:"format" validate:"required"`
	AsOf     string              `json:"asOf" validate:"omitempty,datetime=2006-01-02"`
	From     string              `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string              `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Statuses []string            `json:"statuses"`
	Search   string              `json:"search" validate:"max=200"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Type      models.ReportType   `json:"type"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
