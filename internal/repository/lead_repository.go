package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

const leadColumns = `id, full_name, email, status, source, counselor_id, priority, priority_note, created_at`

// LeadRepository reads the lead mirror table.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository constructs the repository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// List returns leads matching the query ordered by creation time.
func (r *LeadRepository) List(ctx context.Context, q models.LeadQuery) ([]models.Lead, error) {
	var filter filterBuilder
	filter.window("created_at", q.CreatedFrom, q.CreatedTo)
	filter.equals("counselor_id", q.CounselorID)

	query := fmt.Sprintf("SELECT %s FROM leads%s ORDER BY created_at ASC, id ASC", leadColumns, filter.where())
	var leads []models.Lead
	if err := r.db.SelectContext(ctx, &leads, query, filter.args...); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}
