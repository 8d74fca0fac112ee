package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

const applicationColumns = `id, student_id, university_id, course_id, course_title, status, created_at, applied_at, offer_at, offer_deadline, tuition_fee, scholarship_amount`

// ApplicationRepository reads the application mirror table.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// List returns applications matching the query ordered by creation time.
// An empty (non-nil) StudentIDs slice matches nothing.
func (r *ApplicationRepository) List(ctx context.Context, q models.ApplicationQuery) ([]models.Application, error) {
	if q.StudentIDs != nil && len(q.StudentIDs) == 0 {
		return []models.Application{}, nil
	}
	var filter filterBuilder
	filter.window("created_at", q.CreatedFrom, q.CreatedTo)
	filter.equals("university_id", q.UniversityID)
	filter.anyOf("student_id", q.StudentIDs)

	query := fmt.Sprintf("SELECT %s FROM applications%s ORDER BY created_at ASC, id ASC", applicationColumns, filter.where())
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, filter.args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}
