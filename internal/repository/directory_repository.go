package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

// DirectoryRepository resolves the reference entities that dashboards join against.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository constructs the repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// StudentsByIDs batch-loads student profiles.
func (r *DirectoryRepository) StudentsByIDs(ctx context.Context, ids []string) ([]models.StudentProfile, error) {
	if len(ids) == 0 {
		return []models.StudentProfile{}, nil
	}
	const query = `SELECT id, full_name, counselor_id, nationality, created_at FROM student_profiles WHERE id = ANY($1)`
	var students []models.StudentProfile
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list students by ids: %w", err)
	}
	return students, nil
}

// StudentsByCounselor returns every student managed by counselorID.
func (r *DirectoryRepository) StudentsByCounselor(ctx context.Context, counselorID string) ([]models.StudentProfile, error) {
	const query = `SELECT id, full_name, counselor_id, nationality, created_at FROM student_profiles WHERE counselor_id = $1 ORDER BY id`
	var students []models.StudentProfile
	if err := r.db.SelectContext(ctx, &students, query, counselorID); err != nil {
		return nil, fmt.Errorf("list students by counselor: %w", err)
	}
	return students, nil
}

// CounselorsByIDs batch-loads counselors.
func (r *DirectoryRepository) CounselorsByIDs(ctx context.Context, ids []string) ([]models.Counselor, error) {
	if len(ids) == 0 {
		return []models.Counselor{}, nil
	}
	const query = `SELECT id, name, email FROM counselors WHERE id = ANY($1)`
	var counselors []models.Counselor
	if err := r.db.SelectContext(ctx, &counselors, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list counselors by ids: %w", err)
	}
	return counselors, nil
}

// PartnersByIDs batch-loads partner universities.
func (r *DirectoryRepository) PartnersByIDs(ctx context.Context, ids []string) ([]models.Partner, error) {
	if len(ids) == 0 {
		return []models.Partner{}, nil
	}
	const query = `SELECT id, name, country FROM partners WHERE id = ANY($1)`
	var partners []models.Partner
	if err := r.db.SelectContext(ctx, &partners, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list partners by ids: %w", err)
	}
	return partners, nil
}
