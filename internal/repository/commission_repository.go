package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

const commissionColumns = `id, partner_id, student_id, amount, status, created_at, payment_date`

// CommissionRepository reads partner commissions.
type CommissionRepository struct {
	db *sqlx.DB
}

// NewCommissionRepository constructs the repository.
func NewCommissionRepository(db *sqlx.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

// List returns commissions matching the query ordered by creation time.
func (r *CommissionRepository) List(ctx context.Context, q models.CommissionQuery) ([]models.Commission, error) {
	var filter filterBuilder
	filter.window("created_at", q.CreatedFrom, q.CreatedTo)
	filter.equals("partner_id", q.PartnerID)

	query := fmt.Sprintf("SELECT %s FROM commissions%s ORDER BY created_at ASC, id ASC", commissionColumns, filter.where())
	var commissions []models.Commission
	if err := r.db.SelectContext(ctx, &commissions, query, filter.args...); err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	return commissions, nil
}
