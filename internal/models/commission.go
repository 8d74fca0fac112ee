package models

import (
	"strings"
	"time"
)

// CommissionStatus tracks payout of a partner commission.
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusApproved CommissionStatus = "approved"
	CommissionStatusPaid     CommissionStatus = "paid"
)

// CommissionStatuses lists the closed status set.
var CommissionStatuses = []CommissionStatus{CommissionStatusPending, CommissionStatusApproved, CommissionStatusPaid}

// Valid reports whether the status belongs to the closed set.
func (s CommissionStatus) Valid() bool {
	for _, status := range CommissionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Commission mirrors a commission owed by a partner university.
type Commission struct {
	ID          string           `db:"id" json:"id"`
	PartnerID   string           `db:"partner_id" json:"partner_id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	Amount      float64          `db:"amount" json:"amount"`
	Status      CommissionStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	PaymentDate *time.Time       `db:"payment_date" json:"payment_date,omitempty"`
}

// WellFormed reports whether the required keys are present.
func (c Commission) WellFormed() bool {
	return strings.TrimSpace(c.ID) != "" && strings.TrimSpace(string(c.Status)) != ""
}

// CommissionQuery scopes commission fetches from the entity store.
type CommissionQuery struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	PartnerID   string
}
