package models

import (
	"strings"
	"time"
)

// ApplicationStatus tracks an application through the admission pipeline.
type ApplicationStatus string

const (
	ApplicationStatusDraft                 ApplicationStatus = "draft"
	ApplicationStatusDocumentsPending      ApplicationStatus = "documents_pending"
	ApplicationStatusUnderReview           ApplicationStatus = "under_review"
	ApplicationStatusSubmittedToUniversity ApplicationStatus = "submitted_to_university"
	ApplicationStatusConditionalOffer      ApplicationStatus = "conditional_offer"
	ApplicationStatusUnconditionalOffer    ApplicationStatus = "unconditional_offer"
	ApplicationStatusVisaProcessing        ApplicationStatus = "visa_processing"
	ApplicationStatusEnrolled              ApplicationStatus = "enrolled"
	ApplicationStatusRejected              ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn             ApplicationStatus = "withdrawn"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusDraft,
	ApplicationStatusDocumentsPending,
	ApplicationStatusUnderReview,
	ApplicationStatusSubmittedToUniversity,
	ApplicationStatusConditionalOffer,
	ApplicationStatusUnconditionalOffer,
	ApplicationStatusVisaProcessing,
	ApplicationStatusEnrolled,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
}

// Valid reports whether the status belongs to the closed set.
func (s ApplicationStatus) Valid() bool {
	for _, status := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// HasOffer reports whether the application holds (or has converted) a university offer.
func (s ApplicationStatus) HasOffer() bool {
	switch s {
	case ApplicationStatusConditionalOffer, ApplicationStatusUnconditionalOffer, ApplicationStatusVisaProcessing, ApplicationStatusEnrolled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further action is expected on the application.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationStatusEnrolled, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	default:
		return false
	}
}

// Application mirrors the Application entity of the managed backend.
type Application struct {
	ID                string            `db:"id" json:"id"`
	StudentID         string            `db:"student_id" json:"student_id"`
	UniversityID      string            `db:"university_id" json:"university_id"`
	CourseID          string            `db:"course_id" json:"course_id"`
	CourseTitle       string            `db:"course_title" json:"course_title,omitempty"`
	Status            ApplicationStatus `db:"status" json:"status"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	AppliedAt         *time.Time        `db:"applied_at" json:"applied_at,omitempty"`
	OfferAt           *time.Time        `db:"offer_at" json:"offer_at,omitempty"`
	OfferDeadline     *time.Time        `db:"offer_deadline" json:"offer_deadline,omitempty"`
	TuitionFee        *float64          `db:"tuition_fee" json:"tuition_fee,omitempty"`
	ScholarshipAmount *float64          `db:"scholarship_amount" json:"scholarship_amount,omitempty"`
}

// WellFormed reports whether the required keys are present.
func (a Application) WellFormed() bool {
	return strings.TrimSpace(a.ID) != "" && strings.TrimSpace(string(a.Status)) != ""
}

// ApplicationQuery scopes application fetches from the entity store.
type ApplicationQuery struct {
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	UniversityID string
	StudentIDs   []string
}
