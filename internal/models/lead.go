package models

import (
	"strings"
	"time"
)

// LeadStatus tracks a lead through the sales funnel.
type LeadStatus string

const (
	LeadStatusNew                  LeadStatus = "new"
	LeadStatusContacted            LeadStatus = "contacted"
	LeadStatusProfileCollected     LeadStatus = "profile_collected"
	LeadStatusEligibleShortlisted  LeadStatus = "eligible_shortlisted"
	LeadStatusDocumentsRequested   LeadStatus = "documents_requested"
	LeadStatusApplicationSubmitted LeadStatus = "application_submitted"
	LeadStatusClosedWon            LeadStatus = "closed_won"
	LeadStatusClosedLost           LeadStatus = "closed_lost"
)

// LeadProgression is the ordered funnel. closed_won and closed_lost are outcomes, not stages.
var LeadProgression = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusProfileCollected,
	LeadStatusEligibleShortlisted,
	LeadStatusDocumentsRequested,
	LeadStatusApplicationSubmitted,
}

// LeadStatuses lists the closed status set.
var LeadStatuses = append(append([]LeadStatus{}, LeadProgression...), LeadStatusClosedWon, LeadStatusClosedLost)

// Valid reports whether the status belongs to the closed set.
func (s LeadStatus) Valid() bool {
	for _, status := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// LeadPriority is the tagged priority of a lead.
type LeadPriority string

const (
	LeadPriorityHot  LeadPriority = "HOT"
	LeadPriorityWarm LeadPriority = "WARM"
	LeadPriorityCold LeadPriority = "COLD"
)

// LeadPriorities lists priorities from hottest to coldest.
var LeadPriorities = []LeadPriority{LeadPriorityHot, LeadPriorityWarm, LeadPriorityCold}

// ParseLeadPriority normalises a raw priority value. ok is false for unknown input.
func ParseLeadPriority(raw string) (LeadPriority, bool) {
	p := LeadPriority(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range LeadPriorities {
		if p == known {
			return p, true
		}
	}
	return "", false
}

const legacyPriorityMarker = "priority:"

// Lead mirrors the Lead entity of the managed backend.
type Lead struct {
	ID           string       `db:"id" json:"id"`
	FullName     string       `db:"full_name" json:"full_name"`
	Email        string       `db:"email" json:"email"`
	Status       LeadStatus   `db:"status" json:"status"`
	Source       string       `db:"source" json:"source"`
	CounselorID  *string      `db:"counselor_id" json:"counselor_id,omitempty"`
	Priority     LeadPriority `db:"priority" json:"priority,omitempty"`
	PriorityNote string       `db:"priority_note" json:"priority_note,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// WellFormed reports whether the required keys are present.
func (l Lead) WellFormed() bool {
	return strings.TrimSpace(l.ID) != "" && strings.TrimSpace(string(l.Status)) != ""
}

// EffectivePriority prefers the tagged priority and falls back to a
// "Priority: HOT" marker inside the free-text note written by older clients.
func (l Lead) EffectivePriority() (LeadPriority, bool) {
	if p, ok := ParseLeadPriority(string(l.Priority)); ok {
		return p, true
	}
	note := strings.ToLower(l.PriorityNote)
	idx := strings.Index(note, legacyPriorityMarker)
	if idx < 0 {
		return "", false
	}
	fields := strings.Fields(note[idx+len(legacyPriorityMarker):])
	if len(fields) == 0 {
		return "", false
	}
	return ParseLeadPriority(strings.Trim(fields[0], ".,;"))
}

// LeadQuery scopes lead fetches from the entity store.
type LeadQuery struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	CounselorID string
}
