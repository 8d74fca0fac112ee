package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadEffectivePriority(t *testing.T) {
	cases := []struct {
		name string
		lead Lead
		want LeadPriority
		ok   bool
	}{
		{name: "tagged field", lead: Lead{Priority: "hot"}, want: LeadPriorityHot, ok: true},
		{name: "tag wins over note", lead: Lead{Priority: LeadPriorityCold, PriorityNote: "Priority: HOT"}, want: LeadPriorityCold, ok: true},
		{name: "legacy note", lead: Lead{PriorityNote: "Called twice. Priority: warm, follow up"}, want: LeadPriorityWarm, ok: true},
		{name: "invalid tag falls back to note", lead: Lead{Priority: "urgent", PriorityNote: "priority: COLD"}, want: LeadPriorityCold, ok: true},
		{name: "unknown note value", lead: Lead{PriorityNote: "Priority: maybe"}},
		{name: "marker without value", lead: Lead{PriorityNote: "Priority:"}},
		{name: "nothing", lead: Lead{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.lead.EffectivePriority()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, ApplicationStatusVisaProcessing.Valid())
	assert.False(t, ApplicationStatus("archived").Valid())
	assert.True(t, LeadStatusClosedLost.Valid())
	assert.False(t, LeadStatus("").Valid())
	assert.True(t, CommissionStatusPaid.Valid())
	assert.False(t, CommissionStatus("void").Valid())
}

func TestApplicationStatusClassification(t *testing.T) {
	assert.True(t, ApplicationStatusConditionalOffer.HasOffer())
	assert.True(t, ApplicationStatusEnrolled.HasOffer())
	assert.False(t, ApplicationStatusUnderReview.HasOffer())
	assert.True(t, ApplicationStatusWithdrawn.Terminal())
	assert.False(t, ApplicationStatusVisaProcessing.Terminal())
}

func TestWellFormed(t *testing.T) {
	assert.True(t, Application{ID: "a", Status: ApplicationStatusDraft}.WellFormed())
	assert.False(t, Application{Status: ApplicationStatusDraft}.WellFormed())
	assert.False(t, Lead{ID: "l"}.WellFormed())
	assert.False(t, Commission{ID: " ", Status: CommissionStatusPaid}.WellFormed())
}
