package insight

import (
	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/aggregator"
)

type counselorStats struct {
	id           string
	name         string
	students     int
	leads        int
	leadsWon     int
	applications int
	enrolled     int
}

// BuildCounselorLeaderboard ranks counselors by enrolled applications, ties by counselor id.
// Applications are attributed through the student's counselor.
func BuildCounselorLeaderboard(ds Dataset, apps []models.Application, leads []models.Lead, opts Options) []dto.LeaderboardEntry {
	opts = opts.normalise()
	dir := newDirectory(ds)

	stats := make(map[string]*counselorStats, len(ds.Counselors))
	get := func(id string) *counselorStats {
		if s, ok := stats[id]; ok {
			return s
		}
		s := &counselorStats{id: id, name: id}
		if counselor, ok := dir.counselors[id]; ok && counselor.Name != "" {
			s.name = counselor.Name
		}
		stats[id] = s
		return s
	}
	for _, counselor := range ds.Counselors {
		get(counselor.ID)
	}
	for _, student := range ds.Students {
		if student.CounselorID != nil && *student.CounselorID != "" {
			get(*student.CounselorID).students++
		}
	}
	for _, app := range wellFormed(apps) {
		counselorID := dir.counselorOf(app.StudentID)
		if counselorID == "" {
			continue
		}
		s := get(counselorID)
		s.applications++
		if app.Status == models.ApplicationStatusEnrolled {
			s.enrolled++
		}
	}
	for _, lead := range wellFormed(leads) {
		if lead.CounselorID == nil || *lead.CounselorID == "" {
			continue
		}
		s := get(*lead.CounselorID)
		s.leads++
		if lead.Status == models.LeadStatusClosedWon {
			s.leadsWon++
		}
	}

	all := make([]*counselorStats, 0, len(stats))
	for _, s := range stats {
		all = append(all, s)
	}
	ranked := aggregator.RankEntities(all,
		func(s *counselorStats) string { return s.id },
		func(s *counselorStats) float64 { return float64(s.enrolled) },
		opts.TopLimit,
	)

	entries := make([]dto.LeaderboardEntry, 0, len(ranked))
	for i, s := range ranked {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:           i + 1,
			CounselorID:    s.id,
			Name:           s.name,
			Students:       s.students,
			Leads:          s.leads,
			LeadsWon:       s.leadsWon,
			Applications:   s.applications,
			Enrolled:       s.enrolled,
			ConversionRate: aggregator.Round1(aggregator.ComputeRate(float64(s.enrolled), float64(s.applications))),
		})
	}
	return entries
}
