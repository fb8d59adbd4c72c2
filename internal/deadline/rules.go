package deadline

import (
	"time"

	"github.com/noah-isme/perm-tracker-api/internal/models"
)

const (
	// FilingWindowOpensAfterDays is the quiet period between the last
	// recruitment activity and the first day an ETA-9089 may be filed.
	FilingWindowOpensAfterDays = 30
	// RecruitmentValidityDays bounds the filing window from the first recruitment activity.
	RecruitmentValidityDays = 180

	thisWeekMaxDays  = 7
	thisMonthMaxDays = 30
)

// Urgency buckets a signed day count.
func Urgency(daysUntil int) models.Urgency {
	switch {
	case daysUntil < 0:
		return models.UrgencyOverdue
	case daysUntil <= thisWeekMaxDays:
		return models.UrgencyThisWeek
	case daysUntil <= thisMonthMaxDays:
		return models.UrgencyThisMonth
	default:
		return models.UrgencyLater
	}
}

// UrgencyRank orders urgency buckets from most to least urgent.
func UrgencyRank(u models.Urgency) int {
	switch u {
	case models.UrgencyOverdue:
		return 0
	case models.UrgencyThisWeek:
		return 1
	case models.UrgencyThisMonth:
		return 2
	case models.UrgencyLater:
		return 3
	default:
		return 4
	}
}

// LastRecruitmentDate is the date of the final recruitment step that starts
// the 30-day quiet period. Additional recruitment methods only count for
// professional occupations.
func LastRecruitmentDate(c *models.Case) (string, bool) {
	var (
		t  time.Time
		ok bool
	)
	if c.IsProfessionalOccupation {
		t, ok = latest(c.SundayAdFirstDate, c.SundayAdSecondDate, c.AdditionalRecruitmentEndDate)
	} else {
		t, ok = latest(c.SundayAdFirstDate, c.SundayAdSecondDate)
	}
	if !ok {
		return "", false
	}
	return FormatDate(t), true
}

// RecruitmentStartDate is the first recruitment activity of the case:
// the recorded recruitment start, or else the earliest of the notice of
// filing, the job order and the first Sunday ad.
func RecruitmentStartDate(c *models.Case) (string, bool) {
	if t, ok := parseOptional(c.RecruitmentStartDate); ok {
		return FormatDate(t), true
	}
	t, ok := earliest(c.NoticeOfFilingStartDate, c.JobOrderStartDate, c.SundayAdFirstDate)
	if !ok {
		return "", false
	}
	return FormatDate(t), true
}

// FilingWindow returns the first and last day the ETA-9089 may be filed.
// Either bound is empty when the dates it depends on are missing.
func FilingWindow(c *models.Case) (opens, closes string) {
	if last, ok := LastRecruitmentDate(c); ok {
		opens, _ = AddDays(last, FilingWindowOpensAfterDays)
	}
	if start, ok := RecruitmentStartDate(c); ok {
		closes, _ = AddDays(start, RecruitmentValidityDays)
	}
	return opens, closes
}
