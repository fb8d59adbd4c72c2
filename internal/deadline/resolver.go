package deadline

import (
	"time"

	"github.com/noah-isme/perm-tracker-api/internal/models"
)

// Resolve returns the single most urgent deadline of the case as of today,
// or nil when the case has none. Closed and soft-deleted cases never have a
// deadline. When two candidates fall on the same day the one evaluated first
// wins (see ResolveAll for the evaluation order).
func Resolve(c *models.Case, today string) *models.Deadline {
	candidates := ResolveAll(c, today)
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.DaysUntil < best.DaysUntil {
			best = candidate
		}
	}
	return &best
}

// ResolveAll returns every applicable deadline of the case in evaluation
// order: PWD expiration, RFI due, RFE due, I-140 filing deadline, filing
// window opening, recruitment window. Each RFI/RFE category contributes at
// most its most urgent open entry. Candidates whose dates cannot be parsed
// are skipped, as is everything when today itself cannot be parsed.
func ResolveAll(c *models.Case, today string) []models.Deadline {
	if c == nil || c.CaseStatus == models.CaseStatusClosed || c.Deleted() {
		return nil
	}
	ref, err := ParseDate(today)
	if err != nil {
		return nil
	}

	r := resolver{ref: ref}
	etaFiled := isSet(c.ETA9089FilingDate)

	if !etaFiled {
		r.add(models.DeadlinePWDExpiration, c.PWDExpirationDate)
	}
	r.addRequests(models.DeadlineRFIDue, c.RFIEntries)
	r.addRequests(models.DeadlineRFEDue, c.RFEEntries)
	if isSet(c.ETA9089CertificationDate) && isSet(c.ETA9089ExpirationDate) && !isSet(c.I140FilingDate) {
		r.add(models.DeadlineI140Filing, c.ETA9089ExpirationDate)
	}
	if !etaFiled {
		opens, closes := FilingWindow(c)
		r.addString(models.DeadlineFilingWindowOpens, opens)
		r.addString(models.DeadlineRecruitmentWindow, closes)
	}
	return r.out
}

type resolver struct {
	ref time.Time
	out []models.Deadline
}

func (r *resolver) build(kind models.DeadlineType, raw *string) (models.Deadline, bool) {
	t, ok := parseOptional(raw)
	if !ok {
		return models.Deadline{}, false
	}
	days := daysBetween(r.ref, t)
	return models.Deadline{
		Type:      kind,
		Date:      FormatDate(t),
		DaysUntil: days,
		Urgency:   Urgency(days),
	}, true
}

func (r *resolver) add(kind models.DeadlineType, raw *string) {
	if d, ok := r.build(kind, raw); ok {
		r.out = append(r.out, d)
	}
}

func (r *resolver) addString(kind models.DeadlineType, raw string) {
	if raw == "" {
		return
	}
	r.add(kind, &raw)
}

func (r *resolver) addRequests(kind models.DeadlineType, entries []models.RequestEntry) {
	var (
		best  models.Deadline
		found bool
	)
	for _, entry := range entries {
		if !entry.Open() {
			continue
		}
		d, ok := r.build(kind, entry.ResponseDueDate)
		if !ok {
			continue
		}
		if !found || d.DaysUntil < best.DaysUntil {
			best = d
			found = true
		}
	}
	if found {
		r.out = append(r.out, best)
	}
}
