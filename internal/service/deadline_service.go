package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/perm-tracker-api/internal/caseview"
	"github.com/noah-isme/perm-tracker-api/internal/deadline"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	"github.com/noah-isme/perm-tracker-api/pkg/export"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
)

type caseLister interface {
	List(ctx context.Context, filter models.CaseFilter) ([]models.Case, error)
}

// DeadlineServiceConfig tunes deadline summaries and calendar feeds.
type DeadlineServiceConfig struct {
	Location        *time.Location
	WindowDays      int
	ReminderOffsets []int
}

// DeadlineService aggregates the deadlines of an owner's active cases.
type DeadlineService struct {
	repo     caseLister
	metrics  *MetricsService
	calendar *export.Calendar
	logger   *zap.Logger
	cfg      DeadlineServiceConfig
	now      func() time.Time
}

// NewDeadlineService constructs a DeadlineService.
func NewDeadlineService(repo caseLister, metrics *MetricsService, logger *zap.Logger, cfg DeadlineServiceConfig) *DeadlineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	svc := &DeadlineService{repo: repo, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
	svc.calendar = &export.Calendar{
		ProdID: "-//PERM Tracker//Deadlines//EN",
		Name:   "PERM Deadlines",
		Now:    func() time.Time { return svc.now() },
	}
	return svc
}

// Upcoming summarises the next deadline of every active case of the owner
// falling within the window. Overdue deadlines are always included.
func (s *DeadlineService) Upcoming(ctx context.Context, ownerID, rawToday string, withinDays int) (*models.DeadlineSummary, error) {
	today, err := referenceDate(rawToday, s.now, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	if withinDays <= 0 {
		withinDays = s.cfg.WindowDays
	}

	cases, err := s.activeCases(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &models.DeadlineSummary{
		Today:     today,
		Within:    withinDays,
		ByUrgency: make(map[models.Urgency]int),
		ByType:    make(map[models.DeadlineType]int),
		Items:     []models.CaseDeadline{},
	}
	for i := range cases {
		next := deadline.Resolve(&cases[i], today)
		if next == nil || next.DaysUntil > withinDays {
			continue
		}
		s.metrics.ObserveDeadline(next)
		summary.ByUrgency[next.Urgency]++
		summary.ByType[next.Type]++
		summary.Items = append(summary.Items, models.CaseDeadline{
			Case:     caseview.Project(&cases[i], today),
			Deadline: *next,
		})
	}

	sort.SliceStable(summary.Items, func(i, j int) bool {
		a, b := summary.Items[i], summary.Items[j]
		if a.Deadline.DaysUntil != b.Deadline.DaysUntil {
			return a.Deadline.DaysUntil < b.Deadline.DaysUntil
		}
		return strings.ToLower(a.Case.EmployerName) < strings.ToLower(b.Case.EmployerName)
	})
	return summary, nil
}

// Calendar renders every active deadline of the owner's cases as an iCalendar feed.
func (s *DeadlineService) Calendar(ctx context.Context, ownerID, rawToday string) ([]byte, error) {
	today, err := referenceDate(rawToday, s.now, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	cases, err := s.activeCases(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	alarms := make([]int, 0, len(s.cfg.ReminderOffsets))
	for _, offset := range s.cfg.ReminderOffsets {
		if offset > 0 {
			alarms = append(alarms, offset)
		}
	}

	var events []export.CalendarEvent
	add := func(c *models.Case, t models.DeadlineType, raw string, alarms []int) {
		date, err := deadline.ParseDate(raw)
		if err != nil {
			return
		}
		events = append(events, export.CalendarEvent{
			UID:             fmt.Sprintf("%s-%s@perm-tracker", c.ID, t),
			Date:            date,
			Summary:         EventTitle(t, c.EmployerName),
			Description:     eventDescription(c),
			Category:        string(t),
			AlarmDaysBefore: alarms,
		})
	}
	for i := range cases {
		c := &cases[i]
		for _, d := range deadline.ResolveAll(c, today) {
			add(c, d.Type, d.Date, alarms)
		}
		if c.ETA9089FilingDate != nil {
			add(c, calendarETA9089Filing, *c.ETA9089FilingDate, nil)
		}
		// Expiration stops mattering once the I-140 is filed.
		if c.ETA9089ExpirationDate != nil && (c.I140FilingDate == nil || *c.I140FilingDate == "") {
			add(c, calendarETA9089Expiration, *c.ETA9089ExpirationDate, alarms)
		}
	}
	return s.calendar.Render(events), nil
}

// ContentType is the MIME type of Calendar output.
func (s *DeadlineService) ContentType() string {
	return s.calendar.ContentType()
}

func (s *DeadlineService) activeCases(ctx context.Context, ownerID string) ([]models.Case, error) {
	start := time.Now()
	cases, err := s.repo.List(ctx, models.CaseFilter{OwnerID: ownerID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cases")
	}
	s.metrics.ObserveDBQuery("deadlines_cases", time.Since(start))
	return cases, nil
}

// Milestones shown on the calendar only; the resolver never returns them.
const (
	calendarETA9089Filing     models.DeadlineType = "eta9089_filing"
	calendarETA9089Expiration models.DeadlineType = "eta9089_expiration"
)

var eventTitles = map[models.DeadlineType]string{
	models.DeadlinePWDExpiration:     "PWD Expiration",
	models.DeadlineRFIDue:            "RFI Response Due",
	models.DeadlineRFEDue:            "RFE Response Due",
	models.DeadlineI140Filing:        "I-140 Deadline",
	models.DeadlineFilingWindowOpens: "Ready to File",
	models.DeadlineRecruitmentWindow: "Recruitment Expires",
	calendarETA9089Filing:            "ETA 9089 Filing",
	calendarETA9089Expiration:        "ETA 9089 Expiration",
}

// EventTitle names a deadline the way calendar entries and reminders show it.
func EventTitle(t models.DeadlineType, employer string) string {
	title, ok := eventTitles[t]
	if !ok {
		title = string(t)
	}
	if employer == "" {
		return title
	}
	return title + ": " + employer
}

func eventDescription(c *models.Case) string {
	parts := make([]string, 0, 2)
	if c.PositionTitle != "" {
		parts = append(parts, c.PositionTitle)
	}
	if c.BeneficiaryIdentifier != "" {
		parts = append(parts, "Beneficiary "+c.BeneficiaryIdentifier)
	}
	return strings.Join(parts, " - ")
}
