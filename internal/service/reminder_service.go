package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/perm-tracker-api/internal/deadline"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	"github.com/noah-isme/perm-tracker-api/pkg/cache"
	"github.com/noah-isme/perm-tracker-api/pkg/jobs"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
)

// ReminderJobType tags reminder jobs on the queue.
const ReminderJobType = "deadline_reminder"

const defaultReminderSentTTL = 48 * time.Hour

type activeCaseLister interface {
	ListActive(ctx context.Context) ([]models.Case, error)
}

// Reminder is a single deadline notification for a case owner.
type Reminder struct {
	OwnerID  string          `json:"owner_id"`
	CaseID   string          `json:"case_id"`
	Employer string          `json:"employer"`
	Deadline models.Deadline `json:"deadline"`
	Subject  string          `json:"subject"`
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, reminder Reminder) error
}

// LogNotifier writes reminders to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ctx context.Context, reminder Reminder) error {
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("deadline reminder",
		zap.String("owner_id", reminder.OwnerID),
		zap.String("case_id", reminder.CaseID),
		zap.String("type", string(reminder.Deadline.Type)),
		zap.String("date", reminder.Deadline.Date),
		zap.Int("days_until", reminder.Deadline.DaysUntil),
		zap.String("subject", reminder.Subject))
	return nil
}

// ReminderServiceConfig tunes the reminder scan and its worker pool.
type ReminderServiceConfig struct {
	Location   *time.Location
	Offsets    []int
	Interval   time.Duration
	Workers    int
	Retries    int
	RetryDelay time.Duration
	// Sent, when enabled, records queued job IDs so a restart does not resend them.
	Sent    *CacheService
	SentTTL time.Duration
}

// ReminderService scans active cases and queues reminders for deadlines
// reaching a reminder offset or becoming overdue.
type ReminderService struct {
	repo     activeCaseLister
	notifier Notifier
	metrics  *MetricsService
	queue    *jobs.Queue
	logger   *zap.Logger
	cfg      ReminderServiceConfig
	offsets  map[int]struct{}
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

// NewReminderService constructs a ReminderService with its own job queue.
func NewReminderService(repo activeCaseLister, notifier Notifier, metrics *MetricsService, logger *zap.Logger, cfg ReminderServiceConfig) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SentTTL <= 0 {
		cfg.SentTTL = defaultReminderSentTTL
	}
	if len(cfg.Offsets) == 0 {
		cfg.Offsets = []int{30, 14, 7, 1, 0}
	}
	offsets := make(map[int]struct{}, len(cfg.Offsets)+1)
	for _, offset := range cfg.Offsets {
		offsets[offset] = struct{}{}
	}
	// The first day a deadline is overdue.
	offsets[-1] = struct{}{}

	s := &ReminderService{
		repo:     repo,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		offsets:  offsets,
		now:      time.Now,
		sent:     make(map[string]time.Time),
	}
	s.queue = jobs.NewQueue("reminders", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		DeadLetter: func(job jobs.Job, err error) {
			logger.Error("reminder dropped", zap.String("job_id", job.ID), zap.Error(err))
		},
	})
	return s
}

// Start launches the reminder workers.
func (s *ReminderService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop halts the workers.
func (s *ReminderService) Stop() {
	s.queue.Stop()
}

// Wait blocks until every queued reminder has been handled.
func (s *ReminderService) Wait() {
	s.queue.Wait()
}

// StartScheduler scans immediately and then on every interval until ctx is done.
func (s *ReminderService) StartScheduler(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			if _, err := s.Scan(ctx, ""); err != nil {
				s.logger.Warn("reminder scan failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Scan queues a reminder for every active case whose next deadline is due
// for one as of today and returns how many were queued. A reminder already
// queued for the same case, deadline type and day is skipped.
func (s *ReminderService) Scan(ctx context.Context, rawToday string) (int, error) {
	today, err := referenceDate(rawToday, s.now, s.cfg.Location)
	if err != nil {
		return 0, err
	}
	cases, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active cases")
	}

	queued := 0
	for i := range cases {
		c := &cases[i]
		next := deadline.Resolve(c, today)
		if next == nil {
			continue
		}
		if _, ok := s.offsets[next.DaysUntil]; !ok {
			continue
		}
		jobID := fmt.Sprintf("%s:%s:%s", c.ID, next.Type, today)
		if s.alreadySent(ctx, jobID) {
			continue
		}
		reminder := Reminder{
			OwnerID:  c.OwnerID,
			CaseID:   c.ID,
			Employer: c.EmployerName,
			Deadline: *next,
			Subject:  reminderSubject(*next, c.EmployerName),
		}
		job := jobs.Job{ID: jobID, Type: ReminderJobType, Payload: reminder}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			return queued, fmt.Errorf("enqueue reminder for case %s: %w", c.ID, err)
		}
		s.markSent(ctx, jobID)
		s.metrics.IncReminderEnqueued(next.Type)
		queued++
	}
	s.logger.Info("reminder scan finished", zap.String("today", today), zap.Int("cases", len(cases)), zap.Int("queued", queued))
	return queued, nil
}

func (s *ReminderService) alreadySent(ctx context.Context, jobID string) bool {
	now := s.now()
	s.mu.Lock()
	expires, ok := s.sent[jobID]
	if ok && now.After(expires) {
		delete(s.sent, jobID)
		ok = false
	}
	s.mu.Unlock()
	if ok {
		return true
	}

	var queuedAt string
	hit, err := s.cfg.Sent.Get(ctx, reminderSentKey(jobID), &queuedAt)
	if err != nil {
		s.logger.Warn("reminder ledger read failed", zap.String("job_id", jobID), zap.Error(err))
	}
	return hit
}

func (s *ReminderService) markSent(ctx context.Context, jobID string) {
	now := s.now()
	s.mu.Lock()
	for id, expires := range s.sent {
		if now.After(expires) {
			delete(s.sent, id)
		}
	}
	s.sent[jobID] = now.Add(s.cfg.SentTTL)
	s.mu.Unlock()

	// Set logs its own failures.
	_ = s.cfg.Sent.Set(ctx, reminderSentKey(jobID), now.UTC().Format(time.RFC3339), s.cfg.SentTTL)
}

func reminderSentKey(jobID string) string {
	return cache.Key("reminders", "sent", jobID)
}

func (s *ReminderService) handle(ctx context.Context, job jobs.Job) error {
	reminder, ok := job.Payload.(Reminder)
	if !ok {
		return fmt.Errorf("unexpected reminder payload %T", job.Payload)
	}
	return s.notifier.Notify(ctx, reminder)
}

func reminderSubject(d models.Deadline, employer string) string {
	title := EventTitle(d.Type, employer)
	switch {
	case d.DaysUntil < 0:
		return fmt.Sprintf("Overdue: %s (%s)", title, d.Date)
	case d.DaysUntil == 0:
		return fmt.Sprintf("Due today: %s", title)
	case d.DaysUntil == 1:
		return fmt.Sprintf("Due tomorrow: %s", title)
	default:
		return fmt.Sprintf("Due in %d days: %s (%s)", d.DaysUntil, title, d.Date)
	}
}
