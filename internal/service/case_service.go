package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/perm-tracker-api/internal/caseview"
	"github.com/noah-isme/perm-tracker-api/internal/deadline"
	"github.com/noah-isme/perm-tracker-api/internal/dto"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	"github.com/noah-isme/perm-tracker-api/internal/search"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
)

const defaultCasePageSize = 20

type caseRepository interface {
	List(ctx context.Context, filter models.CaseFilter) ([]models.Case, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Case, error)
	Create(ctx context.Context, c *models.Case) error
	Update(ctx context.Context, c *models.Case) error
	SoftDelete(ctx context.Context, ownerID, id string, at time.Time) error
	Restore(ctx context.Context, ownerID, id string, at time.Time) error
	SetFavorite(ctx context.Context, ownerID, id string, favorite bool, at time.Time) error
	CreateRequest(ctx context.Context, entry *models.RequestEntry) error
	RespondRequest(ctx context.Context, caseID, requestID, submitted string, at time.Time) error
}

// CaseServiceConfig tunes case listing.
type CaseServiceConfig struct {
	Location   *time.Location
	CacheTTL   time.Duration
	Thresholds search.Thresholds
}

// CaseService manages an owner's cases and runs the list pipeline:
// projection, search, sort and pagination.
type CaseService struct {
	repo      caseRepository
	cache     *CacheService
	metrics   *MetricsService
	matcher   *search.Matcher
	validator *validator.Validate
	logger    *zap.Logger
	cfg       CaseServiceConfig
	now       func() time.Time
}

// NewCaseService constructs a CaseService.
func NewCaseService(repo caseRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg CaseServiceConfig) *CaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &CaseService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		matcher:   search.NewMatcher(cfg.Thresholds),
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Today returns the reference date: raw when given, otherwise the current
// date in the configured time zone.
func (s *CaseService) Today(raw string) (string, error) {
	return referenceDate(raw, s.now, s.cfg.Location)
}

// List returns a page of the owner's projected cases.
func (s *CaseService) List(ctx context.Context, ownerID string, query dto.CaseListQuery) (*dto.CaseListResult, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid case query")
	}
	today, err := s.Today(query.Today)
	if err != nil {
		return nil, err
	}
	query.Today = today

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = defaultCasePageSize
	}

	key := caseListCacheKey(ownerID, query, page, size, today)
	var cached dto.CaseListResult
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("case list cache read failed", zap.String("owner_id", ownerID), zap.Error(err))
	} else if hit {
		cached.CacheHit = true
		return &cached, nil
	}

	cards, _, err := s.Cards(ctx, ownerID, query)
	if err != nil {
		return nil, err
	}

	start := len(cards)
	if page-1 < (len(cards)+size-1)/size {
		start = (page - 1) * size
	}
	end := start + size
	if end > len(cards) {
		end = len(cards)
	}

	result := &dto.CaseListResult{
		Items:      cards[start:end],
		Pagination: models.Pagination{Page: page, PageSize: size, TotalCount: len(cards)},
		Today:      today,
	}
	if err := s.cache.Set(ctx, key, result, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("case list cache write failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
	return result, nil
}

// Cards returns every case of the owner matching the query, projected,
// filtered and sorted, together with the reference date used.
func (s *CaseService) Cards(ctx context.Context, ownerID string, query dto.CaseListQuery) ([]models.CaseCardData, string, error) {
	field, err := caseview.ParseSortField(query.Sort)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sort field")
	}
	dir, err := caseview.ParseSortDirection(query.Direction)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sort direction")
	}
	today, err := s.Today(query.Today)
	if err != nil {
		return nil, "", err
	}

	filter := models.CaseFilter{
		OwnerID:       ownerID,
		FavoritesOnly: query.FavoritesOnly,
		IncludeClosed: query.IncludeClosed,
	}
	if query.Status != "" {
		status := models.CaseStatus(query.Status)
		if !status.Valid() {
			return nil, "", appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
		}
		filter.Status = &status
	}

	start := time.Now()
	cases, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cases")
	}
	s.metrics.ObserveDBQuery("cases_list", time.Since(start))

	cards := caseview.ProjectAll(cases, today)
	cards = s.matcher.Filter(cards, query.Search)
	if strings.TrimSpace(query.Search) != "" && query.Sort == "" {
		// Relevance order stands unless a sort was asked for.
		return cards, today, nil
	}
	return caseview.Sort(cards, field, dir), today, nil
}

// Get returns the case with its next deadline and every active deadline.
func (s *CaseService) Get(ctx context.Context, ownerID, id, rawToday string) (*models.CaseDetail, error) {
	today, err := s.Today(rawToday)
	if err != nil {
		return nil, err
	}
	c, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	next := deadline.Resolve(c, today)
	s.metrics.ObserveDeadline(next)
	deadlines := deadline.ResolveAll(c, today)
	if deadlines == nil {
		deadlines = []models.Deadline{}
	}
	return &models.CaseDetail{Case: *c, NextDeadline: next, Deadlines: deadlines}, nil
}

// Create stores a new case for the owner.
func (s *CaseService) Create(ctx context.Context, ownerID string, payload dto.CasePayload) (*models.Case, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid case payload")
	}
	c := &models.Case{OwnerID: ownerID}
	payload.Apply(c)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create case")
	}
	s.invalidate(ctx, ownerID)
	s.logger.Info("case created", zap.String("owner_id", ownerID), zap.String("case_id", c.ID))
	return c, nil
}

// Update replaces the writable fields of a live case.
func (s *CaseService) Update(ctx context.Context, ownerID, id string, payload dto.CasePayload) (*models.Case, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid case payload")
	}
	c, err := s.findLive(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	payload.Apply(c)
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "case not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update case")
	}
	s.invalidate(ctx, ownerID)
	return c, nil
}

// Delete soft-deletes a case.
func (s *CaseService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.SoftDelete(ctx, ownerID, id, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "case not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete case")
	}
	s.invalidate(ctx, ownerID)
	s.logger.Info("case deleted", zap.String("owner_id", ownerID), zap.String("case_id", id))
	return nil
}

// Restore brings back a soft-deleted case.
func (s *CaseService) Restore(ctx context.Context, ownerID, id string) (*models.Case, error) {
	if err := s.repo.Restore(ctx, ownerID, id, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "deleted case not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore case")
	}
	s.invalidate(ctx, ownerID)
	return s.find(ctx, ownerID, id)
}

// SetFavorite toggles the favorite flag.
func (s *CaseService) SetFavorite(ctx context.Context, ownerID, id string, req dto.FavoriteRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid favorite payload")
	}
	if err := s.repo.SetFavorite(ctx, ownerID, id, *req.IsFavorite, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "case not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update favorite")
	}
	s.invalidate(ctx, ownerID)
	return nil
}

// AddRequest records an RFI or RFE received for a live case.
func (s *CaseService) AddRequest(ctx context.Context, ownerID, caseID string, req dto.CreateRequestEntry) (*models.RequestEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	due := optionalString(req.ResponseDueDate)
	if due != nil {
		days, err := deadline.DaysBetween(req.ReceivedDate, *due)
		if err != nil || days < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "response due date must not precede received date")
		}
	}
	if _, err := s.findLive(ctx, ownerID, caseID); err != nil {
		return nil, err
	}

	entry := &models.RequestEntry{
		CaseID:          caseID,
		Kind:            req.Kind,
		ReceivedDate:    req.ReceivedDate,
		ResponseDueDate: due,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.CreateRequest(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record request")
	}
	s.invalidate(ctx, ownerID)
	return entry, nil
}

// RespondRequest marks an RFI or RFE as answered.
func (s *CaseService) RespondRequest(ctx context.Context, ownerID, caseID, requestID string, req dto.RespondRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid response payload")
	}
	c, err := s.findLive(ctx, ownerID, caseID)
	if err != nil {
		return err
	}
	if entry := findRequest(c, requestID); entry != nil && entry.ReceivedDate != "" {
		days, err := deadline.DaysBetween(entry.ReceivedDate, req.ResponseSubmittedDate)
		if err != nil || days < 0 {
			return appErrors.Clone(appErrors.ErrValidation, "response submitted date must not precede received date")
		}
	}
	if err := s.repo.RespondRequest(ctx, caseID, requestID, req.ResponseSubmittedDate, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record response")
	}
	s.invalidate(ctx, ownerID)
	return nil
}

func findRequest(c *models.Case, requestID string) *models.RequestEntry {
	for _, list := range [][]models.RequestEntry{c.RFIEntries, c.RFEEntries} {
		for i := range list {
			if list[i].ID == requestID {
				return &list[i]
			}
		}
	}
	return nil
}

func (s *CaseService) find(ctx context.Context, ownerID, id string) (*models.Case, error) {
	c, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "case not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}
	return c, nil
}

func (s *CaseService) findLive(ctx context.Context, ownerID, id string) (*models.Case, error) {
	c, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c.Deleted() {
		return nil, appErrors.Clone(appErrors.ErrCaseDeleted, "case has been deleted")
	}
	return c, nil
}

func (s *CaseService) invalidate(ctx context.Context, ownerID string) {
	if err := s.cache.InvalidateOwner(ctx, ownerID); err != nil {
		s.logger.Warn("case list cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func caseListCacheKey(ownerID string, query dto.CaseListQuery, page, size int, today string) string {
	return CaseListKey(ownerID,
		strings.ToLower(strings.TrimSpace(query.Search)),
		query.Sort,
		strings.ToLower(query.Direction),
		query.Status,
		strconv.FormatBool(query.FavoritesOnly),
		strconv.FormatBool(query.IncludeClosed),
		strconv.Itoa(page),
		strconv.Itoa(size),
		today,
	)
}

func referenceDate(raw string, now func() time.Time, loc *time.Location) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return deadline.Today(now(), loc), nil
	}
	if _, err := deadline.ParseDate(raw); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "today must be a yyyy-MM-dd date")
	}
	return raw, nil
}

func optionalString(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	out := *v
	return &out
}
