package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/perm-tracker-api/internal/models"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
)

func strPtr(s string) *string { return &s }

type fakeCaseRepo struct {
	mu        sync.Mutex
	cases     map[string]*models.Case
	listErr   error
	listCalls int
	nextID    int
}

func newFakeCaseRepo(cases ...models.Case) *fakeCaseRepo {
	repo := &fakeCaseRepo{cases: make(map[string]*models.Case)}
	for i := range cases {
		c := cases[i]
		repo.cases[c.ID] = &c
	}
	return repo
}

func (r *fakeCaseRepo) ordered() []*models.Case {
	ids := make([]string, 0, len(r.cases))
	for id := range r.cases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*models.Case, len(ids))
	for i, id := range ids {
		out[i] = r.cases[id]
	}
	return out
}

func (r *fakeCaseRepo) List(ctx context.Context, filter models.CaseFilter) ([]models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Case
	for _, c := range r.ordered() {
		if filter.OwnerID != "" && c.OwnerID != filter.OwnerID {
			continue
		}
		if !filter.IncludeDeleted && c.Deleted() {
			continue
		}
		if filter.Status != nil && c.CaseStatus != *filter.Status {
			continue
		}
		if filter.Status == nil && !filter.IncludeClosed && c.CaseStatus == models.CaseStatusClosed {
			continue
		}
		if filter.FavoritesOnly && !c.IsFavorite {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCaseRepo) ListActive(ctx context.Context) ([]models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Case
	for _, c := range r.ordered() {
		if c.Deleted() || c.CaseStatus == models.CaseStatusClosed {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCaseRepo) FindByID(ctx context.Context, ownerID, id string) (*models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok || c.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCaseRepo) Create(ctx context.Context, c *models.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = fmt.Sprintf("new-%d", r.nextID)
	cp := *c
	r.cases[c.ID] = &cp
	return nil
}

func (r *fakeCaseRepo) Update(ctx context.Context, c *models.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.cases[c.ID]
	if !ok || existing.OwnerID != c.OwnerID || existing.Deleted() {
		return sql.ErrNoRows
	}
	cp := *c
	r.cases[c.ID] = &cp
	return nil
}

func (r *fakeCaseRepo) SoftDelete(ctx context.Context, ownerID, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok || c.OwnerID != ownerID || c.Deleted() {
		return sql.ErrNoRows
	}
	c.DeletedAt = &at
	return nil
}

func (r *fakeCaseRepo) Restore(ctx context.Context, ownerID, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok || c.OwnerID != ownerID || !c.Deleted() {
		return sql.ErrNoRows
	}
	c.DeletedAt = nil
	return nil
}

func (r *fakeCaseRepo) SetFavorite(ctx context.Context, ownerID, id string, favorite bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok || c.OwnerID != ownerID || c.Deleted() {
		return sql.ErrNoRows
	}
	c.IsFavorite = favorite
	return nil
}

func (r *fakeCaseRepo) CreateRequest(ctx context.Context, entry *models.RequestEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[entry.CaseID]
	if !ok {
		return sql.ErrNoRows
	}
	entry.ID = "req-1"
	if entry.Kind == models.RequestKindRFI {
		c.RFIEntries = append(c.RFIEntries, *entry)
	} else {
		c.RFEEntries = append(c.RFEEntries, *entry)
	}
	return nil
}

func (r *fakeCaseRepo) RespondRequest(ctx context.Context, caseID, requestID, submitted string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[caseID]
	if !ok {
		return sql.ErrNoRows
	}
	for _, entries := range [][]models.RequestEntry{c.RFIEntries, c.RFEEntries} {
		for i := range entries {
			if entries[i].ID == requestID {
				entries[i].ResponseSubmittedDate = &submitted
				return nil
			}
		}
	}
	return sql.ErrNoRows
}

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	failGet bool
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return errors.New("redis unavailable")
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryCacheRepo) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
