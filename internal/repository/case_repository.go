package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/perm-tracker-api/internal/models"
)

// Stage dates are DATE columns read back as ISO text.
var caseDateColumns = []string{
	"pwd_filing_date",
	"pwd_determination_date",
	"pwd_expiration_date",
	"recruitment_start_date",
	"recruitment_end_date",
	"notice_of_filing_start_date",
	"notice_of_filing_end_date",
	"job_order_start_date",
	"job_order_end_date",
	"sunday_ad_first_date",
	"sunday_ad_second_date",
	"additional_recruitment_end_date",
	"eta9089_filing_date",
	"eta9089_certification_date",
	"eta9089_expiration_date",
	"i140_filing_date",
	"i140_approval_date",
}

var caseScalarColumns = []string{
	"id",
	"owner_id",
	"case_status",
	"progress_status",
	"employer_name",
	"beneficiary_identifier",
	"position_title",
	"is_favorite",
	"is_professional_occupation",
	"created_at",
	"updated_at",
	"deleted_at",
}

var (
	caseSelectColumns = buildSelectColumns()
	caseInsertColumns = append(append([]string{}, caseScalarColumns...), caseDateColumns...)
)

func buildSelectColumns() string {
	cols := make([]string, 0, len(caseScalarColumns)+len(caseDateColumns))
	cols = append(cols, caseScalarColumns...)
	for _, col := range caseDateColumns {
		cols = append(cols, dateColumn(col))
	}
	return strings.Join(cols, ", ")
}

func dateColumn(col string) string {
	return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD') AS %s", col, col)
}

// CaseRepository provides database access for PERM cases and their RFI/RFE entries.
type CaseRepository struct {
	db *sqlx.DB
}

// NewCaseRepository creates a new instance of CaseRepository.
func NewCaseRepository(db *sqlx.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// List returns the owner's cases matching the filter, most recently updated
// first, with their request entries attached.
func (r *CaseRepository) List(ctx context.Context, filter models.CaseFilter) ([]models.Case, error) {
	conditions := []string{"owner_id = $1"}
	args := []interface{}{filter.OwnerID}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("case_status = $%d", len(args)))
	} else if !filter.IncludeClosed {
		conditions = append(conditions, fmt.Sprintf("case_status <> '%s'", models.CaseStatusClosed))
	}
	if filter.FavoritesOnly {
		conditions = append(conditions, "is_favorite = TRUE")
	}

	query := fmt.Sprintf("SELECT %s FROM cases WHERE %s ORDER BY updated_at DESC, id", caseSelectColumns, strings.Join(conditions, " AND "))
	var cases []models.Case
	if err := r.db.SelectContext(ctx, &cases, query, args...); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	if err := r.attachRequests(ctx, cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// ListActive returns every open, non-deleted case across all owners.
func (r *CaseRepository) ListActive(ctx context.Context) ([]models.Case, error) {
	query := fmt.Sprintf("SELECT %s FROM cases WHERE deleted_at IS NULL AND case_status <> '%s' ORDER BY owner_id, id", caseSelectColumns, models.CaseStatusClosed)
	var cases []models.Case
	if err := r.db.SelectContext(ctx, &cases, query); err != nil {
		return nil, fmt.Errorf("list active cases: %w", err)
	}
	if err := r.attachRequests(ctx, cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// FindByID returns a case of the owner, including soft-deleted ones.
func (r *CaseRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Case, error) {
	query := fmt.Sprintf("SELECT %s FROM cases WHERE id = $1 AND owner_id = $2 LIMIT 1", caseSelectColumns)
	var c models.Case
	if err := r.db.GetContext(ctx, &c, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find case by id: %w", err)
	}
	cases := []models.Case{c}
	if err := r.attachRequests(ctx, cases); err != nil {
		return nil, err
	}
	return &cases[0], nil
}

// Create inserts a new case.
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	query := fmt.Sprintf("INSERT INTO cases (%s) VALUES (:%s)",
		strings.Join(caseInsertColumns, ", "),
		strings.Join(caseInsertColumns, ", :"))
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a live case. It returns
// sql.ErrNoRows when no live case of the owner has the id.
func (r *CaseRepository) Update(ctx context.Context, c *models.Case) error {
	c.UpdatedAt = time.Now().UTC()

	mutable := append([]string{
		"case_status",
		"progress_status",
		"employer_name",
		"beneficiary_identifier",
		"position_title",
		"is_favorite",
		"is_professional_occupation",
		"updated_at",
	}, caseDateColumns...)
	sets := make([]string, len(mutable))
	for i, col := range mutable {
		sets[i] = fmt.Sprintf("%s = :%s", col, col)
	}
	query := fmt.Sprintf("UPDATE cases SET %s WHERE id = :id AND owner_id = :owner_id AND deleted_at IS NULL", strings.Join(sets, ", "))
	res, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	return expectAffected(res, "update case")
}

// SoftDelete marks a live case deleted.
func (r *CaseRepository) SoftDelete(ctx context.Context, ownerID, id string, at time.Time) error {
	const query = `UPDATE cases SET deleted_at = $3, updated_at = $3 WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, ownerID, at)
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	return expectAffected(res, "delete case")
}

// Restore clears the soft-delete marker.
func (r *CaseRepository) Restore(ctx context.Context, ownerID, id string, at time.Time) error {
	const query = `UPDATE cases SET deleted_at = NULL, updated_at = $3 WHERE id = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`
	res, err := r.db.ExecContext(ctx, query, id, ownerID, at)
	if err != nil {
		return fmt.Errorf("restore case: %w", err)
	}
	return expectAffected(res, "restore case")
}

// SetFavorite toggles the favorite flag of a live case.
func (r *CaseRepository) SetFavorite(ctx context.Context, ownerID, id string, favorite bool, at time.Time) error {
	const query = `UPDATE cases SET is_favorite = $3, updated_at = $4 WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, ownerID, favorite, at)
	if err != nil {
		return fmt.Errorf("set case favorite: %w", err)
	}
	return expectAffected(res, "set case favorite")
}

// CreateRequest inserts an RFI or RFE entry and bumps the case's updated_at.
func (r *CaseRepository) CreateRequest(ctx context.Context, entry *models.RequestEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create request: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `INSERT INTO case_requests (id, case_id, kind, received_date, response_due_date, response_submitted_date, created_at) VALUES (:id, :case_id, :kind, :received_date, :response_due_date, :response_submitted_date, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, entry); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE cases SET updated_at = $2 WHERE id = $1`, entry.CaseID, entry.CreatedAt); err != nil {
		return fmt.Errorf("touch case: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create request: %w", err)
	}
	return nil
}

// RespondRequest records the response submission date of an entry.
func (r *CaseRepository) RespondRequest(ctx context.Context, caseID, requestID, submitted string, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin respond request: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE case_requests SET response_submitted_date = $3 WHERE id = $2 AND case_id = $1`, caseID, requestID, submitted)
	if err != nil {
		return fmt.Errorf("respond request: %w", err)
	}
	if err := expectAffected(res, "respond request"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE cases SET updated_at = $2 WHERE id = $1`, caseID, at); err != nil {
		return fmt.Errorf("touch case: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit respond request: %w", err)
	}
	return nil
}

func (r *CaseRepository) attachRequests(ctx context.Context, cases []models.Case) error {
	if len(cases) == 0 {
		return nil
	}
	ids := make([]string, len(cases))
	index := make(map[string]int, len(cases))
	for i := range cases {
		ids[i] = cases[i].ID
		index[cases[i].ID] = i
	}

	query := fmt.Sprintf("SELECT id, case_id, kind, %s, %s, %s, created_at FROM case_requests WHERE case_id = ANY($1) ORDER BY created_at, id",
		dateColumn("received_date"), dateColumn("response_due_date"), dateColumn("response_submitted_date"))
	var entries []models.RequestEntry
	if err := r.db.SelectContext(ctx, &entries, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list case requests: %w", err)
	}
	for _, entry := range entries {
		i, ok := index[entry.CaseID]
		if !ok {
			continue
		}
		switch entry.Kind {
		case models.RequestKindRFI:
			cases[i].RFIEntries = append(cases[i].RFIEntries, entry)
		case models.RequestKindRFE:
			cases[i].RFEEntries = append(cases[i].RFEEntries, entry)
		}
	}
	return nil
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
