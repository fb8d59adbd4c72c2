package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perm-tracker-api/internal/models"
)

var requestRowColumns = []string{"id", "case_id", "kind", "received_date", "response_due_date", "response_submitted_date", "created_at"}

func TestCaseListAttachesRequests(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	now := time.Now()
	caseRows := sqlmock.NewRows([]string{"id", "owner_id", "case_status", "progress_status", "employer_name", "pwd_expiration_date", "created_at", "updated_at", "deleted_at"}).
		AddRow("c1", "u1", "pwd", "working", "Acme", "2025-06-30", now, now, nil).
		AddRow("c2", "u1", "recruitment", "working", "Globex", nil, now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM cases WHERE owner_id = $1 AND deleted_at IS NULL AND case_status <> 'closed' ORDER BY updated_at DESC")).
		WithArgs("u1").
		WillReturnRows(caseRows)

	requestRows := sqlmock.NewRows(requestRowColumns).
		AddRow("r1", "c1", "rfi", "2024-12-10", "2025-01-10", nil, now).
		AddRow("r2", "c1", "rfe", "2024-12-11", "2025-02-10", "2025-01-05", now).
		AddRow("r3", "other", "rfi", "2024-12-12", nil, nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM case_requests WHERE case_id = ANY($1)")).WillReturnRows(requestRows)

	cases, err := repo.List(context.Background(), models.CaseFilter{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, cases, 2)

	require.NotNil(t, cases[0].PWDExpirationDate)
	assert.Equal(t, "2025-06-30", *cases[0].PWDExpirationDate)
	require.Len(t, cases[0].RFIEntries, 1)
	assert.Equal(t, "2025-01-10", *cases[0].RFIEntries[0].ResponseDueDate)
	require.Len(t, cases[0].RFEEntries, 1)
	assert.Equal(t, "2025-01-05", *cases[0].RFEEntries[0].ResponseSubmittedDate)
	assert.Nil(t, cases[1].PWDExpirationDate)
	assert.Empty(t, cases[1].RFIEntries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseListStatusAndFavorites(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	status := models.CaseStatusI140
	mock.ExpectQuery(regexp.QuoteMeta("FROM cases WHERE owner_id = $1 AND case_status = $2 AND is_favorite = TRUE")).
		WithArgs("u1", "i140").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	cases, err := repo.List(context.Background(), models.CaseFilter{OwnerID: "u1", Status: &status, FavoritesOnly: true, IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, cases)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM cases WHERE id = $1 AND owner_id = $2")).
		WithArgs("c9", "u1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "u1", "c9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseCreateAndUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cases (id, owner_id, case_status")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cases SET case_status = ")).WillReturnResult(sqlmock.NewResult(0, 0))

	c := &models.Case{OwnerID: "u1", CaseStatus: models.CaseStatusPWD, ProgressStatus: models.ProgressWorking, EmployerName: "Acme"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.NotEmpty(t, c.ID)

	err := repo.Update(context.Background(), c)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseSoftDeleteRestoreFavorite(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)
	at := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cases SET deleted_at = $3")).WithArgs("c1", "u1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cases SET deleted_at = NULL")).WithArgs("c1", "u1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cases SET is_favorite = $3")).WithArgs("c1", "u1", true, at).WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, repo.SoftDelete(ctx, "u1", "c1", at))
	require.NoError(t, repo.Restore(ctx, "u1", "c1", at))
	require.NoError(t, repo.SetFavorite(ctx, "u1", "c1", true, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseCreateRequestCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO case_requests").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cases SET updated_at = $2 WHERE id = $1")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	due := "2025-02-01"
	entry := &models.RequestEntry{CaseID: "c1", Kind: models.RequestKindRFE, ReceivedDate: "2025-01-02", ResponseDueDate: &due}
	require.NoError(t, repo.CreateRequest(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseRespondRequestMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE case_requests SET response_submitted_date = $3")).
		WithArgs("c1", "r9", "2025-01-20").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RespondRequest(context.Background(), "c1", "r9", "2025-01-20", time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
