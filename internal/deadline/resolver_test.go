package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perm-tracker-api/internal/models"
)

const today = "2025-01-15"

func strPtr(s string) *string { return &s }

func TestResolveClosedAndDeletedCasesHaveNoDeadline(t *testing.T) {
	deletedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]models.Case{
		"closed": {
			CaseStatus:        models.CaseStatusClosed,
			PWDExpirationDate: strPtr("2025-01-01"),
			RFIEntries:        []models.RequestEntry{{ID: "rfi-1", ResponseDueDate: strPtr("2025-01-10")}},
		},
		"deleted": {
			CaseStatus:        models.CaseStatusPWD,
			DeletedAt:         &deletedAt,
			PWDExpirationDate: strPtr("2025-01-01"),
		},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, Resolve(&c, today))
			assert.Empty(t, ResolveAll(&c, today))
		})
	}
}

func TestResolveNilAndEmptyCase(t *testing.T) {
	assert.Nil(t, Resolve(nil, today))
	assert.Nil(t, Resolve(&models.Case{CaseStatus: models.CaseStatusPWD}, today))
}

func TestResolveOverdueRFIBeatsPWDExpiration(t *testing.T) {
	c := &models.Case{
		CaseStatus:        models.CaseStatusPWD,
		PWDExpirationDate: strPtr("2025-06-30"),
		RFIEntries: []models.RequestEntry{
			{ID: "rfi-1", ReceivedDate: "2024-12-10", ResponseDueDate: strPtr("2025-01-10")},
		},
	}

	got := Resolve(c, today)

	require.NotNil(t, got)
	assert.Equal(t, models.Deadline{
		Type:      models.DeadlineRFIDue,
		Date:      "2025-01-10",
		DaysUntil: -5,
		Urgency:   models.UrgencyOverdue,
	}, *got)
}

func TestResolveFilingWindowOpensBeatsRecruitmentWindow(t *testing.T) {
	c := &models.Case{
		CaseStatus:         models.CaseStatusRecruitment,
		SundayAdFirstDate:  strPtr("2024-10-01"),
		SundayAdSecondDate: strPtr("2024-10-08"),
	}

	all := ResolveAll(c, today)
	require.Len(t, all, 2)
	assert.Equal(t, models.Deadline{Type: models.DeadlineFilingWindowOpens, Date: "2024-11-07", DaysUntil: -69, Urgency: models.UrgencyOverdue}, all[0])
	assert.Equal(t, models.Deadline{Type: models.DeadlineRecruitmentWindow, Date: "2025-03-30", DaysUntil: 74, Urgency: models.UrgencyLater}, all[1])

	got := Resolve(c, today)
	require.NotNil(t, got)
	assert.Equal(t, models.DeadlineFilingWindowOpens, got.Type)
}

func TestResolveETA9089FilingSuppressesPreFilingDeadlines(t *testing.T) {
	c := &models.Case{
		CaseStatus:               models.CaseStatusETA9089,
		PWDExpirationDate:        strPtr("2025-01-01"),
		RecruitmentStartDate:     strPtr("2024-09-01"),
		SundayAdFirstDate:        strPtr("2024-10-01"),
		SundayAdSecondDate:       strPtr("2024-10-08"),
		ETA9089FilingDate:        strPtr("2024-12-01"),
		ETA9089CertificationDate: strPtr("2025-01-02"),
		ETA9089ExpirationDate:    strPtr("2025-06-30"),
	}

	all := ResolveAll(c, today)

	require.Len(t, all, 1)
	assert.Equal(t, models.Deadline{Type: models.DeadlineI140Filing, Date: "2025-06-30", DaysUntil: 166, Urgency: models.UrgencyLater}, all[0])
}

func TestResolveI140DeadlineRequiresCertificationAndNoFiling(t *testing.T) {
	base := models.Case{
		CaseStatus:            models.CaseStatusI140,
		ETA9089FilingDate:     strPtr("2024-06-01"),
		ETA9089ExpirationDate: strPtr("2025-06-30"),
	}
	assert.Nil(t, Resolve(&base, today), "expiration without certification is not a deadline")

	certified := base
	certified.ETA9089CertificationDate = strPtr("2024-12-30")
	got := Resolve(&certified, today)
	require.NotNil(t, got)
	assert.Equal(t, models.DeadlineI140Filing, got.Type)

	filed := certified
	filed.I140FilingDate = strPtr("2025-01-05")
	assert.Nil(t, Resolve(&filed, today))
}

func TestResolvePicksMostUrgentOpenRequest(t *testing.T) {
	c := &models.Case{
		CaseStatus: models.CaseStatusETA9089,
		RFEEntries: []models.RequestEntry{
			{ID: "rfe-1", ResponseDueDate: strPtr("2025-02-20")},
			{ID: "rfe-2", ResponseDueDate: strPtr("2025-01-01"), ResponseSubmittedDate: strPtr("2024-12-30")},
			{ID: "rfe-3", ResponseDueDate: strPtr("2025-01-25")},
			{ID: "rfe-4"},
		},
	}

	all := ResolveAll(c, today)

	require.Len(t, all, 1)
	assert.Equal(t, models.Deadline{Type: models.DeadlineRFEDue, Date: "2025-01-25", DaysUntil: 10, Urgency: models.UrgencyThisMonth}, all[0])
}

func TestResolveTieKeepsEvaluationOrder(t *testing.T) {
	c := &models.Case{
		CaseStatus:        models.CaseStatusPWD,
		PWDExpirationDate: strPtr("2025-01-20"),
		RFIEntries:        []models.RequestEntry{{ID: "rfi-1", ResponseDueDate: strPtr("2025-01-20")}},
		RFEEntries:        []models.RequestEntry{{ID: "rfe-1", ResponseDueDate: strPtr("2025-01-20")}},
	}

	got := Resolve(c, today)

	require.NotNil(t, got)
	assert.Equal(t, models.DeadlinePWDExpiration, got.Type)
	assert.Equal(t, 5, got.DaysUntil)
	assert.Equal(t, models.UrgencyThisWeek, got.Urgency)
}

func TestResolveProfessionalOccupationCountsAdditionalRecruitment(t *testing.T) {
	c := &models.Case{
		CaseStatus:                   models.CaseStatusRecruitment,
		SundayAdFirstDate:            strPtr("2024-10-01"),
		SundayAdSecondDate:           strPtr("2024-10-08"),
		AdditionalRecruitmentEndDate: strPtr("2024-10-20"),
		IsProfessionalOccupation:     true,
	}
	all := ResolveAll(c, today)
	require.NotEmpty(t, all)
	assert.Equal(t, "2024-11-19", all[0].Date)

	c.IsProfessionalOccupation = false
	all = ResolveAll(c, today)
	require.NotEmpty(t, all)
	assert.Equal(t, "2024-11-07", all[0].Date)
}

func TestResolveRecruitmentStartPrefersRecordedStart(t *testing.T) {
	c := &models.Case{
		CaseStatus:           models.CaseStatusRecruitment,
		RecruitmentStartDate: strPtr("2024-09-01"),
		JobOrderStartDate:    strPtr("2024-08-15"),
	}

	all := ResolveAll(c, today)

	require.Len(t, all, 1)
	assert.Equal(t, models.DeadlineRecruitmentWindow, all[0].Type)
	assert.Equal(t, "2025-02-28", all[0].Date)
	assert.Equal(t, 44, all[0].DaysUntil)
}

func TestResolveSkipsMalformedDates(t *testing.T) {
	c := &models.Case{
		CaseStatus:        models.CaseStatusPWD,
		PWDExpirationDate: strPtr("not-a-date"),
		RFIEntries:        []models.RequestEntry{{ID: "rfi-1", ResponseDueDate: strPtr("2025-02-01")}},
	}

	got := Resolve(c, today)
	require.NotNil(t, got)
	assert.Equal(t, models.DeadlineRFIDue, got.Type)

	assert.Nil(t, Resolve(c, "15/01/2025"))
}

func TestUrgencyBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want models.Urgency
	}{
		{-30, models.UrgencyOverdue},
		{-1, models.UrgencyOverdue},
		{0, models.UrgencyThisWeek},
		{7, models.UrgencyThisWeek},
		{8, models.UrgencyThisMonth},
		{30, models.UrgencyThisMonth},
		{31, models.UrgencyLater},
		{365, models.UrgencyLater},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Urgency(tt.days), "days=%d", tt.days)
	}
}

func TestUrgencyRankOrdersBuckets(t *testing.T) {
	assert.Less(t, UrgencyRank(models.UrgencyOverdue), UrgencyRank(models.UrgencyThisWeek))
	assert.Less(t, UrgencyRank(models.UrgencyThisWeek), UrgencyRank(models.UrgencyThisMonth))
	assert.Less(t, UrgencyRank(models.UrgencyThisMonth), UrgencyRank(models.UrgencyLater))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2025-01-15", "2025-01-15", 0},
		{"2025-01-15", "2025-01-10", -5},
		{"2024-02-28", "2024-03-01", 2},
		{"2024-12-31", "2025-01-01", 1},
		{"2025-03-08", "2025-03-10", 2},
	}
	for _, tt := range tests {
		got, err := DaysBetween(tt.from, tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}

	_, err := DaysBetween("2025-13-01", "2025-01-01")
	assert.Error(t, err)
}

func TestAddDaysAndToday(t *testing.T) {
	got, err := AddDays("2024-10-08", FilingWindowOpensAfterDays)
	require.NoError(t, err)
	assert.Equal(t, "2024-11-07", got)

	est := time.FixedZone("EST", -5*60*60)
	now := time.Date(2025, 1, 16, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-15", Today(now, est))
	assert.Equal(t, "2025-01-16", Today(now, nil))
}
