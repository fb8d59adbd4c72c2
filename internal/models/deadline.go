package models

// DeadlineType identifies which PERM rule produced a deadline.
type DeadlineType string

const (
	DeadlinePWDExpiration     DeadlineType = "pwd_expiration"
	DeadlineRFIDue            DeadlineType = "rfi_due"
	DeadlineRFEDue            DeadlineType = "rfe_due"
	DeadlineI140Filing        DeadlineType = "i140_filing_deadline"
	DeadlineFilingWindowOpens DeadlineType = "filing_window_opens"
	DeadlineRecruitmentWindow DeadlineType = "recruitment_window"
)

// Urgency is the coarse proximity bucket of a deadline.
type Urgency string

const (
	UrgencyOverdue   Urgency = "overdue"
	UrgencyThisWeek  Urgency = "thisWeek"
	UrgencyThisMonth Urgency = "thisMonth"
	UrgencyLater     Urgency = "later"
)

// Deadline is a derived, never persisted, deadline of a case.
type Deadline struct {
	Type      DeadlineType `json:"type"`
	Date      string       `json:"date"`
	DaysUntil int          `json:"daysUntil"`
	Urgency   Urgency      `json:"urgency"`
}

// CaseDeadline pairs a deadline with the card of the case it belongs to.
type CaseDeadline struct {
	Case     CaseCardData `json:"case"`
	Deadline Deadline     `json:"deadline"`
}

// DeadlineSummary aggregates the next deadline of every active case of an owner.
type DeadlineSummary struct {
	Today     string               `json:"today"`
	Within    int                  `json:"within_days"`
	ByUrgency map[Urgency]int      `json:"by_urgency"`
	ByType    map[DeadlineType]int `json:"by_type"`
	Items     []CaseDeadline       `json:"items"`
}
