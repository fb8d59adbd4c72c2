package models

import "time"

// CaseStatus is the regulatory stage a PERM case is in.
type CaseStatus string

const (
	CaseStatusPWD         CaseStatus = "pwd"
	CaseStatusRecruitment CaseStatus = "recruitment"
	CaseStatusETA9089     CaseStatus = "eta9089"
	CaseStatusI140        CaseStatus = "i140"
	CaseStatusClosed      CaseStatus = "closed"
)

// caseStatusOrder lists stages in their sequential order.
var caseStatusOrder = []CaseStatus{
	CaseStatusPWD,
	CaseStatusRecruitment,
	CaseStatusETA9089,
	CaseStatusI140,
	CaseStatusClosed,
}

// Rank returns the position of the stage in the stage sequence, or -1 when unknown.
func (s CaseStatus) Rank() int {
	for i, status := range caseStatusOrder {
		if status == s {
			return i
		}
	}
	return -1
}

// Valid reports whether the status is one of the known stages.
func (s CaseStatus) Valid() bool {
	return s.Rank() >= 0
}

// ProgressStatus describes where the work within the current stage stands.
type ProgressStatus string

const (
	ProgressWorking       ProgressStatus = "working"
	ProgressWaitingIntake ProgressStatus = "waiting_intake"
	ProgressFiled         ProgressStatus = "filed"
	ProgressUnderReview   ProgressStatus = "under_review"
	ProgressRFIRFE        ProgressStatus = "rfi_rfe"
	ProgressApproved      ProgressStatus = "approved"
)

// Valid reports whether the progress status is known.
func (p ProgressStatus) Valid() bool {
	switch p {
	case ProgressWorking, ProgressWaitingIntake, ProgressFiled, ProgressUnderReview, ProgressRFIRFE, ProgressApproved:
		return true
	}
	return false
}

// RequestKind distinguishes Requests for Information from Requests for Evidence.
type RequestKind string

const (
	RequestKindRFI RequestKind = "rfi"
	RequestKindRFE RequestKind = "rfe"
)

// RequestEntry is a single RFI or RFE issued against a case.
type RequestEntry struct {
	ID                    string      `db:"id" json:"id" yaml:"id"`
	CaseID                string      `db:"case_id" json:"case_id" yaml:"-"`
	Kind                  RequestKind `db:"kind" json:"kind" yaml:"kind"`
	ReceivedDate          string      `db:"received_date" json:"received_date" yaml:"receivedDate"`
	ResponseDueDate       *string     `db:"response_due_date" json:"response_due_date,omitempty" yaml:"responseDueDate"`
	ResponseSubmittedDate *string     `db:"response_submitted_date" json:"response_submitted_date,omitempty" yaml:"responseSubmittedDate"`
	CreatedAt             time.Time   `db:"created_at" json:"created_at" yaml:"createdAt"`
}

// Open reports whether the request still awaits a response with a known due date.
func (r RequestEntry) Open() bool {
	return r.ResponseDueDate != nil && r.ResponseSubmittedDate == nil
}

// Case is a PERM labor-certification case record. Optional stage dates are
// ISO yyyy-MM-dd strings; nil means the date has not been recorded.
type Case struct {
	ID        string     `db:"id" json:"id" yaml:"id"`
	OwnerID   string     `db:"owner_id" json:"owner_id" yaml:"ownerId"`
	CreatedAt time.Time  `db:"created_at" json:"created_at" yaml:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at" yaml:"updatedAt"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty" yaml:"deletedAt"`

	CaseStatus     CaseStatus     `db:"case_status" json:"case_status" yaml:"caseStatus"`
	ProgressStatus ProgressStatus `db:"progress_status" json:"progress_status" yaml:"progressStatus"`

	EmployerName          string `db:"employer_name" json:"employer_name" yaml:"employerName"`
	BeneficiaryIdentifier string `db:"beneficiary_identifier" json:"beneficiary_identifier" yaml:"beneficiaryIdentifier"`
	PositionTitle         string `db:"position_title" json:"position_title" yaml:"positionTitle"`
	IsFavorite            bool   `db:"is_favorite" json:"is_favorite" yaml:"isFavorite"`

	PWDFilingDate        *string `db:"pwd_filing_date" json:"pwd_filing_date,omitempty" yaml:"pwdFilingDate"`
	PWDDeterminationDate *string `db:"pwd_determination_date" json:"pwd_determination_date,omitempty" yaml:"pwdDeterminationDate"`
	PWDExpirationDate    *string `db:"pwd_expiration_date" json:"pwd_expiration_date,omitempty" yaml:"pwdExpirationDate"`

	RecruitmentStartDate         *string `db:"recruitment_start_date" json:"recruitment_start_date,omitempty" yaml:"recruitmentStartDate"`
	RecruitmentEndDate           *string `db:"recruitment_end_date" json:"recruitment_end_date,omitempty" yaml:"recruitmentEndDate"`
	NoticeOfFilingStartDate      *string `db:"notice_of_filing_start_date" json:"notice_of_filing_start_date,omitempty" yaml:"noticeOfFilingStartDate"`
	NoticeOfFilingEndDate        *string `db:"notice_of_filing_end_date" json:"notice_of_filing_end_date,omitempty" yaml:"noticeOfFilingEndDate"`
	JobOrderStartDate            *string `db:"job_order_start_date" json:"job_order_start_date,omitempty" yaml:"jobOrderStartDate"`
	JobOrderEndDate              *string `db:"job_order_end_date" json:"job_order_end_date,omitempty" yaml:"jobOrderEndDate"`
	SundayAdFirstDate            *string `db:"sunday_ad_first_date" json:"sunday_ad_first_date,omitempty" yaml:"sundayAdFirstDate"`
	SundayAdSecondDate           *string `db:"sunday_ad_second_date" json:"sunday_ad_second_date,omitempty" yaml:"sundayAdSecondDate"`
	AdditionalRecruitmentEndDate *string `db:"additional_recruitment_end_date" json:"additional_recruitment_end_date,omitempty" yaml:"additionalRecruitmentEndDate"`
	IsProfessionalOccupation     bool    `db:"is_professional_occupation" json:"is_professional_occupation" yaml:"isProfessionalOccupation"`

	ETA9089FilingDate        *string `db:"eta9089_filing_date" json:"eta9089_filing_date,omitempty" yaml:"eta9089FilingDate"`
	ETA9089CertificationDate *string `db:"eta9089_certification_date" json:"eta9089_certification_date,omitempty" yaml:"eta9089CertificationDate"`
	ETA9089ExpirationDate    *string `db:"eta9089_expiration_date" json:"eta9089_expiration_date,omitempty" yaml:"eta9089ExpirationDate"`

	I140FilingDate   *string `db:"i140_filing_date" json:"i140_filing_date,omitempty" yaml:"i140FilingDate"`
	I140ApprovalDate *string `db:"i140_approval_date" json:"i140_approval_date,omitempty" yaml:"i140ApprovalDate"`

	RFIEntries []RequestEntry `db:"-" json:"rfi_entries" yaml:"rfiEntries"`
	RFEEntries []RequestEntry `db:"-" json:"rfe_entries" yaml:"rfeEntries"`
}

// Deleted reports whether the case carries a soft-delete marker.
func (c *Case) Deleted() bool {
	return c.DeletedAt != nil
}

// CaseDates holds the timestamps and filing dates shown on a case card.
type CaseDates struct {
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
	PWDFiled  *string   `json:"pwdFiled,omitempty"`
	ETAFiled  *string   `json:"etaFiled,omitempty"`
	I140Filed *string   `json:"i140Filed,omitempty"`
}

// CaseCardData is the compact projection of a case used by lists, sorting and search.
type CaseCardData struct {
	ID                    string         `json:"id"`
	EmployerName          string         `json:"employerName"`
	BeneficiaryIdentifier string         `json:"beneficiaryIdentifier"`
	PositionTitle         string         `json:"positionTitle"`
	CaseStatus            CaseStatus     `json:"caseStatus"`
	ProgressStatus        ProgressStatus `json:"progressStatus"`
	IsFavorite            bool           `json:"isFavorite"`
	NextDeadline          *string        `json:"nextDeadline,omitempty"`
	Dates                 CaseDates      `json:"dates"`
}

// CaseFilter narrows the cases loaded for an owner.
type CaseFilter struct {
	OwnerID        string
	Status         *CaseStatus
	FavoritesOnly  bool
	IncludeClosed  bool
	IncludeDeleted bool
}

// CaseDetail is a case together with every active deadline derived from it.
type CaseDetail struct {
	Case         Case       `json:"case"`
	NextDeadline *Deadline  `json:"next_deadline,omitempty"`
	Deadlines    []Deadline `json:"deadlines"`
}
