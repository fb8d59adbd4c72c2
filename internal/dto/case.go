package dto

import "github.com/noah-isme/perm-tracker-api/internal/models"

// CaseListQuery captures list, search and sort parameters for an owner's cases.
type CaseListQuery struct {
	Search        string `form:"q"`
	Sort          string `form:"sort"`
	Direction     string `form:"dir"`
	Status        string `form:"status" validate:"omitempty,oneof=pwd recruitment eta9089 i140 closed"`
	FavoritesOnly bool   `form:"favorites"`
	IncludeClosed bool   `form:"includeClosed"`
	Page          int    `form:"page" validate:"omitempty,min=1"`
	PageSize      int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Today         string `form:"today" validate:"omitempty,datetime=2006-01-02"`
}

// CaseListResult is a page of projected cases.
type CaseListResult struct {
	Items      []models.CaseCardData `json:"items"`
	Pagination models.Pagination     `json:"pagination"`
	Today      string                `json:"today"`
	CacheHit   bool                  `json:"-"`
}

// CasePayload is the writable part of a case record.
type CasePayload struct {
	CaseStatus            models.CaseStatus     `json:"case_status" validate:"required,oneof=pwd recruitment eta9089 i140 closed"`
	ProgressStatus        models.ProgressStatus `json:"progress_status" validate:"required,oneof=working waiting_intake filed under_review rfi_rfe approved"`
	EmployerName          string                `json:"employer_name" validate:"required,max=255"`
	BeneficiaryIdentifier string                `json:"beneficiary_identifier" validate:"max=255"`
	PositionTitle         string                `json:"position_title" validate:"max=255"`
	IsFavorite            bool                  `json:"is_favorite"`

	PWDFilingDate        *string `json:"pwd_filing_date" validate:"omitempty,datetime=2006-01-02"`
	PWDDeterminationDate *string `json:"pwd_determination_date" validate:"omitempty,datetime=2006-01-02"`
	PWDExpirationDate    *string `json:"pwd_expiration_date" validate:"omitempty,datetime=2006-01-02"`

	RecruitmentStartDate         *string `json:"recruitment_start_date" validate:"omitempty,datetime=2006-01-02"`
	RecruitmentEndDate           *string `json:"recruitment_end_date" validate:"omitempty,datetime=2006-01-02"`
	NoticeOfFilingStartDate      *string `json:"notice_of_filing_start_date" validate:"omitempty,datetime=2006-01-02"`
	NoticeOfFilingEndDate        *string `json:"notice_of_filing_end_date" validate:"omitempty,datetime=2006-01-02"`
	JobOrderStartDate            *string `json:"job_order_start_date" validate:"omitempty,datetime=2006-01-02"`
	JobOrderEndDate              *string `json:"job_order_end_date" validate:"omitempty,datetime=2006-01-02"`
	SundayAdFirstDate            *string `json:"sunday_ad_first_date" validate:"omitempty,datetime=2006-01-02"`
	SundayAdSecondDate           *string `json:"sunday_ad_second_date" validate:"omitempty,datetime=2006-01-02"`
	AdditionalRecruitmentEndDate *string `json:"additional_recruitment_end_date" validate:"omitempty,datetime=2006-01-02"`
	IsProfessionalOccupation     bool    `json:"is_professional_occupation"`

	ETA9089FilingDate        *string `json:"eta9089_filing_date" validate:"omitempty,datetime=2006-01-02"`
	ETA9089CertificationDate *string `json:"eta9089_certification_date" validate:"omitempty,datetime=2006-01-02"`
	ETA9089ExpirationDate    *string `json:"eta9089_expiration_date" validate:"omitempty,datetime=2006-01-02"`

	I140FilingDate   *string `json:"i140_filing_date" validate:"omitempty,datetime=2006-01-02"`
	I140ApprovalDate *string `json:"i140_approval_date" validate:"omitempty,datetime=2006-01-02"`
}

// Apply copies the payload onto a case record, normalising blank dates to nil.
func (p CasePayload) Apply(c *models.Case) {
	c.CaseStatus = p.CaseStatus
	c.ProgressStatus = p.ProgressStatus
	c.EmployerName = p.EmployerName
	c.BeneficiaryIdentifier = p.BeneficiaryIdentifier
	c.PositionTitle = p.PositionTitle
	c.IsFavorite = p.IsFavorite
	c.IsProfessionalOccupation = p.IsProfessionalOccupation

	c.PWDFilingDate = optionalDate(p.PWDFilingDate)
	c.PWDDeterminationDate = optionalDate(p.PWDDeterminationDate)
	c.PWDExpirationDate = optionalDate(p.PWDExpirationDate)
	c.RecruitmentStartDate = optionalDate(p.RecruitmentStartDate)
	c.RecruitmentEndDate = optionalDate(p.RecruitmentEndDate)
	c.NoticeOfFilingStartDate = optionalDate(p.NoticeOfFilingStartDate)
	c.NoticeOfFilingEndDate = optionalDate(p.NoticeOfFilingEndDate)
	c.JobOrderStartDate = optionalDate(p.JobOrderStartDate)
	c.JobOrderEndDate = optionalDate(p.JobOrderEndDate)
	c.SundayAdFirstDate = optionalDate(p.SundayAdFirstDate)
	c.SundayAdSecondDate = optionalDate(p.SundayAdSecondDate)
	c.AdditionalRecruitmentEndDate = optionalDate(p.AdditionalRecruitmentEndDate)
	c.ETA9089FilingDate = optionalDate(p.ETA9089FilingDate)
	c.ETA9089CertificationDate = optionalDate(p.ETA9089CertificationDate)
	c.ETA9089ExpirationDate = optionalDate(p.ETA9089ExpirationDate)
	c.I140FilingDate = optionalDate(p.I140FilingDate)
	c.I140ApprovalDate = optionalDate(p.I140ApprovalDate)
}

func optionalDate(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	out := *v
	return &out
}

// FavoriteRequest toggles the favorite flag of a case.
type FavoriteRequest struct {
	IsFavorite *bool `json:"is_favorite" validate:"required"`
}

// CreateRequestEntry records a newly received RFI or RFE.
type CreateRequestEntry struct {
	Kind            models.RequestKind `json:"kind" validate:"required,oneof=rfi rfe"`
	ReceivedDate    string             `json:"received_date" validate:"required,datetime=2006-01-02"`
	ResponseDueDate *string            `json:"response_due_date" validate:"omitempty,datetime=2006-01-02"`
}

// RespondRequest records the submission of an RFI or RFE response.
type RespondRequest struct {
	ResponseSubmittedDate string `json:"response_submitted_date" validate:"required,datetime=2006-01-02"`
}

// UpcomingQuery parameterises the upcoming deadline summary.
type UpcomingQuery struct {
	Today  string `form:"today" validate:"omitempty,datetime=2006-01-02"`
	Within int    `form:"within" validate:"omitempty,min=1,max=3650"`
}

// ExportQuery selects the format and the list parameters of a case export.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
	CaseListQuery
}
