package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/perm-tracker-api/internal/dto"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	"github.com/noah-isme/perm-tracker-api/pkg/export"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{
	"Employer",
	"Beneficiary",
	"Position",
	"Stage",
	"Progress",
	"Next Deadline",
	"PWD Filed",
	"ETA Filed",
	"I-140 Filed",
}

var stageLabels = map[models.CaseStatus]string{
	models.CaseStatusPWD:         "PWD",
	models.CaseStatusRecruitment: "Recruitment",
	models.CaseStatusETA9089:     "ETA-9089",
	models.CaseStatusI140:        "I-140",
	models.CaseStatusClosed:      "Closed",
}

var progressLabels = map[models.ProgressStatus]string{
	models.ProgressWorking:       "Working",
	models.ProgressWaitingIntake: "Waiting for Intake",
	models.ProgressFiled:         "Filed",
	models.ProgressUnderReview:   "Under Review",
	models.ProgressRFIRFE:        "RFI/RFE",
	models.ProgressApproved:      "Approved",
}

type caseCardSource interface {
	Cards(ctx context.Context, ownerID string, query dto.CaseListQuery) ([]models.CaseCardData, string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
	ContentType() string
}

// ExportResult is a rendered export ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportService renders an owner's case list to CSV or PDF.
type ExportService struct {
	cases     caseCardSource
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(cases caseCardSource, validate *validator.Validate, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{cases: cases, csv: csv, pdf: pdf, validator: validate, logger: logger, now: time.Now}
}

// Export renders every case matching the query, in list order.
func (s *ExportService) Export(ctx context.Context, ownerID string, query dto.ExportQuery) (*ExportResult, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	format := query.Format
	if format == "" {
		format = ExportFormatCSV
	}

	cards, today, err := s.cases.Cards(ctx, ownerID, query.CaseListQuery)
	if err != nil {
		return nil, err
	}
	dataset := buildCaseDataset(cards)

	result := &ExportResult{
		Filename: fmt.Sprintf("perm-cases-%s.%s", today, format),
		Rows:     len(dataset.Rows),
	}
	switch format {
	case ExportFormatCSV:
		result.Body, err = s.csv.Render(dataset)
		result.ContentType = s.csv.ContentType()
	case ExportFormatPDF:
		subtitle := fmt.Sprintf("As of %s - %d cases - generated %s", today, len(cards), s.now().UTC().Format(time.RFC3339))
		result.Body, err = s.pdf.Render(dataset, "PERM Cases", subtitle)
		result.ContentType = s.pdf.ContentType()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("cases exported", zap.String("owner_id", ownerID), zap.String("format", format), zap.Int("rows", result.Rows))
	return result, nil
}

func buildCaseDataset(cards []models.CaseCardData) export.Dataset {
	rows := make([]map[string]string, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, map[string]string{
			"Employer":      card.EmployerName,
			"Beneficiary":   card.BeneficiaryIdentifier,
			"Position":      card.PositionTitle,
			"Stage":         label(stageLabels, card.CaseStatus),
			"Progress":      label(progressLabels, card.ProgressStatus),
			"Next Deadline": deref(card.NextDeadline),
			"PWD Filed":     deref(card.Dates.PWDFiled),
			"ETA Filed":     deref(card.Dates.ETAFiled),
			"I-140 Filed":   deref(card.Dates.I140Filed),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func label[K ~string](labels map[K]string, key K) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return string(key)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
