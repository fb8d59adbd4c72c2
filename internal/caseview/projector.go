// Package caseview builds the card projection of PERM cases and orders it.
package caseview

import (
	"github.com/noah-isme/perm-tracker-api/internal/deadline"
	"github.com/noah-isme/perm-tracker-api/internal/models"
)

// Project maps a case onto its card data. The next deadline is resolved
// against today; absent filing dates stay nil.
func Project(c *models.Case, today string) models.CaseCardData {
	card := models.CaseCardData{
		ID:                    c.ID,
		EmployerName:          c.EmployerName,
		BeneficiaryIdentifier: c.BeneficiaryIdentifier,
		PositionTitle:         c.PositionTitle,
		CaseStatus:            c.CaseStatus,
		ProgressStatus:        c.ProgressStatus,
		IsFavorite:            c.IsFavorite,
		Dates: models.CaseDates{
			Created:   c.CreatedAt,
			Updated:   c.UpdatedAt,
			PWDFiled:  copyString(c.PWDFilingDate),
			ETAFiled:  copyString(c.ETA9089FilingDate),
			I140Filed: copyString(c.I140FilingDate),
		},
	}
	if next := deadline.Resolve(c, today); next != nil {
		date := next.Date
		card.NextDeadline = &date
	}
	return card
}

// ProjectAll projects every case in order.
func ProjectAll(cases []models.Case, today string) []models.CaseCardData {
	cards := make([]models.CaseCardData, 0, len(cases))
	for i := range cases {
		cards = append(cards, Project(&cases[i], today))
	}
	return cards
}

// The card must not alias the case's pointers.
func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
