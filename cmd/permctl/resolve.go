package main

import (
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/noah-isme/perm-tracker-api/internal/deadline"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	"github.com/noah-isme/perm-tracker-api/internal/service"
)

type resolvedCase struct {
	CaseID   string            `json:"case_id"`
	Employer string            `json:"employer"`
	Status   models.CaseStatus `json:"case_status"`
	Deadline *models.Deadline  `json:"deadline"`
}

func resolveCmd() *cobra.Command {
	var (
		file   string
		today  string
		tz     string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the next deadline of every case in a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := loadCases(file)
			if err != nil {
				return err
			}
			ref, err := referenceDate(today, tz, time.Now())
			if err != nil {
				return err
			}
			resolved := resolveCases(cases, ref)
			if asJSON {
				return printJSON(os.Stdout, resolved)
			}
			renderResolved(os.Stdout, resolved, ref)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML case file")
	cmd.Flags().StringVar(&today, "today", "", "reference date (yyyy-MM-dd)")
	cmd.Flags().StringVar(&tz, "tz", "", "time zone deriving today when --today is unset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func resolveCases(cases []models.Case, today string) []resolvedCase {
	out := make([]resolvedCase, 0, len(cases))
	for i := range cases {
		out = append(out, resolvedCase{
			CaseID:   cases[i].ID,
			Employer: cases[i].EmployerName,
			Status:   cases[i].CaseStatus,
			Deadline: deadline.Resolve(&cases[i], today),
		})
	}
	return out
}

func renderResolved(w io.Writer, rows []resolvedCase, today string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Deadlines as of " + today)
	tw.AppendHeader(table.Row{"Case", "Employer", "Stage", "Deadline", "Date", "Days", "Urgency"})
	for _, r := range rows {
		if r.Deadline == nil {
			tw.AppendRow(table.Row{r.CaseID, r.Employer, r.Status, "-", "", "", ""})
			continue
		}
		tw.AppendRow(table.Row{
			r.CaseID,
			r.Employer,
			r.Status,
			service.EventTitle(r.Deadline.Type, ""),
			r.Deadline.Date,
			r.Deadline.DaysUntil,
			r.Deadline.Urgency,
		})
	}
	tw.Render()
}
