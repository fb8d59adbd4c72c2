package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/noah-isme/perm-tracker-api/internal/caseview"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	"github.com/noah-isme/perm-tracker-api/internal/search"
)

type listOptions struct {
	file       string
	query      string
	sort       string
	dir        string
	today      string
	tz         string
	thresholds string
	json       bool
}

func listCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Project, search and sort the cases of a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := loadCases(opts.file)
			if err != nil {
				return err
			}
			today, err := referenceDate(opts.today, opts.tz, time.Now())
			if err != nil {
				return err
			}
			cards, err := listCards(cases, today, opts)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(os.Stdout, cards)
			}
			renderCards(os.Stdout, cards)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "YAML case file")
	cmd.Flags().StringVar(&opts.query, "q", "", "search query")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "deadline|updated|employer|status|pwdFiled|etaFiled|i140Filed")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "asc|desc")
	cmd.Flags().StringVar(&opts.today, "today", "", "reference date (yyyy-MM-dd)")
	cmd.Flags().StringVar(&opts.tz, "tz", "", "time zone deriving today when --today is unset")
	cmd.Flags().StringVar(&opts.thresholds, "thresholds", "", "fuzzy thresholds as minLen:maxEdits pairs")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func listCards(cases []models.Case, today string, opts listOptions) ([]models.CaseCardData, error) {
	field, err := caseview.ParseSortField(opts.sort)
	if err != nil {
		return nil, err
	}
	dir, err := caseview.ParseSortDirection(opts.dir)
	if err != nil {
		return nil, err
	}
	thresholds, err := search.ParseThresholds(opts.thresholds)
	if err != nil {
		return nil, err
	}

	cards := caseview.ProjectAll(cases, today)
	cards = search.NewMatcher(thresholds).Filter(cards, opts.query)
	if strings.TrimSpace(opts.query) != "" && opts.sort == "" {
		return cards, nil
	}
	return caseview.Sort(cards, field, dir), nil
}

func renderCards(w io.Writer, cards []models.CaseCardData) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Case", "Employer", "Position", "Stage", "Progress", "Next Deadline", "Fav"})
	for _, c := range cards {
		next := ""
		if c.NextDeadline != nil {
			next = *c.NextDeadline
		}
		fav := ""
		if c.IsFavorite {
			fav = "*"
		}
		tw.AppendRow(table.Row{c.ID, c.EmployerName, c.PositionTitle, c.CaseStatus, c.ProgressStatus, next, fav})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "Total", len(cards)})
	tw.Render()
}
