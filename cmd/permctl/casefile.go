package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/perm-tracker-api/internal/deadline"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	"github.com/noah-isme/perm-tracker-api/pkg/config"
)

// loadCases reads a YAML list of case records. Records without an id are
// numbered by position.
func loadCases(path string) ([]models.Case, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file: %w", err)
	}
	return decodeCases(bytes.NewReader(raw))
}

func decodeCases(r io.Reader) ([]models.Case, error) {
	var cases []models.Case
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cases); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode case file: %w", err)
	}
	for i := range cases {
		if cases[i].ID == "" {
			cases[i].ID = fmt.Sprintf("case-%d", i+1)
		}
		for j := range cases[i].RFIEntries {
			cases[i].RFIEntries[j].CaseID = cases[i].ID
			cases[i].RFIEntries[j].Kind = models.RequestKindRFI
		}
		for j := range cases[i].RFEEntries {
			cases[i].RFEEntries[j].CaseID = cases[i].ID
			cases[i].RFEEntries[j].Kind = models.RequestKindRFE
		}
	}
	return cases, nil
}

// referenceDate validates an explicit --today or derives it from the clock in tz.
func referenceDate(raw, tz string, now time.Time) (string, error) {
	if raw != "" {
		if _, err := deadline.ParseDate(raw); err != nil {
			return "", fmt.Errorf("--today must be yyyy-MM-dd: %w", err)
		}
		return raw, nil
	}
	return deadline.Today(now, config.DeadlineConfig{TimeZone: tz}.Location()), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
