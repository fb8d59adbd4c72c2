package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perm-tracker-api/internal/models"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"google", "google", 0},
		{"gogle", "google", 1},
		{"googel", "google", 1},
		{"gxxxle", "google", 3},
		{"kitten", "sitting", 3},
		{"ca", "abc", 3},
		{"münchen", "munchen", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Distance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, Distance(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestBoundedDistance(t *testing.T) {
	assert.Equal(t, 1, BoundedDistance("gogle", "google", 2))
	assert.Equal(t, 3, BoundedDistance("gxxxle", "google", 2))
	assert.Equal(t, 3, BoundedDistance("a", "abcdef", 2))
	assert.Equal(t, 0, BoundedDistance("same", "same", 0))
	assert.Equal(t, 1, BoundedDistance("same", "sane", 0))
	assert.Equal(t, 2, BoundedDistance("kitten", "sitting", 1))
}

func TestThresholdsMaxEdits(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 0, th.MaxEdits(1))
	assert.Equal(t, 0, th.MaxEdits(2))
	assert.Equal(t, 1, th.MaxEdits(3))
	assert.Equal(t, 1, th.MaxEdits(4))
	assert.Equal(t, 2, th.MaxEdits(5))
	assert.Equal(t, 2, th.MaxEdits(9))
	assert.Equal(t, 3, th.MaxEdits(10))
	assert.Equal(t, 3, th.MaxEdits(40))
}

func TestParseThresholds(t *testing.T) {
	th, err := ParseThresholds(" 5:1, 0:0 ,8:2")
	require.NoError(t, err)
	assert.Equal(t, Thresholds{{0, 0}, {5, 1}, {8, 2}}, th)

	th, err = ParseThresholds("")
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), th)

	for _, raw := range []string{"5", "x:1", "5:y", "-1:0", "3:-2"} {
		_, err := ParseThresholds(raw)
		assert.Error(t, err, raw)
	}
}

func card(id, employer, beneficiary, position string) models.CaseCardData {
	return models.CaseCardData{ID: id, EmployerName: employer, BeneficiaryIdentifier: beneficiary, PositionTitle: position}
}

func ids(cards []models.CaseCardData) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestFilterBlankQueryReturnsEverythingInOrder(t *testing.T) {
	cards := []models.CaseCardData{
		card("1", "Google LLC", "", ""),
		card("2", "Acme", "", ""),
	}
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Filter(cards, q)
		assert.Equal(t, []string{"1", "2"}, ids(got), "query %q", q)
	}
	assert.Empty(t, Filter(nil, ""))
}

func TestFilterFuzzyToleranceForEmployer(t *testing.T) {
	cards := []models.CaseCardData{card("1", "Google LLC", "Beneficiary A", "Engineer")}

	assert.Equal(t, []string{"1"}, ids(Filter(cards, "gogle")))
	assert.Empty(t, Filter(cards, "Gxxxle"))
}

func TestFilterExactMatchesRankBeforeFuzzy(t *testing.T) {
	cards := []models.CaseCardData{
		card("fuzzy", "Googel Inc", "", ""),
		card("none", "Acme Corp", "", ""),
		card("exact", "Google LLC", "", ""),
	}

	got := Filter(cards, "google")

	assert.Equal(t, []string{"exact", "fuzzy"}, ids(got))
}

func TestFilterFuzzyTierOrderedByRelativeDistance(t *testing.T) {
	cards := []models.CaseCardData{
		card("two-edits", "Amxxon Corp", "", ""),
		card("one-edit", "Amazom Corp", "", ""),
	}

	got := Filter(cards, "amazon")

	assert.Equal(t, []string{"one-edit", "two-edits"}, ids(got))
}

func TestFilterMultiWordQueries(t *testing.T) {
	cards := []models.CaseCardData{
		card("aws", "Amazon Web Services", "", ""),
		card("web", "Web Corp", "", "Services Lead"),
		card("other", "Microsoft", "", "Web Developer"),
	}

	assert.Equal(t, []string{"aws", "web"}, ids(Filter(cards, "web services")))
	assert.Equal(t, []string{"aws", "web"}, ids(Filter(cards, "services web")))
	assert.Equal(t, []string{"aws"}, ids(Filter(cards, "amazon servces")))
}

func TestFilterSearchesEveryField(t *testing.T) {
	cards := []models.CaseCardData{
		card("1", "Acme", "Beneficiary Alpha", "Data Engineer"),
		card("2", "Initech", "Beneficiary Beta", "Product Manager"),
	}

	assert.Equal(t, []string{"2"}, ids(Filter(cards, "BETA")))
	assert.Equal(t, []string{"1"}, ids(Filter(cards, "enginer")))
	assert.Equal(t, []string{"2"}, ids(Filter(cards, "initech")))
}

func TestFilterShortWordsMustMatchExactly(t *testing.T) {
	cards := []models.CaseCardData{card("1", "IBM", "", "")}

	assert.Equal(t, []string{"1"}, ids(Filter(cards, "ib")))
	assert.Empty(t, Filter(cards, "ix"))
}

func TestFilterToleratesArbitraryInput(t *testing.T) {
	cards := []models.CaseCardData{
		card("1", "C++ Shop (NYC)", "", ""),
		card("2", "", "", ""),
	}

	assert.Equal(t, []string{"1"}, ids(Filter(cards, "c++")))
	assert.Equal(t, []string{"1"}, ids(Filter(cards, "(nyc)")))
	assert.NotPanics(t, func() {
		Filter(cards, `.*[](){}?\^$|`)
		Filter(cards, strings.Repeat("long query ", 500))
	})
	assert.Empty(t, Filter(cards, strings.Repeat("z", 1000)))
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	cards := []models.CaseCardData{
		card("fuzzy", "Googel Inc", "", ""),
		card("exact", "Google LLC", "", ""),
	}

	_ = Filter(cards, "google")

	assert.Equal(t, []string{"fuzzy", "exact"}, ids(cards))
}

func TestCustomThresholds(t *testing.T) {
	strict := NewMatcher(Thresholds{{MinLength: 0, MaxEdits: 0}})
	cards := []models.CaseCardData{card("1", "Google LLC", "", "")}

	assert.Empty(t, strict.Filter(cards, "gogle"))
	assert.Equal(t, []string{"1"}, ids(strict.Filter(cards, "goog")))
}
