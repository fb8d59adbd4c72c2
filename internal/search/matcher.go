package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/noah-isme/perm-tracker-api/internal/models"
)

// Threshold allows MaxEdits edits for query words of at least MinLength runes.
type Threshold struct {
	MinLength int
	MaxEdits  int
}

// Thresholds maps query word length to edit tolerance.
type Thresholds []Threshold

// DefaultThresholds returns the built-in tolerance table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		{MinLength: 0, MaxEdits: 0},
		{MinLength: 3, MaxEdits: 1},
		{MinLength: 5, MaxEdits: 2},
		{MinLength: 10, MaxEdits: 3},
	}
}

// MaxEdits returns the tolerance for a word of the given rune length.
// Thresholds must be sorted by MinLength.
func (t Thresholds) MaxEdits(length int) int {
	edits := 0
	for _, th := range t {
		if length < th.MinLength {
			break
		}
		edits = th.MaxEdits
	}
	return edits
}

// ParseThresholds parses "minLength:maxEdits" pairs separated by commas,
// e.g. "0:0,3:1,5:2,10:3". An empty string yields the defaults.
func ParseThresholds(raw string) (Thresholds, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultThresholds(), nil
	}
	var out Thresholds
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lengthRaw, editsRaw, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid threshold %q: expected minLength:maxEdits", part)
		}
		length, err := strconv.Atoi(strings.TrimSpace(lengthRaw))
		if err != nil || length < 0 {
			return nil, fmt.Errorf("invalid threshold length %q", lengthRaw)
		}
		edits, err := strconv.Atoi(strings.TrimSpace(editsRaw))
		if err != nil || edits < 0 {
			return nil, fmt.Errorf("invalid threshold edits %q", editsRaw)
		}
		out = append(out, Threshold{MinLength: length, MaxEdits: edits})
	}
	if len(out) == 0 {
		return DefaultThresholds(), nil
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinLength < out[j].MinLength })
	return out, nil
}

// Matcher filters case cards by employer, beneficiary and position.
type Matcher struct {
	thresholds Thresholds
}

// NewMatcher builds a matcher. Nil or empty thresholds select the defaults.
func NewMatcher(thresholds Thresholds) *Matcher {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}
	sorted := make(Thresholds, len(thresholds))
	copy(sorted, thresholds)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinLength < sorted[j].MinLength })
	return &Matcher{thresholds: sorted}
}

var defaultMatcher = NewMatcher(nil)

// Filter matches cards with the default thresholds.
func Filter(cards []models.CaseCardData, query string) []models.CaseCardData {
	return defaultMatcher.Filter(cards, query)
}

type tier int

const (
	tierExact tier = iota
	tierFuzzy
)

type hit struct {
	card  models.CaseCardData
	tier  tier
	score float64
}

// Filter returns the cards matching query, best matches first: cards
// containing the query (or every query word) as a substring precede
// approximate matches, which are ordered by edit distance relative to the
// query length. Ties keep input order. A blank query returns every card.
func (m *Matcher) Filter(cards []models.CaseCardData, query string) []models.CaseCardData {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]models.CaseCardData, len(cards))
		copy(out, cards)
		return out
	}
	words := tokenize(q)

	hits := make([]hit, 0, len(cards))
	for _, card := range cards {
		if t, score, ok := m.match(card, q, words); ok {
			hits = append(hits, hit{card: card, tier: t, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].tier != hits[j].tier {
			return hits[i].tier < hits[j].tier
		}
		return hits[i].score < hits[j].score
	})

	out := make([]models.CaseCardData, len(hits))
	for i, h := range hits {
		out[i] = h.card
	}
	return out
}

func (m *Matcher) match(card models.CaseCardData, phrase string, words []string) (tier, float64, bool) {
	fields := searchableFields(card)
	if len(fields) == 0 {
		return 0, 0, false
	}

	for _, f := range fields {
		if strings.Contains(f.text, phrase) {
			return tierExact, 0, true
		}
	}
	if len(words) > 1 && everyWordContained(fields, words) {
		return tierExact, 0, true
	}

	best, matched := m.phraseScore(fields, phrase)
	if score, ok := m.wordScore(fields, words); ok && (!matched || score < best) {
		best, matched = score, true
	}
	if !matched {
		return 0, 0, false
	}
	return tierFuzzy, best, true
}

// phraseScore compares the whole query with each whole field.
func (m *Matcher) phraseScore(fields []field, phrase string) (float64, bool) {
	length := utf8.RuneCountInString(phrase)
	limit := m.thresholds.MaxEdits(length)
	if limit == 0 {
		return 0, false
	}
	best := limit + 1
	for _, f := range fields {
		if d := BoundedDistance(phrase, f.text, limit); d < best {
			best = d
		}
	}
	if best > limit {
		return 0, false
	}
	return float64(best) / float64(length), true
}

// wordScore requires every query word to match some field word, either as a
// substring or within that word's edit tolerance.
func (m *Matcher) wordScore(fields []field, words []string) (float64, bool) {
	if len(words) == 0 {
		return 0, false
	}
	total, length := 0, 0
	for _, w := range words {
		d, ok := m.bestWordDistance(fields, w)
		if !ok {
			return 0, false
		}
		total += d
		length += utf8.RuneCountInString(w)
	}
	return float64(total) / float64(length), true
}

func (m *Matcher) bestWordDistance(fields []field, word string) (int, bool) {
	limit := m.thresholds.MaxEdits(utf8.RuneCountInString(word))
	best := limit + 1
	for _, f := range fields {
		for _, candidate := range f.words {
			if strings.Contains(candidate, word) {
				return 0, true
			}
			if limit == 0 {
				continue
			}
			if d := BoundedDistance(word, candidate, limit); d < best {
				best = d
			}
		}
	}
	return best, best <= limit
}

func everyWordContained(fields []field, words []string) bool {
	for _, w := range words {
		found := false
		for _, f := range fields {
			if strings.Contains(f.text, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type field struct {
	text  string
	words []string
}

func searchableFields(card models.CaseCardData) []field {
	raw := [...]string{card.EmployerName, card.BeneficiaryIdentifier, card.PositionTitle}
	fields := make([]field, 0, len(raw))
	for _, value := range raw {
		text := strings.ToLower(strings.TrimSpace(value))
		if text == "" {
			continue
		}
		fields = append(fields, field{text: text, words: tokenize(text)})
	}
	return fields
}

// tokenize splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
