package caseview

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/perm-tracker-api/internal/deadline"
	"github.com/noah-isme/perm-tracker-api/internal/models"
)

// SortField names the card attribute a list is ordered by.
type SortField string

const (
	SortByDeadline  SortField = "deadline"
	SortByUpdated   SortField = "updated"
	SortByEmployer  SortField = "employer"
	SortByStatus    SortField = "status"
	SortByPWDFiled  SortField = "pwdFiled"
	SortByETAFiled  SortField = "etaFiled"
	SortByI140Filed SortField = "i140Filed"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// ParseSortField validates a query-string sort field. An empty value selects deadline.
func ParseSortField(raw string) (SortField, error) {
	switch field := SortField(strings.TrimSpace(raw)); field {
	case "":
		return SortByDeadline, nil
	case SortByDeadline, SortByUpdated, SortByEmployer, SortByStatus, SortByPWDFiled, SortByETAFiled, SortByI140Filed:
		return field, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", raw)
	}
}

// ParseSortDirection validates a query-string direction. An empty value selects asc.
func ParseSortDirection(raw string) (SortDirection, error) {
	switch dir := SortDirection(strings.ToLower(strings.TrimSpace(raw))); dir {
	case "":
		return Asc, nil
	case Asc, Desc:
		return dir, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", raw)
	}
}

// Sort returns a sorted copy of cards; the input is left untouched. Cards
// missing the sort value come after every card that has one, whichever the
// direction. Equal cards keep their relative order.
func Sort(cards []models.CaseCardData, field SortField, dir SortDirection) []models.CaseCardData {
	out := make([]models.CaseCardData, len(cards))
	copy(out, cards)

	key := keyFunc(field)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := key(out[i])
		b, bok := key(out[j])
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		cmp := a.compare(b)
		if dir == Desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// sortKey is either a string or an integer comparable value.
type sortKey struct {
	text    string
	number  int64
	numeric bool
}

func (k sortKey) compare(other sortKey) int {
	if k.numeric {
		switch {
		case k.number < other.number:
			return -1
		case k.number > other.number:
			return 1
		}
		return 0
	}
	return strings.Compare(k.text, other.text)
}

func keyFunc(field SortField) func(models.CaseCardData) (sortKey, bool) {
	switch field {
	case SortByUpdated:
		return func(c models.CaseCardData) (sortKey, bool) { return timeKey(c.Dates.Updated) }
	case SortByEmployer:
		return func(c models.CaseCardData) (sortKey, bool) {
			if strings.TrimSpace(c.EmployerName) == "" {
				return sortKey{}, false
			}
			return sortKey{text: strings.ToLower(c.EmployerName)}, true
		}
	case SortByStatus:
		return func(c models.CaseCardData) (sortKey, bool) {
			rank := c.CaseStatus.Rank()
			if rank < 0 {
				return sortKey{}, false
			}
			return sortKey{number: int64(rank), numeric: true}, true
		}
	case SortByPWDFiled:
		return func(c models.CaseCardData) (sortKey, bool) { return dateKey(c.Dates.PWDFiled) }
	case SortByETAFiled:
		return func(c models.CaseCardData) (sortKey, bool) { return dateKey(c.Dates.ETAFiled) }
	case SortByI140Filed:
		return func(c models.CaseCardData) (sortKey, bool) { return dateKey(c.Dates.I140Filed) }
	default:
		return func(c models.CaseCardData) (sortKey, bool) { return dateKey(c.NextDeadline) }
	}
}

// Unparseable dates count as missing.
func dateKey(v *string) (sortKey, bool) {
	if v == nil {
		return sortKey{}, false
	}
	t, err := deadline.ParseDate(*v)
	if err != nil {
		return sortKey{}, false
	}
	return timeKey(t)
}

func timeKey(t time.Time) (sortKey, bool) {
	if t.IsZero() {
		return sortKey{}, false
	}
	return sortKey{number: t.UnixNano(), numeric: true}, true
}
