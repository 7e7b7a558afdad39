package search

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jwalitptl/ayusutra-api/internal/model"
)

// Sentinels a client may send to mean "no constraint".
const (
	AllSpecialties = "all"
	DefaultSort    = "default"
)

// ParseSortKey maps a client value onto a SortKey. Unknown keys are an error.
func ParseSortKey(raw string) (model.SortKey, error) {
	switch key := strings.ToLower(strings.TrimSpace(raw)); key {
	case "", DefaultSort:
		return model.SortNone, nil
	case string(model.SortDistance), string(model.SortRating), string(model.SortName):
		return model.SortKey(key), nil
	default:
		return model.SortNone, fmt.Errorf("unknown sort key %q", raw)
	}
}

// NormalizeSpecialty maps the "all" sentinel to the empty constraint.
func NormalizeSpecialty(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), AllSpecialties) {
		return ""
	}
	return raw
}

// Apply filters and orders records. The input is never modified and the
// result is always a fresh slice.
func Apply(records []model.Doctor, c model.SearchCriteria) []model.Doctor {
	query := strings.ToLower(c.Query)

	out := make([]model.Doctor, 0, len(records))
	for _, doc := range records {
		if !matchesQuery(doc, query) {
			continue
		}
		if c.Specialty != "" && doc.Specialty != c.Specialty {
			continue
		}
		out = append(out, doc)
	}

	switch c.Sort {
	case model.SortDistance:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Distance < out[j].Distance
		})
	case model.SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	case model.SortName:
		// collate.Collator is not safe for concurrent use.
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	}

	return out
}

func matchesQuery(doc model.Doctor, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(doc.Name), query) ||
		strings.Contains(strings.ToLower(doc.Specialty), query) ||
		strings.Contains(strings.ToLower(doc.Hospital), query)
}

// Specialties returns the distinct specialties of records, ascending.
func Specialties(records []model.Doctor) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, doc := range records {
		if _, ok := seen[doc.Specialty]; ok {
			continue
		}
		seen[doc.Specialty] = struct{}{}
		out = append(out, doc.Specialty)
	}
	sort.Strings(out)
	return out
}

// Summary renders the results line, e.g. `Showing 1 of 6 doctors for "card" in Cardiologist`.
func Summary(shown, total int, c model.SearchCriteria) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d doctors", shown, total)
	if c.Query != "" {
		fmt.Fprintf(&b, " for \"%s\"", c.Query)
	}
	if c.Specialty != "" {
		fmt.Fprintf(&b, " in %s", c.Specialty)
	}
	return b.String()
}
