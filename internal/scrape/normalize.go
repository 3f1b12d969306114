package scrape

import (
	"strings"

	"commandcenter/internal/domain"
	"commandcenter/internal/rank"
)

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// normalizeLocation collapses whitespace and drops repeated comma parts
// ("Austin, TX, TX" -> "Austin, TX").
func normalizeLocation(loc string) string {
	loc = normalizeText(loc)
	if loc == "" {
		return ""
	}

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = normalizeText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// NormalizeLead cleans display fields and fills Score from scorer when the
// backend did not send one.
func NormalizeLead(l domain.Lead, scorer rank.Scorer) domain.Lead {
	l.FullName = normalizeText(l.FullName)
	l.Email = strings.ToLower(normalizeText(l.Email))
	l.Phone = normalizeText(l.Phone)
	l.Company = normalizeText(l.Company)
	l.Title = normalizeText(l.Title)
	l.Location = normalizeLocation(l.Location)

	if l.Score == nil && scorer != nil {
		s, _ := scorer.Score(l)
		l.Score = &s
	}
	return l
}
