package domain

import "strings"

type Lead struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Score    *int   `json:"score,omitempty"`
}

// Headline renders "<Title> at <Company>" for lead cards.
func (l Lead) Headline() string {
	title := strings.TrimSpace(l.Title)
	company := strings.TrimSpace(l.Company)
	switch {
	case title != "" && company != "":
		return title + " at " + company
	case title != "":
		return title
	default:
		return company
	}
}

type ScrapingResult struct {
	Success bool              `json:"success"`
	Leads   []Lead            `json:"leads"`
	Count   int               `json:"count"`
	Filters map[string]string `json:"filters"`
}
