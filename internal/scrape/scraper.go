package scrape

import (
	"context"
	"encoding/json"
	"fmt"

	"commandcenter/internal/backend"
	"commandcenter/internal/domain"
	"commandcenter/internal/rank"
)

// Scraper runs one lead search with the given tool and filters.
type Scraper interface {
	Scrape(ctx context.Context, tool domain.Tool, filters map[string]string) (domain.ScrapingResult, error)
}

// Poster is the slice of backend.Client the scraper needs.
type Poster interface {
	PostJSON(ctx context.Context, path string, payload any) (backend.Result, error)
}

// BackendScraper delegates the search to POST /api/scraping/{tool}.
type BackendScraper struct {
	Backend Poster
	Scorer  rank.Scorer
}

type scrapeRequest struct {
	Filters map[string]string `json:"filters"`
}

type scrapeResponse struct {
	Success bool              `json:"success"`
	Leads   []domain.Lead     `json:"leads"`
	Count   *int              `json:"count"`
	Filters map[string]string `json:"filters"`
}

func Path(tool domain.Tool) string {
	return "/api/scraping/" + string(tool)
}

func (s BackendScraper) Scrape(ctx context.Context, tool domain.Tool, filters map[string]string) (domain.ScrapingResult, error) {
	if _, err := domain.ParseTool(string(tool)); err != nil {
		return domain.ScrapingResult{}, err
	}
	if filters == nil {
		filters = map[string]string{}
	}

	res, err := s.Backend.PostJSON(ctx, Path(tool), scrapeRequest{Filters: filters})
	if err != nil {
		return domain.ScrapingResult{}, err
	}

	var body scrapeResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return domain.ScrapingResult{}, &backend.Failure{Status: res.Status, Message: "Unexpected response from scraping service", Err: fmt.Errorf("decode scrape response: %w", err)}
	}
	// Only an explicit success:true counts for a scrape.
	if !body.Success {
		msg := res.Error
		if msg == "" {
			msg = res.Message
		}
		return domain.ScrapingResult{}, &backend.Failure{Status: res.Status, Message: msg}
	}

	out := domain.ScrapingResult{
		Success: true,
		Leads:   make([]domain.Lead, 0, len(body.Leads)),
		Filters: domain.RedactFilters(body.Filters),
	}
	for _, l := range body.Leads {
		out.Leads = append(out.Leads, NormalizeLead(l, s.Scorer))
	}
	out.Count = len(out.Leads)
	if body.Count != nil {
		out.Count = *body.Count
	}
	if len(body.Filters) == 0 {
		out.Filters = domain.RedactFilters(filters)
	}
	return out, nil
}
