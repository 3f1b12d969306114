package ui

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"commandcenter/internal/domain"
	"commandcenter/internal/wizard"
)

var toolBlurbs = map[domain.Tool]string{
	domain.ToolApollo:        "B2B contacts with verified emails from the Apollo.io database.",
	domain.ToolApify:         "Search-engine and directory scraping through Apify actors.",
	domain.ToolPhantombuster: "LinkedIn search exports through PhantomBuster.",
}

// WizardView renders the lead scraper for whatever step s is in.
func WizardView(s wizard.Snapshot) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="wizard"`)
		h.attr("data-step", string(s.Step))
		h.raw(`>`)
		switch s.Step {
		case wizard.StepFilters:
			h.render(filtersStep(s))
		case wizard.StepResults:
			h.render(resultsStep(s))
		default:
			h.render(toolStep())
		}
		h.raw(`</div>`)
	})
}

func toolStep() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<p class="wizard-hint">Choose a lead source.</p><div class="tool-grid">`)
		for _, t := range domain.Tools {
			h.render(Card(t.Label(), Group(
				Text(toolBlurbs[t]),
				PostButton("/ui/wizard/tool", ButtonProps{Label: "Use " + t.Label(), Name: "tool", Value: string(t), Variant: VariantPrimary}),
			)))
		}
		h.raw(`</div>`)
	})
}

func filtersStep(s wizard.Snapshot) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<form method="post" action="/ui/wizard/start" class="filters">`)
		h.raw(`<input type="hidden" name="tool"`)
		h.attr("value", string(s.Tool))
		h.raw(`><h4>`)
		h.text(s.Tool.Label() + " filters")
		h.raw(`</h4>`)

		values := s.Filters[s.Tool]
		for _, f := range s.Fields[s.Tool] {
			h.render(filterField(f, values[f.Key]))
		}

		if s.Error != "" {
			h.raw(`<p class="form-error" role="alert">`)
			h.text(s.Error)
			h.raw(`</p>`)
		}

		label := "Start Scraping"
		if s.Loading {
			label = "Scraping..."
		}
		h.raw(`<div class="form-actions">`)
		h.render(Button(ButtonProps{Label: "Back", Action: "/ui/wizard/reset", Variant: VariantGhost}))
		h.render(Button(ButtonProps{Label: label, Variant: VariantPrimary, Disabled: s.Loading}))
		h.raw(`</div></form>`)
	})
}

func filterField(f wizard.Field, value string) templ.Component {
	if f.Kind == wizard.KindSelect {
		opts := make([]SelectOption, 0, len(f.Options))
		for _, o := range f.Options {
			opts = append(opts, SelectOption{Value: o.Value, Label: o.Label})
		}
		return Select(SelectProps{Name: f.Key, Label: f.Label, Value: value, Options: opts})
	}
	return Input(InputProps{Name: f.Key, Label: f.Label, Value: value, Placeholder: f.Placeholder, Secret: f.Sensitive})
}

func resultsStep(s wizard.Snapshot) templ.Component {
	return component(func(h *htmlWriter) {
		var leads []domain.Lead
		count := 0
		if s.Result != nil {
			leads = s.Result.Leads
			count = s.Result.Count
		}
		h.raw(`<div class="results-header"><h4>`)
		h.text(fmt.Sprintf("%d leads found via %s", count, s.Tool.Label()))
		h.raw(`</h4>`)
		h.render(PostButton("/ui/wizard/reset", ButtonProps{Label: "New Search"}))
		h.raw(`</div>`)

		if len(leads) == 0 {
			h.raw(`<p class="empty">No leads matched these filters.</p>`)
			return
		}
		h.raw(`<div class="lead-list">`)
		for _, l := range leads {
			h.render(LeadCard(l))
		}
		h.raw(`</div>`)
	})
}

func LeadCard(l domain.Lead) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<article class="lead-card"><header><h5 class="lead-name">`)
		h.text(l.FullName)
		h.raw(`</h5>`)
		if l.Score != nil {
			h.render(Badge(strconv.Itoa(*l.Score), scoreVariant(*l.Score)))
		}
		h.raw(`</header>`)
		if hl := l.Headline(); hl != "" {
			h.raw(`<p class="lead-headline">`)
			h.text(hl)
			h.raw(`</p>`)
		}
		h.raw(`<dl class="lead-contact">`)
		for _, kv := range [][2]string{{"Email", l.Email}, {"Phone", l.Phone}, {"Location", l.Location}} {
			if kv[1] == "" {
				continue
			}
			h.raw(`<dt>`)
			h.text(kv[0])
			h.raw(`</dt><dd>`)
			h.text(kv[1])
			h.raw(`</dd>`)
		}
		h.raw(`</dl></article>`)
	})
}

func scoreVariant(score int) Variant {
	switch {
	case score >= 50:
		return VariantPrimary
	case score >= 20:
		return VariantDefault
	default:
		return VariantGhost
	}
}
