package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/a-h/templ"

	"commandcenter/internal/action"
	"commandcenter/internal/domain"
	"commandcenter/internal/poll"
	"commandcenter/internal/session"
	"commandcenter/internal/wizard"
)

type ActionGroup struct {
	Name    string
	Actions []action.Action
}

// DashboardData is everything one page render needs. Overlay is nil when no
// modal is open.
type DashboardData struct {
	Mode     domain.SystemMode
	Panels   []poll.View
	Groups   []ActionGroup
	InFlight map[string]bool
	Overlay  *action.Action
	Toasts   []session.Toast
	Wizard   wizard.Snapshot
	Now      time.Time
}

func Dashboard(d DashboardData) templ.Component {
	return Layout("Command Center", component(func(h *htmlWriter) {
		h.render(topBar(d.Mode))
		h.render(toastStack(d.Toasts))

		h.raw(`<main class="grid">`)
		h.raw(`<section class="panels">`)
		h.render(PostButton("/ui/queries/refresh", ButtonProps{Label: "Refresh all", Variant: VariantGhost}))
		for _, v := range d.Panels {
			h.render(Panel(v, d.Now))
		}
		h.raw(`</section>`)

		h.raw(`<section class="lead-scraper">`)
		h.render(Card("Lead Scraper", WizardView(d.Wizard)))
		h.raw(`</section>`)

		h.raw(`<section class="actions">`)
		for _, g := range d.Groups {
			h.render(actionGroup(g, d.InFlight))
		}
		h.raw(`</section></main>`)

		if d.Overlay != nil {
			h.render(ActionModal(*d.Overlay, d.Mode, d.InFlight[d.Overlay.ID]))
		}
	}))
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(title)
		h.raw(`</title><style>`, styles, `</style></head><body>`)
		h.render(body)
		h.raw(`</body></html>`)
	})
}

func topBar(mode domain.SystemMode) templ.Component {
	return component(func(h *htmlWriter) {
		v := VariantGhost
		label := "TEST MODE"
		if mode.IsLive() {
			v, label = VariantDanger, "LIVE"
		}
		h.raw(`<header class="top-bar"><h1>Command Center</h1><div class="mode">`)
		h.render(Badge(label, v))
		h.render(PostButton("/ui/mode/toggle", ButtonProps{Label: "Switch to " + string(mode.Other())}))
		h.raw(`</div><nav><a href="/wizard">Lead scraper</a> <a href="/api/runs">Runs</a> <a href="/api/audit">Audit</a></nav></header>`)
	})
}

func toastStack(ts []session.Toast) templ.Component {
	return component(func(h *htmlWriter) {
		if len(ts) == 0 {
			return
		}
		h.raw(`<div class="toasts" aria-live="polite">`)
		for _, t := range ts {
			h.render(Toast(t))
		}
		h.raw(`</div>`)
	})
}

// Panel renders one polled query. Data from an earlier fetch stays visible
// when the latest one failed.
func Panel(v poll.View, now time.Time) templ.Component {
	title := v.Query.Title
	if title == "" {
		title = v.Query.Key
	}
	var aside templ.Component
	switch {
	case !v.Loaded:
		aside = Badge("loading", VariantGhost)
	case v.Entry.Stale:
		aside = Badge("stale", VariantDanger)
	case v.Entry.LastError != "":
		aside = Badge("error", VariantDanger)
	}

	return component(func(h *htmlWriter) {
		h.raw(`<div class="panel"`)
		h.attr("data-query", v.Query.Key)
		h.raw(`>`)
		h.render(CardWith(title, aside, component(func(h *htmlWriter) {
			if v.Entry.LastError != "" {
				h.raw(`<p class="panel-error">`)
				h.text(v.Entry.LastError)
				h.raw(`</p>`)
			}
			if v.Entry.HasData() {
				h.render(dataSummary(v.Entry.Data))
				h.raw(`<p class="panel-meta">`)
				h.text("updated " + ago(now, v.Entry.FetchedAt))
				h.raw(`</p>`)
			} else if v.Loaded && v.Entry.LastError == "" {
				h.raw(`<p class="empty">No data.</p>`)
			}
		})))
		h.raw(`</div>`)
	})
}

const maxSummaryRows = 8

// dataSummary shows the scalar fields of a JSON object, or a short preview
// of anything else.
func dataSummary(raw json.RawMessage) templ.Component {
	return component(func(h *htmlWriter) {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
			keys := make([]string, 0, len(obj))
			for k, v := range obj {
				switch v.(type) {
				case string, float64, bool:
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			if len(keys) > 0 {
				if len(keys) > maxSummaryRows {
					keys = keys[:maxSummaryRows]
				}
				h.raw(`<dl class="metrics">`)
				for _, k := range keys {
					h.raw(`<dt>`)
					h.text(k)
					h.raw(`</dt><dd>`)
					h.text(fmt.Sprint(obj[k]))
					h.raw(`</dd>`)
				}
				h.raw(`</dl>`)
				return
			}
		}

		var buf bytes.Buffer
		if json.Indent(&buf, raw, "", "  ") != nil {
			buf.Reset()
			buf.Write(raw)
		}
		s := buf.String()
		if len(s) > 600 {
			s = truncateRunes(s, 600) + "\n..."
		}
		h.raw(`<pre class="panel-json">`)
		h.text(s)
		h.raw(`</pre>`)
	})
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ago(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if now.IsZero() {
		now = time.Now()
	}
	d := now.Sub(t).Round(time.Second)
	if d < time.Second {
		return "just now"
	}
	return d.String() + " ago"
}

func actionGroup(g ActionGroup, inflight map[string]bool) templ.Component {
	return Card(g.Name, component(func(h *htmlWriter) {
		h.raw(`<div class="action-list">`)
		for _, a := range g.Actions {
			h.render(ActionControl(a, inflight[a.ID]))
		}
		h.raw(`</div>`)
	}))
}

// ActionControl is the dashboard button for one action. Actions with a form
// open their modal; guarded actions carry the confirmation input inline.
func ActionControl(a action.Action, inFlight bool) templ.Component {
	label := a.Label
	if inFlight {
		label += "..."
	}
	variant := VariantDefault
	if a.Guard != action.GuardNone {
		variant = VariantDanger
	}
	btn := ButtonProps{Label: label, Variant: variant, Disabled: inFlight}

	if a.HasForm() {
		return PostButton("/ui/overlay/"+a.ID, btn)
	}
	return component(func(h *htmlWriter) {
		h.raw(`<form method="post" class="action"`)
		h.attr("action", "/ui/actions/"+a.ID)
		h.attr("data-action", a.ID)
		h.raw(`>`)
		h.render(guardInput(a))
		h.render(Button(btn))
		h.raw(`</form>`)
	})
}

func guardInput(a action.Action) templ.Component {
	return component(func(h *htmlWriter) {
		switch a.Guard {
		case action.GuardConfirm:
			h.raw(`<label class="confirm"><input type="checkbox" name="confirmed" value="true" required> Confirm</label>`)
		case action.GuardTypedDelete:
			h.render(Input(InputProps{
				Name:        "typed",
				Label:       fmt.Sprintf("Type %q to confirm", action.TypedDeleteWord),
				Placeholder: action.TypedDeleteWord,
				Required:    true,
			}))
		}
	})
}

// ActionModal is the open overlay for a form-backed action.
func ActionModal(a action.Action, mode domain.SystemMode, inFlight bool) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="overlay" role="dialog" aria-modal="true"`)
		h.attr("data-overlay", a.ID)
		h.raw(`><form method="post" class="modal"`)
		h.attr("action", "/ui/actions/"+a.ID)
		h.raw(`><h2>`)
		h.text(a.Label)
		h.raw(`</h2>`)
		if a.RequireLive && !mode.IsLive() {
			h.raw(`<p class="form-error">Only available in live mode.</p>`)
		}
		for _, f := range a.Fields {
			h.render(Input(InputProps{
				Name:        f.Name,
				Label:       f.Label,
				Placeholder: f.Placeholder,
				Required:    f.Required,
				Multiline:   f.Multiline,
			}))
		}
		h.render(guardInput(a))
		h.raw(`<div class="form-actions">`)
		h.render(Button(ButtonProps{Label: "Cancel", Action: "/ui/overlay/close", Variant: VariantGhost}))
		h.render(Button(ButtonProps{Label: "Submit", Variant: VariantPrimary, Disabled: inFlight}))
		h.raw(`</div></form></div>`)
	})
}

// WizardPage is the standalone lead scraper page.
func WizardPage(mode domain.SystemMode, s wizard.Snapshot, toasts []session.Toast) templ.Component {
	return Layout("Lead Scraper", Group(
		topBar(mode),
		toastStack(toasts),
		component(func(h *htmlWriter) {
			h.raw(`<main class="single">`)
			h.render(Card("Lead Scraper", WizardView(s)))
			h.raw(`</main>`)
		}),
	))
}

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#0f1115;color:#e6e6e6}
.top-bar{display:flex;gap:1rem;align-items:center;justify-content:space-between;padding:.75rem 1.5rem;background:#161a22}
.grid{display:grid;grid-template-columns:2fr 1fr;gap:1rem;padding:1rem 1.5rem}
.single{max-width:960px;margin:1rem auto}
.panels{display:grid;grid-template-columns:repeat(auto-fill,minmax(240px,1fr));gap:.75rem}
.card{background:#1b2030;border-radius:8px;padding:.75rem 1rem;margin-bottom:.75rem}
.card-header{display:flex;justify-content:space-between;align-items:center}
.btn{border:0;border-radius:6px;padding:.4rem .8rem;cursor:pointer;background:#2c3446;color:inherit}
.btn-primary{background:#3b6ef5}.btn-danger{background:#b83232}.btn-ghost{background:transparent;border:1px solid #39415a}
.btn[disabled]{opacity:.5;cursor:not-allowed}
.badge{border-radius:999px;padding:.1rem .6rem;font-size:.75rem;background:#2c3446}
.badge-danger{background:#b83232}.badge-primary{background:#3b6ef5}
.toasts{position:fixed;right:1rem;top:4rem;display:flex;flex-direction:column;gap:.5rem;z-index:10}
.toast{padding:.5rem .75rem;border-radius:6px;background:#2c3446}
.toast-success{background:#1f6f43}.toast-error{background:#8f2525}.toast-warning{background:#8a6a12}
.toast-blocking{outline:2px solid #ffd25a}
.overlay{position:fixed;inset:0;background:rgba(0,0,0,.6);display:flex;align-items:center;justify-content:center}
.modal{background:#1b2030;padding:1.25rem;border-radius:10px;min-width:360px}
.field{display:flex;flex-direction:column;gap:.25rem;margin-bottom:.5rem}
.form-error,.panel-error{color:#ff8080}
.inline{display:inline}
.lead-card{border:1px solid #2c3446;border-radius:8px;padding:.5rem .75rem;margin-bottom:.5rem}
.panel-json{white-space:pre-wrap;font-size:.75rem;max-height:12rem;overflow:auto}
`
