package ui

import (
	"github.com/a-h/templ"

	"commandcenter/internal/session"
)

func Card(title string, body templ.Component) templ.Component {
	return CardWith(title, nil, body)
}

// CardWith renders a card whose header carries extra content on the right,
// e.g. a status badge.
func CardWith(title string, aside, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="card">`)
		if title != "" || aside != nil {
			h.raw(`<header class="card-header"><h3 class="card-title">`)
			h.text(title)
			h.raw(`</h3>`)
			h.render(aside)
			h.raw(`</header>`)
		}
		h.raw(`<div class="card-body">`)
		h.render(body)
		h.raw(`</div></section>`)
	})
}

type Variant string

const (
	VariantDefault Variant = "default"
	VariantPrimary Variant = "primary"
	VariantDanger  Variant = "danger"
	VariantGhost   Variant = "ghost"
)

type ButtonProps struct {
	Label    string
	Name     string
	Value    string
	Action   string
	Variant  Variant
	Disabled bool
}

// Button renders a submit button. A non-empty Action posts the enclosing
// form (or a standalone one) to that URL.
func Button(p ButtonProps) templ.Component {
	return component(func(h *htmlWriter) {
		v := p.Variant
		if v == "" {
			v = VariantDefault
		}
		h.raw(`<button type="submit"`)
		h.attr("class", "btn btn-"+string(v))
		if p.Action != "" {
			h.attr("formaction", p.Action)
			h.attr("formmethod", "post")
		}
		if p.Name != "" {
			h.attr("name", p.Name)
			h.attr("value", p.Value)
		}
		h.flag("disabled", p.Disabled)
		h.raw(`>`)
		h.text(p.Label)
		h.raw(`</button>`)
	})
}

// PostButton is a button in its own form.
func PostButton(action string, p ButtonProps) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<form method="post" class="inline"`)
		h.attr("action", action)
		h.raw(`>`)
		p.Action = ""
		h.render(Button(p))
		h.raw(`</form>`)
	})
}

type InputProps struct {
	Name        string
	Label       string
	Value       string
	Placeholder string
	Required    bool
	Multiline   bool
	Secret      bool
}

func Input(p InputProps) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<label class="field"><span class="field-label">`)
		h.text(p.Label)
		h.raw(`</span>`)
		if p.Multiline {
			h.raw(`<textarea rows="4"`)
			h.attr("name", p.Name)
			if p.Placeholder != "" {
				h.attr("placeholder", p.Placeholder)
			}
			h.flag("required", p.Required)
			h.raw(`>`)
			h.text(p.Value)
			h.raw(`</textarea>`)
		} else {
			if p.Secret {
				h.raw(`<input type="password" autocomplete="off"`)
			} else {
				h.raw(`<input type="text"`)
			}
			h.attr("name", p.Name)
			h.attr("value", p.Value)
			if p.Placeholder != "" {
				h.attr("placeholder", p.Placeholder)
			}
			h.flag("required", p.Required)
			h.raw(`>`)
		}
		h.raw(`</label>`)
	})
}

type SelectOption struct {
	Value string
	Label string
}

type SelectProps struct {
	Name    string
	Label   string
	Value   string
	Options []SelectOption
}

func Select(p SelectProps) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<label class="field"><span class="field-label">`)
		h.text(p.Label)
		h.raw(`</span><select`)
		h.attr("name", p.Name)
		h.raw(`>`)
		for _, o := range p.Options {
			h.raw(`<option`)
			h.attr("value", o.Value)
			h.flag("selected", o.Value == p.Value)
			h.raw(`>`)
			h.text(o.Label)
			h.raw(`</option>`)
		}
		h.raw(`</select></label>`)
	})
}

func Badge(text string, v Variant) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<span`)
		h.attr("class", "badge badge-"+string(v))
		h.raw(`>`)
		h.text(text)
		h.raw(`</span>`)
	})
}

// Toast renders one notification with a dismiss control.
func Toast(t session.Toast) templ.Component {
	return component(func(h *htmlWriter) {
		cls := "toast toast-" + string(t.Level)
		if t.Blocking {
			cls += " toast-blocking"
		}
		h.raw(`<div role="status"`)
		h.attr("class", cls)
		h.attr("data-toast-id", t.ID)
		h.raw(`><p class="toast-message">`)
		h.text(t.Message)
		h.raw(`</p>`)
		h.render(PostButton("/ui/toasts/"+t.ID+"/dismiss", ButtonProps{Label: "Dismiss", Variant: VariantGhost}))
		h.raw(`</div>`)
	})
}
