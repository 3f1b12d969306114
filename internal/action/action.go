package action

import "errors"

type Guard int

const (
	GuardNone Guard = iota
	GuardConfirm
	// GuardTypedDelete requires the user to type "delete".
	GuardTypedDelete
)

const TypedDeleteWord = "delete"

func (g Guard) String() string {
	switch g {
	case GuardConfirm:
		return "confirm"
	case GuardTypedDelete:
		return "typed-delete"
	default:
		return "none"
	}
}

func (g Guard) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Required    bool   `json:"required,omitempty"`
	Multiline   bool   `json:"multiline,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Action is one dashboard button bound to a backend write.
type Action struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Group       string         `json:"group"`
	Endpoint    string         `json:"endpoint"`
	Guard       Guard          `json:"guard"`
	RequireLive bool           `json:"requireLive,omitempty"`
	Fields      []Field        `json:"fields,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	Success     string         `json:"-"`
}

// HasForm reports whether the action collects input in an overlay first.
func (a Action) HasForm() bool { return len(a.Fields) > 0 }

func (a Action) successText() string {
	if a.Success != "" {
		return a.Success
	}
	return a.Label + " completed"
}

func (a Action) missingFields(form map[string]string) []string {
	var missing []string
	for _, f := range a.Fields {
		if f.Required && form[f.Name] == "" {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInFlight      = errors.New("action already in flight")
)
