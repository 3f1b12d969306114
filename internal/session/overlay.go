package session

// Overlay is the single modal a session may have open. The zero value of
// the interface (nil) is never stored; NoOverlay stands for "closed".
type Overlay interface {
	overlay()
}

type NoOverlay struct{}

// ActionModal collects form input for one action before it is dispatched.
type ActionModal struct {
	ActionID string
}

func (NoOverlay) overlay()   {}
func (ActionModal) overlay() {}

// OverlayView is the JSON shape of an Overlay.
type OverlayView struct {
	Kind     string `json:"kind"`
	ActionID string `json:"actionId,omitempty"`
}

func ViewOf(o Overlay) OverlayView {
	switch v := o.(type) {
	case ActionModal:
		return OverlayView{Kind: "action", ActionID: v.ActionID}
	default:
		return OverlayView{Kind: "none"}
	}
}
