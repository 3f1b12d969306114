package poll

import (
	"errors"

	"commandcenter/internal/domain"
)

var ErrUnknownQuery = errors.New("unknown query")

// View pairs a query with its cached state for one mode. Loaded is false
// until the first fetch attempt lands.
type View struct {
	Query  Query `json:"query"`
	Entry  Entry `json:"entry"`
	Loaded bool  `json:"loaded"`
}

func (p *Poller) Views(mode domain.SystemMode) []View {
	qs := p.Registry.All()
	out := make([]View, 0, len(qs))
	for _, q := range qs {
		e, ok := p.Cache.Get(q.Key, mode)
		out = append(out, View{Query: q, Entry: e, Loaded: ok})
	}
	return out
}

func (p *Poller) View(key string, mode domain.SystemMode) (View, error) {
	q, ok := p.Registry.Get(key)
	if !ok {
		return View{}, ErrUnknownQuery
	}
	e, loaded := p.Cache.Get(key, mode)
	return View{Query: q, Entry: e, Loaded: loaded}, nil
}
