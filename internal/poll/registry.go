package poll

import (
	"fmt"
	"time"

	"commandcenter/internal/config"
)

// Query is one polled read view: a backend path refreshed on a fixed interval.
type Query struct {
	Key      string        `json:"key"`
	Title    string        `json:"title"`
	Path     string        `json:"path"`
	Interval time.Duration `json:"interval"`
}

type Registry struct {
	list  []Query
	byKey map[string]Query
}

func NewRegistry(specs []config.QuerySpec) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Query, len(specs))}
	for _, s := range specs {
		if s.Key == "" || s.Path == "" || s.IntervalSeconds <= 0 {
			return nil, fmt.Errorf("query %q: key, path and interval are required", s.Key)
		}
		if _, dup := r.byKey[s.Key]; dup {
			return nil, fmt.Errorf("query %q declared twice", s.Key)
		}
		title := s.Title
		if title == "" {
			title = s.Key
		}
		q := Query{Key: s.Key, Title: title, Path: s.Path, Interval: s.Interval()}
		r.list = append(r.list, q)
		r.byKey[q.Key] = q
	}
	return r, nil
}

func (r *Registry) Get(key string) (Query, bool) {
	q, ok := r.byKey[key]
	return q, ok
}

func (r *Registry) All() []Query {
	return append([]Query(nil), r.list...)
}
