package wizard

import "commandcenter/internal/domain"

// Snapshot is a read-only copy of the wizard for views and the JSON API.
type Snapshot struct {
	Step    Step                              `json:"step"`
	Tool    domain.Tool                       `json:"selectedTool,omitempty"`
	Error   string                            `json:"error,omitempty"`
	Result  *domain.ScrapingResult            `json:"results"`
	Loading bool                              `json:"loading"`
	Filters map[domain.Tool]map[string]string `json:"filters"`
	Fields  map[domain.Tool][]Field           `json:"fields"`
}

func (w *Wizard) snapshotLocked() Snapshot {
	s := Snapshot{
		Step:    w.state.Step(),
		Loading: w.loading,
		Filters: map[domain.Tool]map[string]string{
			domain.ToolApollo:        w.apollo.Map(),
			domain.ToolApify:         w.apify.Map(),
			domain.ToolPhantombuster: w.phantombuster.Map(),
		},
		Fields: map[domain.Tool][]Field{
			domain.ToolApollo:        w.apollo.Fields(),
			domain.ToolApify:         w.apify.Fields(),
			domain.ToolPhantombuster: w.phantombuster.Fields(),
		},
	}
	switch st := w.state.(type) {
	case Filters:
		s.Tool = st.tool
		s.Error = st.err
	case Results:
		s.Tool = st.tool
		res := st.result
		res.Leads = append([]domain.Lead(nil), st.result.Leads...)
		s.Result = &res
	}
	return s
}
