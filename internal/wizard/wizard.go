package wizard

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"commandcenter/internal/backend"
	"commandcenter/internal/domain"
	"commandcenter/internal/scrape"
)

var (
	ErrIllegalTransition = errors.New("wizard: illegal transition")
	ErrBusy              = errors.New("wizard: scrape already in progress")
)

const fallbackScrapeError = "Failed to start scraping. Please try again."

// Wizard is the three-step lead scraper flow:
// tool-selection -> filters -> results, with Reset back to the start.
type Wizard struct {
	mu      sync.Mutex
	scraper scrape.Scraper
	state   State
	loading bool
	gen     uint64

	apollo        ApolloFilters
	apify         ApifyFilters
	phantombuster PhantombusterFilters
}

func New(s scrape.Scraper) *Wizard {
	return &Wizard{
		scraper:       s,
		state:         ToolSelection{},
		apollo:        DefaultApolloFilters(),
		apify:         DefaultApifyFilters(),
		phantombuster: DefaultPhantombusterFilters(),
	}
}

// SelectTool moves tool-selection -> filters and records the tool.
func (w *Wizard) SelectTool(tool domain.Tool) error {
	if _, err := domain.ParseTool(string(tool)); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.state.(ToolSelection); !ok {
		return fmt.Errorf("%w: select tool from %s", ErrIllegalTransition, w.state.Step())
	}
	w.gen++
	w.state = Filters{tool: tool}
	return nil
}

// SetFilter updates one field of one tool's filters. Other tools' filters
// are never touched.
func (w *Wizard) SetFilter(tool domain.Tool, field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	fs, err := w.filterSet(tool)
	if err != nil {
		return err
	}
	return fs.Set(field, value)
}

// SetFilters applies several fields of one tool. Either every field is set
// or, when any key is unknown, none is.
func (w *Wizard) SetFilters(tool domain.Tool, values map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	fs, err := w.filterSet(tool)
	if err != nil {
		return err
	}
	known := make(map[string]bool)
	for _, f := range fs.Fields() {
		known[f.Key] = true
	}
	keys := slices.Sorted(maps.Keys(values))
	for _, k := range keys {
		if !known[k] {
			return unknownField(tool, k)
		}
	}
	for _, k := range keys {
		if err := fs.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// StartScraping issues a single scrape for the selected tool. It is legal
// only on the filters step. A successful reply moves to results; any failure
// keeps the filters step and records the message. The returned error is
// reserved for misuse (wrong step, scrape already running).
func (w *Wizard) StartScraping(ctx context.Context) (Snapshot, error) {
	w.mu.Lock()
	st, ok := w.state.(Filters)
	if !ok {
		snap := w.snapshotLocked()
		w.mu.Unlock()
		return snap, fmt.Errorf("%w: start scraping from %s", ErrIllegalTransition, w.state.Step())
	}
	if w.loading {
		snap := w.snapshotLocked()
		w.mu.Unlock()
		return snap, ErrBusy
	}
	fs, _ := w.filterSet(st.tool)
	filters := fs.Map()
	gen := w.gen
	w.loading = true
	w.state = Filters{tool: st.tool}
	w.mu.Unlock()

	res, err := w.scraper.Scrape(ctx, st.tool, filters)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false

	// Reset while the call was in flight: the reply belongs to a flow the
	// user already left.
	if gen != w.gen {
		return w.snapshotLocked(), nil
	}

	if err != nil || !res.Success {
		w.state = Filters{tool: st.tool, err: scrapeErrorText(err)}
		return w.snapshotLocked(), nil
	}
	if res.Filters == nil {
		res.Filters = domain.RedactFilters(filters)
	}
	w.state = Results{tool: st.tool, result: res}
	return w.snapshotLocked(), nil
}

// Reset returns to tool-selection and clears tool, results and error.
// Filter values survive so a new search starts from the last form.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	w.state = ToolSelection{}
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Wizard) filterSet(tool domain.Tool) (FilterSet, error) {
	switch tool {
	case domain.ToolApollo:
		return &w.apollo, nil
	case domain.ToolApify:
		return &w.apify, nil
	case domain.ToolPhantombuster:
		return &w.phantombuster, nil
	}
	return nil, fmt.Errorf("unknown scraping tool %q", tool)
}

func scrapeErrorText(err error) string {
	var f *backend.Failure
	if errors.As(err, &f) {
		if msg := strings.TrimSpace(f.Message); msg != "" {
			return msg
		}
	}
	return fallbackScrapeError
}
