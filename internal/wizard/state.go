package wizard

import "commandcenter/internal/domain"

type Step string

const (
	StepToolSelection Step = "tool-selection"
	StepFilters       Step = "filters"
	StepResults       Step = "results"
)

// State is the wizard's current step. The variants carry exactly the data
// that step owns, so a results state always has a tool and a result.
type State interface {
	Step() Step
	isState()
}

type ToolSelection struct{}

func (ToolSelection) Step() Step { return StepToolSelection }
func (ToolSelection) isState()   {}

type Filters struct {
	tool domain.Tool
	err  string
}

func (Filters) Step() Step          { return StepFilters }
func (Filters) isState()            {}
func (s Filters) Tool() domain.Tool { return s.tool }
func (s Filters) Error() string     { return s.err }

type Results struct {
	tool   domain.Tool
	result domain.ScrapingResult
}

func (Results) Step() Step                      { return StepResults }
func (Results) isState()                        {}
func (s Results) Tool() domain.Tool             { return s.tool }
func (s Results) Result() domain.ScrapingResult { return s.result }
