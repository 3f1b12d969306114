package rank

import "commandcenter/internal/domain"

type Scorer interface {
	Score(lead domain.Lead) (score int, tags []string)
}
