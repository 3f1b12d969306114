package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"commandcenter/internal/config"
	"commandcenter/internal/domain"
)

func TestYAMLScorer(t *testing.T) {
	s := YAMLScorer{Cfg: config.Default()}

	score, tags := s.Score(domain.Lead{Title: "CEO & Founder"})
	assert.Equal(t, 40, score)
	assert.Equal(t, []string{"executive"}, tags)

	score, tags = s.Score(domain.Lead{Title: "VP of Sales"})
	assert.Equal(t, 25, score)
	assert.Equal(t, []string{"leadership"}, tags)

	score, _ = s.Score(domain.Lead{Title: "MVP Engineer"})
	assert.Equal(t, 0, score)

	score, _ = s.Score(domain.Lead{Title: "Junior Marketing Assistant"})
	assert.Equal(t, 0, score, "penalties never push below zero")
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("head of growth", "head of"))
	assert.True(t, containsWord("sales lead", "lead"))
	assert.False(t, containsWord("leadership", "lead"))
	assert.False(t, containsWord("anything", ""))
}
