// internal/rank/yaml_scorer.go
package rank

import (
	"strings"

	"commandcenter/internal/config"
	"commandcenter/internal/domain"
)

// YAMLScorer scores a lead's title against the configured rules. Scores are
// clamped to 0..100.
type YAMLScorer struct {
	Cfg config.Config
}

func (s YAMLScorer) Score(lead domain.Lead) (int, []string) {
	text := strings.ToLower(lead.Title)

	score := 0
	var tags []string

	for _, r := range s.Cfg.Scoring.TitleRules {
		for _, needle := range r.Any {
			n := strings.ToLower(needle)
			if containsWord(text, n) {
				score += r.Weight
				tags = append(tags, r.Tag)
				break
			}
		}
	}

	for _, p := range s.Cfg.Scoring.Penalties {
		for _, needle := range p.Any {
			n := strings.ToLower(needle)
			if containsWord(text, n) {
				score += p.Weight
				break
			}
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, uniq(tags)
}

// containsWord matches needle on word boundaries so "vp" does not hit "mvp".
func containsWord(text, needle string) bool {
	if needle == "" {
		return false
	}
	for i := 0; ; {
		j := strings.Index(text[i:], needle)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(needle)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		i = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
