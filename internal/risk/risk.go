// Package risk turns an extracted history into per-file defect risk scores.
//
// Every commit whose message matches the bug-fix pattern contributes a
// time-decayed weight to each file it touched: recent fixes weigh close to
// one, fixes from the start of the history close to zero. Only files present
// in the newest snapshot accumulate a score.
package risk

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/faultline-sh/faultline/internal/model"
)

// DefaultPattern is the bug-fix message heuristic used when no custom pattern
// is configured.
const DefaultPattern = `bug|fix`

// Weight curve constants: the logistic is centered on the newest history
// point and falls off steeply toward the repository's creation.
const (
	steepness = 12
	midpoint  = 12
)

// Analyzer scores files against a commit history.
type Analyzer struct {
	fixRe *regexp.Regexp
}

// NewAnalyzer compiles the bug-fix message pattern. Matching is case
// insensitive; an empty pattern falls back to DefaultPattern.
func NewAnalyzer(pattern string) (*Analyzer, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	fixRe, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile bug-fix pattern: %w", err)
	}

	return &Analyzer{fixRe: fixRe}, nil
}

// IsFix reports whether a commit message matches the bug-fix heuristic.
func (a *Analyzer) IsFix(message string) bool {
	return a.fixRe.MatchString(message)
}

// Weight maps a normalized timestamp x in [0,1] onto a logistic decay weight:
// 1/(1+e^(-12x+12)). Weight(1) is exactly 0.5, Weight(0) is near zero.
func Weight(x float64) float64 {
	return 1 / (1 + math.Exp(-steepness*x+midpoint))
}

// Scores accumulates the time-weighted risk of every current file. Every file
// of the newest snapshot is present in the result, files never touched by a
// fix at score zero.
func (a *Analyzer) Scores(repo *model.Repository) map[string]float64 {
	scores := make(map[string]float64, len(repo.Files))
	for path := range repo.Files {
		scores[path] = 0
	}

	span := repo.EvaluatedAt.Sub(repo.CreatedAt)

	for _, commit := range repo.Commits {
		if !a.IsFix(commit.Message) {
			continue
		}

		// A single-commit history has no span; the lone commit sits at the
		// newest point.
		x := 1.0
		if span > 0 {
			x = float64(commit.Timestamp.Sub(repo.CreatedAt)) / float64(span)
		}

		weight := Weight(x)

		for path := range commit.TouchedPaths() {
			if _, current := scores[path]; current {
				scores[path] += weight
			}
		}
	}

	return scores
}

// Score is one ranked entry.
type Score struct {
	Path  string  `json:"path" yaml:"path"`
	Value float64 `json:"score" yaml:"score"`
}

// Ranking orders scores descending, ties broken by path, for rendering.
func Ranking(scores map[string]float64) []Score {
	ranked := make([]Score, 0, len(scores))
	for path, value := range scores {
		ranked = append(ranked, Score{Path: path, Value: value})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}

		return ranked[i].Path < ranked[j].Path
	})

	return ranked
}
