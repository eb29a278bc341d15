package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultline-sh/faultline/internal/model"
)

func TestWeight_Curve(t *testing.T) {
	t.Parallel()

	// Near zero at the start of the history, exactly one half at the newest
	// point, saturating toward one beyond it.
	assert.Less(t, Weight(0), 0.001)
	assert.InDelta(t, 0.5, Weight(1), 1e-12)
	assert.Greater(t, Weight(2), 0.99)
}

func TestWeight_Monotonic(t *testing.T) {
	t.Parallel()

	prev := Weight(0)
	for x := 0.05; x <= 1.0; x += 0.05 {
		w := Weight(x)
		assert.Greater(t, w, prev)
		prev = w
	}
}

func TestNewAnalyzer_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewAnalyzer(`fix[`)
	require.Error(t, err)
}

func TestIsFix_CaseInsensitive(t *testing.T) {
	t.Parallel()

	analyzer, err := NewAnalyzer("")
	require.NoError(t, err)

	assert.True(t, analyzer.IsFix("Fix NPE in parser"))
	assert.True(t, analyzer.IsFix("BUGFIX: off by one"))
	assert.True(t, analyzer.IsFix("debug output removed")) // Substring match is intentional.
	assert.False(t, analyzer.IsFix("add dark mode"))
}

func testRepo(commits ...*model.Commit) *model.Repository {
	created := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	repo := &model.Repository{
		Commits:     commits,
		CreatedAt:   created,
		EvaluatedAt: created.AddDate(0, 0, 10),
		Files:       map[string]struct{}{"src/Calc.java": {}, "src/Api.java": {}},
	}

	return repo
}

func touching(message string, offsetDays int, paths ...string) *model.Commit {
	created := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	diffs := make([]model.Diff, 0, len(paths))
	for _, path := range paths {
		diffs = append(diffs, model.FileDiff{PathA: path, PathB: path, Op: model.OpModified})
	}

	return &model.Commit{
		ID:        "c",
		Message:   message,
		Timestamp: created.AddDate(0, 0, offsetDays),
		Diffs:     diffs,
	}
}

func TestScores_FixAtNewestPointScoresHalf(t *testing.T) {
	t.Parallel()

	analyzer, err := NewAnalyzer("")
	require.NoError(t, err)

	repo := testRepo(touching("fix rounding error", 10, "src/Calc.java"))

	scores := analyzer.Scores(repo)
	assert.InDelta(t, 0.5, scores["src/Calc.java"], 1e-12)
	assert.Zero(t, scores["src/Api.java"])
}

func TestScores_NonFixCommitIgnored(t *testing.T) {
	t.Parallel()

	analyzer, err := NewAnalyzer("")
	require.NoError(t, err)

	repo := testRepo(touching("refactor calculator", 10, "src/Calc.java"))

	scores := analyzer.Scores(repo)
	assert.Zero(t, scores["src/Calc.java"])
}

func TestScores_Accumulate(t *testing.T) {
	t.Parallel()

	analyzer, err := NewAnalyzer("")
	require.NoError(t, err)

	repo := testRepo(
		touching("fix overflow", 10, "src/Calc.java"),
		touching("fix rounding", 10, "src/Calc.java", "src/Api.java"),
	)

	scores := analyzer.Scores(repo)
	assert.InDelta(t, 1.0, scores["src/Calc.java"], 1e-12)
	assert.InDelta(t, 0.5, scores["src/Api.java"], 1e-12)
}

func TestScores_EarlyFixWeighsNearZero(t *testing.T) {
	t.Parallel()

	analyzer, err := NewAnalyzer("")
	require.NoError(t, err)

	repo := testRepo(touching("fix typo in constant", 0, "src/Calc.java"))

	scores := analyzer.Scores(repo)
	assert.Greater(t, scores["src/Calc.java"], 0.0)
	assert.Less(t, scores["src/Calc.java"], 0.001)
}

func TestScores_DeletedFileNotScored(t *testing.T) {
	t.Parallel()

	analyzer, err := NewAnalyzer("")
	require.NoError(t, err)

	repo := testRepo(touching("fix legacy importer", 10, "src/Legacy.java"))

	scores := analyzer.Scores(repo)
	_, present := scores["src/Legacy.java"]
	assert.False(t, present)
}

func TestScores_ZeroSpanHistory(t *testing.T) {
	t.Parallel()

	analyzer, err := NewAnalyzer("")
	require.NoError(t, err)

	repo := testRepo(touching("fix it all", 0, "src/Calc.java"))
	repo.EvaluatedAt = repo.CreatedAt

	scores := analyzer.Scores(repo)
	assert.InDelta(t, 0.5, scores["src/Calc.java"], 1e-12)
}

func TestRanking_Order(t *testing.T) {
	t.Parallel()

	ranked := Ranking(map[string]float64{
		"b.java": 0.5,
		"a.java": 0.5,
		"c.java": 1.5,
		"d.java": 0,
	})

	expected := []Score{
		{Path: "c.java", Value: 1.5},
		{Path: "a.java", Value: 0.5},
		{Path: "b.java", Value: 0.5},
		{Path: "d.java", Value: 0},
	}
	assert.Equal(t, expected, ranked)
}
