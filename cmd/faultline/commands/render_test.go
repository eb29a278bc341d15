package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/faultline-sh/faultline/internal/model"
	"github.com/faultline-sh/faultline/internal/risk"
	"github.com/faultline-sh/faultline/internal/structure"
)

func testReport() *Report {
	repo := &model.Repository{
		Commits: []*model.Commit{
			{ID: "a", Message: "fix parser"},
			{ID: "b", Message: "add feature"},
		},
		CreatedAt:   time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		EvaluatedAt: time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC),
		Files: map[string]struct{}{
			"src/Calc.java": {},
			"src/Api.java":  {},
		},
	}

	scores := map[string]float64{
		"src/Calc.java": 1.25,
		"src/Api.java":  0.03,
	}

	return NewReport("/repos/demo", repo, scores, 1500*time.Millisecond)
}

func TestNewReport(t *testing.T) {
	t.Parallel()

	report := testReport()

	assert.Equal(t, 2, report.Repository.Commits)
	assert.Equal(t, 2, report.Repository.Files)
	assert.Equal(t, "1.5s", report.Elapsed)

	expected := []risk.Score{
		{Path: "src/Calc.java", Value: 1.25},
		{Path: "src/Api.java", Value: 0.03},
	}
	assert.Equal(t, expected, report.Risk)
}

func TestReport_TopScores(t *testing.T) {
	t.Parallel()

	report := testReport()

	assert.Len(t, report.topScores(1), 1)
	assert.Len(t, report.topScores(0), 2)
	assert.Len(t, report.topScores(10), 2)
	assert.Equal(t, "src/Calc.java", report.topScores(1)[0].Path)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer

	err := renderTable(&buf, testReport(), 0, true)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "src/Calc.java")
	assert.Contains(t, out, "src/Api.java")
	assert.Contains(t, out, "1.2500")
	assert.Contains(t, out, "2 commits")
	assert.Contains(t, out, "analyzed in 1.5s")
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderJSON(&buf, testReport()))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "/repos/demo", decoded.Repository.Path)
	require.Len(t, decoded.Risk, 2)
	assert.Equal(t, "src/Calc.java", decoded.Risk[0].Path)
}

func TestRenderYAML_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderYAML(&buf, testReport()))

	var decoded Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, 2, decoded.Repository.Commits)
	require.Len(t, decoded.Risk, 2)
	assert.InDelta(t, 1.25, decoded.Risk[0].Value, 1e-9)
}

func TestRenderPlot_WritesHTML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "risk.html")

	require.NoError(t, renderPlot(path, testReport(), 0))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "echarts")
	assert.Contains(t, string(content), "src/Calc.java")
}

func TestRender_UnknownFormat(t *testing.T) {
	t.Parallel()

	cmd := &AnalyzeCommand{format: "xml"}

	err := cmd.render(testReport())
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRender_PlotRequiresOutput(t *testing.T) {
	t.Parallel()

	cmd := &AnalyzeCommand{format: FormatPlot}

	err := cmd.render(testReport())
	require.ErrorIs(t, err, ErrPlotNeedsOutput)
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	registry, err := buildRegistry(map[string]string{"Java": "heuristic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Java"}, registry.Languages())

	_, err = buildRegistry(map[string]string{"Java": "antlr"})
	require.ErrorIs(t, err, structure.ErrUnknownStrategy)

	_, err = buildRegistry(map[string]string{"Cobol": "heuristic"})
	require.ErrorIs(t, err, structure.ErrUnknownLanguage)
}
