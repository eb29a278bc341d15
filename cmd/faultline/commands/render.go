package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/faultline-sh/faultline/internal/model"
	"github.com/faultline-sh/faultline/internal/risk"
)

// highRiskBand marks scores within this fraction of the maximum as the hot
// band in table output.
const highRiskBand = 0.5

// Report is the rendered analysis result.
type Report struct {
	Repository RepositorySummary `json:"repository" yaml:"repository"`
	Risk       []risk.Score      `json:"risk" yaml:"risk"`
	Elapsed    string            `json:"elapsed" yaml:"elapsed"`
}

// RepositorySummary describes the mined history.
type RepositorySummary struct {
	Path        string    `json:"path" yaml:"path"`
	Commits     int       `json:"commits" yaml:"commits"`
	Files       int       `json:"files" yaml:"files"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	EvaluatedAt time.Time `json:"evaluated_at" yaml:"evaluated_at"`
}

// NewReport assembles the renderable report from an extracted repository and
// its risk scores.
func NewReport(path string, repo *model.Repository, scores map[string]float64, elapsed time.Duration) *Report {
	return &Report{
		Repository: RepositorySummary{
			Path:        path,
			Commits:     len(repo.Commits),
			Files:       len(repo.Files),
			CreatedAt:   repo.CreatedAt,
			EvaluatedAt: repo.EvaluatedAt,
		},
		Risk:    risk.Ranking(scores),
		Elapsed: elapsed.Round(time.Millisecond).String(),
	}
}

// topScores caps the ranking for table and plot output.
func (r *Report) topScores(topN int) []risk.Score {
	if topN <= 0 || topN >= len(r.Risk) {
		return r.Risk
	}

	return r.Risk[:topN]
}

// renderTable writes the ranked risk table with the hottest band highlighted.
func renderTable(writer io.Writer, report *Report, topN int, noColor bool) error {
	if noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	scores := report.topScores(topN)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "File", "Risk"})

	var maxScore float64
	if len(scores) > 0 {
		maxScore = scores[0].Value
	}

	hot := color.New(color.FgRed)

	for i, score := range scores {
		path := score.Path
		if maxScore > 0 && score.Value >= highRiskBand*maxScore {
			path = hot.Sprint(path)
		}

		tbl.AppendRow(table.Row{i + 1, path, fmt.Sprintf("%.4f", score.Value)})
	}

	fmt.Fprintln(writer, tbl.Render())
	fmt.Fprintln(writer, summaryLine(report))

	return nil
}

// summaryLine is the one-line footer under the table.
func summaryLine(report *Report) string {
	evaluated := "empty history"
	if report.Repository.Commits > 0 {
		evaluated = "last change " + humanize.Time(report.Repository.EvaluatedAt)
	}

	return fmt.Sprintf("%s commits · %s files · %s · analyzed in %s",
		humanize.Comma(int64(report.Repository.Commits)),
		humanize.Comma(int64(report.Repository.Files)),
		evaluated,
		report.Elapsed)
}

func renderJSON(writer io.Writer, report *Report) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}

func renderYAML(writer io.Writer, report *Report) error {
	encoder := yaml.NewEncoder(writer)

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return encoder.Close()
}

// renderPlot writes a bar chart of the top risk scores as a standalone HTML
// page.
func renderPlot(path string, report *Report, topN int) error {
	scores := report.topScores(topN)

	labels := make([]string, len(scores))
	bars := make([]opts.BarData, len(scores))

	for i, score := range scores {
		labels[i] = score.Path
		bars[i] = opts.BarData{Value: score.Value}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "faultline", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "File risk", Subtitle: report.Repository.Path}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "risk"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("risk", bars)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := bar.Render(file); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}
