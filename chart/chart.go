package chart

import (
	"bandit/metrics"
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// MaxPoints caps the points drawn per curve.
const MaxPoints = 500

// Curve is the summary of one policy as it should be labelled in a chart.
type Curve struct {
	Label   string
	Summary metrics.Summary
}

// Render writes an HTML page with the cumulative reward and cumulative regret
// of every curve.
func Render(w io.Writer, curves []Curve) error {
	if len(curves) == 0 {
		return fmt.Errorf("no curves to render")
	}
	horizon := len(curves[0].Summary.MeanReward)
	rounds := Downsample(horizon, MaxPoints)

	reward := newLine("Cumulative Reward", "mean over trials", "clicks")
	regret := newLine("Cumulative Regret", "mean over trials", "regret")
	reward.SetXAxis(labels(rounds))
	regret.SetXAxis(labels(rounds))
	for _, curve := range curves {
		if len(curve.Summary.MeanReward) != horizon {
			return fmt.Errorf("curve %s has %d rounds, expected %d", curve.Label, len(curve.Summary.MeanReward), horizon)
		}
		reward.AddSeries(curve.Label, points(curve.Summary.MeanReward, rounds))
		regret.AddSeries(curve.Label, points(curve.Summary.MeanRegret, rounds))
	}

	page := components.NewPage()
	page.AddCharts(reward, regret)
	return page.Render(w)
}

func RenderFile(path string, curves []Curve) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return Render(f, curves)
}

func newLine(title, subtitle, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeInfographic,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "round"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	return line
}

// Downsample picks at most n evenly spaced 1-based rounds out of horizon,
// always keeping the last one.
func Downsample(horizon, n int) []int {
	if horizon <= 0 || n <= 0 {
		return nil
	}
	step := (horizon + n - 1) / n
	rounds := make([]int, 0, n+1)
	for round := step; round <= horizon; round += step {
		rounds = append(rounds, round)
	}
	if len(rounds) == 0 || rounds[len(rounds)-1] != horizon {
		rounds = append(rounds, horizon)
	}
	return rounds
}

func labels(rounds []int) []string {
	result := make([]string, len(rounds))
	for i, round := range rounds {
		result[i] = fmt.Sprintf("%d", round)
	}
	return result
}

func points(series []float64, rounds []int) []opts.LineData {
	data := make([]opts.LineData, len(rounds))
	for i, round := range rounds {
		data[i] = opts.LineData{Value: series[round-1]}
	}
	return data
}
