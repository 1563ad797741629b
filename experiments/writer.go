package experiments

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Setup struct {
	Config    Config        `yaml:"config"`
	Seed      int64         `yaml:"seed"`
	Completed bool          `yaml:"completed"`
	StartTime time.Time     `yaml:"startTime"`
	EndTime   time.Time     `yaml:"endTime"`
	Duration  time.Duration `yaml:"duration"`
}

type Writer struct {
	baseDir string
}

func NewWriter(root string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

// WriteAll stores the setup, series, arm summaries and trial records.
func (w *Writer) WriteAll(result *Result) error {
	if err := w.WriteSetup(result); err != nil {
		return err
	}
	if err := w.WriteSeries(result); err != nil {
		return err
	}
	if err := w.WriteArms(result); err != nil {
		return err
	}
	if len(result.Trials) > 0 {
		return w.WriteTrials(result)
	}
	return nil
}

func (w *Writer) WriteSetup(result *Result) error {
	setup := Setup{
		Config:    result.Config,
		Seed:      result.Seed,
		Completed: result.Completed,
		StartTime: result.StartTime,
		EndTime:   result.EndTime,
		Duration:  result.EndTime.Sub(result.StartTime),
	}

	path := filepath.Join(w.baseDir, "setup.yaml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create setup file: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	defer encoder.Close()
	if err := encoder.Encode(setup); err != nil {
		return fmt.Errorf("failed to write setup: %w", err)
	}
	return nil
}

func (w *Writer) WriteSeries(result *Result) error {
	// Create a file
	path := filepath.Join(w.baseDir, "series.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create series file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	// Write header
	header := []string{"policy", "trials", "round", "mean_cumulative_reward", "std_cumulative_reward", "mean_cumulative_regret", "std_cumulative_regret"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write series header: %w", err)
	}

	// Write each row
	for _, p := range result.Policies {
		s := p.Summary
		for t := range s.MeanReward {
			row := []string{
				p.Label,
				strconv.Itoa(s.Trials),
				strconv.Itoa(t + 1),
				formatFloat(s.MeanReward[t]),
				formatFloat(s.StdReward[t]),
				formatFloat(s.MeanRegret[t]),
				formatFloat(s.StdRegret[t]),
			}
			err = writer.Write(row)
			if err != nil {
				return fmt.Errorf("failed to write series row: %w", err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func (w *Writer) WriteArms(result *Result) error {
	// Create a file
	path := filepath.Join(w.baseDir, "arms.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create arms file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	// Write header
	header := []string{"policy", "arm", "name", "true_mean", "optimal", "pull_fraction"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write arms header: %w", err)
	}

	// Write each row
	for _, p := range result.Policies {
		for i, arm := range result.Arms {
			row := []string{
				p.Label,
				strconv.Itoa(i),
				arm.Name,
				formatFloat(arm.Mean),
				strconv.FormatBool(i == result.OptimalArm),
				formatFloat(p.Summary.PullFractions[i]),
			}
			err = writer.Write(row)
			if err != nil {
				return fmt.Errorf("failed to write arms row: %w", err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func (w *Writer) WriteTrials(result *Result) error {
	// Create a file
	path := filepath.Join(w.baseDir, "trials.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trials file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	// Write header
	header := []string{"policy", "trial", "seed", "start_time", "duration", "rounds"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write trials header: %w", err)
	}

	// Write each row
	for _, record := range result.Trials {
		row := []string{
			record.Policy,
			strconv.Itoa(record.Trial),
			strconv.FormatUint(record.Seed, 10),
			record.StartTime.Format(time.RFC3339Nano),
			record.Duration.String(),
			strconv.Itoa(record.Rounds),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write trial row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
