package env

import (
	"bandit/meta"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadArms reads an ad dataset with an "Ad" and a "CTR" column into arms.
func LoadArms(r io.Reader) ([]Arm, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read dataset header: %v", meta.ErrInvalidConfiguration, err)
	}
	nameCol, meanCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "ad":
			nameCol = i
		case "ctr":
			meanCol = i
		}
	}
	if meanCol < 0 {
		return nil, fmt.Errorf("%w: dataset has no CTR column", meta.ErrInvalidConfiguration)
	}

	arms := []Arm{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read dataset line %d: %v", meta.ErrInvalidConfiguration, line, err)
		}
		mean, err := strconv.ParseFloat(strings.TrimSpace(row[meanCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d has invalid CTR %q", meta.ErrInvalidConfiguration, line, row[meanCol])
		}
		arm := Arm{Mean: mean}
		if nameCol >= 0 {
			arm.Name = strings.TrimSpace(row[nameCol])
		}
		arms = append(arms, arm)
	}
	return arms, nil
}

func LoadArmsFile(path string) ([]Arm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return LoadArms(f)
}
