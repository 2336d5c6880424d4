package classify

import (
	"fmt"
	"math"

	"github.com/jmylchreest/stripscan/internal/colour"
)

// Metric measures the distance between two colours.
type Metric string

const (
	// MetricRGB is Euclidean distance over the 0-255 RGB channels.
	MetricRGB Metric = "rgb"

	// MetricLab is CIE76 distance in L*a*b*, scaled to roughly 0-100.
	MetricLab Metric = "lab"
)

// ValidMetrics returns the supported metric names.
func ValidMetrics() []Metric {
	return []Metric{MetricRGB, MetricLab}
}

// distanceFunc returns the distance function for the metric.
func (m Metric) distanceFunc() (func(a, b colour.RGB) float64, error) {
	switch m {
	case MetricRGB, "":
		return colour.Distance, nil
	case MetricLab:
		return colour.DistanceLab, nil
	default:
		return nil, fmt.Errorf("%w: unknown metric %q (valid metrics: %v)", colour.ErrInvalidInput, m, ValidMetrics())
	}
}

// Result is the outcome of classifying one colour.
type Result struct {
	Colour    colour.RGB `json:"colour"`
	Label     string     `json:"label"`
	Matched   bool       `json:"matched"`
	Distance  float64    `json:"distance"`
	Nearest   Reference  `json:"nearest"`
	Threshold float64    `json:"threshold"`
}

// Classify returns the label of the reference colour nearest to c by
// Euclidean RGB distance, or the table's not-found label when the nearest
// distance exceeds threshold.
func Classify(c colour.RGB, table *ReferenceTable, threshold float64) (Result, error) {
	return ClassifyWithMetric(c, table, threshold, MetricRGB)
}

// ClassifyWithMetric is Classify with a selectable distance metric.
func ClassifyWithMetric(c colour.RGB, table *ReferenceTable, threshold float64, metric Metric) (Result, error) {
	if table.Len() == 0 {
		return Result{}, fmt.Errorf("%w: reference table is empty", colour.ErrInvalidInput)
	}
	if math.IsNaN(threshold) || threshold < 0 {
		return Result{}, fmt.Errorf("%w: threshold must be non-negative, got %v", colour.ErrInvalidInput, threshold)
	}
	dist, err := metric.distanceFunc()
	if err != nil {
		return Result{}, err
	}

	best := -1
	bestDistance := math.Inf(1)
	for i, ref := range table.entries {
		// Strict comparison keeps the first entry on ties.
		if d := dist(c, ref.Colour); d < bestDistance {
			best = i
			bestDistance = d
		}
	}

	res := Result{
		Colour:    c,
		Distance:  bestDistance,
		Nearest:   table.entries[best],
		Threshold: threshold,
	}
	if bestDistance > threshold {
		res.Label = table.notFoundLabel
		return res, nil
	}
	res.Label = table.entries[best].Label
	res.Matched = true
	return res, nil
}
