// Package strip runs the full test strip pipeline: decode, average, classify.
package strip

import (
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/stripscan/internal/classify"
	"github.com/jmylchreest/stripscan/internal/colour"
	imageutil "github.com/jmylchreest/stripscan/internal/image"
)

// Report is everything shown to the user for one strip.
type Report struct {
	Colour    colour.RGB         `json:"colour"`
	Hex       string             `json:"hex"`
	CSS       string             `json:"css"`
	Label     string             `json:"label"`
	Matched   bool               `json:"matched"`
	Hazard    bool               `json:"hazard"`
	Notice    string             `json:"notice,omitempty"`
	Reason    string             `json:"notice_reason,omitempty"`
	Distance  float64            `json:"distance"`
	Nearest   classify.Reference `json:"nearest"`
	Threshold float64            `json:"threshold"`
	Metric    classify.Metric    `json:"metric"`
	Table     string             `json:"table"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
}

// Analyser classifies strip images against one reference table.
// It holds no mutable state and is safe for concurrent use.
type Analyser struct {
	table     *classify.ReferenceTable
	threshold float64
	metric    classify.Metric
	maxPixels int
	logger    hclog.Logger
}

// NewAnalyser validates its inputs and returns an Analyser. A nil logger discards output.
func NewAnalyser(table *classify.ReferenceTable, threshold float64, metric classify.Metric, logger hclog.Logger) (*Analyser, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("%w: reference table is empty", colour.ErrInvalidInput)
	}
	// Classifying a reference colour runs every input check once.
	if _, err := classify.ClassifyWithMetric(table.Entries()[0].Colour, table, threshold, metric); err != nil {
		return nil, err
	}

	return &Analyser{
		table:     table,
		threshold: threshold,
		metric:    metric,
		maxPixels: imageutil.DefaultMaxPixels,
		logger:    logger,
	}, nil
}

// Table returns the reference table.
func (a *Analyser) Table() *classify.ReferenceTable {
	return a.table
}

// Threshold returns the configured threshold.
func (a *Analyser) Threshold() float64 {
	return a.threshold
}

// WithThreshold returns a copy of a using a different threshold.
func (a *Analyser) WithThreshold(threshold float64) (*Analyser, error) {
	c, err := NewAnalyser(a.table, threshold, a.metric, a.logger)
	if err != nil {
		return nil, err
	}
	c.maxPixels = a.maxPixels
	return c, nil
}

// WithMaxPixels returns a copy of a that rejects encoded images whose
// dimensions exceed maxPixels. Zero or less disables the check.
func (a *Analyser) WithMaxPixels(maxPixels int) *Analyser {
	c := *a
	c.maxPixels = maxPixels
	return &c
}

// MaxPixels returns the decoded image area limit.
func (a *Analyser) MaxPixels() int {
	return a.maxPixels
}

// AnalyseImage averages img and classifies the result.
func (a *Analyser) AnalyseImage(img image.Image) (Report, error) {
	avg, err := colour.AverageColour(img)
	if err != nil {
		return Report{}, fmt.Errorf("failed to extract average colour: %w", err)
	}

	res, err := classify.ClassifyWithMetric(avg, a.table, a.threshold, a.metric)
	if err != nil {
		return Report{}, fmt.Errorf("failed to classify colour: %w", err)
	}

	hazard := res.Matched && a.table.IsReferenceLabel(res.Label)
	var notice, reason string
	if hazard {
		notice = a.table.HazardNotice()
		reason = a.table.HazardReason()
	}

	bounds := img.Bounds()
	a.logger.Debug("classified strip",
		"colour", avg.Hex(),
		"label", res.Label,
		"matched", res.Matched,
		"distance", res.Distance,
		"nearest", res.Nearest.Colour.Hex())

	return Report{
		Colour:    avg,
		Hex:       "#" + avg.Hex(),
		CSS:       avg.CSS(),
		Label:     res.Label,
		Matched:   res.Matched,
		Hazard:    hazard,
		Notice:    notice,
		Reason:    reason,
		Distance:  res.Distance,
		Nearest:   res.Nearest,
		Threshold: a.threshold,
		Metric:    a.metricName(),
		Table:     a.table.Name(),
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}, nil
}

// AnalyseBytes decodes raw image bytes and analyses the result.
func (a *Analyser) AnalyseBytes(data []byte) (Report, error) {
	img, format, err := imageutil.DecodeLimited(data, a.maxPixels)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", colour.ErrInvalidInput, err)
	}
	a.logger.Debug("decoded upload", "format", format, "bytes", len(data))
	return a.AnalyseImage(img)
}

func (a *Analyser) metricName() classify.Metric {
	if a.metric == "" {
		return classify.MetricRGB
	}
	return a.metric
}
