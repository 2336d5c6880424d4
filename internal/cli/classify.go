package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/stripscan/internal/classify"
	"github.com/jmylchreest/stripscan/internal/colour"
	"github.com/jmylchreest/stripscan/internal/config"
	"github.com/jmylchreest/stripscan/internal/logging"
	"github.com/jmylchreest/stripscan/internal/strip"
)

type classifyOptions struct {
	format string
	output string
}

func newClassifyCmd(root *rootOptions) *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify <image>",
		Short: "Classify a test strip photo against a reference table",
		Long: `Average the colour of a test strip image and report the nearest reference
colour's label. If the nearest reference is further away than the threshold
(Euclidean distance in RGB, 0-441), the table's not-found label is reported.

The threshold has no default and must be given with --threshold, the
STRIPSCAN_THRESHOLD environment variable, or the config file.

Supported image formats: JPEG, PNG, GIF, WebP. Use "-" to read from stdin.

Examples:
  # Classify against the built-in copper table
  stripscan classify --threshold 30 strip.jpg

  # Use a custom reference table and JSON output
  stripscan classify -t 25 --table ph.yaml --format json strip.png

  # Classify a remote image
  stripscan classify -t 30 https://example.com/strip.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, root, opts, args[0])
		},
	}

	addAnalysisFlags(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Bool("preview", false, "show a colour swatch (default: on when stdout is a terminal)")
	cmd.Flags().Duration("fetch-timeout", config.DefaultFetchTimeout, "timeout for downloading remote images")

	return cmd
}

// addAnalysisFlags registers the flags shared by every command that classifies.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("threshold", "t", 0, "maximum colour distance for a match (required)")
	cmd.Flags().String("table", "", "reference table YAML file (default: built-in copper table)")
	cmd.Flags().String("metric", string(classify.MetricRGB), "distance metric (rgb, lab)")
	cmd.Flags().Int("max-pixels", config.DefaultMaxPixels, "largest image area, in pixels, that will be decoded")
}

// newAnalyser builds an Analyser from resolved configuration.
func newAnalyser(root *rootOptions) (*strip.Analyser, error) {
	threshold, err := root.cfg.RequireThreshold()
	if err != nil {
		return nil, err
	}
	table, err := root.cfg.ReferenceTable()
	if err != nil {
		return nil, err
	}
	a, err := strip.NewAnalyser(table, threshold, root.cfg.Metric, root.logger.Named("analyser"))
	if err != nil {
		return nil, err
	}
	return a.WithMaxPixels(root.cfg.MaxPixels), nil
}

func runClassify(cmd *cobra.Command, root *rootOptions, opts *classifyOptions, path string) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format: %s (supported: text, json)", opts.format)
	}

	analyser, err := newAnalyser(root)
	if err != nil {
		return err
	}

	img, err := loadImage(cmd.Context(), cmd, path, root.cfg)
	if err != nil {
		return err
	}
	logging.FromContext(cmd.Context()).Debug("image loaded", "path", path)

	report, err := analyser.AnalyseImage(img)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return writeOutput(cmd.OutOrStdout(), opts.output, string(data)+"\n")
	}

	preview := opts.output == "" && wantPreview(cmd, cmd.OutOrStdout())
	return writeOutput(cmd.OutOrStdout(), opts.output, formatReport(path, report, preview))
}

// formatReport renders a report as aligned text.
func formatReport(path string, r strip.Report, preview bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Image:     %s (%dx%d)\n", path, r.Width, r.Height)
	if preview {
		fmt.Fprintf(&b, "Colour:    %s\n", colour.FormatWithSwatch(r.Colour, 8))
	} else {
		fmt.Fprintf(&b, "Colour:    %s %s\n", r.Hex, r.Colour.String())
	}
	fmt.Fprintf(&b, "Nearest:   #%s (distance %.2f, threshold %g, metric %s)\n",
		r.Nearest.Colour.Hex(), r.Distance, r.Threshold, r.Metric)
	fmt.Fprintf(&b, "Result:    %s\n", r.Label)
	if r.Notice != "" {
		fmt.Fprintf(&b, "Warning:   %s\n", r.Notice)
	}
	if r.Reason != "" {
		fmt.Fprintf(&b, "           %s\n", r.Reason)
	}
	return b.String()
}
