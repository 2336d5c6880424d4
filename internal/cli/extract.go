package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/stripscan/internal/colour"
	"github.com/jmylchreest/stripscan/internal/config"
	"github.com/jmylchreest/stripscan/internal/logging"
)

type extractOptions struct {
	format string
	output string
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Print the average colour of an image",
		Long: `Compute the average colour of an image without classifying it.

Useful for building reference tables: photograph a strip of known
concentration and record the colour it reports. The alpha channel is ignored
and each channel mean is truncated to an integer.

Supported image formats: JPEG, PNG, GIF, WebP. Use "-" to read from stdin.

Examples:
  # Print the average colour as a hex code
  stripscan extract strip.jpg

  # Print it as JSON
  stripscan extract --format json strip.png

  # Read a photo from another program
  cat strip.jpg | stripscan extract -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "hex", "output format (hex, rgb, json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Bool("preview", false, "show a colour swatch (default: on when stdout is a terminal)")
	cmd.Flags().Int("max-pixels", config.DefaultMaxPixels, "largest image area, in pixels, that will be decoded")

	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions, path string) error {
	logger := logging.FromContext(cmd.Context())

	img, err := loadImage(cmd.Context(), cmd, path, root.cfg)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	logger.Debug("image loaded", "path", path, "width", bounds.Dx(), "height", bounds.Dy())

	avg, err := colour.AverageColour(img)
	if err != nil {
		return fmt.Errorf("failed to extract average colour: %w", err)
	}

	var out string
	switch opts.format {
	case "hex":
		out = "#" + avg.Hex()
	case "rgb":
		out = avg.String()
	case "json":
		data, err := json.MarshalIndent(struct {
			Hex string     `json:"hex"`
			RGB colour.RGB `json:"rgb"`
		}{Hex: "#" + avg.Hex(), RGB: avg}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return writeOutput(cmd.OutOrStdout(), opts.output, string(data)+"\n")
	default:
		return fmt.Errorf("unsupported format: %s (supported: hex, rgb, json)", opts.format)
	}

	if opts.output == "" && wantPreview(cmd, cmd.OutOrStdout()) {
		out = colour.Swatch(avg, 8) + " " + out
	}
	return writeOutput(cmd.OutOrStdout(), opts.output, out+"\n")
}
