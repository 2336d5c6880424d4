package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/stripscan/internal/classify"
	"github.com/jmylchreest/stripscan/internal/colour"
)

type tableOptions struct {
	format string
}

func newTableCmd(root *rootOptions) *cobra.Command {
	opts := &tableOptions{}

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Show the reference table",
		Long: `List the reference colours and labels used for classification, in the
order they are compared. When two references are equally close to a strip
colour, the one listed first wins.

The yaml format can be edited and passed back with --table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd, root, opts)
		},
	}

	cmd.Flags().String("table", "", "reference table YAML file (default: built-in copper table)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json, yaml)")
	cmd.Flags().Bool("preview", false, "show colour swatches (default: on when stdout is a terminal)")

	return cmd
}

func runTable(cmd *cobra.Command, root *rootOptions, opts *tableOptions) error {
	table, err := root.cfg.ReferenceTable()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch opts.format {
	case "json":
		data, err := json.MarshalIndent(table.File(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to convert to JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(table.File())
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "text":
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", opts.format)
	}

	preview := wantPreview(cmd, out)
	t := NewTable([]string{"#", "Hex", "RGB", "Label"})
	t.SetColumnMaxWidth(3, 60)
	for i, ref := range table.Entries() {
		hex := "#" + ref.Colour.Hex()
		if preview {
			hex = swatchPlaceholder + hex
		}
		t.AddRow([]string{strconv.Itoa(i + 1), hex, ref.Colour.String(), ref.Label})
	}

	rendered := t.Render()
	if preview {
		rendered = paintSwatches(rendered, table.Entries())
	}

	fmt.Fprintf(out, "Table: %s (%d entries)\n\n", table.Name(), table.Len())
	fmt.Fprint(out, rendered)
	fmt.Fprintf(out, "\nNo match: %s\n", table.NotFoundLabel())
	if notice := table.HazardNotice(); notice != "" {
		fmt.Fprintf(out, "On match: %s\n", notice)
		if reason := table.HazardReason(); reason != "" {
			fmt.Fprintf(out, "          %s\n", reason)
		}
	}
	return nil
}

// swatchPlaceholder reserves room in the Hex column for a swatch. Escape
// codes have no display width, so swatches are painted in after layout.
const swatchPlaceholder = "   "

// paintSwatches swaps each placeholder for a swatch of the same display width.
func paintSwatches(rendered string, refs []classify.Reference) string {
	for _, ref := range refs {
		hex := "#" + ref.Colour.Hex()
		rendered = strings.Replace(rendered, swatchPlaceholder+hex, colour.Swatch(ref.Colour, len(swatchPlaceholder)-1)+" "+hex, 1)
	}
	return rendered
}
