package cli

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/stripscan/internal/config"
	imageutil "github.com/jmylchreest/stripscan/internal/image"
)

// stdinPath is the image argument that means "read from standard input".
const stdinPath = "-"

// loadImage reads the image named by path: a file, an HTTP(S) URL, or stdin.
func loadImage(ctx context.Context, cmd *cobra.Command, path string, cfg config.Config) (image.Image, error) {
	if path == stdinPath {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), cfg.MaxUploadBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read image from stdin: %w", err)
		}
		if int64(len(data)) > cfg.MaxUploadBytes {
			return nil, fmt.Errorf("image on stdin exceeds %d bytes", cfg.MaxUploadBytes)
		}
		img, _, err := imageutil.DecodeLimited(data, cfg.MaxPixels)
		return img, err
	}

	if !imageutil.IsURL(path) && !imageutil.IsImageFile(path) {
		return nil, fmt.Errorf("unsupported image type: %s (supported: %v)", path, imageutil.SupportedImageExtensions())
	}

	loader := imageutil.NewSmartLoader(cfg.FetchTimeout, cfg.MaxUploadBytes).WithMaxPixels(cfg.MaxPixels)
	img, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return img, nil
}

// isTerminal reports whether w is a terminal, so ANSI swatches are only
// written where they render.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// wantPreview resolves the --preview flag: explicit values win, otherwise
// previews are shown on terminals only.
func wantPreview(cmd *cobra.Command, w io.Writer) bool {
	if cmd.Flags().Changed("preview") {
		v, _ := cmd.Flags().GetBool("preview")
		return v
	}
	return isTerminal(w)
}

// writeOutput writes s to the --output file if given, otherwise to w.
func writeOutput(w io.Writer, path, s string) error {
	if path == "" {
		_, err := io.WriteString(w, s)
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil { // #nosec G306 - Output is user-facing, standard permissions
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
