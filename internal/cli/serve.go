package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/stripscan/internal/config"
	"github.com/jmylchreest/stripscan/internal/server"
)

type serveOptions struct {
	sessionTTL time.Duration
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve strip classification over HTTP",
		Long: `Start an HTTP server that accepts strip photos and returns classifications.

Endpoints:
  GET  /                          upload form
  GET  /api/table                 active reference table
  POST /api/classify              classify one multipart "image" upload
  POST /api/sessions              start a session (awaiting input)
  GET  /api/sessions/:id          session state and last result
  POST /api/sessions/:id/submit   upload an image, showing the result
  POST /api/sessions/:id/reset    return to awaiting input
  DELETE /api/sessions/:id        end a session

Uploads may carry a "threshold" form field to override the configured one.

Examples:
  stripscan serve --threshold 30
  stripscan serve -t 30 --listen 127.0.0.1:9000 --table ph.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root, opts)
		},
	}

	addAnalysisFlags(cmd)
	cmd.Flags().String("listen", config.DefaultListen, "address to listen on")
	cmd.Flags().Int64("max-upload-bytes", config.DefaultMaxUploadBytes, "largest accepted upload")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", server.DefaultSessionTTL, "drop sessions idle for this long")

	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	analyser, err := newAnalyser(root)
	if err != nil {
		return err
	}
	if root.cfg.MaxUploadBytes > int64(^uint32(0)>>1) {
		return fmt.Errorf("max_upload_bytes too large: %d", root.cfg.MaxUploadBytes)
	}

	srv := server.New(server.Options{
		Analyser:       analyser,
		Logger:         root.logger,
		MaxUploadBytes: int(root.cfg.MaxUploadBytes),
		SessionTTL:     opts.sessionTTL,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, root.cfg.Listen)
}
