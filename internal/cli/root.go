// Package cli provides the command-line interface for stripscan.
package cli

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/stripscan/internal/config"
	"github.com/jmylchreest/stripscan/internal/logging"
	"github.com/jmylchreest/stripscan/internal/version"
)

// flagKeys maps command flags onto configuration keys.
var flagKeys = map[string]string{
	"threshold":        config.KeyThreshold,
	"table":            config.KeyTable,
	"metric":           config.KeyMetric,
	"listen":           config.KeyListen,
	"max-upload-bytes": config.KeyMaxUploadBytes,
	"max-pixels":       config.KeyMaxPixels,
	"fetch-timeout":    config.KeyFetchTimeout,
	"log-json":         config.KeyLogJSON,
}

// rootOptions carries global flags and the resolved configuration to subcommands.
type rootOptions struct {
	configFile string
	verbose    bool
	quiet      bool

	cfg    config.Config
	logger hclog.Logger
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "stripscan",
		Short: "Read test strip colours and classify them",
		Long: `stripscan averages the colour of a photographed or scanned test strip and
maps it to a concentration label using the nearest colour in a reference table.

The built-in table is the copper ion filter-paper assay (dragon fruit extract
with pH 7 buffer, read one minute after applying one drop of sample). Other
assays can be supplied as YAML tables with --table.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: opts.setup,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: ./stripscan.yaml or $XDG_CONFIG_HOME/stripscan/stripscan.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	cmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	cmd.SetVersionTemplate(version.String() + "\n")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newClassifyCmd(opts))
	cmd.AddCommand(newTableCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// setup resolves configuration and the logger before any subcommand runs.
func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	v, err := config.NewViper(o.configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(cmd, v); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	o.cfg = cfg

	o.logger = logging.New(logging.Options{
		Name:    "stripscan",
		Verbose: o.verbose,
		Quiet:   o.quiet,
		JSON:    cfg.LogJSON,
		Output:  cmd.ErrOrStderr(),
	})
	o.logger.Debug("configuration loaded", "config", v.ConfigFileUsed(), "table", cfg.TablePath, "metric", cfg.Metric)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, o.logger))
	return nil
}

// bindFlags binds whichever config-backed flags the running command defines.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
