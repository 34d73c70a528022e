// Package cli builds the astrod command tree.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"astrod/internal/config"
)

// globalFlags are shared by every sub-command.
type globalFlags struct {
	configPath string
	logLevel   string
	dataDir    string
	modelsDir  string
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

// NewRootCmd constructs the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "astrod",
		Short:         "Local control plane for the on-device inference engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", os.Getenv(config.EnvPath), "Config file (.yaml, .json, .toml); defaults to $"+config.EnvPath)
	pf.StringVar(&g.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug|info|warn|error|disabled")
	pf.StringVar(&g.dataDir, "data-dir", "", "Application data directory (default <user config dir>/astro)")
	pf.StringVar(&g.modelsDir, "models-dir", "", "Directory holding downloaded models (default <data dir>/models)")

	root.AddCommand(
		newServeCmd(g),
		newDownloadCmd(g),
		newHardwareCmd(g),
		newHealthCmd(g),
	)
	return root
}

// newLogger builds the root logger writing JSON lines to w.
func newLogger(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// resolveConfig applies defaults < config file < explicitly set flags.
// overlay carries the values of the command's own flags.
func resolveConfig(cmd *cobra.Command, g *globalFlags, overlay config.Config) (config.Config, error) {
	var cfg config.Config
	if g.configPath != "" {
		fileCfg, err := config.Load(g.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", g.configPath, err)
		}
		cfg = fileCfg
	}
	flags := config.Config{}
	if changed(cmd, "log-level") {
		flags.LogLevel = g.logLevel
	}
	if changed(cmd, "data-dir") {
		flags.DataDir = g.dataDir
	}
	if changed(cmd, "models-dir") {
		flags.ModelsDir = g.modelsDir
	}
	cfg = cfg.Merge(flags).Merge(overlay)
	cfg, err := cfg.WithDefaults()
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empties.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

const shutdownTimeout = 5 * time.Second
