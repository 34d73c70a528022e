package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"astrod/internal/config"
	"astrod/internal/control"
	"astrod/internal/download"
	"astrod/internal/engine"
	"astrod/internal/events"
	"astrod/pkg/types"
)

func newDownloadCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "download <url> <filename>",
		Short:   "Download a model into the models directory",
		Example: "  astrod download https://huggingface.co/.../model.gguf model.gguf",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, g, config.Config{})
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := cmd.ErrOrStderr()
			progress := events.PublisherFunc(func(e events.Event) {
				p, ok := e.Data.(types.DownloadProgress)
				if !ok || p.Total <= 0 {
					return
				}
				fmt.Fprintf(out, "\r%s / %s (%d%%)", formatBytes(p.Downloaded), formatBytes(p.Total), p.Downloaded*100/p.Total)
			})
			ctrl := control.New(control.Options{
				ModelsDir:  cfg.ModelsDir,
				Downloader: download.New(download.Config{Publisher: progress, Logger: &log}),
			})
			path, err := ctrl.Download(cmd.Context(), args[0], args[1])
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newHardwareCmd(g *globalFlags) *cobra.Command {
	var gpuFallback bool
	cmd := &cobra.Command{
		Use:   "hardware",
		Short: "Print host memory, CPUs and the recommended model tier as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hw, err := control.New(control.Options{}).Hardware(gpuFallback)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(hw)
		},
	}
	cmd.Flags().BoolVar(&gpuFallback, "gpu-fallback", false, "Only a software GPU adapter is available")
	return cmd
}

func newHealthCmd(g *globalFlags) *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the running engine's health endpoint once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			body, err := engine.CheckHealth(ctx, http.DefaultClient, url)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", engine.DefaultHealthURL, "Engine health endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
	return cmd
}
