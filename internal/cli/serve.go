package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"astrod/internal/config"
	"astrod/internal/control"
	"astrod/internal/download"
	"astrod/internal/engine"
	"astrod/internal/events"
	"astrod/internal/httpapi"
)

type serveFlags struct {
	addr        string
	engineBin   string
	stopGrace   time.Duration
	pinMemory   bool
	corsEnabled bool
	corsOrigins string
}

func newServeCmd(g *globalFlags) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the local HTTP control API",
		Example: "  astrod serve --addr 127.0.0.1:8765 --cors --cors-origins tauri://localhost",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overlay := config.Config{}
			if changed(cmd, "addr") {
				overlay.Addr = f.addr
			}
			if changed(cmd, "engine-bin") {
				overlay.EngineBin = f.engineBin
			}
			if changed(cmd, "engine-stop-grace") {
				overlay.EngineStopGrace = config.Duration(f.stopGrace)
			}
			if changed(cmd, "pin-memory") {
				pin := f.pinMemory
				overlay.PinMemory = &pin
			}
			if changed(cmd, "cors") {
				overlay.CORSEnabled = f.corsEnabled
			}
			if changed(cmd, "cors-origins") {
				overlay.CORSOrigins = splitCSV(f.corsOrigins)
			}
			cfg, err := resolveConfig(cmd, g, overlay)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cmd, cfg)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.addr, "addr", config.DefaultAddr, "HTTP listen address")
	fl.StringVar(&f.engineBin, "engine-bin", "", "Path to the llama-server executable (default: bundled binaries, then PATH)")
	fl.DurationVar(&f.stopGrace, "engine-stop-grace", config.DefaultStopGrace, "Time the engine gets to exit after SIGTERM before it is killed")
	fl.BoolVar(&f.pinMemory, "pin-memory", true, "Launch the engine with --no-mmap --mlock")
	fl.BoolVar(&f.corsEnabled, "cors", false, "Enable CORS for the desktop UI")
	fl.StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated allowed origins")
	return cmd
}

func serve(parent context.Context, cmd *cobra.Command, cfg config.Config) error {
	log, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broker := events.NewBroker(0)
	dl := download.New(download.Config{Publisher: broker, Logger: &log})
	sup := engine.New(engine.SupervisorConfig{
		BinaryPath: cfg.EngineBin,
		StopGrace:  cfg.EngineStopGrace.Std(),
		PinMemory:  *cfg.PinMemory,
		Publisher:  broker,
		Logger:     &log,
	})
	ctrl := control.New(control.Options{
		ModelsDir:  cfg.ModelsDir,
		Downloader: dl,
		Engine:     sup,
		Broker:     broker,
		Logger:     &log,
	})
	defer func() { _ = ctrl.Close() }()

	httpapi.SetLogger(log)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
	httpapi.SetBaseContext(ctx)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: httpapi.NewMux(ctrl), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("models_dir", cfg.ModelsDir).
		Bool("pin_memory", *cfg.PinMemory).
		Msg("astrod listening")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
