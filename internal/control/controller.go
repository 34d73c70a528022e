// Package control dispatches the daemon's commands to the download manager,
// engine supervisor, hardware probe and model registry.
package control

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"astrod/internal/engine"
	"astrod/internal/events"
	"astrod/internal/hardware"
	"astrod/internal/registry"
	"astrod/pkg/types"
)

// Downloader fetches a remote artifact to a local path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) (string, error)
}

// Engine is the worker supervisor.
type Engine interface {
	Start(cfg engine.Config) error
	Stop()
	Status() types.EngineStatus
	HealthCheck(ctx context.Context) (string, error)
}

// Options wires a Controller. Probe defaults to hardware.Probe and Broker to
// a fresh broker.
type Options struct {
	ModelsDir  string
	Downloader Downloader
	Engine     Engine
	Broker     *events.Broker
	Probe      func() (hardware.Snapshot, error)
	Logger     *zerolog.Logger
}

// Controller implements the HTTP service on top of the core components.
type Controller struct {
	modelsDir string
	dl        Downloader
	eng       Engine
	broker    *events.Broker
	probe     func() (hardware.Snapshot, error)
	log       zerolog.Logger
}

func New(opts Options) *Controller {
	c := &Controller{
		modelsDir: opts.ModelsDir,
		dl:        opts.Downloader,
		eng:       opts.Engine,
		broker:    opts.Broker,
		probe:     opts.Probe,
		log:       zerolog.Nop(),
	}
	if c.broker == nil {
		c.broker = events.NewBroker(0)
	}
	if c.probe == nil {
		c.probe = hardware.Probe
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("component", "control").Logger()
	}
	return c
}

// Download stores url under the models directory as filename.
func (c *Controller) Download(ctx context.Context, url, filename string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", &InvalidArgumentError{Field: "url", Reason: "must not be empty"}
	}
	name, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	return c.dl.Download(ctx, url, filepath.Join(c.modelsDir, name))
}

// SanitizeFilename accepts only a bare file name.
func SanitizeFilename(name string) (string, error) {
	n := strings.TrimSpace(name)
	switch {
	case n == "":
		return "", &InvalidArgumentError{Field: "filename", Reason: "must not be empty"}
	case n == "." || n == "..":
		return "", &InvalidArgumentError{Field: "filename", Reason: "must name a file"}
	case strings.ContainsAny(n, `/\`) || filepath.Base(n) != n || filepath.IsAbs(n) || filepath.VolumeName(n) != "":
		return "", &InvalidArgumentError{Field: "filename", Reason: "must not contain path separators"}
	case strings.ContainsRune(n, 0):
		return "", &InvalidArgumentError{Field: "filename", Reason: "must not contain NUL"}
	}
	return n, nil
}

// StartEngine validates req and launches the worker, replacing any running one.
func (c *Controller) StartEngine(req types.StartEngineRequest) error {
	cfg := engine.Config{
		ModelPath:   req.ModelPath,
		UseGPU:      req.UseGPU,
		Threads:     req.Threads,
		ContextSize: req.ContextSize,
	}
	if err := cfg.Validate(); err != nil {
		return &InvalidArgumentError{Field: "engine config", Reason: err.Error()}
	}
	return c.eng.Start(cfg)
}

func (c *Controller) StopEngine() { c.eng.Stop() }

func (c *Controller) EngineHealth(ctx context.Context) (string, error) {
	return c.eng.HealthCheck(ctx)
}

func (c *Controller) EngineStatus() types.EngineStatus { return c.eng.Status() }

// Hardware probes the host and attaches the recommended tier. gpuFallback
// reports that the caller only found a software GPU adapter.
func (c *Controller) Hardware(gpuFallback bool) (types.HardwareResponse, error) {
	s, err := c.probe()
	if err != nil {
		c.log.Warn().Err(err).Msg("hardware probe failed")
		return types.HardwareResponse{}, err
	}
	tier := hardware.Recommend(s, gpuFallback)
	return types.HardwareResponse{
		TotalMemoryMB:        s.TotalMemoryMB,
		CPUs:                 s.CPUs,
		OS:                   s.OS,
		Arch:                 s.Arch,
		Tier:                 tier.Name,
		RecommendedModel:     tier.RecommendedModel,
		RecommendedModelSize: tier.RecommendedModelSize,
		SecondaryModel:       tier.SecondaryModel,
	}, nil
}

// ListModels returns the artifacts already present in the models directory.
func (c *Controller) ListModels() ([]types.Model, error) {
	return registry.LoadDir(c.modelsDir)
}

// Subscribe registers an event listener; call cancel when done.
func (c *Controller) Subscribe() (<-chan events.Event, func()) {
	return c.broker.Subscribe()
}

// Close stops the engine. It is the host's shutdown hook.
func (c *Controller) Close() error {
	c.eng.Stop()
	return nil
}
