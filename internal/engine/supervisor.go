package engine

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"astrod/internal/events"
	"astrod/pkg/types"
)

const (
	defaultStopGrace = 2 * time.Second
	killWait         = 5 * time.Second
)

// SupervisorConfig holds the launch-time choices and collaborators of a
// Supervisor. Zero values select defaults.
type SupervisorConfig struct {
	// BinaryPath overrides worker lookup.
	BinaryPath string
	// BinaryDirs are searched for BinaryName; defaults to DefaultBinaryDirs.
	BinaryDirs []string
	// HealthURL defaults to DefaultHealthURL.
	HealthURL string
	// StopGrace is how long a terminated worker gets before it is killed.
	StopGrace time.Duration
	// PinMemory launches the worker with --no-mmap --mlock.
	PinMemory  bool
	Publisher  events.Publisher
	Logger     *zerolog.Logger
	HTTPClient *http.Client
}

// Supervisor owns at most one worker process.
type Supervisor struct {
	cfg        SupervisorConfig
	binaryDirs []string
	healthURL  string
	stopGrace  time.Duration
	httpClient *http.Client
	publisher  events.Publisher
	log        zerolog.Logger
	command    commandFunc

	mu   sync.Mutex
	proc *managedProcess
}

func New(cfg SupervisorConfig) *Supervisor {
	s := &Supervisor{
		cfg:        cfg,
		binaryDirs: cfg.BinaryDirs,
		healthURL:  cfg.HealthURL,
		stopGrace:  cfg.StopGrace,
		httpClient: cfg.HTTPClient,
		publisher:  events.OrNoop(cfg.Publisher),
		log:        zerolog.Nop(),
		command:    exec.Command,
	}
	if s.binaryDirs == nil {
		s.binaryDirs = DefaultBinaryDirs()
	}
	if s.healthURL == "" {
		s.healthURL = DefaultHealthURL
	}
	if s.stopGrace <= 0 {
		s.stopGrace = defaultStopGrace
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{}
	}
	if cfg.Logger != nil {
		s.log = cfg.Logger.With().Str("component", "engine").Logger()
	}
	return s
}

// Start replaces any running worker with a new one launched from cfg. It
// returns once the process has been spawned; it does not wait for the worker
// to serve requests. Failures of the old worker's shutdown are logged only.
func (s *Supervisor) Start(cfg Config) error {
	s.mu.Lock()
	old := s.proc
	s.proc = nil
	s.mu.Unlock()
	if old != nil {
		s.log.Info().Int("pid", old.pid).Msg("replacing running engine")
		s.terminate(old)
		running.Set(0)
	}

	bin, err := ResolveBinary(s.cfg.BinaryPath, s.binaryDirs)
	if err != nil {
		startsTotal.WithLabelValues("error").Inc()
		return err
	}
	args := BuildArgs(cfg, s.cfg.PinMemory)
	p, err := spawn(s.command, bin, args, cfg)
	if err != nil {
		startsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("bin", bin).Msg("engine spawn failed")
		return err
	}

	s.mu.Lock()
	displaced := s.proc
	s.proc = p
	s.mu.Unlock()

	go s.watch(p)
	if displaced != nil {
		// a concurrent Start stored its process between our two critical sections
		s.terminate(displaced)
	}
	running.Set(1)
	startsTotal.WithLabelValues("ok").Inc()
	s.log.Info().
		Int("pid", p.pid).
		Str("bin", bin).
		Str("model", cfg.ModelPath).
		Bool("gpu", cfg.UseGPU).
		Int("threads", cfg.Threads).
		Int("ctx", cfg.ContextSize).
		Msg("engine started")
	return nil
}

// Stop terminates the current worker, if any. It is also the shutdown hook of
// the host process. Termination failures are logged, never returned.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	p := s.proc
	s.proc = nil
	s.mu.Unlock()
	if p == nil {
		return
	}
	s.terminate(p)
	running.Set(0)
}

// Status describes the process in the slot.
func (s *Supervisor) Status() types.EngineStatus {
	s.mu.Lock()
	p := s.proc
	s.mu.Unlock()
	if p == nil {
		return types.EngineStatus{}
	}
	st := types.EngineStatus{
		Running:     !p.exited(),
		PID:         p.pid,
		StartedUnix: p.startedAt.Unix(),
		Config: &types.StartEngineRequest{
			ModelPath:   p.config.ModelPath,
			UseGPU:      p.config.UseGPU,
			Threads:     p.config.Threads,
			ContextSize: p.config.ContextSize,
		},
	}
	if !st.Running {
		code := p.exitCode
		st.ExitCode = &code
	}
	return st
}

// watch follows one worker until its terminal event. It never takes the slot
// lock.
func (s *Supervisor) watch(p *managedProcess) {
	log := s.log.With().Int("pid", p.pid).Logger()
	for ev := range p.events {
		switch ev.kind {
		case eventStdout, eventStderr:
			log.Debug().Str("stream", ev.kind.String()).Msg(ev.line)
		case eventTerminated:
			if ev.code == 0 || p.stopping.Load() {
				log.Info().Int("code", ev.code).Msg("engine exited")
				return
			}
			msg := fmt.Sprintf("engine exited with code %d; a required library or GPU driver may be missing", ev.code)
			s.reportCrash(p, msg)
			return
		case eventError:
			s.reportCrash(p, ev.err.Error())
			return
		}
	}
}

func (s *Supervisor) reportCrash(p *managedProcess, msg string) {
	crashesTotal.Inc()
	running.Set(0)
	s.log.Error().Int("pid", p.pid).Str("model", p.config.ModelPath).Msg(msg)
	s.publisher.Publish(events.Event{Name: events.EngineError, Data: types.EngineError{Message: msg, PID: p.pid}})
}

// terminate asks the worker to exit, escalating to a kill after the grace
// period, and waits for it to be reaped.
func (s *Supervisor) terminate(p *managedProcess) {
	p.stopping.Store(true)
	if p.exited() {
		return
	}
	log := s.log.With().Int("pid", p.pid).Logger()
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		log.Debug().Err(err).Msg("terminate signal not delivered")
	} else {
		select {
		case <-p.done:
			log.Info().Msg("engine stopped")
			return
		case <-time.After(s.stopGrace):
			log.Warn().Dur("grace", s.stopGrace).Msg("engine ignored terminate, killing")
		}
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		log.Error().Err(err).Msg("kill engine")
	}
	select {
	case <-p.done:
		log.Info().Msg("engine killed")
	case <-time.After(killWait):
		log.Error().Msg("engine still running after kill")
	}
}
