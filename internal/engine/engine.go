// Package engine supervises the llama-server worker process: it launches it
// with a deterministic argument list, keeps at most one instance alive, watches
// it for abnormal exits, and checks its health endpoint.
//
// The worker is an opaque executable. The supervisor does not wait for it to
// become ready; callers poll HealthCheck until it answers.
package engine

import (
	"errors"
	"strconv"
	"strings"
)

// Fixed launch contract of the worker.
const (
	Host             = "127.0.0.1"
	Port             = 8081
	DefaultHealthURL = "http://127.0.0.1:8081/health"
	// AllGPULayers is large enough to offload every layer of any model we ship.
	AllGPULayers = 99
)

// Config is the caller-supplied launch configuration of one worker.
type Config struct {
	ModelPath   string
	UseGPU      bool
	Threads     int
	ContextSize int
}

// Validate checks that every launch parameter is set. It does not check that
// the model file exists.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.ModelPath) == "" {
		problems = append(problems, "model path is required")
	}
	if c.Threads <= 0 {
		problems = append(problems, "threads must be positive")
	}
	if c.ContextSize <= 0 {
		problems = append(problems, "context size must be positive")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// BuildArgs returns the worker command line for cfg. pinMemory adds
// --no-mmap --mlock so the model stays resident in physical memory.
func BuildArgs(cfg Config, pinMemory bool) []string {
	gpuLayers := 0
	if cfg.UseGPU {
		gpuLayers = AllGPULayers
	}
	args := []string{
		"--model", cfg.ModelPath,
		"--port", strconv.Itoa(Port),
		"--host", Host,
		"-c", strconv.Itoa(cfg.ContextSize),
		"--threads", strconv.Itoa(cfg.Threads),
		"--n-gpu-layers", strconv.Itoa(gpuLayers),
	}
	if pinMemory {
		args = append(args, "--no-mmap", "--mlock")
	}
	return args
}
