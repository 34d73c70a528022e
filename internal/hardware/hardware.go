// Package hardware reports the host facts used to size the inference
// engine: total physical memory, logical CPUs, OS and architecture.
package hardware

import (
	"errors"
	"runtime"
)

// ErrUnsupported is returned when total memory cannot be read on this OS.
var ErrUnsupported = errors.New("hardware: memory probe not supported on " + runtime.GOOS)

// Snapshot is a point-in-time view of the host.
type Snapshot struct {
	TotalMemoryMB uint64 `json:"total_memory_mb"`
	CPUs          int    `json:"cpus"`
	OS            string `json:"platform"`
	Arch          string `json:"arch"`
}

// Probe reads the host. Memory is reported in whole megabytes, rounded down.
func Probe() (Snapshot, error) {
	total, err := totalMemory()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		TotalMemoryMB: bytesToMB(total),
		CPUs:          runtime.NumCPU(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}, nil
}

func bytesToMB(b uint64) uint64 { return b / (1024 * 1024) }
