//go:build !linux && !darwin && !freebsd && !windows

package hardware

func totalMemory() (uint64, error) { return 0, ErrUnsupported }
