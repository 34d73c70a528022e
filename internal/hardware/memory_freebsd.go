package hardware

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func totalMemory() (uint64, error) {
	n, err := unix.SysctlUint64("hw.physmem")
	if err != nil {
		return 0, fmt.Errorf("sysctl hw.physmem: %w", err)
	}
	return n, nil
}
