package engine

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"astrod/internal/common/fsutil"
)

// BinaryName is the platform file name of the bundled worker.
var BinaryName = func() string {
	if runtime.GOOS == "windows" {
		return "llama-server.exe"
	}
	return "llama-server"
}()

// DefaultBinaryDirs lists where a packaged install keeps the worker: a
// binaries/ folder next to our own executable, then the executable's folder.
func DefaultBinaryDirs() []string {
	dir, err := fsutil.ExecutableDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "binaries"), dir}
}

// ResolveBinary locates the worker executable. An explicit path wins when it
// names an existing file; otherwise dirs are searched in order, then PATH.
func ResolveBinary(explicit string, dirs []string) (string, error) {
	var checked []string
	if explicit != "" {
		p, err := fsutil.ExpandHome(explicit)
		if err == nil && isFile(p) {
			return p, nil
		}
		checked = append(checked, explicit)
	}
	for _, d := range dirs {
		p := filepath.Join(d, BinaryName)
		if isFile(p) {
			return p, nil
		}
		checked = append(checked, p)
	}
	if p, err := exec.LookPath(BinaryName); err == nil {
		return p, nil
	}
	return "", &BinaryNotFoundError{Name: BinaryName, Checked: checked}
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}
