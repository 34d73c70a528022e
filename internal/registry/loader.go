package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"astrod/internal/common/fsutil"
	"astrod/pkg/types"
)

// ModelExt is the extension of artifacts the registry lists.
const ModelExt = ".gguf"

// LoadDir lists the *.gguf files in dir (case-insensitive), sorted by name.
// ID is the file name and Path the absolute file path. A missing directory
// yields an empty list: nothing has been downloaded yet.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.Model{}, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	models := make([]types.Model, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ModelExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		models = append(models, types.Model{ID: name, Path: filepath.Join(abs, name), SizeBytes: info.Size()})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}
