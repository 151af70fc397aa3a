package figure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Save serializes the figure to path in the native editable format. The
// path must carry the .fig extension. On success the figure's FilePath is
// updated to the saved location.
func (f *Figure) Save(path string) error {
	if !strings.EqualFold(filepath.Ext(path), Ext) {
		return fmt.Errorf("save figure: %q does not have the %s extension", path, Ext)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode figure: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write figure file: %w", err)
	}
	f.FilePath = path
	return nil
}

// Load reads a .fig file and returns the figure it contains, live and
// re-editable. The returned figure's FilePath points at path.
func Load(path string) (*Figure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read figure file: %w", err)
	}
	var f Figure
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode figure file %q: %w", path, err)
	}
	f.FilePath = path
	return &f, nil
}
