package tuning

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFile is the name of the embedded tuning document.
const DefaultFile = "tuning.yaml"

//go:embed tuning.yaml
var TuningFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Load reads a tuning document from disk, falling back to the embedded copy
// with the same base name.
func Load(path string) ([]byte, error) {
	if path == "" {
		path = DefaultFile
	}
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}
	return TuningFS.ReadFile(filepath.Base(filepath.FromSlash(path)))
}

// LoadScript reads a drift script from disk, falling back to the embedded scripts.
func LoadScript(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("tuning: empty script name")
	}
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(cleanScriptPath(name))
}

func cleanScriptPath(path string) string {
	s := filepath.ToSlash(path)

	if after, ok := strings.CutPrefix(s, "tuning/scripts/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "tuning/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}
