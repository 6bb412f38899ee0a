package mpv

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrNotFound is returned when no mpv executable can be located
var ErrNotFound = errors.New("mpv not found")

// MPV wraps the mpv executable
type MPV struct {
	path string
}

// New locates mpv. An explicit path wins; otherwise the bin/ folder next to
// the executable, ../bin, ./bin and finally PATH are searched.
func New(explicit string) (*MPV, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("%w at %s: %v", ErrNotFound, explicit, err)
		}
		return &MPV{path: explicit}, nil
	}

	name := "mpv"
	if runtime.GOOS == "windows" {
		name = "mpv.exe"
	}

	var searchPaths []string
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		searchPaths = append(searchPaths,
			filepath.Join(exeDir, "bin"),       // Next to executable
			filepath.Join(exeDir, "..", "bin"), // Parent/bin (for development)
		)
	}
	searchPaths = append(searchPaths, "bin")

	for _, searchPath := range searchPaths {
		candidate := filepath.Join(searchPath, name)
		if _, err := os.Stat(candidate); err == nil {
			return &MPV{path: candidate}, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: place %s in the bin/ folder or on PATH", ErrNotFound, name)
	}
	return &MPV{path: path}, nil
}

// Path returns the resolved executable path
func (m *MPV) Path() string {
	return m.path
}
