package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNoProject is returned by FindRoot when no directory up to the
// filesystem root holds a project marker.
var ErrNoProject = errors.New("no jotter project found")

// rootMarkers identify a project directory, in lookup order.
var rootMarkers = []string{SystemDir, ConfigFileName}

// FindRoot returns the nearest directory, starting at startDir and moving up,
// that contains a .jotter directory or a jotter.yaml file.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if isProject(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

func isProject(dir string) bool {
	for _, marker := range rootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
