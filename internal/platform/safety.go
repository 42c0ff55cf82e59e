package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	// "go run" builds into the temp dir
	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}

	// "go test" binaries end in .test
	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolveDataDir determines the actual data directory based on safety rules.
// When forceTemp is set it re-roots the path into a temporary directory so
// development runs never touch the user's notes.
func ResolveDataDir(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return SystemDir
		}
		return userPath
	}

	// A path already inside the temp dir (t.TempDir()) is trusted as is.
	cleanUserPath := filepath.Clean(userPath)
	rel, err := filepath.Rel(os.TempDir(), cleanUserPath)
	if err == nil && !strings.HasPrefix(rel, "..") && filepath.IsAbs(cleanUserPath) {
		return cleanUserPath
	}

	baseTemp := filepath.Join(os.TempDir(), "jotter-dev")
	subName := filepath.Base(cleanUserPath)
	if userPath == "" || subName == "." || subName == string(os.PathSeparator) {
		subName = "default"
	}
	return filepath.Join(baseTemp, subName)
}
