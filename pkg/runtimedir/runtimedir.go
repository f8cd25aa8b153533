// Package runtimedir resolves the directories auraed reads and writes at
// runtime: the socket/control directory (AURAE_RUNTIME_DIR) and the
// persistent library directory (AURAED_LIBRARY_DIR). Resolution follows
// the same "flag wins when given, env var wins otherwise, hard default
// last" order the teacher's pkg/datadir uses for K3S_DATA_DIR.
package runtimedir

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rancher/wrangler/v3/pkg/resolvehome"
)

const (
	runtimeDirEnv = "AURAE_RUNTIME_DIR"
	libraryDirEnv = "AURAED_LIBRARY_DIR"

	defaultRuntimeDir = "/var/run/aurae"
	defaultLibraryDir = "/var/lib/aurae"
)

// Runtime resolves the runtime directory: flag value if non-empty, else
// $AURAE_RUNTIME_DIR, else the compiled-in default.
func Runtime(flagValue string) (string, error) {
	return resolve(flagValue, runtimeDirEnv, defaultRuntimeDir)
}

// Library resolves the library directory the same way.
func Library(flagValue string) (string, error) {
	return resolve(flagValue, libraryDirEnv, defaultLibraryDir)
}

func resolve(flagValue, envVar, fallback string) (string, error) {
	dir := flagValue
	if dir == "" {
		dir = os.Getenv(envVar)
	}
	if dir == "" {
		dir = fallback
	}

	dir, err := resolvehome.Resolve(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", dir)
	}
	return filepath.Abs(dir)
}

// EnsureDir makes sure dir exists with mode perm, creating parents as
// needed.
func EnsureDir(dir string, perm os.FileMode) error {
	if err := os.MkdirAll(dir, perm); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	return nil
}
