package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the dependency-declaration document vigil inspects.
const FileName = "package.json"

// DependencyMap maps a package name to its declared version string. It is
// built once per doctor run and never mutated afterwards.
type DependencyMap map[string]string

// Lookup returns the declared version for name, if any.
func (m DependencyMap) Lookup(name string) (string, bool) {
	version, ok := m[name]
	return version, ok
}

// ManifestError reports a manifest that could not be read or decoded.
type ManifestError struct {
	Path     string
	NotFound bool
	Cause    error
}

func (e *ManifestError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("%s: manifest not found", e.Path)
	}
	return fmt.Sprintf("%s: failed to parse manifest: %v", e.Path, e.Cause)
}

func (e *ManifestError) Unwrap() error { return e.Cause }

type manifestFile struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Read loads <dir>/package.json and merges its regular and development
// dependency tables into one DependencyMap. devDependencies wins on key
// collision. Exactly one filesystem read is performed.
func Read(dir string) (DependencyMap, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestError{Path: path, NotFound: errors.Is(err, os.ErrNotExist), Cause: err}
	}
	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &ManifestError{Path: path, Cause: err}
	}
	deps := make(DependencyMap, len(file.Dependencies)+len(file.DevDependencies))
	for name, version := range file.Dependencies {
		deps[name] = version
	}
	for name, version := range file.DevDependencies {
		deps[name] = version
	}
	return deps, nil
}
