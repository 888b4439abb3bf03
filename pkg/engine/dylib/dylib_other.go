//go:build !darwin && !freebsd && !linux

package dylib

import (
	"fmt"
	"runtime"

	"github.com/gruvah/kickbridge/pkg/engine"
)

// DefaultName is the library file name searched for when no path is given.
func DefaultName() string {
	return "gruvah.dll"
}

// Library is unavailable on this platform.
type Library struct{}

// Open always fails on this platform.
func Open(path string) (*Library, error) {
	return nil, fmt.Errorf("%w: dynamic loading is not supported on %s", engine.ErrLibraryNotFound, runtime.GOOS)
}

// Path returns an empty string.
func (l *Library) Path() string { return "" }

// Close does nothing.
func (l *Library) Close() error { return nil }

// Create implements engine.Factory.
func (l *Library) Create(uint32, []string) (engine.Native, error) {
	return nil, engine.ErrLibraryNotFound
}
