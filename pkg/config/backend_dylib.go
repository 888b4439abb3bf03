//go:build !gruvah_cgo

package config

// DefaultBackend loads the engine library at run time.
const DefaultBackend = "dylib"
