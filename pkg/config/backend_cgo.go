//go:build gruvah_cgo

package config

// DefaultBackend is the linked engine, whose audio-thread calls do not
// allocate.
const DefaultBackend = "cgo"
