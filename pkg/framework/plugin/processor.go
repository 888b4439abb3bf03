// Package plugin defines the instrument contract seen by a host: metadata,
// parameters, layout, state and the per-block process call.
package plugin

import (
	"github.com/gruvah/kickbridge/pkg/framework/bus"
	"github.com/gruvah/kickbridge/pkg/framework/param"
	"github.com/gruvah/kickbridge/pkg/framework/process"
)

// Processor is what a host drives. Prepare, Release, SetLayout and the
// state calls belong to the control context; Process is the audio callback
// and must not allocate or block.
type Processor interface {
	GetInfo() Info
	Parameters() *param.Registry
	Buses() *bus.Configuration

	// SetLayout negotiates the main output channel count before Prepare.
	SetLayout(channels int) error

	// Prepare is called when the sample rate and maximum block size are known.
	Prepare(sampleRate float64, maxBlockSize int) error

	// Release tears down everything Prepare created.
	Release()

	// Process renders one block in place.
	Process(ctx *process.Context)

	SaveState() ([]byte, error)
	RestoreState(blob []byte) error
}
