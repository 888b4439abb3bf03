// Package state saves and restores parameter values as an opaque blob.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gruvah/kickbridge/pkg/framework/param"
)

const (
	magic = "GRUVAH"

	// Version is the blob layout written by Save.
	Version uint32 = 1

	maxIDLength = 256
)

var (
	// ErrInvalidState is returned for blobs that cannot be decoded.
	ErrInvalidState = errors.New("invalid state format")
	// ErrVersionTooNew is returned for blobs written by a newer layout.
	ErrVersionTooNew = errors.New("state version is newer than supported")
)

// Manager handles plugin state saving and loading
type Manager struct {
	version  uint32
	registry *param.Registry
}

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{
		version:  Version,
		registry: registry,
	}
}

// Save writes every parameter as (id, plain value).
func (m *Manager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	params := m.registry.All()
	if err := binary.Write(w, binary.LittleEndian, uint32(len(params))); err != nil {
		return err
	}
	for _, p := range params {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(p.ID))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, math.Float64bits(p.Value())); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the saved state as a blob.
func (m *Manager) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load decodes a blob and commits its values without notifying listeners.
// Nothing is committed unless the whole blob decodes. Unknown ids are
// skipped; parameters absent from the blob keep their current value.
// Load returns the number of parameters restored.
func (m *Manager) Load(r io.Reader) (int, error) {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, fmt.Errorf("%w: header: %v", ErrInvalidState, err)
	}
	if string(header) != magic {
		return 0, ErrInvalidState
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, fmt.Errorf("%w: version: %v", ErrInvalidState, err)
	}
	if version > m.version {
		return 0, fmt.Errorf("%w: %d > %d", ErrVersionTooNew, version, m.version)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrInvalidState, err)
	}

	type entry struct {
		index int
		value float64
	}
	var entries []entry
	// A repeated id overwrites its earlier entry and counts once.
	seen := make(map[int]int)
	for i := uint32(0); i < count; i++ {
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return 0, fmt.Errorf("%w: entry %d: %v", ErrInvalidState, i, err)
		}
		if n == 0 || n > maxIDLength {
			return 0, fmt.Errorf("%w: entry %d: id length %d", ErrInvalidState, i, n)
		}
		id := make([]byte, n)
		if _, err := io.ReadFull(r, id); err != nil {
			return 0, fmt.Errorf("%w: entry %d: %v", ErrInvalidState, i, err)
		}
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return 0, fmt.Errorf("%w: entry %d: %v", ErrInvalidState, i, err)
		}

		p, err := m.registry.Lookup(string(id))
		if err != nil {
			continue
		}
		e := entry{index: p.Index, value: math.Float64frombits(bits)}
		if at, ok := seen[p.Index]; ok {
			entries[at] = e
			continue
		}
		seen[p.Index] = len(entries)
		entries = append(entries, e)
	}

	for _, e := range entries {
		m.registry.Store(e.index, e.value)
	}
	return len(entries), nil
}

// Restore is Load from a blob.
func (m *Manager) Restore(blob []byte) (int, error) {
	return m.Load(bytes.NewReader(blob))
}
