//go:build darwin || freebsd || linux

// Package dylib loads the kick engine from a shared library at run time.
package dylib

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/gruvah/kickbridge/pkg/engine"
)

// Symbol names exported by the engine library.
const (
	symCreate      = "create"
	symDestroy     = "destroy"
	symProcess     = "process"
	symProcessMono = "process_mono"
	symProcessMidi = "process_midi_message"
	symUpdateParam = "update_param"
	symCreateMidi  = "create_midi_message"
	symDestroyMidi = "destroy_midi_message"
)

// DefaultName is the library file name searched for when no path is given.
func DefaultName() string {
	if runtime.GOOS == "darwin" {
		return "libgruvah.dylib"
	}
	return "libgruvah.so"
}

// Library is an opened engine library. It implements engine.Factory.
type Library struct {
	path   string
	handle uintptr

	mu     sync.Mutex
	closed bool

	// Symbols taking only pointers and integers are called through
	// purego.SyscallN, which does not allocate.
	create      uintptr
	destroy     uintptr
	process     uintptr
	processMono uintptr
	processMidi uintptr
	createMidi  uintptr
	destroyMidi uintptr

	// SyscallN loads float registers from the integer arguments, so the
	// float in update_param needs a RegisterFunc binding. That binding
	// allocates per call; the linked cgo backend does not.
	updateParam func(synth uintptr, id *byte, value float32)
}

// Open loads the library at path. An empty path uses DefaultName, resolved
// by the dynamic loader.
func Open(path string) (*Library, error) {
	if path == "" {
		path = DefaultName()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", engine.ErrLibraryNotFound, path, err)
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", engine.ErrLibraryNotFound, path, err)
	}

	lib := &Library{path: path, handle: handle}
	symbols := []struct {
		addr *uintptr
		name string
	}{
		{&lib.create, symCreate},
		{&lib.destroy, symDestroy},
		{&lib.process, symProcess},
		{&lib.processMono, symProcessMono},
		{&lib.processMidi, symProcessMidi},
		{&lib.createMidi, symCreateMidi},
		{&lib.destroyMidi, symDestroyMidi},
	}
	for _, s := range symbols {
		sym, err := purego.Dlsym(handle, s.name)
		if err != nil {
			_ = purego.Dlclose(handle)
			return nil, fmt.Errorf("dylib: %s: missing symbol %q: %w", path, s.name, err)
		}
		*s.addr = sym
	}
	sym, err := purego.Dlsym(handle, symUpdateParam)
	if err != nil {
		_ = purego.Dlclose(handle)
		return nil, fmt.Errorf("dylib: %s: missing symbol %q: %w", path, symUpdateParam, err)
	}
	purego.RegisterFunc(&lib.updateParam, sym)
	return lib, nil
}

// Path returns the path the library was opened from.
func (l *Library) Path() string {
	return l.path
}

// Close unloads the library. Engines created from it must be destroyed
// first.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return purego.Dlclose(l.handle)
}

// Create implements engine.Factory.
func (l *Library) Create(sampleRate uint32, ids []string) (engine.Native, error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("dylib: %s is closed", l.path)
	}

	synth, _, _ := purego.SyscallN(l.create, uintptr(sampleRate))
	if synth == 0 {
		return nil, fmt.Errorf("dylib: create(%d) returned null", sampleRate)
	}

	// NUL-terminated copies are built once so UpdateParam passes a stable
	// pointer without converting strings on the audio thread.
	cids := make([][]byte, len(ids))
	for i, id := range ids {
		cids[i] = append([]byte(id), 0)
	}
	return &instance{lib: l, synth: synth, ids: cids}, nil
}

type instance struct {
	lib   *Library
	synth uintptr
	ids   [][]byte
	raw   [3]byte
}

func (n *instance) Process(left, right []float32) {
	purego.SyscallN(n.lib.process, n.synth,
		uintptr(unsafe.Pointer(&left[0])), uintptr(unsafe.Pointer(&right[0])), uintptr(len(left)))
}

func (n *instance) ProcessMono(block []float32) {
	purego.SyscallN(n.lib.processMono, n.synth, uintptr(unsafe.Pointer(&block[0])), uintptr(len(block)))
}

func (n *instance) ProcessMidi(msg engine.Message) {
	n.raw = msg.Raw
	// int32 is sign-extended so the callee sees the same value in the
	// low 32 bits of the register.
	m, _, _ := purego.SyscallN(n.lib.createMidi, uintptr(int64(msg.Timestamp)),
		uintptr(unsafe.Pointer(&n.raw[0])), uintptr(msg.Pitch), uintptr(msg.Velocity))
	if m == 0 {
		return
	}
	purego.SyscallN(n.lib.processMidi, n.synth, m)
	purego.SyscallN(n.lib.destroyMidi, m)
}

func (n *instance) UpdateParam(index int, value float32) {
	if index < 0 || index >= len(n.ids) {
		return
	}
	n.lib.updateParam(n.synth, &n.ids[index][0], value)
}

func (n *instance) Destroy() {
	if n.synth == 0 {
		return
	}
	purego.SyscallN(n.lib.destroy, n.synth)
	n.synth = 0
}
