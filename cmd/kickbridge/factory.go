package main

import (
	"fmt"

	"github.com/gruvah/kickbridge/pkg/config"
	"github.com/gruvah/kickbridge/pkg/engine"
	"github.com/gruvah/kickbridge/pkg/engine/dylib"
	"github.com/gruvah/kickbridge/pkg/engine/enginetest"
	"github.com/gruvah/kickbridge/pkg/framework/debug"
)

func noClose() error { return nil }

// openFactory selects the engine backend. The returned func releases it.
func openFactory(cfg config.Engine) (engine.Factory, func() error, error) {
	switch cfg.Backend {
	case "dylib":
		path := cfg.Library
		if path == "" {
			path = dylib.DefaultName()
		}
		lib, err := dylib.Open(path)
		if err != nil {
			return nil, nil, err
		}
		debug.Info("engine library %s", lib.Path())
		debug.Warn("dylib backend: parameter updates allocate on the audio thread; build with -tags gruvah_cgo to link the engine")
		return lib, lib.Close, nil
	case "cgo":
		f, err := linkedFactory()
		if err != nil {
			return nil, nil, err
		}
		return f, noClose, nil
	case "null":
		debug.Warn("null engine backend: output is silent")
		return &enginetest.Counter{}, noClose, nil
	}
	return nil, nil, fmt.Errorf("%w: backend %q", engine.ErrNoFactory, cfg.Backend)
}
