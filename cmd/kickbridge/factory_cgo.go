//go:build gruvah_cgo

package main

import (
	"github.com/gruvah/kickbridge/pkg/engine"
	"github.com/gruvah/kickbridge/pkg/engine/cengine"
)

func linkedFactory() (engine.Factory, error) {
	return cengine.Factory{}, nil
}
