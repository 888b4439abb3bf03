//go:build !gruvah_cgo

package main

import (
	"fmt"

	"github.com/gruvah/kickbridge/pkg/engine"
)

func linkedFactory() (engine.Factory, error) {
	return nil, fmt.Errorf("%w: built without the gruvah_cgo tag", engine.ErrNoFactory)
}
