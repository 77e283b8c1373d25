// Copyright 2026 Lumin ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure-Go fallback backend, for hosts without a
// usable GPU.
package cpu

import (
	"github.com/lumin-ml/lumin/internal/backend/cpu"
)

// Backend runs kernels with plain Go loops. It is stateless and safe for
// concurrent use.
type Backend = cpu.Backend

// Array is the cpu backend's device array.
type Array = cpu.Array

// New creates a new CPU backend.
func New() *Backend {
	return cpu.New()
}
