// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mock provides a naive second backend for testing device handling.
//
// Mock devices hold host memory but do not interoperate with cpu devices
// without a transfer, and they implement only Fill, Copy and Add.
package mock

import (
	internalmock "github.com/born-ml/ndarray/internal/backend/mock"
)

// Name is the backend name.
const Name = internalmock.Name

// Backend is the mock backend.
type Backend = internalmock.MockBackend

// New creates a mock backend with n devices.
func New(n int) *Backend {
	return internalmock.New(n)
}

// Register makes "mock:0" resolvable through backend contexts.
func Register() {
	internalmock.Register()
}
