// Package store implements the columnar write handlers. A FactHandler
// accumulates sorted rows for one partition range into compressed
// column pages and seals them into a single artifact file.
package store

import (
	"errors"

	"github.com/Sssan520/carbondata/row"
)

var (
	ErrHandlerNotInitialised = errors.New("fact handler is not initialised")
	ErrHandlerFinished       = errors.New("fact handler is already finished")
	ErrHandlerClosed         = errors.New("fact handler is already closed")
)

// FactHandler is the write side of one columnar artifact for one
// range. Lifecycle: Initialise → AddRow... → Finish → CloseHandler.
// Finish seals the artifact and must be called exactly once;
// CloseHandler releases underlying resources and must follow Finish.
type FactHandler interface {
	Initialise() error
	AddRow(r row.Row) error
	Finish() error
	CloseHandler() error
}
