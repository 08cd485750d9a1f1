package store

import (
	"fmt"
	"math"

	"github.com/Sssan520/carbondata/dict"
	"github.com/Sssan520/carbondata/index"
	"github.com/Sssan520/carbondata/schema"
)

// HandlerModel is the typed construction model a FactHandler is built
// from. One model is assembled per non-empty range.
type HandlerModel struct {
	RangeID       int
	StoreLocation string

	Spec schema.TableSpec

	// PageRows caps how many rows a column page holds before sealing.
	PageRows int

	// Compression selects the page codec by name ("lz4" or "none").
	Compression string

	// LocalDict is the shared column → generator map, immutable after
	// construction. May be nil when no column is dictionary eligible.
	LocalDict map[string]*dict.Generator

	// Listener observes every row this handler accepts. Optional.
	Listener *index.Listener
}

func (m *HandlerModel) Validate() error {
	if err := m.Spec.Validate(); err != nil {
		return err
	}

	if m.StoreLocation == "" {
		return fmt.Errorf("handler model for range %d has no store location", m.RangeID)
	}

	// range id and page row count go to disk as uint16
	if m.RangeID < 0 || m.RangeID > math.MaxUint16 {
		return fmt.Errorf("range id %d does not fit the artifact layout", m.RangeID)
	}

	if m.PageRows > math.MaxUint16 {
		return fmt.Errorf("page row count %d does not fit the page header", m.PageRows)
	}

	return nil
}

func (m *HandlerModel) pageRows() int {
	if m.PageRows <= 0 {
		return schema.DefaultPageRows
	}
	return m.PageRows
}
