package loading

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sssan520/carbondata/row"
)

type nopHandler struct{}

func (nopHandler) Initialise() error      { return nil }
func (nopHandler) AddRow(r row.Row) error { return nil }
func (nopHandler) Finish() error          { return nil }
func (nopHandler) CloseHandler() error    { return nil }

func TestHandlerRegistryMembership(t *testing.T) {
	reg := NewHandlerRegistry()
	require.Equal(t, 0, reg.Len())

	reg.Add(0, nopHandler{})
	reg.Add(2, nopHandler{})
	require.Equal(t, 2, reg.Len())

	snap := reg.Snapshot()
	require.Len(t, snap, 2)
	require.Contains(t, snap, 0)
	require.Contains(t, snap, 2)

	reg.Remove(0)
	reg.Remove(0) // removing twice is fine
	require.Equal(t, 1, reg.Len())

	// the earlier snapshot is a copy, untouched by removals
	require.Len(t, snap, 2)
}

func TestHandlerRegistryConcurrentWorkers(t *testing.T) {
	reg := NewHandlerRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			reg.Add(i, nopHandler{})
			if i%2 == 0 {
				reg.Remove(i)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 32, reg.Len())
}
