package meta

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sssan520/carbondata/schema"
)

func testSpec() schema.TableSpec {
	return schema.TableSpec{
		Database: "sales",
		Name:     "orders",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Int64FieldType},
		},
	}
}

func TestLocalStoreLocationLayout(t *testing.T) {
	base := t.TempDir()
	resolver := NewStoreLocationResolver(base)

	loc, err := resolver.LocalStoreLocation(testSpec(), "3", "seg7", 2)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(base, "sales", "orders", "Fact", "seg7", "3_2"), loc)

	info, statErr := os.Stat(loc)
	require.NoError(t, statErr)
	require.True(t, info.IsDir())
}

func TestLocalStoreLocationIsPerRange(t *testing.T) {
	base := t.TempDir()
	resolver := NewStoreLocationResolver(base)

	a, err := resolver.LocalStoreLocation(testSpec(), "0", "seg0", 0)
	require.NoError(t, err)

	b, err := resolver.LocalStoreLocation(testSpec(), "0", "seg0", 1)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestLocalStoreLocationConcurrentResolvers(t *testing.T) {
	base := t.TempDir()
	resolver := NewStoreLocationResolver(base)

	var wg sync.WaitGroup
	locations := make([]string, 16)

	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			loc, err := resolver.LocalStoreLocation(testSpec(), "0", "seg0", 4)
			require.NoError(t, err)
			locations[i] = loc
		}()
	}
	wg.Wait()

	for _, loc := range locations {
		require.Equal(t, locations[0], loc)
	}
}
