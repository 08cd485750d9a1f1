package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sssan520/carbondata/row"
	"github.com/Sssan520/carbondata/schema"
)

func testSpec() schema.TableSpec {
	return schema.TableSpec{
		Database: "db",
		Name:     "t",
		Columns: []schema.Column{
			{Name: "ts", Type: schema.Int64FieldType},
			{Name: "value", Type: schema.Float64FieldType},
			{Name: "host", Type: schema.StringFieldType},
		},
	}
}

func TestListenerAccumulatesBounds(t *testing.T) {
	dir := t.TempDir()
	l := NewListener(testSpec(), 0, dir)

	l.ObserveRow(row.New(int64(10), 2.5, "a"))
	l.ObserveRow(row.New(int64(-3), 7.0, "b"))
	l.ObserveRow(row.New(int64(42), 4.1, "c"))

	require.EqualValues(t, 3, l.Rows())
	require.NoError(t, l.Finish())

	data, readErr := os.ReadFile(filepath.Join(dir, "0.minmaxindex"))
	require.NoError(t, readErr)
	require.NotEmpty(t, data)
}

func TestListenerFinishIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	l := NewListener(testSpec(), 2, dir)

	l.ObserveRow(row.New(int64(1), 1.0, "x"))

	require.NoError(t, l.Finish())

	info, statErr := os.Stat(filepath.Join(dir, "2.minmaxindex"))
	require.NoError(t, statErr)

	require.NoError(t, l.Finish())

	again, statErr := os.Stat(filepath.Join(dir, "2.minmaxindex"))
	require.NoError(t, statErr)
	require.Equal(t, info.ModTime(), again.ModTime())
}

func TestListenerWithNoRowsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	l := NewListener(testSpec(), 5, dir)

	require.NoError(t, l.Finish())

	_, statErr := os.Stat(filepath.Join(dir, "5.minmaxindex"))
	require.True(t, os.IsNotExist(statErr))
}

func TestRegistryFinishesEveryListener(t *testing.T) {
	dir := t.TempDir()
	reg := NewListenerRegistry(testSpec())

	for r := 0; r < 3; r++ {
		l := reg.ForRange(r, dir)
		l.ObserveRow(row.New(int64(r), float64(r), "h"))
	}

	// handing out the same range again returns the same listener
	require.Same(t, reg.ForRange(1, dir), reg.ForRange(1, dir))
	require.Equal(t, 3, reg.Count())

	require.NoError(t, reg.FinishAll(context.Background()))

	for r := 0; r < 3; r++ {
		_, err := os.Stat(filepath.Join(dir, fmt.Sprintf("%d.minmaxindex", r)))
		require.NoError(t, err)
	}
}
