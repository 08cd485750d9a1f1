// Package index implements the secondary min/max index writers that
// observe the same rows as the columnar write handlers. One listener
// exists per partition range; all listeners are finalized together at
// step close, independent of individual range completion.
package index

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Sssan520/carbondata/bits"
	"github.com/Sssan520/carbondata/row"
	"github.com/Sssan520/carbondata/schema"
)

const indexMagic uint32 = 0x43414958 // "CAIX"

// Listener accumulates per-column bounds for one range and writes a
// `<rangeID>.minmaxindex` artifact next to the columnar file when
// finished.
type Listener struct {
	rangeID  int
	location string
	spec     schema.TableSpec

	mu       sync.Mutex
	rows     uint64
	seen     []bool
	bounds   []schema.BoundsFloat
	finished bool
}

func NewListener(spec schema.TableSpec, rangeID int, location string) *Listener {
	return &Listener{
		rangeID:  rangeID,
		location: location,
		spec:     spec,
		seen:     make([]bool, len(spec.Columns)),
		bounds:   make([]schema.BoundsFloat, len(spec.Columns)),
	}
}

func (l *Listener) RangeID() int {
	return l.rangeID
}

// ObserveRow folds a row's numeric values into the per-column bounds.
func (l *Listener) ObserveRow(r row.Row) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rows++

	for i := range l.bounds {
		if i >= len(r.Values) {
			continue
		}

		v, numeric := widenToFloat(r.Values[i])
		if !numeric {
			continue
		}

		if !l.seen[i] {
			l.seen[i] = true
			l.bounds[i] = schema.NewBoundsFloat(v)
		} else {
			l.bounds[i].Morph(schema.NewBoundsFloat(v))
		}
	}
}

func widenToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case uint64:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint8:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case int16:
		return float64(t), true
	case int8:
		return float64(t), true
	case int:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	default:
		return 0, false
	}
}

// Rows returns how many rows the listener observed so far.
func (l *Listener) Rows() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows
}

// Finish seals the index artifact. Finishing twice is a no-op; a range
// that never observed a row produces no index file.
func (l *Listener) Finish() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.finished {
		return nil
	}
	l.finished = true

	if l.rows == 0 {
		return nil
	}

	buf := make([]byte, 512)
	bw := bits.NewEncodeBuffer(buf, binary.LittleEndian)
	bw.EnableGrowing()

	bw.PutUint32(indexMagic)
	bw.PutUint16(uint16(l.rangeID))
	bw.PutUint64(l.rows)
	bw.PutUint16(uint16(len(l.spec.Columns)))

	for i, col := range l.spec.Columns {
		bw.PutUint32(uint32(len(col.Name)))
		bw.Write([]byte(col.Name))

		if l.seen[i] && col.Type.Numeric() {
			bw.WriteByte(1)
			l.bounds[i].WriteTo(&bw)
		} else {
			bw.WriteByte(0)
		}
	}

	path := filepath.Join(l.location, fmt.Sprintf("%d.minmaxindex", l.rangeID))

	writeErr := os.WriteFile(path, bw.Bytes(), 0644)
	if writeErr != nil {
		return fmt.Errorf("unable to write index artifact for range %d : %s", l.rangeID, writeErr.Error())
	}

	return nil
}
