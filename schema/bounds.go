package schema

import (
	"github.com/Sssan520/carbondata/bits"
	"golang.org/x/exp/constraints"
)

type NumericValue interface {
	constraints.Integer | constraints.Float
}

type Bounds[T NumericValue] struct {
	Min T
	Max T
}

const BoundsSize = 8 + 8

// BoundsFloat is the on-disk representation of min/max bounds. All
// numeric column types are widened to float64 for storage.
type BoundsFloat struct {
	Min float64
	Max float64
}

// Morph widens b to cover other, reporting whether anything changed.
func (b *BoundsFloat) Morph(other BoundsFloat) bool {

	changes := 0

	if other.Min < b.Min {
		b.Min = other.Min
		changes += 1
	}
	if other.Max > b.Max {
		b.Max = other.Max
		changes += 1
	}

	return changes != 0
}

func NewBoundsFloat(v float64) BoundsFloat {
	return BoundsFloat{Min: v, Max: v}
}

func GetMaxMinBoundsFloat[T NumericValue](arr []T) BoundsFloat {

	resultBounds := Bounds[T]{
		Min: arr[0],
		Max: arr[0],
	}

	for _, v := range arr[1:] {
		if v < resultBounds.Min {
			resultBounds.Min = v
		}
		if v > resultBounds.Max {
			resultBounds.Max = v
		}
	}
	return BoundsFloat{
		Min: float64(resultBounds.Min),
		Max: float64(resultBounds.Max),
	}
}

func (header *BoundsFloat) FromBytes(reader *bits.BitsReader) (topErr error) {

	header.Max, topErr = reader.ReadF64()
	if topErr != nil {
		return topErr
	}

	header.Min, topErr = reader.ReadF64()

	return topErr
}

func (header *BoundsFloat) WriteTo(bw *bits.BitWriter) (int, error) {

	bw.PutFloat64(header.Max)
	bw.PutFloat64(header.Min)

	return bw.Position(), nil
}
