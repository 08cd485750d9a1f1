package bits

import (
	"unsafe"
)

// MapBytesToSlice reinterprets raw little-endian page bytes as a typed
// slice without copying. The backing array must stay alive for as long
// as the returned slice is used.
func MapBytesToSlice[T NumericElement](data []byte, count int) []T {

	var sample T
	valueSize := int(unsafe.Sizeof(sample))

	if len(data) < count*valueSize {
		panic("not enough data")
	}

	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), count)
}

type NumericElement interface {
	uint64 | uint16 | uint8 | uint32 | int64 | int32 | int16 | int8 | float64 | float32
}
