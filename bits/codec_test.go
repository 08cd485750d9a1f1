package bits

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"
)

func TestWriterReaderRoundTrip(t *testing.T) {

	bw := NewEncodeBuffer(make([]byte, 16), binary.LittleEndian)
	bw.EnableGrowing()

	bw.PutUint16(0xBEEF)
	bw.PutUint32(123456789)
	bw.PutUint64(1 << 40)
	bw.PutInt64(-42)
	bw.PutFloat64(3.5)
	bw.WriteByte(7)
	bw.Write([]byte("hello"))

	r := NewReader(bytes.NewReader(bw.Bytes()), binary.LittleEndian)

	u16, err := r.ReadU16()
	if err != nil {
		t.Fatal(err)
	}
	if u16 != 0xBEEF {
		t.Fatalf("Expected %d but got %d", 0xBEEF, u16)
	}

	u32, _ := r.ReadU32()
	if u32 != 123456789 {
		t.Fatalf("Expected %d but got %d", 123456789, u32)
	}

	u64, _ := r.ReadU64()
	if u64 != 1<<40 {
		t.Fatalf("Expected %d but got %d", uint64(1<<40), u64)
	}

	i64, _ := r.ReadI64()
	if i64 != -42 {
		t.Fatalf("Expected %d but got %d", -42, i64)
	}

	f64, _ := r.ReadF64()
	if f64 != 3.5 {
		t.Fatalf("Expected %f but got %f", 3.5, f64)
	}

	b, _ := r.ReadU8()
	if b != 7 {
		t.Fatalf("Expected %d but got %d", 7, b)
	}

	str := make([]byte, 5)
	if readErr := r.ReadBytes(5, str); readErr != nil {
		t.Fatal(readErr)
	}
	if string(str) != "hello" {
		t.Fatalf("Expected %s but got %s", "hello", string(str))
	}
}

func TestWriterGrows(t *testing.T) {

	bw := NewEncodeBuffer(make([]byte, 2), binary.LittleEndian)
	bw.EnableGrowing()

	for i := 0; i < 1000; i++ {
		bw.PutUint64(uint64(i))
	}

	if len(bw.Bytes()) != 8000 {
		t.Fatalf("Expected %d but got %d", 8000, len(bw.Bytes()))
	}
}

func TestMapBytesToSlice(t *testing.T) {

	size := 1024

	data := make([]uint64, size)
	for i := range data {
		data[i] = uint64(rand.Int63n(50000))
	}

	bw := NewEncodeBuffer(make([]byte, size*8), binary.LittleEndian)
	for _, v := range data {
		bw.PutUint64(v)
	}

	mapped := MapBytesToSlice[uint64](bw.Bytes(), size)

	if len(mapped) != size {
		t.Fatalf("Expected %d but got %d", size, len(mapped))
	}

	for i := range data {
		if mapped[i] != data[i] {
			t.Fatalf("Expected %d but got %d at %d", data[i], mapped[i], i)
		}
	}
}
