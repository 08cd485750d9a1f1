package schema

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Sssan520/carbondata/bits"
	"github.com/google/uuid"
)

// DefaultPageRows is how many rows a column page holds before it is
// sealed and compressed.
const DefaultPageRows = 32 * 1024

const PageHeaderSize = 128

const pageHeaderSizeUsed uint64 = 16 + 2 + 2 + 8 + 8 + 8 + 1 + 1 + 16 // guid + column + items + start offset + compressed size + raw size + datatype + dict flag + bounds
const pageHeaderReserved uint64 = PageHeaderSize - pageHeaderSizeUsed

// PageHeader describes one sealed column page inside an artifact.
type PageHeader struct {
	Uid uuid.UUID

	// Column is the index of the column this page belongs to, in
	// TableSpec order.
	Column uint16

	Items uint16

	StartOffset    uint64
	CompressedSize uint64
	RawSize        uint64

	DataType FieldType

	// DictEncoded marks a string page whose payload is a local
	// dictionary snapshot followed by surrogate ids.
	DictEncoded uint8

	Bounds BoundsFloat

	// reserved for future use
	Reserved [pageHeaderReserved]uint8
}

func NewPageHeader(column uint16, typ FieldType) *PageHeader {
	return &PageHeader{
		Uid:      uuid.New(),
		Column:   column,
		DataType: typ,
	}
}

func (header *PageHeader) FromBytes(input io.Reader) (topErr error) {

	reader := bits.NewReader(input, binary.LittleEndian)

	header.Uid, topErr = reader.ReadUUID()
	if topErr != nil {
		return fmt.Errorf("unable to decode page header guid: %s", topErr.Error())
	}

	header.Column, topErr = reader.ReadU16()
	if topErr != nil {
		return fmt.Errorf("unable to decode page header column: %s", topErr.Error())
	}

	header.Items, topErr = reader.ReadU16()
	if topErr != nil {
		return fmt.Errorf("unable to decode page header items: %s", topErr.Error())
	}

	header.StartOffset, topErr = reader.ReadU64()
	if topErr != nil {
		return fmt.Errorf("unable to decode page header start offset: %s", topErr.Error())
	}
	header.CompressedSize, topErr = reader.ReadU64()
	if topErr != nil {
		return fmt.Errorf("unable to decode page header compressed size: %s", topErr.Error())
	}
	header.RawSize, topErr = reader.ReadU64()
	if topErr != nil {
		return fmt.Errorf("unable to decode page header raw size: %s", topErr.Error())
	}

	columnTypeRaw, topErr := reader.ReadU8()
	if topErr != nil {
		return fmt.Errorf("unable to decode page header column type: %s", topErr.Error())
	}
	header.DataType = FieldType(columnTypeRaw)

	header.DictEncoded, topErr = reader.ReadU8()
	if topErr != nil {
		return fmt.Errorf("unable to decode page header dict flag: %s", topErr.Error())
	}

	boundsErr := header.Bounds.FromBytes(reader)
	if boundsErr != nil {
		return fmt.Errorf("unable to decode page header bounds: %s", boundsErr.Error())
	}

	return reader.ReadBytes(int(pageHeaderReserved), header.Reserved[:])
}

func (header *PageHeader) WriteTo(bw *bits.BitWriter) (int, error) {

	n, _ := bw.Write(header.Uid[:])
	if n != 16 {
		return 0, fmt.Errorf("failed to write page uid")
	}

	bw.PutUint16(header.Column)
	bw.PutUint16(header.Items)

	bw.PutUint64(header.StartOffset)
	bw.PutUint64(header.CompressedSize)
	bw.PutUint64(header.RawSize)

	bw.WriteByte(uint8(header.DataType))
	bw.WriteByte(header.DictEncoded)

	header.Bounds.WriteTo(bw)

	bw.EmptyBytes(int(pageHeaderReserved))

	return bw.Position(), nil
}
