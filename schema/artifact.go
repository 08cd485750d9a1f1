package schema

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Sssan520/carbondata/bits"
	"github.com/google/uuid"
)

// Artifact file layout:
//
// *--------------------------------*
// | magic + version + artifact id  |
// | range id + column count        |
// *--------------------------------*
// | compressed page payloads 1...n |
// *--------------------------------*
// | page headers 1...n             |
// *--------------------------------*
// | footer                         |
// *--------------------------------*

const ArtifactMagic uint32 = 0x43414644 // "CAFD"
const ArtifactVersion uint16 = 1

const ArtifactPreambleSize = 4 + 2 + 16 + 2 + 2 + 1
const ArtifactFooterSize = 8 + 4 + 8 + 4

// ArtifactPreamble opens every columnar artifact file.
type ArtifactPreamble struct {
	Uid         uuid.UUID
	RangeId     uint16
	ColumnCount uint16

	// Codec identifies the page compression applied to the whole
	// artifact. Values are store-level codec ids.
	Codec uint8
}

func (p *ArtifactPreamble) WriteTo(bw *bits.BitWriter) (int, error) {

	bw.PutUint32(ArtifactMagic)
	bw.PutUint16(ArtifactVersion)

	n, _ := bw.Write(p.Uid[:])
	if n != 16 {
		return 0, fmt.Errorf("failed to write artifact uid")
	}

	bw.PutUint16(p.RangeId)
	bw.PutUint16(p.ColumnCount)
	bw.WriteByte(p.Codec)

	return bw.Position(), nil
}

func (p *ArtifactPreamble) FromBytes(input io.Reader) error {

	reader := bits.NewReader(input, binary.LittleEndian)

	magic, err := reader.ReadU32()
	if err != nil {
		return fmt.Errorf("unable to read artifact magic: %s", err.Error())
	}
	if magic != ArtifactMagic {
		return fmt.Errorf("bad artifact magic: %x", magic)
	}

	version, err := reader.ReadU16()
	if err != nil {
		return fmt.Errorf("unable to read artifact version: %s", err.Error())
	}
	if version != ArtifactVersion {
		return fmt.Errorf("unsupported artifact version: %d", version)
	}

	p.Uid, err = reader.ReadUUID()
	if err != nil {
		return fmt.Errorf("unable to read artifact uid: %s", err.Error())
	}

	p.RangeId, err = reader.ReadU16()
	if err != nil {
		return fmt.Errorf("unable to read artifact range id: %s", err.Error())
	}

	p.ColumnCount, err = reader.ReadU16()
	if err != nil {
		return fmt.Errorf("unable to read artifact column count: %s", err.Error())
	}

	p.Codec, err = reader.ReadU8()
	if err != nil {
		return fmt.Errorf("unable to read artifact codec: %s", err.Error())
	}

	return nil
}

// ArtifactFooter closes the file and locates the page header index.
type ArtifactFooter struct {
	HeaderIndexOffset uint64
	PageCount         uint32
	RowCount          uint64
}

func (f *ArtifactFooter) WriteTo(bw *bits.BitWriter) (int, error) {

	bw.PutUint64(f.HeaderIndexOffset)
	bw.PutUint32(f.PageCount)
	bw.PutUint64(f.RowCount)
	bw.PutUint32(ArtifactMagic)

	return bw.Position(), nil
}

func (f *ArtifactFooter) FromBytes(input io.Reader) error {

	reader := bits.NewReader(input, binary.LittleEndian)

	var err error

	f.HeaderIndexOffset, err = reader.ReadU64()
	if err != nil {
		return fmt.Errorf("unable to read footer index offset: %s", err.Error())
	}

	f.PageCount, err = reader.ReadU32()
	if err != nil {
		return fmt.Errorf("unable to read footer page count: %s", err.Error())
	}

	f.RowCount, err = reader.ReadU64()
	if err != nil {
		return fmt.Errorf("unable to read footer row count: %s", err.Error())
	}

	magic, err := reader.ReadU32()
	if err != nil {
		return fmt.Errorf("unable to read footer magic: %s", err.Error())
	}
	if magic != ArtifactMagic {
		return fmt.Errorf("bad footer magic: %x", magic)
	}

	return nil
}
