package store

import (
	"bytes"
	"fmt"

	"github.com/Sssan520/carbondata/compression"
)

const (
	CodecLz4  = "lz4"
	CodecNone = "none"
)

type pageCodec interface {
	Name() string
	Id() uint8
	Encode(src []byte, dst *bytes.Buffer) error
	Decode(src []byte, dst []byte) error
}

func codecByName(name string) (pageCodec, error) {
	switch name {
	case CodecLz4, "":
		return lz4Codec{}, nil
	case CodecNone:
		return rawCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown page codec : %s", name)
	}
}

func codecById(id uint8) (pageCodec, error) {
	switch id {
	case 1:
		return lz4Codec{}, nil
	case 0:
		return rawCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown page codec id : %d", id)
	}
}

type lz4Codec struct{}

func (lz4Codec) Name() string { return CodecLz4 }
func (lz4Codec) Id() uint8    { return 1 }

func (lz4Codec) Encode(src []byte, dst *bytes.Buffer) error {
	return compression.CompressLz4(src, dst)
}

func (lz4Codec) Decode(src []byte, dst []byte) error {
	return compression.DecompressLz4(src, dst)
}

type rawCodec struct{}

func (rawCodec) Name() string { return CodecNone }
func (rawCodec) Id() uint8    { return 0 }

func (rawCodec) Encode(src []byte, dst *bytes.Buffer) error {
	_, err := dst.Write(src)
	return err
}

func (rawCodec) Decode(src []byte, dst []byte) error {
	if copy(dst, src) != len(dst) {
		return fmt.Errorf("raw page size mismatch: %d vs %d", len(src), len(dst))
	}
	return nil
}
