package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	zw.Write(src)
	flushErr := zw.Flush()

	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

// DecompressLz4 inflates src into dst, which must be sized to the
// exact uncompressed length.
func DecompressLz4(src []byte, dst []byte) error {
	zr := lz4.NewReader(bytes.NewReader(src))

	readBytes, err := io.ReadFull(zr, dst)
	if err != nil {
		return err
	}

	if readBytes != len(dst) {
		return fmt.Errorf("decompressed %d bytes, expected %d", readBytes, len(dst))
	}

	return nil
}
