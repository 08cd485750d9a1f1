package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Sssan520/carbondata/bits"
	cio "github.com/Sssan520/carbondata/io"
	"github.com/Sssan520/carbondata/schema"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const readerPageCacheSize = 64

// ArtifactReader opens a sealed columnar artifact and decodes single
// pages on demand, keeping recently used raw pages in an LRU cache.
type ArtifactReader struct {
	file  *cio.ArtifactFile
	codec pageCodec

	Preamble schema.ArtifactPreamble
	Footer   schema.ArtifactFooter
	Headers  []schema.PageHeader

	pages *lru.Cache[uuid.UUID, []byte]
}

func OpenArtifact(path string) (*ArtifactReader, error) {

	file := cio.NewArtifactFile(path)
	if !file.Exists() {
		return nil, fmt.Errorf("artifact %s does not exist", path)
	}

	if openErr := file.Open(true); openErr != nil {
		return nil, fmt.Errorf("unable to open artifact %s : %s", path, openErr.Error())
	}

	r := &ArtifactReader{file: file}

	if err := r.readLayout(); err != nil {
		file.Close()
		return nil, err
	}

	pages, cacheErr := lru.New[uuid.UUID, []byte](readerPageCacheSize)
	if cacheErr != nil {
		file.Close()
		return nil, cacheErr
	}
	r.pages = pages

	return r, nil
}

func (r *ArtifactReader) readLayout() error {

	preambleBuf := make([]byte, schema.ArtifactPreambleSize)
	if err := r.file.ReadAt(preambleBuf, 0, len(preambleBuf)); err != nil {
		return fmt.Errorf("unable to read artifact preamble : %s", err.Error())
	}

	if err := r.Preamble.FromBytes(bytes.NewReader(preambleBuf)); err != nil {
		return err
	}

	codec, codecErr := codecById(r.Preamble.Codec)
	if codecErr != nil {
		return codecErr
	}
	r.codec = codec

	size, sizeErr := r.file.Size()
	if sizeErr != nil {
		return sizeErr
	}
	if size < schema.ArtifactFooterSize {
		return fmt.Errorf("artifact %s is truncated: %d bytes", r.file.Path(), size)
	}

	footerBuf := make([]byte, schema.ArtifactFooterSize)
	if err := r.file.ReadAt(footerBuf, size-schema.ArtifactFooterSize, len(footerBuf)); err != nil {
		return fmt.Errorf("unable to read artifact footer : %s", err.Error())
	}

	if err := r.Footer.FromBytes(bytes.NewReader(footerBuf)); err != nil {
		return err
	}

	indexSize := int(r.Footer.PageCount) * schema.PageHeaderSize
	indexBuf := make([]byte, indexSize)

	if err := r.file.ReadAt(indexBuf, int64(r.Footer.HeaderIndexOffset), indexSize); err != nil {
		return fmt.Errorf("unable to read page header index : %s", err.Error())
	}

	indexReader := bytes.NewReader(indexBuf)

	r.Headers = make([]schema.PageHeader, r.Footer.PageCount)
	for i := range r.Headers {
		if err := r.Headers[i].FromBytes(indexReader); err != nil {
			return fmt.Errorf("unable to decode page header %d : %s", i, err.Error())
		}
	}

	return nil
}

// PageRaw returns the uncompressed payload of page i, served from the
// LRU cache when hot.
func (r *ArtifactReader) PageRaw(i int) ([]byte, error) {

	if i < 0 || i >= len(r.Headers) {
		return nil, fmt.Errorf("page %d out of range, artifact has %d pages", i, len(r.Headers))
	}

	header := &r.Headers[i]

	if raw, ok := r.pages.Get(header.Uid); ok {
		return raw, nil
	}

	compressed := make([]byte, header.CompressedSize)
	if err := r.file.ReadAt(compressed, int64(header.StartOffset), len(compressed)); err != nil {
		return nil, fmt.Errorf("unable to read page %d : %s", i, err.Error())
	}

	raw := make([]byte, header.RawSize)
	if decompressErr := r.codec.Decode(compressed, raw); decompressErr != nil {

		showSize := min(len(compressed), 256)
		spew.Dump("input buffer to decompress ", compressed[:showSize])

		return nil, fmt.Errorf("unable to decompress page %d [input length %d, output buffer: %d]: %s",
			i, header.CompressedSize, header.RawSize, decompressErr.Error())
	}

	r.pages.Add(header.Uid, raw)

	return raw, nil
}

// NumericPageValues maps a numeric page payload to a typed slice.
func NumericPageValues[T bits.NumericElement](r *ArtifactReader, i int) ([]T, error) {

	header := &r.Headers[i]
	if !header.DataType.Numeric() {
		return nil, fmt.Errorf("page %d holds %s data, not numeric", i, header.DataType.String())
	}

	raw, err := r.PageRaw(i)
	if err != nil {
		return nil, err
	}

	return bits.MapBytesToSlice[T](raw, int(header.Items)), nil
}

// StringPageValues decodes a string page, resolving dictionary
// surrogates against the page-local dictionary snapshot.
func (r *ArtifactReader) StringPageValues(i int) ([]string, error) {

	header := &r.Headers[i]
	if header.DataType != schema.StringFieldType {
		return nil, fmt.Errorf("page %d holds %s data, not strings", i, header.DataType.String())
	}

	raw, err := r.PageRaw(i)
	if err != nil {
		return nil, err
	}

	reader := bits.NewReader(bytes.NewReader(raw), binary.LittleEndian)
	values := make([]string, header.Items)

	if header.DictEncoded == 1 {

		dictCount, dictErr := reader.ReadU32()
		if dictErr != nil {
			return nil, fmt.Errorf("unable to read page dictionary size : %s", dictErr.Error())
		}

		entries := make([]string, dictCount)
		for e := range entries {
			entry, entryErr := readLenPrefixed(reader)
			if entryErr != nil {
				return nil, fmt.Errorf("unable to read dictionary entry %d : %s", e, entryErr.Error())
			}
			entries[e] = entry
		}

		for v := range values {
			id, idErr := reader.ReadU32()
			if idErr != nil {
				return nil, fmt.Errorf("unable to read surrogate %d : %s", v, idErr.Error())
			}
			if id == 0 || int(id) > len(entries) {
				return nil, fmt.Errorf("surrogate %d out of dictionary range %d", id, len(entries))
			}
			values[v] = entries[id-1]
		}

		return values, nil
	}

	for v := range values {
		s, sErr := readLenPrefixed(reader)
		if sErr != nil {
			return nil, fmt.Errorf("unable to read string value %d : %s", v, sErr.Error())
		}
		values[v] = s
	}

	return values, nil
}

func readLenPrefixed(reader *bits.BitsReader) (string, error) {

	length, err := reader.ReadU32()
	if err != nil {
		return "", err
	}

	buf := make([]byte, length)
	if length > 0 {
		if err := reader.ReadBytes(int(length), buf); err != nil {
			return "", err
		}
	}

	return string(buf), nil
}

func (r *ArtifactReader) Close() error {
	return r.file.Close()
}
