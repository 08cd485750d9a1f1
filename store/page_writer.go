package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Sssan520/carbondata/bits"
	"github.com/Sssan520/carbondata/cache"
	"github.com/Sssan520/carbondata/dict"
	cio "github.com/Sssan520/carbondata/io"
	"github.com/Sssan520/carbondata/row"
	"github.com/Sssan520/carbondata/schema"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

type handlerState uint8

const (
	stateCreated handlerState = iota
	stateInitialised
	stateFinished
	stateClosed
)

const maxFieldWidth = 8

type columnPage struct {
	column uint16
	typ    schema.FieldType
	gen    *dict.Generator

	enc    bits.BitWriter
	bufID  uint16
	pooled bool

	strs []string

	bounds schema.BoundsFloat
	seen   bool
}

// pageWriter is the concrete FactHandler. Rows are accumulated into
// per-column typed buffers drawn from one arena pool; full pages are
// compressed and streamed to the artifact file as they seal, headers
// are kept in memory and written as an index at Finish.
type pageWriter struct {
	model HandlerModel
	codec pageCodec

	preamble schema.ArtifactPreamble
	file     *cio.ArtifactFile
	pool     *cache.FixedSizeBufferPool

	columns []*columnPage
	headers []*schema.PageHeader

	rowsInPage int
	rowsTotal  uint64

	rawBytesTotal        uint64
	compressedBytesTotal uint64

	state handlerState
}

func newPageWriter(model HandlerModel, codec pageCodec) *pageWriter {
	return &pageWriter{
		model: model,
		codec: codec,
	}
}

func (w *pageWriter) Initialise() error {

	if w.state != stateCreated {
		return fmt.Errorf("fact handler for range %d initialised twice", w.model.RangeID)
	}

	w.preamble = schema.ArtifactPreamble{
		Uid:         uuid.New(),
		RangeId:     uint16(w.model.RangeID),
		ColumnCount: uint16(len(w.model.Spec.Columns)),
		Codec:       w.codec.Id(),
	}

	numericColumns := 0

	w.columns = make([]*columnPage, len(w.model.Spec.Columns))
	for i, col := range w.model.Spec.Columns {
		cp := &columnPage{
			column: uint16(i),
			typ:    col.Type,
		}

		if col.Type == schema.StringFieldType {
			if col.LocalDictInclude && w.model.LocalDict != nil {
				cp.gen = w.model.LocalDict[col.Name]
			}
			cp.strs = make([]string, 0, w.model.pageRows())
		} else {
			numericColumns++
		}

		w.columns[i] = cp
	}

	if numericColumns > 0 {
		w.pool = cache.NewFixedSizeBufferPool(numericColumns, w.model.pageRows()*maxFieldWidth)

		for _, cp := range w.columns {
			if cp.typ == schema.StringFieldType {
				continue
			}
			buf, id := w.pool.Get()
			cp.enc = bits.NewEncodeBuffer(buf, binary.LittleEndian)
			cp.bufID = id
			cp.pooled = true
		}
	}

	fileName := fmt.Sprintf("part-%d-%s.carbondata", w.model.RangeID, w.preamble.Uid.String())
	w.file = cio.NewArtifactFile(filepath.Join(w.model.StoreLocation, fileName))

	openErr := w.file.Open(false)
	if openErr != nil {
		return fmt.Errorf("unable to open artifact file %s : %s", w.file.Path(), openErr.Error())
	}

	var preambleBuf [schema.ArtifactPreambleSize]byte
	bw := bits.NewEncodeBuffer(preambleBuf[:], binary.LittleEndian)

	if _, err := w.preamble.WriteTo(&bw); err != nil {
		return err
	}

	if _, err := w.file.Append(bw.Bytes()); err != nil {
		return fmt.Errorf("unable to write artifact preamble : %s", err.Error())
	}

	w.state = stateInitialised

	slog.Debug("initialised fact handler",
		"range", w.model.RangeID,
		"artifact", w.preamble.Uid.String(),
		"codec", w.codec.Name(),
		"path", w.file.Path())

	return nil
}

func (w *pageWriter) AddRow(r row.Row) error {

	switch w.state {
	case stateCreated:
		return ErrHandlerNotInitialised
	case stateFinished:
		return ErrHandlerFinished
	case stateClosed:
		return ErrHandlerClosed
	}

	if len(r.Values) != len(w.columns) {
		return fmt.Errorf("row has %d values, table %s has %d columns",
			len(r.Values), w.model.Spec.Name, len(w.columns))
	}

	for i, cp := range w.columns {
		if err := cp.encodeValue(r.Values[i]); err != nil {
			return fmt.Errorf("column %s : %s", w.model.Spec.Columns[i].Name, err.Error())
		}
	}

	if w.model.Listener != nil {
		w.model.Listener.ObserveRow(r)
	}

	w.rowsInPage++
	w.rowsTotal++

	if w.rowsInPage >= w.model.pageRows() {
		return w.sealPages()
	}

	return nil
}

func (cp *columnPage) encodeValue(v any) error {

	if cp.typ == schema.StringFieldType {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		cp.strs = append(cp.strs, s)
		return nil
	}

	var widened float64

	switch cp.typ {
	case schema.Uint64FieldType:
		t, ok := v.(uint64)
		if !ok {
			return fmt.Errorf("expected uint64, got %T", v)
		}
		cp.enc.PutUint64(t)
		widened = float64(t)
	case schema.Uint32FieldType:
		t, ok := v.(uint32)
		if !ok {
			return fmt.Errorf("expected uint32, got %T", v)
		}
		cp.enc.PutUint32(t)
		widened = float64(t)
	case schema.Uint16FieldType:
		t, ok := v.(uint16)
		if !ok {
			return fmt.Errorf("expected uint16, got %T", v)
		}
		cp.enc.PutUint16(t)
		widened = float64(t)
	case schema.Uint8FieldType:
		t, ok := v.(uint8)
		if !ok {
			return fmt.Errorf("expected uint8, got %T", v)
		}
		cp.enc.WriteByte(t)
		widened = float64(t)
	case schema.Int64FieldType:
		switch t := v.(type) {
		case int64:
			cp.enc.PutInt64(t)
			widened = float64(t)
		case int:
			cp.enc.PutInt64(int64(t))
			widened = float64(t)
		default:
			return fmt.Errorf("expected int64, got %T", v)
		}
	case schema.Int32FieldType:
		t, ok := v.(int32)
		if !ok {
			return fmt.Errorf("expected int32, got %T", v)
		}
		cp.enc.PutInt32(t)
		widened = float64(t)
	case schema.Int16FieldType:
		t, ok := v.(int16)
		if !ok {
			return fmt.Errorf("expected int16, got %T", v)
		}
		cp.enc.PutUint16(uint16(t))
		widened = float64(t)
	case schema.Int8FieldType:
		t, ok := v.(int8)
		if !ok {
			return fmt.Errorf("expected int8, got %T", v)
		}
		cp.enc.WriteByte(uint8(t))
		widened = float64(t)
	case schema.Float64FieldType:
		t, ok := v.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", v)
		}
		cp.enc.PutFloat64(t)
		widened = t
	case schema.Float32FieldType:
		t, ok := v.(float32)
		if !ok {
			return fmt.Errorf("expected float32, got %T", v)
		}
		cp.enc.PutFloat32(t)
		widened = float64(t)
	default:
		return fmt.Errorf("unsupported column type %s", cp.typ.String())
	}

	if !cp.seen {
		cp.seen = true
		cp.bounds = schema.NewBoundsFloat(widened)
	} else {
		cp.bounds.Morph(schema.NewBoundsFloat(widened))
	}

	return nil
}

// sealPages flushes one page per column to the artifact file and
// resets the accumulation state.
func (w *pageWriter) sealPages() error {

	items := w.rowsInPage
	if items == 0 {
		return nil
	}

	for _, cp := range w.columns {

		raw, dictEncoded, rawErr := cp.rawPage()
		if rawErr != nil {
			return rawErr
		}

		var compressed bytes.Buffer
		if err := w.codec.Encode(raw, &compressed); err != nil {
			return fmt.Errorf("unable to compress page for column %d : %s", cp.column, err.Error())
		}

		startOffset, appendErr := w.file.Append(compressed.Bytes())
		if appendErr != nil {
			return fmt.Errorf("unable to write page for column %d : %s", cp.column, appendErr.Error())
		}

		header := schema.NewPageHeader(cp.column, cp.typ)
		header.Items = uint16(items)
		header.StartOffset = uint64(startOffset)
		header.CompressedSize = uint64(compressed.Len())
		header.RawSize = uint64(len(raw))
		header.DictEncoded = dictEncoded
		if cp.seen {
			header.Bounds = cp.bounds
		}

		w.headers = append(w.headers, header)

		w.rawBytesTotal += header.RawSize
		w.compressedBytesTotal += header.CompressedSize

		cp.reset()
	}

	w.rowsInPage = 0

	return nil
}

// rawPage builds the uncompressed page payload for the column.
// String pages come out dictionary encoded when every value fit the
// shared generator, raw length-prefixed otherwise.
func (cp *columnPage) rawPage() ([]byte, uint8, error) {

	if cp.typ != schema.StringFieldType {
		return cp.enc.Bytes(), 0, nil
	}

	if cp.gen != nil && !cp.gen.Overflowed() {

		ids := make([]uint32, len(cp.strs))
		allFit := true

		for i, s := range cp.strs {
			id, ok := cp.gen.SurrogateFor(s)
			if !ok {
				allFit = false
				break
			}
			ids[i] = id
		}

		if allFit {
			entries := cp.gen.Entries()

			bw := bits.NewEncodeBuffer(make([]byte, 4+len(ids)*4), binary.LittleEndian)
			bw.EnableGrowing()

			bw.PutUint32(uint32(len(entries)))
			for _, e := range entries {
				bw.PutUint32(uint32(len(e)))
				bw.Write([]byte(e))
			}
			for _, id := range ids {
				bw.PutUint32(id)
			}

			return bw.Bytes(), 1, nil
		}
	}

	bw := bits.NewEncodeBuffer(make([]byte, len(cp.strs)*16), binary.LittleEndian)
	bw.EnableGrowing()

	for _, s := range cp.strs {
		bw.PutUint32(uint32(len(s)))
		bw.Write([]byte(s))
	}

	return bw.Bytes(), 0, nil
}

func (cp *columnPage) reset() {
	if cp.pooled {
		cp.enc.Reset()
	}
	cp.strs = cp.strs[:0]
	cp.seen = false
	cp.bounds = schema.BoundsFloat{}
}

// Finish seals the artifact: flushes the partial page, writes the page
// header index and the footer, then syncs. Call once.
func (w *pageWriter) Finish() error {

	switch w.state {
	case stateCreated:
		return ErrHandlerNotInitialised
	case stateFinished:
		return ErrHandlerFinished
	case stateClosed:
		return ErrHandlerClosed
	}

	if sealErr := w.sealPages(); sealErr != nil {
		return sealErr
	}

	headerIndexOffset := uint64(w.file.WriteOffset())

	indexBuf := make([]byte, len(w.headers)*schema.PageHeaderSize)
	bw := bits.NewEncodeBuffer(indexBuf, binary.LittleEndian)

	for _, header := range w.headers {
		if _, err := header.WriteTo(&bw); err != nil {
			return fmt.Errorf("unable to encode page header : %s", err.Error())
		}
	}

	if _, err := w.file.Append(bw.Bytes()); err != nil {
		return fmt.Errorf("unable to write page header index : %s", err.Error())
	}

	footer := schema.ArtifactFooter{
		HeaderIndexOffset: headerIndexOffset,
		PageCount:         uint32(len(w.headers)),
		RowCount:          w.rowsTotal,
	}

	var footerBuf [schema.ArtifactFooterSize]byte
	fw := bits.NewEncodeBuffer(footerBuf[:], binary.LittleEndian)

	if _, err := footer.WriteTo(&fw); err != nil {
		return err
	}

	if _, err := w.file.Append(fw.Bytes()); err != nil {
		return fmt.Errorf("unable to write artifact footer : %s", err.Error())
	}

	if syncErr := w.file.Sync(); syncErr != nil {
		return fmt.Errorf("unable to sync artifact : %s", syncErr.Error())
	}

	w.state = stateFinished

	compressRatio := 0.0
	if w.rawBytesTotal > 0 {
		compressRatio = float64(w.compressedBytesTotal) / float64(w.rawBytesTotal)
	}

	color.Green(" +++ sealed artifact %s [range %d] : %d pages, %d rows, %d -> %d bytes [%.2f%%]",
		w.preamble.Uid.String(), w.model.RangeID, len(w.headers), w.rowsTotal,
		w.rawBytesTotal, w.compressedBytesTotal, compressRatio*100.0)

	return nil
}

// CloseHandler releases the file handle and the page buffers. Call
// once, after Finish.
func (w *pageWriter) CloseHandler() error {

	if w.state == stateClosed {
		return ErrHandlerClosed
	}

	if w.pool != nil {
		for _, cp := range w.columns {
			if cp.pooled {
				cp.pooled = false
				w.pool.Return(cp.bufID)
			}
		}
	}

	w.state = stateClosed

	if w.file == nil {
		return nil
	}

	return w.file.Close()
}

// RowCount returns how many rows the handler accepted so far.
func (w *pageWriter) RowCount() uint64 {
	return w.rowsTotal
}

// ArtifactPath returns the file this handler writes to, empty before
// Initialise.
func (w *pageWriter) ArtifactPath() string {
	if w.file == nil {
		return ""
	}
	return w.file.Path()
}
