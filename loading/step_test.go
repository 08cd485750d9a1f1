package loading

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sssan520/carbondata/row"
	"github.com/Sssan520/carbondata/schema"
	"github.com/Sssan520/carbondata/store"
)

func testSpec() schema.TableSpec {
	return schema.TableSpec{
		Database: "testdb",
		Name:     "events",
		Columns: []schema.Column{
			{Name: "ts", Type: schema.Int64FieldType},
			{Name: "value", Type: schema.Float64FieldType},
		},
	}
}

// fixedRowStep hands out a predetermined number of batches per range,
// every batch carrying the same row count.
type fixedRowStep struct {
	batchesPerRange []int
	rowsPerBatch    int

	initialized bool
	closed      bool
}

func (f *fixedRowStep) Initialize() error {
	f.initialized = true
	return nil
}

func (f *fixedRowStep) Execute() ([]row.BatchStream, error) {
	streams := make([]row.BatchStream, len(f.batchesPerRange))

	for r, batchCount := range f.batchesPerRange {
		batches := make([]*row.Batch, batchCount)
		for b := 0; b < batchCount; b++ {
			rows := make([]row.Row, f.rowsPerBatch)
			for i := 0; i < f.rowsPerBatch; i++ {
				rows[i] = row.New(int64(r*1000+b*100+i), float64(i))
			}
			batches[b] = row.NewBatch(rows)
		}
		streams[r] = row.NewSliceStream(batches...)
	}

	return streams, nil
}

func (f *fixedRowStep) Close() error {
	f.closed = true
	return nil
}

func newTestStep(t *testing.T, child RowStep) *DataWriterStep {
	t.Helper()

	step, err := NewDataWriterStep(Config{
		Spec:      testSpec(),
		TaskNo:    "0",
		SegmentID: "seg0",
		StorePath: t.TempDir(),
		PageRows:  64,
	}, child)
	require.NoError(t, err)
	require.NoError(t, step.Initialize())

	return step
}

func artifactsUnder(t *testing.T, step *DataWriterStep) []string {
	t.Helper()

	pattern := filepath.Join(step.cfg.StorePath, "testdb", "events", "Fact", "seg0", "*", "part-*.carbondata")
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)

	return matches
}

func TestExecuteWritesEveryRangeAndCountsRows(t *testing.T) {
	child := &fixedRowStep{batchesPerRange: []int{3, 3, 3, 3}, rowsPerBatch: 25}
	step := newTestStep(t, child)

	require.NoError(t, step.Execute(context.Background()))
	require.True(t, child.initialized)

	// 4 ranges * 3 batches * 25 rows
	require.EqualValues(t, 300, step.RowsRead())
	require.EqualValues(t, 300, step.RowsWritten())
	require.Equal(t, 0, step.Registry().Len())

	require.Len(t, artifactsUnder(t, step), 4)

	require.NoError(t, step.Close())
	require.True(t, child.closed)
}

func TestEmptyRangeCreatesNoHandler(t *testing.T) {
	child := &fixedRowStep{batchesPerRange: []int{2, 0, 3}, rowsPerBatch: 10}
	step := newTestStep(t, child)

	var mu sync.Mutex
	var handlerRanges []int
	inner := step.newHandler
	step.newHandler = func(m store.HandlerModel) (store.FactHandler, error) {
		mu.Lock()
		handlerRanges = append(handlerRanges, m.RangeID)
		mu.Unlock()
		return inner(m)
	}

	require.NoError(t, step.Execute(context.Background()))

	require.ElementsMatch(t, []int{0, 2}, handlerRanges)
	require.EqualValues(t, 50, step.RowsWritten())

	artifacts := artifactsUnder(t, step)
	require.Len(t, artifacts, 2)
	for _, a := range artifacts {
		require.NotContains(t, filepath.Base(filepath.Dir(a)), "0_1")
	}

	// the empty range still gets its store directory
	_, statErr := os.Stat(filepath.Join(step.cfg.StorePath, "testdb", "events", "Fact", "seg0", "0_1"))
	require.NoError(t, statErr)

	require.NoError(t, step.Close())
}

func TestExecuteWithNoRanges(t *testing.T) {
	child := &fixedRowStep{batchesPerRange: nil, rowsPerBatch: 0}
	step := newTestStep(t, child)

	require.NoError(t, step.Execute(context.Background()))
	require.EqualValues(t, 0, step.RowsWritten())
	require.NoError(t, step.Close())
}

func TestCloseIsIdempotent(t *testing.T) {
	step := newTestStep(t, &fixedRowStep{batchesPerRange: []int{1}, rowsPerBatch: 5})

	// close without execute, twice
	require.NoError(t, step.Close())
	require.NoError(t, step.Close())
}

// faultyHandler wraps a real handler and fails on demand, counting how
// often teardown touches it.
type faultyHandler struct {
	inner store.FactHandler

	failAddRow bool
	failFinish bool

	finishCalls atomic.Int32
	closeCalls  atomic.Int32
}

func (h *faultyHandler) Initialise() error {
	return h.inner.Initialise()
}

func (h *faultyHandler) AddRow(r row.Row) error {
	if h.failAddRow {
		return errors.New("disk full")
	}
	return h.inner.AddRow(r)
}

func (h *faultyHandler) Finish() error {
	h.finishCalls.Add(1)
	if h.failFinish {
		return errors.New("seal failed")
	}
	return h.inner.Finish()
}

func (h *faultyHandler) CloseHandler() error {
	h.closeCalls.Add(1)
	return h.inner.CloseHandler()
}

func TestFailedRangeDoesNotHaltSiblings(t *testing.T) {
	child := &fixedRowStep{batchesPerRange: []int{2, 2}, rowsPerBatch: 10}
	step := newTestStep(t, child)

	var faulty *faultyHandler
	inner := step.newHandler
	step.newHandler = func(m store.HandlerModel) (store.FactHandler, error) {
		h, err := inner(m)
		if err != nil {
			return nil, err
		}
		if m.RangeID == 1 {
			faulty = &faultyHandler{inner: h, failFinish: true}
			return faulty, nil
		}
		return h, nil
	}

	err := step.Execute(context.Background())
	require.Error(t, err)

	var rangeErr *RangeExecutionError
	require.ErrorAs(t, err, &rangeErr)
	require.Equal(t, 1, rangeErr.RangeID)

	var interrupted *InterruptedError
	require.False(t, errors.As(err, &interrupted))

	// range 0 sealed its artifact regardless
	require.Len(t, artifactsUnder(t, step), 1)

	// the failed handler stayed registered for teardown
	require.Equal(t, 1, step.Registry().Len())

	require.NoError(t, step.Close())
	require.Equal(t, 0, step.Registry().Len())

	// one forced finish on top of the worker's own attempt, one close
	require.EqualValues(t, 2, faulty.finishCalls.Load())
	require.EqualValues(t, 1, faulty.closeCalls.Load())

	require.NoError(t, step.Close())
	require.EqualValues(t, 1, faulty.closeCalls.Load())
}

func TestAddRowFailureReportsRangeExecution(t *testing.T) {
	child := &fixedRowStep{batchesPerRange: []int{1}, rowsPerBatch: 3}
	step := newTestStep(t, child)

	inner := step.newHandler
	step.newHandler = func(m store.HandlerModel) (store.FactHandler, error) {
		h, err := inner(m)
		if err != nil {
			return nil, err
		}
		return &faultyHandler{inner: h, failAddRow: true}, nil
	}

	err := step.Execute(context.Background())

	var rangeErr *RangeExecutionError
	require.ErrorAs(t, err, &rangeErr)
	require.ErrorContains(t, err, "disk full")

	require.EqualValues(t, 0, step.RowsWritten())
	require.NoError(t, step.Close())
}

func TestHandlerCreationFailureReportsWriterInit(t *testing.T) {
	child := &fixedRowStep{batchesPerRange: []int{1}, rowsPerBatch: 3}
	step := newTestStep(t, child)

	step.newHandler = func(m store.HandlerModel) (store.FactHandler, error) {
		return nil, fmt.Errorf("no space for range %d", m.RangeID)
	}

	err := step.Execute(context.Background())

	var initErr *WriterInitError
	require.ErrorAs(t, err, &initErr)
	require.NoError(t, step.Close())
}

// blockingStream never yields until released, to keep a worker busy
// while the await is interrupted.
type blockingStream struct {
	release chan struct{}
}

func (b *blockingStream) Next() (*row.Batch, bool) {
	<-b.release
	return nil, false
}

type blockingRowStep struct {
	stream *blockingStream
}

func (b *blockingRowStep) Initialize() error { return nil }

func (b *blockingRowStep) Execute() ([]row.BatchStream, error) {
	return []row.BatchStream{b.stream}, nil
}

func (b *blockingRowStep) Close() error { return nil }

func TestContextCancelInterruptsAwait(t *testing.T) {
	stream := &blockingStream{release: make(chan struct{})}
	step := newTestStep(t, &blockingRowStep{stream: stream})

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- step.Execute(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	err := <-errCh

	var interrupted *InterruptedError
	require.ErrorAs(t, err, &interrupted)

	var rangeErr *RangeExecutionError
	require.False(t, errors.As(err, &rangeErr))

	close(stream.release)
	require.NoError(t, step.Close())
}

func TestAwaitBoundExpiryInterrupts(t *testing.T) {
	stream := &blockingStream{release: make(chan struct{})}

	step, err := NewDataWriterStep(Config{
		Spec:       testSpec(),
		TaskNo:     "0",
		SegmentID:  "seg0",
		StorePath:  t.TempDir(),
		AwaitBound: 30 * time.Millisecond,
	}, &blockingRowStep{stream: stream})
	require.NoError(t, err)
	require.NoError(t, step.Initialize())

	execErr := step.Execute(context.Background())
	require.ErrorIs(t, execErr, ErrAwaitTimeout)

	var interrupted *InterruptedError
	require.ErrorAs(t, execErr, &interrupted)

	close(stream.release)
	require.NoError(t, step.Close())
}

func TestCloseUnblocksRunningExecute(t *testing.T) {
	stream := &blockingStream{release: make(chan struct{})}
	step := newTestStep(t, &blockingRowStep{stream: stream})

	errCh := make(chan error, 1)
	go func() {
		errCh <- step.Execute(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	close(stream.release)
	require.NoError(t, step.Close())

	err := <-errCh
	if err != nil {
		var interrupted *InterruptedError
		require.ErrorAs(t, err, &interrupted)
	}
}

func TestErrorKindsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	require.ErrorIs(t, &WriterInitError{Op: "pool", Err: cause}, cause)
	require.ErrorIs(t, &InterruptedError{Err: cause}, cause)
	require.ErrorIs(t, &RangeExecutionError{RangeID: 3, Err: cause}, cause)
	require.ErrorIs(t, &UnexpectedError{Err: cause}, cause)
	require.ErrorIs(t, &IndexFinalizeError{Err: cause}, cause)

	require.Contains(t, (&RangeExecutionError{RangeID: 3, Err: cause}).Error(), "range 3")
}
