package loading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/panjf2000/ants/v2"

	"github.com/Sssan520/carbondata/dict"
	"github.com/Sssan520/carbondata/index"
	"github.com/Sssan520/carbondata/meta"
	"github.com/Sssan520/carbondata/row"
	"github.com/Sssan520/carbondata/store"
)

// RowStep is the upstream stage feeding this one. Execute hands back one
// batch stream per range, already partitioned.
type RowStep interface {
	Initialize() error
	Execute() ([]row.BatchStream, error)
	Close() error
}

// DataWriterStep is the terminal stage of a load: it drains every range
// stream into its own fact handler and leaves sealed artifacts behind.
// It produces no output stream.
type DataWriterStep struct {
	cfg   Config
	child RowStep

	resolver  *meta.StoreLocationResolver
	localDict map[string]*dict.Generator
	listeners *index.ListenerRegistry
	registry  *HandlerRegistry

	// swapped in tests to inject faulty handlers
	newHandler func(store.HandlerModel) (store.FactHandler, error)

	rowsRead    atomic.Int64
	rowsWritten atomic.Int64

	mu   sync.Mutex
	pool *ants.Pool

	closed  atomic.Bool
	closeCh chan struct{}
}

func NewDataWriterStep(cfg Config, child RowStep) (*DataWriterStep, error) {
	if err := cfg.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table spec : %s", err.Error())
	}

	if cfg.StorePath == "" {
		return nil, errors.New("store path is required")
	}

	return &DataWriterStep{
		cfg:        cfg,
		child:      child,
		resolver:   meta.NewStoreLocationResolver(cfg.StorePath),
		localDict:  dict.BuildLocalDictionaryModel(cfg.Spec, cfg.LocalDictThreshold),
		newHandler: store.NewFactHandler,
		closeCh:    make(chan struct{}),
	}, nil
}

func (s *DataWriterStep) Initialize() error {
	if s.child != nil {
		if err := s.child.Initialize(); err != nil {
			return fmt.Errorf("child step initialization failed : %s", err.Error())
		}
	}

	s.registry = NewHandlerRegistry()
	s.listeners = index.NewListenerRegistry(s.cfg.Spec)
	s.rowsRead.Store(0)
	s.rowsWritten.Store(0)

	slog.Info("data writer step initialized",
		"table", s.cfg.Spec.Name,
		"task", s.cfg.TaskNo,
		"segment", s.cfg.SegmentID)

	return nil
}

// Execute pulls the range streams from the child step and drains them
// all concurrently. It blocks until every range worker is done, the
// context is cancelled, the step is closed underneath it or the await
// bound expires.
func (s *DataWriterStep) Execute(ctx context.Context) error {
	streams, err := s.child.Execute()
	if err != nil {
		return &UnexpectedError{Err: fmt.Errorf("child step execution failed : %s", err.Error())}
	}

	if execErr := s.executeRanges(ctx, streams); execErr != nil {
		var initErr *WriterInitError
		var interrupted *InterruptedError
		var rangeErr *RangeExecutionError
		if errors.As(execErr, &initErr) || errors.As(execErr, &interrupted) || errors.As(execErr, &rangeErr) {
			return execErr
		}

		return &UnexpectedError{Err: execErr}
	}

	color.Green(" +++ data writer step done for %s : %d ranges, %d rows", s.cfg.Spec.Name, len(streams), s.rowsWritten.Load())

	return nil
}

// RowsRead counts individual rows pulled out of batches.
func (s *DataWriterStep) RowsRead() int64 {
	return s.rowsRead.Load()
}

// RowsWritten counts rows committed batch by batch.
func (s *DataWriterStep) RowsWritten() int64 {
	return s.rowsWritten.Load()
}

// Registry exposes the live handler set, mostly for teardown checks.
func (s *DataWriterStep) Registry() *HandlerRegistry {
	return s.registry
}

// Close tears the step down. Safe to call twice and safe to call while
// Execute is still awaiting workers: the await unblocks and reports an
// interruption. Close itself never fails, everything in here is
// best-effort with warnings.
func (s *DataWriterStep) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(s.closeCh)

	if s.child != nil {
		if err := s.child.Close(); err != nil {
			slog.Warn("child step close failed", "err", err)
		}
	}

	if s.listeners != nil {
		if err := s.listeners.FinishAll(context.Background()); err != nil {
			idxErr := &IndexFinalizeError{Err: err}
			slog.Warn(idxErr.Error())
		}
	}

	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.mu.Unlock()

	if pool != nil {
		pool.Release()
	}

	if s.registry != nil {
		// Handlers still registered here belong to workers that failed
		// or were abandoned mid-flight by an interrupted await. Workers
		// get no cooperative cancel signal, so a leftover handler is
		// presumed parked, not actively written to.
		for rangeID, handler := range s.registry.Snapshot() {
			color.Red(" !!! force closing leftover handler for range %d", rangeID)

			if err := handler.Finish(); err != nil {
				slog.Warn("forced finish failed", "range", rangeID, "err", err)
			}
			if err := handler.CloseHandler(); err != nil {
				slog.Warn("forced close failed", "range", rangeID, "err", err)
			}

			s.registry.Remove(rangeID)
		}
	}

	slog.Info("data writer step closed",
		"table", s.cfg.Spec.Name,
		"rows_read", s.rowsRead.Load(),
		"rows_written", s.rowsWritten.Load())

	return nil
}
