package loading

import (
	"fmt"
	"log/slog"

	"github.com/Sssan520/carbondata/row"
	"github.com/Sssan520/carbondata/store"
)

// processRange drains one range's batch stream into one fact handler.
// The handler is created lazily on the first batch, so an empty range
// leaves nothing behind but its store directory. On any failure after
// creation the handler stays in the registry for the step teardown to
// force-finalize.
func (s *DataWriterStep) processRange(stream row.BatchStream, rangeID int) (topErr error) {
	defer func() {
		if r := recover(); r != nil {
			topErr = &UnexpectedError{Err: fmt.Errorf("panic in range %d worker : %v", rangeID, r)}
		}
	}()

	location, err := s.resolver.LocalStoreLocation(s.cfg.Spec, s.cfg.TaskNo, s.cfg.SegmentID, rangeID)
	if err != nil {
		return &WriterInitError{Op: "store location", Err: err}
	}

	listener := s.listeners.ForRange(rangeID, location)

	model := store.HandlerModel{
		RangeID:       rangeID,
		StoreLocation: location,
		Spec:          s.cfg.Spec,
		PageRows:      s.cfg.PageRows,
		Compression:   s.cfg.Compression,
		LocalDict:     s.localDict,
		Listener:      listener,
	}

	var handler store.FactHandler
	rowsNotExist := true

	for {
		batch, ok := stream.Next()
		if !ok {
			break
		}

		if rowsNotExist {
			rowsNotExist = false

			created, createErr := s.newHandler(model)
			if createErr != nil {
				return &WriterInitError{Op: "handler create", Err: createErr}
			}

			handler = created
			s.registry.Add(rangeID, handler)

			if initErr := handler.Initialise(); initErr != nil {
				return &WriterInitError{Op: "handler initialise", Err: initErr}
			}
		}

		if batchErr := s.processBatch(batch, handler); batchErr != nil {
			return &RangeExecutionError{RangeID: rangeID, Err: batchErr}
		}
	}

	if rowsNotExist {
		return nil
	}

	if finErr := s.finishHandler(rangeID, handler); finErr != nil {
		return &RangeExecutionError{RangeID: rangeID, Err: finErr}
	}

	s.registry.Remove(rangeID)

	return nil
}

func (s *DataWriterStep) processBatch(batch *row.Batch, handler store.FactHandler) error {
	for batch.HasNext() {
		r := batch.Next()
		if err := handler.AddRow(r); err != nil {
			return err
		}

		s.rowsRead.Add(1)
	}

	s.rowsWritten.Add(int64(batch.Size()))

	return nil
}

func (s *DataWriterStep) finishHandler(rangeID int, handler store.FactHandler) error {
	if err := handler.Finish(); err != nil {
		return err
	}

	slog.Info("record processed for table", "table", s.cfg.Spec.Name, "range", rangeID)
	slog.Info("finished range writer",
		"range", rangeID,
		"rows_read", s.rowsRead.Load(),
		"rows_written", s.rowsWritten.Load())

	return handler.CloseHandler()
}
