package loading

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/Sssan520/carbondata/row"
)

// executeRanges runs one worker per range stream on a pool sized to the
// range count, so every range drains concurrently. Worker failures do
// not cancel siblings, they are collected and the first one is reported
// after the await ends.
func (s *DataWriterStep) executeRanges(ctx context.Context, streams []row.BatchStream) error {
	if len(streams) == 0 {
		return nil
	}

	pool, err := ants.NewPool(len(streams))
	if err != nil {
		return &WriterInitError{Op: "pool", Err: err}
	}

	s.mu.Lock()
	s.pool = pool
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.pool == pool {
			s.pool = nil
		}
		s.mu.Unlock()

		pool.Release()
	}()

	rangeErrs := make([]error, len(streams))

	var wg sync.WaitGroup
	for i, stream := range streams {
		i, stream := i, stream
		wg.Add(1)

		submitErr := pool.Submit(func() {
			defer wg.Done()
			rangeErrs[i] = s.processRange(stream, i)
		})
		if submitErr != nil {
			wg.Done()
			rangeErrs[i] = &WriterInitError{Op: "submit", Err: submitErr}
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	awaitTimer := time.NewTimer(s.cfg.awaitBound())
	defer awaitTimer.Stop()

	select {
	case <-done:
	case <-ctx.Done():
		return &InterruptedError{Err: ctx.Err()}
	case <-s.closeCh:
		return &InterruptedError{Err: context.Canceled}
	case <-awaitTimer.C:
		return &InterruptedError{Err: ErrAwaitTimeout}
	}

	var firstErr error
	for i, rangeErr := range rangeErrs {
		if rangeErr == nil {
			continue
		}

		slog.Error("range worker failed", "range", i, "err", rangeErr)

		if firstErr == nil {
			firstErr = rangeErr
		}
	}

	return firstErr
}
