package row

// BatchStream is a finite, ordered, single-pass sequence of batches
// for one partition range. Not restartable, not safe for concurrent
// pulls: a stream is owned exclusively by the worker it was handed to.
type BatchStream interface {
	// Next returns the next batch, or (nil, false) once the stream is
	// exhausted.
	Next() (*Batch, bool)
}

// SliceStream adapts a prebuilt batch slice into a BatchStream.
type SliceStream struct {
	batches []*Batch
	pos     int
}

func NewSliceStream(batches ...*Batch) *SliceStream {
	return &SliceStream{batches: batches}
}

func (s *SliceStream) Next() (*Batch, bool) {
	if s.pos >= len(s.batches) {
		return nil, false
	}

	b := s.batches[s.pos]
	s.pos++
	return b, true
}
