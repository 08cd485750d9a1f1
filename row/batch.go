package row

// Batch is a bounded, ordered chunk of rows pulled at once from a
// range stream. Consumed through a single-pass cursor and discarded.
type Batch struct {
	rows []Row
	size int
	pos  int
}

func NewBatch(rows []Row) *Batch {
	return &Batch{
		rows: rows,
		size: len(rows),
	}
}

// Size returns the number of rows the batch was created with, cached
// independently of cursor progress.
func (b *Batch) Size() int {
	return b.size
}

func (b *Batch) HasNext() bool {
	return b.pos < len(b.rows)
}

func (b *Batch) Next() Row {
	r := b.rows[b.pos]
	b.pos++
	return r
}
