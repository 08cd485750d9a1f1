package loading

import (
	"time"

	"github.com/Sssan520/carbondata/schema"
)

// DefaultAwaitBound is the upper bound on waiting for range workers.
// Generous on purpose: normal loads never hit it, it only exists so a
// stuck worker cannot hang the step forever.
const DefaultAwaitBound = 48 * time.Hour

// Config carries everything the data writer step needs to commit one
// load: target table identity, task attempt coordinates and write
// tuning knobs.
type Config struct {
	Spec schema.TableSpec

	TaskNo    string
	SegmentID string

	// StorePath is the base directory artifacts are written under.
	StorePath string

	// PageRows caps rows per column page, 0 means the store default.
	PageRows int

	// Compression names the page codec, empty means lz4.
	Compression string

	// LocalDictThreshold caps local dictionary cardinality per column,
	// 0 means the dict default.
	LocalDictThreshold int

	// AwaitBound overrides DefaultAwaitBound when positive.
	AwaitBound time.Duration
}

func (c *Config) awaitBound() time.Duration {
	if c.AwaitBound > 0 {
		return c.AwaitBound
	}
	return DefaultAwaitBound
}
