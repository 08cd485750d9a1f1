package dict

import (
	"sync"

	"github.com/Sssan520/carbondata/schema"
)

const DefaultThreshold = 10000

// Generator assigns dictionary surrogates to string values of one
// column. Safe for concurrent use: range workers share one generator
// per dictionary column.
type Generator struct {
	mu sync.Mutex

	values    map[string]uint32
	threshold int

	overflowed bool
}

func NewGenerator(threshold int) *Generator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	return &Generator{
		values:    make(map[string]uint32),
		threshold: threshold,
	}
}

// SurrogateFor returns the dictionary id for v, assigning the next id
// on first sight. The second return is false once the column's
// cardinality crossed the threshold; callers then fall back to storing
// raw values.
func (g *Generator) SurrogateFor(v string) (uint32, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.overflowed {
		return 0, false
	}

	if id, ok := g.values[v]; ok {
		return id, true
	}

	if len(g.values) >= g.threshold {
		g.overflowed = true
		return 0, false
	}

	id := uint32(len(g.values)) + 1
	g.values[v] = id

	return id, true
}

func (g *Generator) Overflowed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.overflowed
}

func (g *Generator) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.values)
}

// Entries returns the dictionary values ordered by surrogate id, so
// entry i maps to id i+1. Surrogates are stable, so a snapshot taken
// at page seal time covers every id used in that page.
func (g *Generator) Entries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	entries := make([]string, len(g.values))
	for v, id := range g.values {
		entries[id-1] = v
	}

	return entries
}

// BuildLocalDictionaryModel creates one generator per dictionary
// eligible column. The returned map itself is immutable after
// construction and is shared read-only across all range workers.
func BuildLocalDictionaryModel(spec schema.TableSpec, threshold int) map[string]*Generator {

	model := make(map[string]*Generator)

	for _, name := range spec.DictColumns() {
		model[name] = NewGenerator(threshold)
	}

	return model
}
