package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/Sssan520/carbondata/loading"
	"github.com/Sssan520/carbondata/row"
	"github.com/Sssan520/carbondata/schema"
	"github.com/Sssan520/carbondata/store"
)

type fakeRowStep struct {
	ranges  int
	batches int
	rows    int
}

func (f *fakeRowStep) Initialize() error {
	return nil
}

func (f *fakeRowStep) Execute() ([]row.BatchStream, error) {

	streams := make([]row.BatchStream, f.ranges)

	for r := 0; r < f.ranges; r++ {
		batches := make([]*row.Batch, f.batches)
		for b := 0; b < f.batches; b++ {
			rows := make([]row.Row, f.rows)
			for i := 0; i < f.rows; i++ {
				rows[i] = row.New(
					int64(rand.Int63n(50000)),
					rand.Float64()*100,
					fmt.Sprintf("host-%d", rand.Intn(16)),
				)
			}
			batches[b] = row.NewBatch(rows)
		}
		streams[r] = row.NewSliceStream(batches...)
	}

	return streams, nil
}

func (f *fakeRowStep) Close() error {
	return nil
}

func main() {

	storePath := "./storage"

	spec := schema.TableSpec{
		Database: "metrics",
		Name:     "health_checks",
		Columns: []schema.Column{
			{Name: "created_at", Type: schema.Int64FieldType},
			{Name: "value", Type: schema.Float64FieldType},
			{Name: "host", Type: schema.StringFieldType, LocalDictInclude: true},
		},
	}

	step, stepErr := loading.NewDataWriterStep(loading.Config{
		Spec:      spec,
		TaskNo:    "0",
		SegmentID: "0",
		StorePath: storePath,
	}, &fakeRowStep{ranges: 3, batches: 4, rows: 10000})

	if stepErr != nil {
		panic(stepErr)
	}

	if initErr := step.Initialize(); initErr != nil {
		panic(initErr)
	}

	execErr := step.Execute(context.Background())
	if execErr != nil {
		panic(execErr)
	}

	if closeErr := step.Close(); closeErr != nil {
		panic(closeErr)
	}

	log.Printf("rows read : %d, rows written : %d", step.RowsRead(), step.RowsWritten())

	segmentDir := filepath.Join(storePath, spec.Database, spec.Name, "Fact", "0")
	matches, globErr := filepath.Glob(filepath.Join(segmentDir, "*", "part-*.carbondata"))
	if globErr != nil {
		panic(globErr)
	}

	for _, artifact := range matches {
		reader, openErr := store.OpenArtifact(artifact)
		if openErr != nil {
			panic(openErr)
		}

		log.Printf(" << %s : range %d, %d pages, %d rows >> ",
			filepath.Base(artifact), reader.Preamble.RangeId, reader.Footer.PageCount, reader.Footer.RowCount)

		reader.Close()
	}

	if len(matches) == 0 {
		log.Printf("no artifacts written under %s", segmentDir)
		os.Exit(1)
	}
}
