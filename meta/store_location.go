package meta

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Sssan520/carbondata/schema"
	"golang.org/x/sync/singleflight"
)

// StoreLocationResolver maps table identity, segment id and task
// number onto local storage directories for range writers.
type StoreLocationResolver struct {
	basePath string

	createGroup singleflight.Group
}

func NewStoreLocationResolver(basePath string) *StoreLocationResolver {
	return &StoreLocationResolver{
		basePath: basePath,
	}
}

func (sm *StoreLocationResolver) getAbsStoragePath(segments ...string) string {

	pathSegments := []string{sm.basePath}
	pathSegments = append(pathSegments, segments...)

	return filepath.Join(pathSegments...)
}

// LocalStoreLocation resolves the per-range, per-task-attempt output
// directory and creates it if absent. Concurrent resolutions of the
// same location are collapsed into one mkdir.
func (sm *StoreLocationResolver) LocalStoreLocation(spec schema.TableSpec, taskNo string, segmentID string, rangeID int) (string, error) {

	location := sm.getAbsStoragePath(
		spec.Database,
		spec.Name,
		"Fact", segmentID,
		fmt.Sprintf("%s_%d", taskNo, rangeID),
	)

	_, err, _ := sm.createGroup.Do(location, func() (any, error) {
		return nil, createStoragePathIfNotExists(location)
	})
	if err != nil {
		return "", err
	}

	return location, nil
}

func createStoragePathIfNotExists(storagePath string) error {

	if _, err := os.Stat(storagePath); err != nil {
		storageFolderErr := os.MkdirAll(storagePath, 0755)
		if storageFolderErr != nil {

			log.Printf("unable to create directory : %s", storagePath)

			return storageFolderErr
		} else {
			log.Printf(" >> created %s folder", storagePath)
		}
	}

	return nil
}
