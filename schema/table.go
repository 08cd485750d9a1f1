package schema

import (
	"errors"
	"fmt"
)

// Column describes one field of the loaded table.
type Column struct {
	Name string
	Type FieldType

	// LocalDictInclude marks a string column for local dictionary
	// encoding. Ignored for numeric columns.
	LocalDictInclude bool
}

// TableSpec identifies the target table and its column layout. The
// spec is immutable once handed to the loading step and is shared
// read-only across all range workers.
type TableSpec struct {
	Database string `json:"database"`
	Name     string `json:"name"`
	Columns  []Column
}

func (t TableSpec) Validate() error {
	if t.Name == "" {
		return errors.New("table name is empty")
	}

	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}

	seen := map[string]bool{}
	for _, col := range t.Columns {
		if col.Name == "" {
			return fmt.Errorf("table %s has a column with empty name", t.Name)
		}
		if seen[col.Name] {
			return fmt.Errorf("table %s has duplicate column %s", t.Name, col.Name)
		}
		seen[col.Name] = true
	}

	return nil
}

// DictColumns returns the names of columns eligible for local
// dictionary encoding.
func (t TableSpec) DictColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if col.Type == StringFieldType && col.LocalDictInclude {
			names = append(names, col.Name)
		}
	}
	return names
}
