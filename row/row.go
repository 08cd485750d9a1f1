package row

// Row is a single record of the load. Values are ordered the same way
// as the table schema columns.
type Row struct {
	Values []any
}

func New(values ...any) Row {
	return Row{Values: values}
}
