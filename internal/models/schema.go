package models

// Column is one column of a table as reported by the database.
// DataType is the driver's short type name, lower-cased, without arguments
// (varchar, int8, jsonb, timestamp, ...).
type Column struct {
	Name     string
	DataType string
	Nullable bool
	Comment  *string
}

// HasComment reports whether the column carries a non-empty database comment.
func (c Column) HasComment() bool {
	return c.Comment != nil && *c.Comment != ""
}

// ColumnNames returns the names of columns in order.
func ColumnNames(columns []Column) []string {
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, col.Name)
	}
	return names
}
