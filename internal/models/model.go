package models

// Model describes one Eloquent model class found in the models directory.
type Model struct {
	Class     string
	Namespace string
	FQCN      string
	Path      string // relative to the models directory

	Table string
	// Casts maps column name to the cast declared for it. Class casts are
	// fully qualified without a leading backslash.
	Casts map[string]string

	// Empty when the model disables the timestamp.
	CreatedAtColumn string
	UpdatedAtColumn string
}

// IsTimestampColumn reports whether column is the model's created-at or
// updated-at column.
func (m *Model) IsTimestampColumn(column string) bool {
	if column == "" {
		return false
	}
	return column == m.CreatedAtColumn || column == m.UpdatedAtColumn
}
