package migrator

// Index an index of an existing table, as reported by PRAGMA index_list and index_info
type Index struct {
	TableName   string
	NameValue   string
	ColumnList  []string
	UniqueValue bool
	// OriginValue "c" for CREATE INDEX, "u" for a UNIQUE constraint, "pk" for the primary key
	OriginValue string
}

// Table return the table name of the index.
func (idx Index) Table() string {
	return idx.TableName
}

// Name return the name of the index.
func (idx Index) Name() string {
	return idx.NameValue
}

// Columns return the indexed columns in index order
func (idx Index) Columns() []string {
	return idx.ColumnList
}

// PrimaryKey returns the index backs the primary key or not.
func (idx Index) PrimaryKey() bool {
	return idx.OriginValue == "pk"
}

// Unique returns whether the index is unique or not.
func (idx Index) Unique() bool {
	return idx.UniqueValue
}
