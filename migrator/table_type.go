package migrator

// TableType a table or view listed in sqlite_master
type TableType struct {
	NameValue string
	TypeValue string
	SQLValue  string
}

// Name returns the name of the table.
func (tt TableType) Name() string {
	return tt.NameValue
}

// Type returns "table" or "view"
func (tt TableType) Type() string {
	return tt.TypeValue
}

// SQL returns the statement the table was created with
func (tt TableType) SQL() string {
	return tt.SQLValue
}
