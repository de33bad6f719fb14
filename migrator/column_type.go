package migrator

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var lengthRegexp = regexp.MustCompile(`\((\d+)(?:\s*,\s*(\d+))?\)`)

// ColumnType a column of an existing table, as reported by PRAGMA table_info
type ColumnType struct {
	PositionValue     int
	NameValue         string
	ColumnTypeValue   string
	PrimaryKeyValue   bool
	NotNullValue      bool
	DefaultValueValue sql.NullString
}

func parseColumnType(row map[string]interface{}) ColumnType {
	ct := ColumnType{
		PositionValue:   cast.ToInt(row["cid"]),
		NameValue:       cast.ToString(row["name"]),
		ColumnTypeValue: cast.ToString(row["type"]),
		PrimaryKeyValue: cast.ToInt(row["pk"]) > 0,
		NotNullValue:    cast.ToBool(row["notnull"]),
	}
	if value := row["dflt_value"]; value != nil {
		ct.DefaultValueValue = sql.NullString{String: cast.ToString(value), Valid: true}
	}
	return ct
}

// Name returns the name of the column.
func (ct ColumnType) Name() string {
	return ct.NameValue
}

// Position returns the zero based position of the column in the table
func (ct ColumnType) Position() int {
	return ct.PositionValue
}

// DatabaseTypeName returns the declared type without length, upper cased, e.g. "VARCHAR"
func (ct ColumnType) DatabaseTypeName() string {
	name, _, _ := strings.Cut(ct.ColumnTypeValue, "(")
	return strings.ToUpper(strings.TrimSpace(name))
}

// ColumnType returns the declared type. like `VARCHAR(255)`
func (ct ColumnType) ColumnType() string {
	return ct.ColumnTypeValue
}

// PrimaryKey returns the column is primary key or not.
func (ct ColumnType) PrimaryKey() bool {
	return ct.PrimaryKeyValue
}

// Length returns the declared length of variable length column types
func (ct ColumnType) Length() (length int64, ok bool) {
	matches := lengthRegexp.FindStringSubmatch(ct.ColumnTypeValue)
	if matches == nil || matches[2] != "" {
		return 0, false
	}
	length, err := strconv.ParseInt(matches[1], 10, 64)
	return length, err == nil
}

// Nullable reports whether the column may be null.
func (ct ColumnType) Nullable() bool {
	return !ct.NotNullValue && !ct.PrimaryKeyValue
}

// DefaultValue returns the default value expression of the column.
func (ct ColumnType) DefaultValue() (value string, ok bool) {
	return ct.DefaultValueValue.String, ct.DefaultValueValue.Valid
}
