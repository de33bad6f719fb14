package migrator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Column types
const (
	TypeInteger    = "integer"
	TypeBigInteger = "bigInteger"
	TypeString     = "string"
	TypeText       = "text"
	TypeBoolean    = "boolean"
	TypeDate       = "date"
	TypeDateTime   = "datetime"
	TypeFloat      = "float"
	TypeDecimal    = "decimal"
	TypeJSON       = "json"
	TypeUUID       = "uuid"
)

// DefaultStringLength length of String columns declared without one
const DefaultStringLength = 255

// ForeignKey foreign key constraint of a column
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete string
	OnUpdate string
}

// ColumnDefinition a column declared on a Blueprint, its modifiers chain on it
type ColumnDefinition struct {
	Name          string
	Type          string
	Length        int
	Precision     int
	Scale         int
	PrimaryKey    bool
	NullableValue bool
	NotNullValue  bool
	UniqueValue   bool
	IndexValue    bool
	HasDefault    bool
	DefaultValue  interface{}
	ForeignKey    *ForeignKey
}

// Nullable marks the column as accepting NULL
func (c *ColumnDefinition) Nullable() *ColumnDefinition {
	c.NullableValue, c.NotNullValue = true, false
	return c
}

// NotNull adds a NOT NULL constraint
func (c *ColumnDefinition) NotNull() *ColumnDefinition {
	c.NotNullValue, c.NullableValue = true, false
	return c
}

// Default sets the column default
func (c *ColumnDefinition) Default(value interface{}) *ColumnDefinition {
	c.HasDefault, c.DefaultValue = true, value
	return c
}

// Unique adds a unique constraint
func (c *ColumnDefinition) Unique() *ColumnDefinition {
	c.UniqueValue = true
	return c
}

// Index creates an index on the column
func (c *ColumnDefinition) Index() *ColumnDefinition {
	c.IndexValue = true
	return c
}

// Primary makes the column the primary key, integer primary keys auto increment
func (c *ColumnDefinition) Primary() *ColumnDefinition {
	c.PrimaryKey = true
	return c
}

// References declares a foreign key to column, complete it with On
func (c *ColumnDefinition) References(column string) *ColumnDefinition {
	if c.ForeignKey == nil {
		c.ForeignKey = &ForeignKey{}
	}
	c.ForeignKey.Column = column
	return c
}

// On sets the table referenced by the foreign key
func (c *ColumnDefinition) On(table string) *ColumnDefinition {
	if c.ForeignKey != nil {
		c.ForeignKey.Table = table
	}
	return c
}

// OnDelete sets the ON DELETE action of the foreign key, e.g. CASCADE
func (c *ColumnDefinition) OnDelete(action string) *ColumnDefinition {
	if c.ForeignKey != nil {
		c.ForeignKey.OnDelete = action
	}
	return c
}

// OnUpdate sets the ON UPDATE action of the foreign key
func (c *ColumnDefinition) OnUpdate(action string) *ColumnDefinition {
	if c.ForeignKey != nil {
		c.ForeignKey.OnUpdate = action
	}
	return c
}

type command struct {
	kind string
	name string
	to   string
}

// Blueprint collects the columns and commands of a table creation or alteration and renders them as DDL
type Blueprint struct {
	Table    string
	alter    bool
	columns  []*ColumnDefinition
	commands []command
}

// NewBlueprint blueprint creating table
func NewBlueprint(table string) *Blueprint {
	return &Blueprint{Table: table}
}

// NewAlterBlueprint blueprint altering the existing table
func NewAlterBlueprint(table string) *Blueprint {
	return &Blueprint{Table: table, alter: true}
}

// Columns returns the declared columns
func (b *Blueprint) Columns() []*ColumnDefinition {
	return b.columns
}

func (b *Blueprint) addColumn(column *ColumnDefinition) *ColumnDefinition {
	b.columns = append(b.columns, column)
	return column
}

// Increments auto incremented integer primary key, named "id" when name is omitted
func (b *Blueprint) Increments(name ...string) *ColumnDefinition {
	column := "id"
	if len(name) > 0 && name[0] != "" {
		column = name[0]
	}
	return b.addColumn(&ColumnDefinition{Name: column, Type: TypeInteger, PrimaryKey: true})
}

func (b *Blueprint) Integer(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeInteger})
}

func (b *Blueprint) BigInteger(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeBigInteger})
}

// String VARCHAR column, DefaultStringLength long unless given
func (b *Blueprint) String(name string, length ...int) *ColumnDefinition {
	size := DefaultStringLength
	if len(length) > 0 && length[0] > 0 {
		size = length[0]
	}
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeString, Length: size})
}

func (b *Blueprint) Text(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeText})
}

func (b *Blueprint) Boolean(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeBoolean})
}

func (b *Blueprint) Date(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeDate})
}

func (b *Blueprint) DateTime(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeDateTime})
}

// Float precision and scale default to 8 and 2
func (b *Blueprint) Float(name string, precisionScale ...int) *ColumnDefinition {
	precision, scale := precisionAndScale(precisionScale)
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeFloat, Precision: precision, Scale: scale})
}

// Decimal precision and scale default to 8 and 2
func (b *Blueprint) Decimal(name string, precisionScale ...int) *ColumnDefinition {
	precision, scale := precisionAndScale(precisionScale)
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeDecimal, Precision: precision, Scale: scale})
}

func (b *Blueprint) JSON(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeJSON})
}

func (b *Blueprint) UUID(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Name: name, Type: TypeUUID, Length: 36})
}

// Timestamps nullable created_at and updated_at columns
func (b *Blueprint) Timestamps() {
	b.DateTime("created_at").Nullable()
	b.DateTime("updated_at").Nullable()
}

// SoftDeletes nullable deleted_at column
func (b *Blueprint) SoftDeletes() *ColumnDefinition {
	return b.DateTime("deleted_at").Nullable()
}

// DropColumn drops a column of an altered table
func (b *Blueprint) DropColumn(names ...string) {
	for _, name := range names {
		b.commands = append(b.commands, command{kind: "dropColumn", name: name})
	}
}

// RenameColumn renames a column of an altered table
func (b *Blueprint) RenameColumn(from, to string) {
	b.commands = append(b.commands, command{kind: "renameColumn", name: from, to: to})
}

func precisionAndScale(values []int) (int, int) {
	precision, scale := 8, 2
	if len(values) > 0 {
		precision = values[0]
	}
	if len(values) > 1 {
		scale = values[1]
	}
	return precision, scale
}

// ToSQL renders the statements to execute, in order
func (b *Blueprint) ToSQL() []string {
	if b.alter {
		return b.alterTableSQL()
	}
	return append([]string{b.createTableSQL()}, b.createIndexesSQL()...)
}

func (b *Blueprint) createTableSQL() string {
	parts := make([]string, 0, len(b.columns))
	for _, column := range b.columns {
		sql := column.Name + " " + columnType(column)
		if column.PrimaryKey {
			sql += " PRIMARY KEY"
			if column.Type == TypeInteger {
				sql += " AUTOINCREMENT"
			}
		}
		sql += b.constraints(column)
		if column.UniqueValue {
			sql += " UNIQUE"
		}
		parts = append(parts, sql)
	}

	// sqlite only accepts foreign keys as part of CREATE TABLE
	for _, column := range b.columns {
		if fk := column.ForeignKey; fk != nil && fk.Table != "" && fk.Column != "" {
			sql := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)", column.Name, fk.Table, fk.Column)
			if fk.OnDelete != "" {
				sql += " ON DELETE " + strings.ToUpper(fk.OnDelete)
			}
			if fk.OnUpdate != "" {
				sql += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
			}
			parts = append(parts, sql)
		}
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", b.Table, strings.Join(parts, ", "))
}

func (b *Blueprint) createIndexesSQL() (statements []string) {
	for _, column := range b.columns {
		if column.IndexValue && !column.PrimaryKey && !column.UniqueValue {
			statements = append(statements, b.indexSQL(column, false))
		}
	}
	return statements
}

func (b *Blueprint) alterTableSQL() (statements []string) {
	for _, column := range b.columns {
		statements = append(statements, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s%s", b.Table, column.Name, columnType(column), b.constraints(column)))

		switch {
		case column.UniqueValue:
			statements = append(statements, b.indexSQL(column, true))
		case column.IndexValue && !column.PrimaryKey:
			statements = append(statements, b.indexSQL(column, false))
		}
	}

	for _, cmd := range b.commands {
		switch cmd.kind {
		case "dropColumn":
			statements = append(statements, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", b.Table, cmd.name))
		case "renameColumn":
			statements = append(statements, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", b.Table, cmd.name, cmd.to))
		}
	}
	return statements
}

func (b *Blueprint) constraints(column *ColumnDefinition) (sql string) {
	if column.NotNullValue {
		sql += " NOT NULL"
	}
	if column.HasDefault {
		sql += " DEFAULT " + defaultValueSQL(column.DefaultValue)
	}
	return sql
}

func (b *Blueprint) indexSQL(column *ColumnDefinition, unique bool) string {
	if unique {
		return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS unq_%s_%s ON %s (%s)", b.Table, column.Name, b.Table, column.Name)
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)", b.Table, column.Name, b.Table, column.Name)
}

func columnType(column *ColumnDefinition) string {
	switch column.Type {
	case TypeInteger, TypeBigInteger:
		return "INTEGER"
	case TypeString, TypeUUID:
		length := column.Length
		if length <= 0 {
			length = DefaultStringLength
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDate, TypeDateTime:
		return "DATETIME"
	case TypeFloat, TypeDecimal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func defaultValueSQL(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return quote(v)
	case []byte:
		return quote(string(v))
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(value)
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(value); err == nil {
			return quote(string(b))
		}
	}
	return quote(fmt.Sprint(value))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
