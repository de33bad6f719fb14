package migrator

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"github.com/teloquent/teloquent"
)

// Schema runs DDL and introspects tables on a DB. Passing a transactional context
// (see teloquent.DB.Transaction) runs the statements inside that transaction.
type Schema struct {
	db *teloquent.DB
}

// NewSchema schema over db
func NewSchema(db *teloquent.DB) *Schema {
	return &Schema{db: db}
}

// DB returns the DB the schema runs on
func (s *Schema) DB() *teloquent.DB {
	return s.db
}

// CreateTable creates table with the columns declared by fn, along with their indexes
func (s *Schema) CreateTable(ctx context.Context, table string, fn func(*Blueprint)) error {
	blueprint := NewBlueprint(table)
	fn(blueprint)

	if err := s.run(ctx, blueprint.ToSQL()); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// AlterTable adds, drops and renames the columns declared by fn
func (s *Schema) AlterTable(ctx context.Context, table string, fn func(*Blueprint)) error {
	blueprint := NewAlterBlueprint(table)
	fn(blueprint)

	if err := s.run(ctx, blueprint.ToSQL()); err != nil {
		return fmt.Errorf("alter table %s: %w", table, err)
	}
	return nil
}

// DropTable drops table if it exists
func (s *Schema) DropTable(ctx context.Context, table string) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	return nil
}

func (s *Schema) RenameTable(ctx context.Context, from, to string) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", from, to)); err != nil {
		return fmt.Errorf("rename table %s to %s: %w", from, to, err)
	}
	return nil
}

func (s *Schema) HasTable(ctx context.Context, table string) (bool, error) {
	rows, err := s.db.Select(ctx, "SELECT count(*) AS count FROM sqlite_master WHERE type = ? AND name = ?", "table", table)
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && cast.ToInt64(rows[0]["count"]) > 0, nil
}

func (s *Schema) HasColumn(ctx context.Context, table, column string) (bool, error) {
	columns, err := s.GetColumnListing(ctx, table)
	if err != nil {
		return false, err
	}
	for _, name := range columns {
		if name == column {
			return true, nil
		}
	}
	return false, nil
}

// GetColumnListing returns the column names of table in declaration order, none when it does not exist
func (s *Schema) GetColumnListing(ctx context.Context, table string) ([]string, error) {
	columnTypes, err := s.ColumnTypes(ctx, table)
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(columnTypes))
	for idx, ct := range columnTypes {
		columns[idx] = ct.Name()
	}
	return columns, nil
}

// ColumnTypes describes the columns of table in declaration order
func (s *Schema) ColumnTypes(ctx context.Context, table string) ([]ColumnType, error) {
	rows, err := s.db.Select(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}

	columnTypes := make([]ColumnType, len(rows))
	for idx, row := range rows {
		columnTypes[idx] = parseColumnType(row)
	}
	return columnTypes, nil
}

// GetTables lists the user tables, sqlite internal tables excluded
func (s *Schema) GetTables(ctx context.Context) ([]TableType, error) {
	rows, err := s.db.Select(ctx, "SELECT name, type, sql FROM sqlite_master WHERE type = ? AND name NOT LIKE ? ORDER BY name", "table", "sqlite_%")
	if err != nil {
		return nil, err
	}

	tables := make([]TableType, len(rows))
	for idx, row := range rows {
		tables[idx] = TableType{
			NameValue: cast.ToString(row["name"]),
			TypeValue: cast.ToString(row["type"]),
			SQLValue:  cast.ToString(row["sql"]),
		}
	}
	return tables, nil
}

func (s *Schema) HasIndex(ctx context.Context, table, name string) (bool, error) {
	indexes, err := s.GetIndexes(ctx, table)
	if err != nil {
		return false, err
	}
	for _, idx := range indexes {
		if idx.Name() == name {
			return true, nil
		}
	}
	return false, nil
}

// GetIndexes lists the indexes of table with their columns
func (s *Schema) GetIndexes(ctx context.Context, table string) ([]Index, error) {
	rows, err := s.db.Select(ctx, fmt.Sprintf("PRAGMA index_list(%s)", table))
	if err != nil {
		return nil, err
	}

	indexes := make([]Index, 0, len(rows))
	for _, row := range rows {
		idx := Index{
			TableName:   table,
			NameValue:   cast.ToString(row["name"]),
			UniqueValue: cast.ToBool(row["unique"]),
			OriginValue: cast.ToString(row["origin"]),
		}

		columns, err := s.db.Select(ctx, fmt.Sprintf("PRAGMA index_info(%s)", idx.NameValue))
		if err != nil {
			return nil, err
		}
		for _, column := range columns {
			idx.ColumnList = append(idx.ColumnList, cast.ToString(column["name"]))
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

func (s *Schema) run(ctx context.Context, statements []string) error {
	for _, statement := range statements {
		if _, err := s.db.Exec(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}
