package teloquent

import (
	"context"
	"database/sql"
)

// Connection is the database collaborator every query, record and migration goes through.
//
// Column order of Insert and Update is up to the implementation; the bundled sqlite
// driver sorts column names.
type Connection interface {
	// Select runs a query and returns each row as a column name to value map
	Select(ctx context.Context, sql string, params []interface{}) ([]map[string]interface{}, error)
	// Insert inserts row into table and returns the generated row id
	Insert(ctx context.Context, table string, row map[string]interface{}) (int64, error)
	// Update sets row on table rows matching whereSQL and returns the number of affected rows
	Update(ctx context.Context, table string, row map[string]interface{}, whereSQL string, whereParams []interface{}) (int64, error)
	// Delete removes table rows matching whereSQL and returns the number of affected rows
	Delete(ctx context.Context, table string, whereSQL string, whereParams []interface{}) (int64, error)
	// Query executes a raw statement
	Query(ctx context.Context, sql string, params []interface{}) (sql.Result, error)
	// Transaction runs fn on a transactional connection, committing when fn returns nil
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Connection) error) error
}

// Initializer is implemented by connections that need the DB they are opened with
type Initializer interface {
	Initialize(*DB) error
}

func (db *DB) selectRows(ctx context.Context, sql string, params []interface{}) ([]map[string]interface{}, error) {
	conn, err := db.Connection(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Select(ctx, sql, params)
	if err != nil {
		db.Logger.Error(ctx, "select failed: %v", err)
	}
	return rows, err
}

func (db *DB) insertRow(ctx context.Context, table string, row map[string]interface{}) (int64, error) {
	conn, err := db.Connection(ctx)
	if err != nil {
		return 0, err
	}

	id, err := conn.Insert(ctx, table, row)
	if err != nil {
		db.Logger.Error(ctx, "insert into %s failed: %v", table, err)
	}
	return id, err
}

func (db *DB) updateRows(ctx context.Context, table string, row map[string]interface{}, whereSQL string, whereParams []interface{}) (int64, error) {
	conn, err := db.Connection(ctx)
	if err != nil {
		return 0, err
	}

	affected, err := conn.Update(ctx, table, row, whereSQL, whereParams)
	if err != nil {
		db.Logger.Error(ctx, "update %s failed: %v", table, err)
	}
	return affected, err
}

func (db *DB) deleteRows(ctx context.Context, table string, whereSQL string, whereParams []interface{}) (int64, error) {
	conn, err := db.Connection(ctx)
	if err != nil {
		return 0, err
	}

	affected, err := conn.Delete(ctx, table, whereSQL, whereParams)
	if err != nil {
		db.Logger.Error(ctx, "delete from %s failed: %v", table, err)
	}
	return affected, err
}
