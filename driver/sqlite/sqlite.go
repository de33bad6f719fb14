package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teloquent/teloquent"
	"github.com/teloquent/teloquent/errtranslator"
	"github.com/teloquent/teloquent/logger"
)

// DriverName database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

// Config connection config
type Config struct {
	DSN string
	// Conn an already opened pool, DSN is ignored when set
	Conn *sql.DB
	// Logger traces every statement, defaults to the logger of the DB the connection is opened with
	Logger logger.Interface
	// ForeignKeys enables foreign key enforcement
	ForeignKeys bool
}

// executor is satisfied by *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Connection teloquent.Connection over database/sql and modernc.org/sqlite.
// Constraint failures are returned as *errtranslator.ConstraintError.
type Connection struct {
	db         *sql.DB
	exec       executor
	tx         *sql.Tx
	logger     logger.Interface
	translator errtranslator.ErrTranslator
}

// Open opens the database at dsn, ":memory:" or an empty dsn for an in-memory database
func Open(dsn string) (*Connection, error) {
	return New(Config{DSN: dsn})
}

// New initialize a sqlite connection
func New(config Config) (*Connection, error) {
	db := config.Conn
	if db == nil {
		dsn := config.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		if config.ForeignKeys {
			// applied by the driver to every connection it opens
			dsn = withQueryParam(dsn, "_pragma=foreign_keys(1)")
		}

		var err error
		if db, err = sql.Open(DriverName, dsn); err != nil {
			return nil, err
		}

		// each connection of the pool would get its own in-memory database
		if isMemory(config.DSN) {
			db.SetMaxOpenConns(1)
		}
	} else if config.ForeignKeys {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, err
		}
	}

	return &Connection{db: db, exec: db, logger: config.Logger, translator: errtranslator.SqliteErrTranslator{}}, nil
}

func withQueryParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

func isMemory(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Initialize picks up the DB logger unless one was configured
func (c *Connection) Initialize(db *teloquent.DB) error {
	if c.logger == nil {
		c.logger = db.Logger
	}
	return nil
}

// DB returns the underlying pool
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close closes the pool
func (c *Connection) Close() error {
	if c.tx != nil {
		return errors.New("sqlite: close called on a transaction")
	}
	return c.db.Close()
}

func (c *Connection) Select(ctx context.Context, query string, params []interface{}) (results []map[string]interface{}, err error) {
	vars := bindVars(params)
	begin := time.Now()
	defer func() {
		c.trace(ctx, begin, query, vars, int64(len(results)), err)
	}()

	rows, err := c.exec.QueryContext(ctx, query, vars...)
	if err != nil {
		return nil, c.translator.Translate(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results = []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err = rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Insert inserts row with its columns in sorted order
func (c *Connection) Insert(ctx context.Context, table string, row map[string]interface{}) (int64, error) {
	columns := sortedColumns(row)

	var query string
	if len(columns) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	} else {
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders(len(columns)))
	}

	result, err := c.execute(ctx, query, columnValues(row, columns))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Update sets row, columns in sorted order, on the rows matching whereSQL
func (c *Connection) Update(ctx context.Context, table string, row map[string]interface{}, whereSQL string, whereParams []interface{}) (int64, error) {
	columns := sortedColumns(row)
	if len(columns) == 0 {
		return 0, nil
	}

	sets := make([]string, len(columns))
	for idx, column := range columns {
		sets[idx] = column + " = ?"
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), whereSQL)
	result, err := c.execute(ctx, query, append(columnValues(row, columns), whereParams...))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (c *Connection) Delete(ctx context.Context, table string, whereSQL string, whereParams []interface{}) (int64, error) {
	result, err := c.execute(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", table, whereSQL), whereParams)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Query executes a raw statement
func (c *Connection) Query(ctx context.Context, query string, params []interface{}) (sql.Result, error) {
	return c.execute(ctx, query, params)
}

func (c *Connection) execute(ctx context.Context, query string, params []interface{}) (result sql.Result, err error) {
	vars := bindVars(params)
	begin := time.Now()
	defer func() {
		rows := int64(-1)
		if err == nil {
			if affected, rerr := result.RowsAffected(); rerr == nil {
				rows = affected
			}
		}
		c.trace(ctx, begin, query, vars, rows, err)
	}()

	result, err = c.exec.ExecContext(ctx, query, vars...)
	return result, c.translator.Translate(err)
}

// Transaction runs fn on a connection bound to a new transaction. Nested calls run on the
// enclosing transaction. fn returning an error or panicking rolls back.
func (c *Connection) Transaction(ctx context.Context, fn func(ctx context.Context, tx teloquent.Connection) error) (err error) {
	if c.tx != nil {
		return fn(ctx, c)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	panicked := true
	defer func() {
		if panicked || err != nil {
			tx.Rollback()
		}
	}()

	err = fn(ctx, &Connection{db: c.db, exec: tx, tx: tx, logger: c.logger, translator: c.translator})
	if err == nil {
		err = tx.Commit()
	}
	panicked = false
	return err
}

func (c *Connection) trace(ctx context.Context, begin time.Time, query string, vars []interface{}, rows int64, err error) {
	if c.logger == nil {
		return
	}

	c.logger.Trace(ctx, begin, func() (string, int64) {
		if filter, ok := c.logger.(logger.ParamsFilter); ok {
			query, vars = filter.ParamsFilter(ctx, query, vars...)
		}
		return logger.ExplainSQL(query, `'`, vars...), rows
	}, err)
}

func sortedColumns(row map[string]interface{}) []string {
	columns := make([]string, 0, len(row))
	for column := range row {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func columnValues(row map[string]interface{}, columns []string) []interface{} {
	values := make([]interface{}, len(columns))
	for idx, column := range columns {
		values[idx] = row[column]
	}
	return values
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// bindVars encodes maps and slices (other than []byte) as JSON text, the storage of array and object casts
func bindVars(params []interface{}) []interface{} {
	vars := make([]interface{}, len(params))
	for idx, param := range params {
		vars[idx] = bindVar(param)
	}
	return vars
}

func bindVar(param interface{}) interface{} {
	switch param.(type) {
	case nil, []byte, string, time.Time:
		return param
	}

	switch reflect.ValueOf(param).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if b, err := json.Marshal(param); err == nil {
			return string(b)
		}
	}
	return param
}
