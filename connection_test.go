package teloquent

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teloquent/teloquent/logger"
)

var testNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

const testTimestamp = "2024-01-02T03:04:05.000Z"

type recordedCall struct {
	Method string
	Table  string
	SQL    string
	Row    map[string]interface{}
	Params []interface{}
}

// recordingConn records every call and serves queued select results in order
type recordingConn struct {
	calls    []recordedCall
	results  [][]map[string]interface{}
	nextID   int64
	affected int64
	err      error
}

func (c *recordingConn) queue(rows ...map[string]interface{}) {
	c.results = append(c.results, rows)
}

func (c *recordingConn) last() recordedCall {
	return c.calls[len(c.calls)-1]
}

func (c *recordingConn) Select(ctx context.Context, sql string, params []interface{}) ([]map[string]interface{}, error) {
	c.calls = append(c.calls, recordedCall{Method: "select", SQL: sql, Params: params})
	if c.err != nil {
		return nil, c.err
	}
	if len(c.results) == 0 {
		return []map[string]interface{}{}, nil
	}

	rows := c.results[0]
	c.results = c.results[1:]
	return rows, nil
}

func (c *recordingConn) Insert(ctx context.Context, table string, row map[string]interface{}) (int64, error) {
	c.calls = append(c.calls, recordedCall{Method: "insert", Table: table, Row: row})
	if c.err != nil {
		return 0, c.err
	}
	c.nextID++
	return c.nextID, nil
}

func (c *recordingConn) Update(ctx context.Context, table string, row map[string]interface{}, whereSQL string, whereParams []interface{}) (int64, error) {
	c.calls = append(c.calls, recordedCall{Method: "update", Table: table, Row: row, SQL: whereSQL, Params: whereParams})
	return c.affected, c.err
}

func (c *recordingConn) Delete(ctx context.Context, table string, whereSQL string, whereParams []interface{}) (int64, error) {
	c.calls = append(c.calls, recordedCall{Method: "delete", Table: table, SQL: whereSQL, Params: whereParams})
	return c.affected, c.err
}

func (c *recordingConn) Query(ctx context.Context, sql string, params []interface{}) (sql.Result, error) {
	c.calls = append(c.calls, recordedCall{Method: "query", SQL: sql, Params: params})
	return driver.RowsAffected(c.affected), c.err
}

func (c *recordingConn) Transaction(ctx context.Context, fn func(ctx context.Context, tx Connection) error) error {
	c.calls = append(c.calls, recordedCall{Method: "transaction"})
	return fn(ctx, c)
}

type logWriter struct {
	lines []string
}

func (w *logWriter) Printf(format string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func newRecordingDB(t *testing.T) (*DB, *recordingConn, *logWriter) {
	t.Helper()

	conn := &recordingConn{affected: 1}
	logs := &logWriter{}
	db, err := Open(conn, &Config{
		Logger:  logger.New(logs, logger.Config{LogLevel: logger.Warn}),
		NowFunc: func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return db, conn, logs
}

func TestConnectionFromContext_success(t *testing.T) {
	conn := &recordingConn{}

	extracted, ok := ConnectionFromContext(WithConnection(context.Background(), conn))
	assert.True(t, ok)
	assert.Same(t, conn, extracted)
}

func TestConnectionFromContext_failure(t *testing.T) {
	extracted, ok := ConnectionFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, extracted)
}

func TestOpenDefaults(t *testing.T) {
	db, err := Open(&recordingConn{}, nil)
	require.NoError(t, err)

	assert.NotNil(t, db.Logger)
	assert.NotNil(t, db.NamingStrategy)
	assert.Equal(t, time.UTC, db.NowFunc().Location())
}

func TestTransactionCarriesConnection(t *testing.T) {
	db, conn, _ := newRecordingDB(t)

	err := db.Transaction(context.Background(), func(ctx context.Context) error {
		tx, err := db.Connection(ctx)
		require.NoError(t, err)
		assert.Same(t, conn, tx)

		_, err = db.Exec(ctx, "UPDATE users SET age = age + 1")
		return err
	})
	require.NoError(t, err)

	require.Len(t, conn.calls, 2)
	assert.Equal(t, "transaction", conn.calls[0].Method)
	assert.Equal(t, "UPDATE users SET age = age + 1", conn.calls[1].SQL)
}

func TestConnectionNotInitialized(t *testing.T) {
	var db *DB
	_, err := db.Connection(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}
