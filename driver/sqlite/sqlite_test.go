package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teloquent/teloquent"
	"github.com/teloquent/teloquent/driver/sqlite"
	"github.com/teloquent/teloquent/errtranslator"
	"github.com/teloquent/teloquent/logger"
)

type traceWriter struct {
	lines []string
}

func (w *traceWriter) Printf(format string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func openMemory(t *testing.T) *sqlite.Connection {
	t.Helper()

	conn, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	_, err = conn.Query(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name VARCHAR(255), age INTEGER, tags TEXT)", nil)
	require.NoError(t, err)
	return conn
}

func TestInsertAndSelect(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	id, err := conn.Insert(ctx, "users", map[string]interface{}{"name": "jinzhu", "age": 18})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = conn.Insert(ctx, "users", map[string]interface{}{"name": "alice", "age": 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	rows, err := conn.Select(ctx, "SELECT id, name, age FROM users WHERE age > ? ORDER BY id ASC", []interface{}{10})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "jinzhu", rows[0]["name"])
	assert.EqualValues(t, 18, rows[0]["age"])
	assert.EqualValues(t, 2, rows[1]["id"])
}

func TestSelectNoRows(t *testing.T) {
	conn := openMemory(t)

	rows, err := conn.Select(context.Background(), "SELECT * FROM users", nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestInsertDefaultValues(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	id, err := conn.Insert(ctx, "users", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	rows, err := conn.Select(ctx, "SELECT name FROM users", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["name"])
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	for _, name := range []string{"a", "b", "c"} {
		_, err := conn.Insert(ctx, "users", map[string]interface{}{"name": name, "age": 1})
		require.NoError(t, err)
	}

	affected, err := conn.Update(ctx, "users", map[string]interface{}{"age": 2}, "name IN (?, ?)", []interface{}{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	affected, err = conn.Update(ctx, "users", map[string]interface{}{}, "1=1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = conn.Delete(ctx, "users", "age = ?", []interface{}{2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	rows, err := conn.Select(ctx, "SELECT name FROM users", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0]["name"])
}

func TestJSONBindValues(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	_, err := conn.Insert(ctx, "users", map[string]interface{}{"name": "tagged", "tags": []interface{}{"go", "orm"}})
	require.NoError(t, err)

	rows, err := conn.Select(ctx, "SELECT tags FROM users", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `["go","orm"]`, rows[0]["tags"])
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	err := conn.Transaction(ctx, func(ctx context.Context, tx teloquent.Connection) error {
		_, err := tx.Insert(ctx, "users", map[string]interface{}{"name": "committed"})
		return err
	})
	require.NoError(t, err)

	rollback := errors.New("rollback")
	err = conn.Transaction(ctx, func(ctx context.Context, tx teloquent.Connection) error {
		if _, err := tx.Insert(ctx, "users", map[string]interface{}{"name": "rolled back"}); err != nil {
			return err
		}
		return tx.Transaction(ctx, func(ctx context.Context, nested teloquent.Connection) error {
			assert.Same(t, tx, nested)
			return rollback
		})
	})
	assert.ErrorIs(t, err, rollback)

	rows, err := conn.Select(ctx, "SELECT name FROM users", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "committed", rows[0]["name"])
}

func TestTransactionPanic(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	assert.Panics(t, func() {
		conn.Transaction(ctx, func(ctx context.Context, tx teloquent.Connection) error {
			tx.Insert(ctx, "users", map[string]interface{}{"name": "lost"})
			panic("boom")
		})
	})

	rows, err := conn.Select(ctx, "SELECT name FROM users", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestForeignKeys(t *testing.T) {
	conn, err := sqlite.New(sqlite.Config{DSN: ":memory:", ForeignKeys: true})
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	_, err = conn.Query(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY)", nil)
	require.NoError(t, err)
	_, err = conn.Query(ctx, "CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER, FOREIGN KEY (user_id) REFERENCES users (id))", nil)
	require.NoError(t, err)

	_, err = conn.Insert(ctx, "posts", map[string]interface{}{"user_id": 42})
	assert.ErrorIs(t, err, errtranslator.ErrForeignKeyViolated)
}

func TestUniqueViolation(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	_, err := conn.Query(ctx, "CREATE UNIQUE INDEX unq_users_name ON users (name)", nil)
	require.NoError(t, err)

	_, err = conn.Insert(ctx, "users", map[string]interface{}{"name": "jinzhu"})
	require.NoError(t, err)
	_, err = conn.Insert(ctx, "users", map[string]interface{}{"name": "jinzhu"})
	assert.ErrorIs(t, err, teloquent.ErrDuplicatedKey)

	var constraint *errtranslator.ConstraintError
	require.ErrorAs(t, err, &constraint)
	assert.Equal(t, 2067, constraint.Code)

	_, err = conn.Select(ctx, "SELECT * FROM missing", nil)
	assert.Error(t, err)
	assert.False(t, errors.As(err, &constraint))
}

func TestTrace(t *testing.T) {
	writer := &traceWriter{}
	conn, err := sqlite.New(sqlite.Config{
		DSN:    ":memory:",
		Logger: logger.New(writer, logger.Config{LogLevel: logger.Info}),
	})
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	_, err = conn.Query(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)", nil)
	require.NoError(t, err)
	_, err = conn.Insert(ctx, "users", map[string]interface{}{"name": "jinzhu"})
	require.NoError(t, err)

	require.Len(t, writer.lines, 2)
	assert.Contains(t, writer.lines[1], "INSERT INTO users (name) VALUES ('jinzhu')")
	assert.Contains(t, writer.lines[1], "[rows:1]")
}

func TestTraceParameterized(t *testing.T) {
	writer := &traceWriter{}
	conn, err := sqlite.New(sqlite.Config{
		DSN:    ":memory:",
		Logger: logger.New(writer, logger.Config{LogLevel: logger.Info, ParameterizedQueries: true}),
	})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Select(context.Background(), "SELECT ? AS secret", []interface{}{"hunter2"})
	require.NoError(t, err)

	require.Len(t, writer.lines, 1)
	assert.Contains(t, writer.lines[0], "SELECT ? AS secret")
	assert.False(t, strings.Contains(writer.lines[0], "hunter2"))
}

func TestInitializePicksUpLogger(t *testing.T) {
	writer := &traceWriter{}
	conn, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	_, err = teloquent.Open(conn, &teloquent.Config{
		Logger:  logger.New(writer, logger.Config{LogLevel: logger.Info}),
		NowFunc: time.Now,
	})
	require.NoError(t, err)

	_, err = conn.Select(context.Background(), "SELECT 1", nil)
	require.NoError(t, err)
	assert.Len(t, writer.lines, 1)
}
