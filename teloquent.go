package teloquent

import (
	"context"
	"time"

	"github.com/teloquent/teloquent/logger"
	"github.com/teloquent/teloquent/schema"
)

// Config teloquent config
type Config struct {
	// Logger receives collaborator failures, unknown relation warnings and, through the connection, traced SQL
	Logger logger.Interface
	// NowFunc the function to be used when creating a new timestamp
	NowFunc func() time.Time
	// NamingStrategy default table, foreign key and pivot table names
	NamingStrategy schema.Namer
}

// DB teloquent DB definition, the execution context shared by model types, queries and records
type DB struct {
	*Config
	Conn Connection
}

// Open initialize a DB over conn. Connections implementing Initializer receive the DB,
// which is how a driver picks up the configured logger.
func Open(conn Connection, config *Config) (db *DB, err error) {
	if config == nil {
		config = &Config{}
	}

	if config.NamingStrategy == nil {
		config.NamingStrategy = schema.NamingStrategy{}
	}

	if config.Logger == nil {
		config.Logger = logger.Default
	}

	if config.NowFunc == nil {
		config.NowFunc = func() time.Time { return time.Now().UTC() }
	}

	db = &DB{Config: config, Conn: conn}

	if initializer, ok := conn.(Initializer); ok {
		err = initializer.Initialize(db)
	}
	return db, err
}

// Define declares a model type bound to db
func (db *DB) Define(name string, opts ...Options) *ModelType {
	return Define(name, opts...).Bind(db)
}

// Table starts a query over a bare table. Rows hydrate into records of an anonymous model type.
func (db *DB) Table(name string) *Query {
	return newQuery(db, nil, name)
}

// Connection resolves the connection for ctx: the transaction carried by ctx if any, otherwise db.Conn
func (db *DB) Connection(ctx context.Context) (Connection, error) {
	if conn, ok := ConnectionFromContext(ctx); ok {
		return conn, nil
	}
	if db == nil || db.Conn == nil {
		return nil, ErrNotInitialized
	}
	return db.Conn, nil
}

// Transaction runs fn with a context carrying a transactional connection.
// Every query, record and relation operation given that context runs inside the transaction.
// The transaction is rolled back when fn returns an error, committed otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	conn, err := db.Connection(ctx)
	if err != nil {
		return err
	}

	return conn.Transaction(ctx, func(ctx context.Context, tx Connection) error {
		return fn(WithConnection(ctx, tx))
	})
}

// Select runs raw SQL and returns the rows
func (db *DB) Select(ctx context.Context, sql string, params ...interface{}) ([]map[string]interface{}, error) {
	return db.selectRows(ctx, sql, params)
}

// Exec runs a raw statement
func (db *DB) Exec(ctx context.Context, sql string, params ...interface{}) (int64, error) {
	conn, err := db.Connection(ctx)
	if err != nil {
		return 0, err
	}

	result, err := conn.Query(ctx, sql, params)
	if err != nil {
		db.Logger.Error(ctx, "exec failed: %v", err)
		return 0, err
	}
	return result.RowsAffected()
}

func (db *DB) now() time.Time {
	if db.NowFunc != nil {
		return db.NowFunc()
	}
	return time.Now().UTC()
}
