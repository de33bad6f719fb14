package teloquent

import (
	"context"
)

// contextKeyType is an unexported type so that the context key never
// collides with any other context keys.
type contextKeyType struct{}

// contextKey is the key used for the context to store the connection.
var contextKey = contextKeyType{}

// WithConnection inserts a connection into the context, statements run with
// the returned context use it instead of the DB connection.
func WithConnection(ctx context.Context, conn Connection) context.Context {
	return context.WithValue(ctx, contextKey, conn)
}

// ConnectionFromContext extracts a connection from the context.
func ConnectionFromContext(ctx context.Context) (Connection, bool) {
	if ctx == nil {
		return nil, false
	}
	conn, _ := ctx.Value(contextKey).(Connection)
	return conn, conn != nil
}
