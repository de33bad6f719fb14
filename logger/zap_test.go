package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewZapLogger(t *testing.T) {
	zapAdapter := NewZapLogger(zap.NewNop(), Config{
		LogLevel:                  Info,
		SlowThreshold:             100 * time.Millisecond,
		ParameterizedQueries:      true,
		IgnoreRecordNotFoundError: true,
	})

	require.NotNil(t, zapAdapter)
	assert.Equal(t, Info, zapAdapter.(*ZapLogger).LogLevel)
	assert.Equal(t, 100*time.Millisecond, zapAdapter.(*ZapLogger).SlowThreshold)
	assert.True(t, zapAdapter.(*ZapLogger).Parameterized)
	assert.True(t, zapAdapter.(*ZapLogger).IgnoreRecordNotFoundError)
}

func TestZapLogger_LogMode(t *testing.T) {
	logger := NewZapLogger(zap.NewNop(), Config{LogLevel: Error})

	infoLogger := logger.LogMode(Info)
	assert.Equal(t, Info, infoLogger.(*ZapLogger).LogLevel)
	assert.Equal(t, Error, logger.(*ZapLogger).LogLevel)
}

func TestZapLogger_LogLevels(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core), Config{LogLevel: Warn})

	logger.Info(ctx, "skipped")
	logger.Warn(ctx, "relation %q does not exist on model %s", "tags", "Post")
	logger.Error(ctx, "delete failed: %v", errors.New("locked"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, `relation "tags" does not exist on model Post`, entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "delete failed: locked", entries[1].Message)
}

func TestZapLogger_Trace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		level    LogLevel
		begin    time.Time
		err      error
		slow     time.Duration
		expected string
		count    int
	}{
		{"info", Info, time.Now(), nil, 0, "query executed", 1},
		{"error", Error, time.Now(), errors.New("no such table"), 0, "query failed", 1},
		{"slow", Warn, time.Now().Add(-time.Second), nil, time.Millisecond, "slow query", 1},
		{"silent", Silent, time.Now(), errors.New("ignored"), 0, "", 0},
		{"warn level skips fast queries", Warn, time.Now(), nil, time.Hour, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			logger := NewZapLogger(zap.New(core), Config{LogLevel: tt.level, SlowThreshold: tt.slow})

			logger.Trace(ctx, tt.begin, func() (string, int64) { return "SELECT * FROM users", 2 }, tt.err)

			require.Equal(t, tt.count, logs.Len())
			if tt.count > 0 {
				entry := logs.All()[0]
				assert.Equal(t, tt.expected, entry.Message)
				assert.Equal(t, "SELECT * FROM users", entry.ContextMap()["sql"])
				assert.Equal(t, int64(2), entry.ContextMap()["rows"])
			}
		})
	}
}

func TestZapLogger_ParamsFilter(t *testing.T) {
	logger := NewZapLogger(zap.NewNop(), Config{ParameterizedQueries: true})
	sql, params := logger.(ParamsFilter).ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)

	logger = NewZapLogger(zap.NewNop(), Config{})
	_, params = logger.(ParamsFilter).ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, []interface{}{1}, params)
}

func TestZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DPanicLevel, ZapLevel(Silent))
	assert.Equal(t, zapcore.ErrorLevel, ZapLevel(Error))
	assert.Equal(t, zapcore.WarnLevel, ZapLevel(Warn))
	assert.Equal(t, zapcore.InfoLevel, ZapLevel(Info))
}
