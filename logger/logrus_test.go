package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogrus() (*logrus.Logger, *test.Hook) {
	logrusLogger, hook := test.NewNullLogger()
	logrusLogger.SetLevel(logrus.DebugLevel)
	return logrusLogger, hook
}

func TestNewLogrusLogger(t *testing.T) {
	logrusLogger := logrus.New()
	logrusLogger.SetOutput(&bytes.Buffer{})

	logger := NewLogrusLogger(logrusLogger, Config{LogLevel: Info, SlowThreshold: time.Second})
	require.NotNil(t, logger)
	assert.Equal(t, Info, logger.(*LogrusLogger).LogLevel)
	assert.Equal(t, time.Second, logger.(*LogrusLogger).SlowThreshold)
	assert.Equal(t, Error, logger.LogMode(Error).(*LogrusLogger).LogLevel)
}

func TestLogrusLogger_LogLevels(t *testing.T) {
	ctx := context.Background()
	logrusLogger, hook := newTestLogrus()
	logger := NewLogrusLogger(logrusLogger, Config{LogLevel: Info})

	logger.Info(ctx, "ran %d migrations", 2)
	logger.Warn(ctx, "already initialized")
	logger.Error(ctx, "update failed: %v", errors.New("busy"))

	require.Len(t, hook.AllEntries(), 3)
	assert.Equal(t, logrus.InfoLevel, hook.AllEntries()[0].Level)
	assert.Equal(t, "ran 2 migrations", hook.AllEntries()[0].Message)
	assert.Equal(t, logrus.WarnLevel, hook.AllEntries()[1].Level)
	assert.Equal(t, "update failed: busy", hook.LastEntry().Message)
	assert.Contains(t, hook.LastEntry().Data, "file")
}

func TestLogrusLogger_Trace(t *testing.T) {
	ctx := context.Background()
	logrusLogger, hook := newTestLogrus()
	logger := NewLogrusLogger(logrusLogger, Config{LogLevel: Info, SlowThreshold: time.Millisecond})

	logger.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT * FROM users", 10 }, nil)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "slow query", hook.LastEntry().Message)
	assert.Equal(t, int64(10), hook.LastEntry().Data["rows"])

	logger.Trace(ctx, time.Now(), func() (string, int64) { return "UPDATE users SET name = 'x'", 0 }, errors.New("constraint"))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "query failed", hook.LastEntry().Message)
	assert.Equal(t, "UPDATE users SET name = 'x'", hook.LastEntry().Data["sql"])
}

func TestLogrusLogger_SilentLevel(t *testing.T) {
	logrusLogger, hook := newTestLogrus()
	logger := NewLogrusLogger(logrusLogger, Config{LogLevel: Silent})

	logger.Error(context.Background(), "hidden")
	logger.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Empty(t, hook.AllEntries())
}

func TestLogrusLevel(t *testing.T) {
	assert.Equal(t, logrus.PanicLevel, LogrusLevel(Silent))
	assert.Equal(t, logrus.ErrorLevel, LogrusLevel(Error))
	assert.Equal(t, logrus.WarnLevel, LogrusLevel(Warn))
	assert.Equal(t, logrus.InfoLevel, LogrusLevel(Info))
}
