package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func observedGorm(level zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(level)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func selectUsers() (string, int64) {
	return "SELECT * FROM users", 3
}

func TestNewGormLogger(t *testing.T) {
	gl, _ := observedGorm(zapcore.InfoLevel, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := observedGorm(zapcore.InfoLevel, gormlogger.Info)

	changed, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel, "original must be unchanged")
}

func TestGormLogger_Messages(t *testing.T) {
	t.Run("info is formatted", func(t *testing.T) {
		gl, recorded := observedGorm(zapcore.InfoLevel, gormlogger.Info)
		gl.Info(context.Background(), "migrated %s", "journal_lines")

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "migrated journal_lines", recorded.All()[0].Message)
	})

	t.Run("info suppressed below level", func(t *testing.T) {
		gl, recorded := observedGorm(zapcore.InfoLevel, gormlogger.Warn)
		gl.Info(context.Background(), "ignored")

		assert.Zero(t, recorded.Len())
	})

	t.Run("error level", func(t *testing.T) {
		gl, recorded := observedGorm(zapcore.ErrorLevel, gormlogger.Error)
		gl.Error(context.Background(), "failed")

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, zapcore.ErrorLevel, recorded.All()[0].Level)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("error is logged", func(t *testing.T) {
		gl, recorded := observedGorm(zapcore.ErrorLevel, gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), selectUsers, errors.New("boom"))

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "sql error", recorded.All()[0].Message)
	})

	t.Run("record not found ignored", func(t *testing.T) {
		gl, recorded := observedGorm(zapcore.ErrorLevel, gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), selectUsers, gormlogger.ErrRecordNotFound)

		assert.Zero(t, recorded.Len())
	})

	t.Run("slow query warns", func(t *testing.T) {
		gl, recorded := observedGorm(zapcore.WarnLevel, gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Second), selectUsers, nil)

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "slow sql", recorded.All()[0].Message)
	})

	t.Run("normal query at debug", func(t *testing.T) {
		gl, recorded := observedGorm(zapcore.DebugLevel, gormlogger.Info)
		gl.Trace(context.Background(), time.Now(), selectUsers, nil)

		require.Len(t, recorded.All(), 1)
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.Equal(t, "SELECT * FROM users", entry.ContextMap()["sql"])
		assert.Equal(t, int64(3), entry.ContextMap()["rows"])
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, recorded := observedGorm(zapcore.DebugLevel, gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), selectUsers, errors.New("boom"))

		assert.Zero(t, recorded.Len())
	})

	t.Run("tenant from context", func(t *testing.T) {
		gl, recorded := observedGorm(zapcore.DebugLevel, gormlogger.Info)
		ctx := shared.WithTenant(context.Background(), shared.TenantID(42))
		gl.Trace(ctx, time.Now(), selectUsers, nil)

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "42", recorded.All()[0].ContextMap()["tenant_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
