package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedAccount struct {
	ID       int64 `gorm:"primaryKey"`
	TenantID int64
	Name     string
}

func setupTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedAccount{}))
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.WithoutVariables)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTracedDB(t)

	require.NoError(t, NewDBTracingPlugin(DefaultDBTracingConfig(), nil).Register(db))
	assert.Nil(t, db.Callback().Query().Get("ledger_trace:after_query"))
}

func TestDBTracingPlugin_Enabled(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	db := setupTracedDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

	assert.NotNil(t, db.Callback().Query().Get("ledger_trace:after_query"))
	assert.NotNil(t, db.Callback().Create().Get("ledger_trace:before_create"))

	ctx := shared.WithTenant(context.Background(), shared.TenantID(9))
	require.NoError(t, db.WithContext(ctx).Create(&tracedAccount{ID: 1, TenantID: 9, Name: "cash"}).Error)

	var got []tracedAccount
	require.NoError(t, db.WithContext(ctx).Where("tenant_id = ?", 9).Find(&got).Error)
	require.Len(t, got, 1)

	assert.NotEmpty(t, sr.Ended(), "otelgorm should record statement spans")
}

func TestDBTracingPlugin_AfterTagsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cfg := DefaultDBTracingConfig()
	cfg.SlowQueryThresh = time.Millisecond
	p := NewDBTracingPlugin(cfg, nil)

	ctx, span := tp.Tracer("test").Start(shared.WithTenant(context.Background(), shared.TenantID(3)), "db")
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second))

	db := setupTracedDB(t)
	stmt := db.Session(&gorm.Session{NewDB: true})
	stmt.Statement.Context = ctx
	stmt.Statement.Table = "accounts"
	p.after(stmt)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := map[string]string{}
	slow := false
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
		if kv.Key == "db.slow_query" {
			slow = kv.Value.AsBool()
		}
	}
	assert.Equal(t, "3", attrs[SpanAttrTenantID])
	assert.Equal(t, "accounts", attrs["db.sql.table"])
	assert.True(t, slow)
}
