package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newOutboxDB opens an in-memory sqlite database holding only the outbox
// table. A single connection keeps every query on the same memory database.
func newOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.OutboxEntryModel{}))
	return db
}

// recordingPublisher records delivered events and fails those listed in failing
type recordingPublisher struct {
	mu        sync.Mutex
	published []shared.DomainEvent
	failing   map[uuid.UUID]bool
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{failing: make(map[uuid.UUID]bool)}
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range events {
		if p.failing[e.EventID()] {
			return errors.New("broker unavailable")
		}
		p.published = append(p.published, e)
	}
	return nil
}

func (p *recordingPublisher) fail(id uuid.UUID, failing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[id] = failing
}

func (p *recordingPublisher) eventIDs() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]uuid.UUID, len(p.published))
	for i, e := range p.published {
		ids[i] = e.EventID()
	}
	return ids
}

func newLedgerSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterLedgerEvents(s)
	return s
}
