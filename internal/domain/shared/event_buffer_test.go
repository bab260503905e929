package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []DomainEvent
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...DomainEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, events...)
	return nil
}

func TestEventBuffer(t *testing.T) {
	t.Run("pending is a snapshot", func(t *testing.T) {
		var buf EventBuffer
		buf.Record(newStubEvent(1), nil, newStubEvent(1))

		pending := buf.Pending()
		require.Len(t, pending, 2)
		pending[0] = nil

		assert.NotNil(t, buf.Pending()[0])
		assert.Equal(t, 2, buf.Len())
	})

	t.Run("clear drops events", func(t *testing.T) {
		var buf EventBuffer
		buf.Record(newStubEvent(1))
		buf.Clear()
		assert.Zero(t, buf.Len())
	})
}

func TestCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes after save and clears", func(t *testing.T) {
		var buf EventBuffer
		first, second := newStubEvent(1), newStubEvent(1)
		buf.Record(first, second)
		pub := &recordingPublisher{}
		saved := false

		err := Commit(ctx, func(context.Context) error {
			saved = true
			assert.Empty(t, pub.published)
			return nil
		}, pub, &buf)

		require.NoError(t, err)
		assert.True(t, saved)
		assert.Equal(t, []DomainEvent{first, second}, pub.published)
		assert.Zero(t, buf.Len())
	})

	t.Run("does not publish when save fails", func(t *testing.T) {
		var buf EventBuffer
		buf.Record(newStubEvent(1))
		pub := &recordingPublisher{}

		err := Commit(ctx, func(context.Context) error { return ErrConcurrencyConflict }, pub, &buf)

		assert.ErrorIs(t, err, ErrConcurrencyConflict)
		assert.Empty(t, pub.published)
		assert.Equal(t, 1, buf.Len())
	})

	t.Run("returns the undelivered events when publish fails after save", func(t *testing.T) {
		var buf EventBuffer
		event := newStubEvent(1)
		buf.Record(event)
		busDown := errors.New("bus down")
		pub := &recordingPublisher{err: busDown}

		err := Commit(ctx, func(context.Context) error { return nil }, pub, &buf)

		require.ErrorIs(t, err, busDown)
		var undelivered *UndeliveredEventsError
		require.ErrorAs(t, err, &undelivered)
		assert.Equal(t, []DomainEvent{event}, undelivered.Events)
		assert.Equal(t, 1, buf.Len())
	})
}

// transactionalPublisher runs commits in a fake transaction that is only
// kept when fn succeeds
type transactionalPublisher struct {
	recordingPublisher
	inTx      bool
	committed []string
	pending   []string
}

func (p *transactionalPublisher) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.inTx = true
	p.pending = nil
	defer func() { p.inTx = false }()
	if err := fn(ctx); err != nil {
		return err
	}
	p.committed = append(p.committed, p.pending...)
	return nil
}

func (p *transactionalPublisher) Publish(ctx context.Context, events ...DomainEvent) error {
	if !p.inTx {
		return errors.New("publish outside transaction")
	}
	if err := p.recordingPublisher.Publish(ctx, events...); err != nil {
		return err
	}
	p.pending = append(p.pending, "events")
	return nil
}

func TestCommit_Transactor(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and publishes in one transaction", func(t *testing.T) {
		var buf EventBuffer
		buf.Record(newStubEvent(1))
		pub := &transactionalPublisher{}

		err := Commit(ctx, func(context.Context) error {
			assert.True(t, pub.inTx, "save runs inside the transaction")
			pub.pending = append(pub.pending, "row")
			return nil
		}, pub, &buf)

		require.NoError(t, err)
		assert.Equal(t, []string{"row", "events"}, pub.committed)
		assert.Zero(t, buf.Len())
	})

	t.Run("publish failure discards the save", func(t *testing.T) {
		var buf EventBuffer
		buf.Record(newStubEvent(1))
		busDown := errors.New("outbox down")
		pub := &transactionalPublisher{recordingPublisher: recordingPublisher{err: busDown}}

		err := Commit(ctx, func(context.Context) error {
			pub.pending = append(pub.pending, "row")
			return nil
		}, pub, &buf)

		require.ErrorIs(t, err, busDown)
		var undelivered *UndeliveredEventsError
		assert.False(t, errors.As(err, &undelivered), "nothing was saved, so nothing is undelivered")
		assert.Empty(t, pub.committed)
		assert.Equal(t, 1, buf.Len())
	})
}
