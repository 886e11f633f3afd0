package dispatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/lecturer-claims/internal/domain/event"
)

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.SubscribeNamed(event.TypeClaimDecided, "first", func(context.Context, *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.SubscribeNamed(event.TypeClaimDecided, "second", func(context.Context, *event.Event) error {
		order = append(order, "second")
		return nil
	})
	d.Subscribe(event.TypeClaimSubmitted, func(context.Context, *event.Event) error {
		order = append(order, "other")
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeClaimDecided, 1, 1, nil)))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatch_StopsOnFirstError(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")
	called := false

	d.SubscribeNamed(event.TypeClaimSubmitted, "failing", func(context.Context, *event.Event) error { return boom })
	d.SubscribeNamed(event.TypeClaimSubmitted, "after", func(context.Context, *event.Event) error {
		called = true
		return nil
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeClaimSubmitted, 1, 1, nil))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.False(t, called)
}

func TestDispatch_RecoversPanic(t *testing.T) {
	d := NewDispatcher()
	d.Subscribe(event.TypeClaimSubmitted, func(context.Context, *event.Event) error { panic("bad handler") })

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeClaimSubmitted, 1, 1, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad handler")
}

func TestListHandlers(t *testing.T) {
	d := NewDispatcher()
	noop := func(context.Context, *event.Event) error { return nil }
	d.SubscribeNamed(event.TypeClaimDecided, "audit", noop)
	d.Subscribe(event.TypeClaimDecided, noop)

	handlers := d.ListHandlers(event.TypeClaimDecided)
	require.Len(t, handlers, 2)
	assert.Equal(t, "audit", handlers[0].Name)
	assert.Equal(t, "handler-1", handlers[1].Name)
	assert.Nil(t, handlers[0].Handler)
	assert.Empty(t, d.ListHandlers(event.TypeClaimSubmitted))
}

func TestClose(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Close())
	assert.Error(t, d.Close())
	assert.Error(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeClaimDecided, 1, 1, nil)))
}

func TestAuditLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := AuditLogger(zap.New(core))

	evt := event.NewEvent(event.TypeClaimDecided, 7, 3, map[string]string{event.KeyStatus: "MANAGER_APPROVED"})
	require.NoError(t, handler(context.Background(), evt))

	entries := logs.FilterMessage("Claim event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(7), fields["claim_id"])
	assert.Equal(t, "MANAGER_APPROVED", fields["status"])
}
