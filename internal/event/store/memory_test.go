package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugswriter/shiosayi-backend/internal/event/models"
)

func sampleEvent(id string) *models.PaymentEvent {
	return &models.PaymentEvent{
		ID:                    id,
		Kind:                  models.KindSubscription,
		PayerEmail:            "donor@x.com",
		PayerName:             "Donor",
		Amount:                5,
		Currency:              "USD",
		TierLabel:             "keeper",
		IsSubscriptionPayment: true,
		Timestamp:             time.Now().UTC(),
		RawPayload:            `{"message_id":"` + id + `"}`,
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	outcome, err := store.Ingest(ctx, sampleEvent("msg-1"))
	require.NoError(t, err)
	assert.Equal(t, Inserted, outcome)

	// Replaying the same message id must not create a second record.
	replay := sampleEvent("msg-1")
	replay.Amount = 99
	outcome, err = store.Ingest(ctx, replay)
	require.NoError(t, err)
	assert.Equal(t, Duplicate, outcome)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, float64(5), got.Amount, "first write wins")
}

func TestIngestDistinctEvents(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	for _, id := range []string{"msg-1", "msg-2", "msg-3"} {
		outcome, err := store.Ingest(ctx, sampleEvent(id))
		require.NoError(t, err)
		assert.Equal(t, Inserted, outcome)
	}
	assert.Equal(t, 3, store.Len())
}
