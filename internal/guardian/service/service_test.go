package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugswriter/shiosayi-backend/internal/guardian/store"
	"github.com/bugswriter/shiosayi-backend/internal/tier"
	dErrors "github.com/bugswriter/shiosayi-backend/pkg/domain-errors"
	"github.com/bugswriter/shiosayi-backend/pkg/requestcontext"
)

func newService() *Service {
	return New(store.NewInMemory(), nil)
}

func TestRegisterIssuesIdentityAndToken(t *testing.T) {
	svc := newService()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	g, err := svc.Register(ctx, "Akiko", "akiko@x.com", tier.Keeper)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(g.ID, "g_"))
	assert.True(t, strings.HasPrefix(g.Token, "shio_"))
	assert.Equal(t, tier.Keeper, g.Tier)
	assert.True(t, g.JoinedAt.Equal(now))
	assert.True(t, g.LastPaidAt.Equal(now))
}

func TestRegisterValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "No Email", "   ", tier.Lover)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = svc.Register(ctx, "Bad Tier", "a@x.com", tier.Tier("platinum"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRecordPaymentReturnsPreviousTier(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	g, err := svc.Register(ctx, "A", "a@x.com", tier.Lover)
	require.NoError(t, err)

	prev, err := svc.RecordPayment(ctx, g.ID, tier.Savior)
	require.NoError(t, err)
	assert.Equal(t, tier.Lover, prev)

	// Same-tier payment reads back as a renewal.
	prev, err = svc.RecordPayment(ctx, g.ID, tier.Savior)
	require.NoError(t, err)
	assert.Equal(t, tier.Savior, prev)

	// The token survives every payment.
	after, err := svc.Authenticate(ctx, g.Token)
	require.NoError(t, err)
	assert.Equal(t, g.Token, after.Token)
	assert.Equal(t, tier.Savior, after.Tier)
}

func TestAuthenticate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	g, err := svc.Register(ctx, "A", "a@x.com", tier.Lover)
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, g.Token)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	_, err = svc.Authenticate(ctx, "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = svc.Authenticate(ctx, "shio_wrong")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
