package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubGatewayRejectsBelowMinimum(t *testing.T) {
	g := NewStubGateway(100)

	_, err := g.CreateSession(context.Background(), CreateSessionInput{AmountCents: 99, Currency: "usd"})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = g.CreateSession(context.Background(), CreateSessionInput{AmountCents: 100, Currency: "usd"})
	assert.NoError(t, err)
}

func TestStubGatewaySessionRoundTrip(t *testing.T) {
	g := NewStubGateway(100)

	created, err := g.CreateSession(context.Background(), CreateSessionInput{
		AmountCents: 1500,
		Currency:    "usd",
		Metadata:    map[string]string{"type": "raffle", "tickets": "3"},
		SuccessURL:  "http://localhost:3000/payment-success",
	})
	require.NoError(t, err)
	assert.True(t, created.Paid())
	assert.Contains(t, created.RedirectURL, "session_id="+created.ID)

	got, err := g.GetSession(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(1500), got.AmountTotal)
	assert.Equal(t, "3", got.Metadata["tickets"])
}

func TestStubGatewayUnknownSession(t *testing.T) {
	g := NewStubGateway(100)

	_, err := g.GetSession(context.Background(), "sess_missing")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
