package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentCartRoundTrip(t *testing.T) {
	in := CheckoutIntent{Kind: IntentCartCheckout, UserID: 7, SnapshotKey: "snap_7_123_abc"}
	out, err := ParseIntent(in.Encode())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestIntentRaffleRoundTrip(t *testing.T) {
	in := CheckoutIntent{Kind: IntentRaffle, UserID: 7, Tickets: 4}
	out, err := ParseIntent(in.Encode())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestParseIntentRejectsUnknownType(t *testing.T) {
	_, err := ParseIntent(map[string]string{"type": "donation", "user_id": "7"})
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

func TestParseIntentRejectsEmptyMetadata(t *testing.T) {
	_, err := ParseIntent(map[string]string{})
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

func TestParseIntentRejectsBadTicketCount(t *testing.T) {
	for _, tickets := range []string{"", "0", "-2", "four"} {
		_, err := ParseIntent(map[string]string{"type": "raffle", "user_id": "7", "tickets": tickets})
		assert.ErrorIs(t, err, ErrUnknownIntent, "tickets=%q", tickets)
	}
}

func TestParseIntentRejectsBadUserID(t *testing.T) {
	_, err := ParseIntent(map[string]string{"type": "cart_checkout", "user_id": "nope", "snapshot_key": "k"})
	assert.ErrorIs(t, err, ErrUnknownIntent)
}
