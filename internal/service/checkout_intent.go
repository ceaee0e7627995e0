package service

import (
	"errors"
	"fmt"
	"strconv"
)

// IntentKind discriminates what a checkout session pays for.
type IntentKind string

const (
	IntentCartCheckout IntentKind = "cart_checkout"
	IntentRaffle       IntentKind = "raffle"
)

var ErrUnknownIntent = errors.New("unknown checkout intent")

// CheckoutIntent is the typed form of the metadata round-tripped through the
// payment processor. Parsing it up front keeps the reconciler's dispatch
// exhaustive instead of branching on raw metadata strings.
type CheckoutIntent struct {
	Kind   IntentKind
	UserID uint

	// cart_checkout
	SnapshotKey string

	// raffle
	Tickets int
}

// Encode flattens the intent into processor metadata. Processors cap
// metadata size, which is why cart contents travel as a snapshot key rather
// than inline.
func (i CheckoutIntent) Encode() map[string]string {
	md := map[string]string{
		"type":    string(i.Kind),
		"user_id": strconv.FormatUint(uint64(i.UserID), 10),
	}
	switch i.Kind {
	case IntentCartCheckout:
		md["snapshot_key"] = i.SnapshotKey
	case IntentRaffle:
		md["tickets"] = strconv.Itoa(i.Tickets)
	}
	return md
}

// ParseIntent reads session metadata back into a CheckoutIntent.
func ParseIntent(md map[string]string) (*CheckoutIntent, error) {
	intent := &CheckoutIntent{}
	switch IntentKind(md["type"]) {
	case IntentCartCheckout:
		intent.Kind = IntentCartCheckout
		intent.SnapshotKey = md["snapshot_key"]
	case IntentRaffle:
		intent.Kind = IntentRaffle
		tickets, err := strconv.Atoi(md["tickets"])
		if err != nil || tickets < 1 {
			return nil, fmt.Errorf("%w: bad ticket count %q", ErrUnknownIntent, md["tickets"])
		}
		intent.Tickets = tickets
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnknownIntent, md["type"])
	}
	if raw, ok := md["user_id"]; ok {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad user_id %q", ErrUnknownIntent, raw)
		}
		intent.UserID = uint(id)
	}
	return intent, nil
}
