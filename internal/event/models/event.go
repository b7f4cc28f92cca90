package models

import "time"

// EventKind is the upstream payment event type.
type EventKind string

const (
	KindDonation     EventKind = "Donation"
	KindSubscription EventKind = "Subscription"
)

// PaymentEvent is an immutable audit record of one inbound payment webhook.
// ID is the upstream message id and the dedup key: payment platforms retry,
// so re-ingesting a known id must be a silent no-op.
type PaymentEvent struct {
	ID                    string
	Timestamp             time.Time
	Kind                  EventKind
	IsPublic              bool
	PayerName             string
	PayerEmail            string
	Message               string
	Amount                float64
	Currency              string
	URL                   string
	IsSubscriptionPayment bool
	IsFirstSubscription   bool
	TierLabel             string // upstream vocabulary; empty when absent
	ExternalTransactionID string
	RawPayload            string // opaque serialized snapshot for audit
}

// QualifiesForReconciliation reports whether this event may create or alter a
// guardian: it must be a subscription payment on a named tier. Plain
// donations and non-tiered subscriptions are logged and otherwise ignored.
func (e *PaymentEvent) QualifiesForReconciliation() bool {
	return e.Kind == KindSubscription && e.IsSubscriptionPayment && e.TierLabel != ""
}
