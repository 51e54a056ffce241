package l402

import "time"

// PaymentEventType represents the type of payment event.
type PaymentEventType string

const (
	// PaymentEventAttempt indicates a payment is being attempted.
	PaymentEventAttempt PaymentEventType = "attempt"

	// PaymentEventSuccess indicates a payment succeeded.
	PaymentEventSuccess PaymentEventType = "success"

	// PaymentEventFailure indicates a payment failed.
	PaymentEventFailure PaymentEventType = "failure"
)

// PaymentEvent represents a payment lifecycle event. Events provide
// consistent payment notifications for logging, monitoring, and
// debugging.
type PaymentEvent struct {
	// Type is the event type (attempt, success, failure).
	Type PaymentEventType

	// Timestamp is when the event occurred.
	Timestamp time.Time

	// URL is the resource URL being paid for.
	URL string

	// Variant is the challenge variant being handled.
	Variant ProtocolVariant

	// AmountSats is the invoice amount in satoshis.
	AmountSats int64

	// PaymentHash is the invoice payment hash (available on success).
	PaymentHash string

	// Error contains error details (available on failure).
	Error error

	// Duration is the time taken for the payment operation.
	Duration time.Duration
}

// PaymentCallback is a function that handles payment events.
// Callbacks are invoked synchronously during payment processing, so
// they should be fast to avoid blocking the payment flow. For longer
// operations, consider using goroutines within the callback.
type PaymentCallback func(PaymentEvent)
