package l402

import "errors"

// Sentinel errors for L402 payment operations.
var (
	// ErrUnknownChallenge indicates a 402 response matched neither the
	// classic header variant nor the offer-based body variant.
	ErrUnknownChallenge = errors.New("l402: 402 response matches no supported challenge variant")

	// ErrMalformedChallenge indicates a classic challenge header is
	// missing its macaroon or invoice field.
	ErrMalformedChallenge = errors.New("l402: malformed L402 challenge header")

	// ErrNoLightningOffer indicates no offers support the lightning
	// payment method.
	ErrNoLightningOffer = errors.New("l402: no offers support the lightning payment method")

	// ErrInvalidInvoice indicates a BOLT11 invoice could not be
	// decoded.
	ErrInvalidInvoice = errors.New("l402: invalid BOLT11 invoice")

	// ErrAmountExceeded indicates an invoice amount exceeds the
	// configured per-client payment ceiling.
	ErrAmountExceeded = errors.New("l402: invoice amount exceeds payment ceiling")

	// ErrBudgetExceeded indicates a spending limit would be violated.
	ErrBudgetExceeded = errors.New("l402: spending limit exceeded")

	// ErrPaymentFailed indicates the payment backend failed to settle
	// an invoice.
	ErrPaymentFailed = errors.New("l402: payment failed")

	// ErrPaymentRequestFailed indicates the offer-based
	// payment-request exchange failed at the transport or status
	// level.
	ErrPaymentRequestFailed = errors.New("l402: payment request exchange failed")

	// ErrMalformedResponse indicates the payment-request endpoint
	// returned a body that is not JSON or is missing the invoice.
	ErrMalformedResponse = errors.New("l402: malformed payment request response")
)

// ErrorKind classifies payment errors for programmatic handling.
type ErrorKind string

const (
	// KindProtocol indicates the server's challenge, body, or
	// downstream response is malformed or unsupported.
	KindProtocol ErrorKind = "protocol"

	// KindBudget indicates a payment was refused by the ceiling or a
	// configured spending limit, before any funds moved.
	KindBudget ErrorKind = "budget"

	// KindPayment indicates the payment backend or the
	// payment-request exchange failed.
	KindPayment ErrorKind = "payment"
)

// Error provides structured error information for a failed call.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind

	// Message is the human-readable error message.
	Message string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewProtocolError creates a protocol-kind Error.
func NewProtocolError(message string, err error) *Error {
	return &Error{Kind: KindProtocol, Message: message, Err: err}
}

// NewBudgetError creates a budget-kind Error.
func NewBudgetError(message string, err error) *Error {
	return &Error{Kind: KindBudget, Message: message, Err: err}
}

// NewPaymentError creates a payment-kind Error.
func NewPaymentError(message string, err error) *Error {
	return &Error{Kind: KindPayment, Message: message, Err: err}
}

// KindOf returns the ErrorKind of err if it is (or wraps) an *Error,
// and "" otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
