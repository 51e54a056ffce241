package l402

import "context"

// PaymentBackend settles Lightning invoices on behalf of the client.
// Implementations typically wrap a Lightning node's RPC or REST API;
// transport, authentication, and routing are entirely the backend's
// concern. PayInvoice is expected to block until the payment settles
// or fails, honoring ctx for cancellation.
type PaymentBackend interface {
	// PayInvoice pays the given BOLT11 invoice and returns the
	// settlement result, including the preimage proving payment.
	PayInvoice(ctx context.Context, invoice string) (*PaymentResult, error)
}

// InvoiceDecoder is a PaymentBackend that can also authoritatively
// decode an invoice's amount. When a backend implements this
// interface, the transport prefers it over the textual fallback
// decoder, which cannot verify the invoice's checksum or signature.
type InvoiceDecoder interface {
	PaymentBackend

	// InvoiceAmount returns the invoice amount in satoshis.
	InvoiceAmount(ctx context.Context, invoice string) (int64, error)
}
