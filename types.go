// Package l402 implements the client side of the L402 payment protocol.
//
// L402 is an HTTP authentication scheme in which a server answers an
// unauthenticated request with 402 Payment Required and challenges the
// client to pay a Lightning invoice. Two challenge variants are
// supported:
//   - Classic: the challenge is carried in a WWW-Authenticate header
//     containing a macaroon and a BOLT11 invoice; the invoice preimage
//     serves as proof of payment on the retried request.
//   - Offer-based (Fewsats v0.2): the 402 body lists purchasable
//     offers, and a separate payment-request endpoint issues the
//     invoice after the client selects an offer.
//
// Import path: github.com/satpathdev/l402-go
package l402

import "time"

// PaymentMethodLightning is the payment method negotiated by this
// client in the offer-based flow.
const PaymentMethodLightning = "lightning"

// ProtocolVariant identifies which L402 challenge variant a 402
// response was classified as.
type ProtocolVariant string

const (
	// VariantClassic is the header-based macaroon+invoice variant.
	VariantClassic ProtocolVariant = "classic"

	// VariantOffers is the offer-based (Fewsats v0.2) variant.
	VariantOffers ProtocolVariant = "offers"
)

// Offer is a single purchasable option presented by an offer-based 402
// challenge.
type Offer struct {
	// ID is the server-assigned offer identifier.
	ID string `json:"offer_id"`

	// Title is a short human-readable name for the offer.
	Title string `json:"title"`

	// Description is an optional longer description.
	Description string `json:"description"`

	// Amount is the offer price in satoshis.
	Amount int64 `json:"amount"`

	// Balance is the credit balance granted on purchase, in the
	// server's own unit.
	Balance int64 `json:"balance"`

	// Currency is the currency the amount is denominated in.
	Currency string `json:"currency"`

	// PaymentMethods lists the payment methods the offer accepts
	// (e.g. "lightning", "onchain").
	PaymentMethods []string `json:"payment_methods"`

	// Type is the offer kind (e.g. "top-up", "one-off").
	Type string `json:"type"`
}

// SupportsMethod reports whether the offer accepts the given payment
// method.
func (o *Offer) SupportsMethod(method string) bool {
	for _, m := range o.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// OfferChallenge is the JSON body of an offer-based 402 response.
type OfferChallenge struct {
	// Offers is the list of purchasable offers. Must be non-empty.
	Offers []Offer `json:"offers"`

	// PaymentContextToken correlates the challenge with the
	// subsequent payment-request exchange.
	PaymentContextToken string `json:"payment_context_token"`

	// PaymentRequestURL is the endpoint that issues an invoice for a
	// selected offer.
	PaymentRequestURL string `json:"payment_request_url"`

	// Version is the challenge protocol version (e.g. "0.2.2").
	Version string `json:"version"`
}

// ClassicChallenge is the parsed form of a classic L402
// WWW-Authenticate challenge header.
type ClassicChallenge struct {
	// Macaroon is the opaque credential token issued alongside the
	// invoice.
	Macaroon string

	// Invoice is the BOLT11 payment request to be paid.
	Invoice string
}

// PaymentRequest is the body POSTed to an offer challenge's
// payment-request endpoint.
type PaymentRequest struct {
	// OfferID identifies the selected offer.
	OfferID string `json:"offer_id"`

	// PaymentMethod is the chosen payment method. This client always
	// sends PaymentMethodLightning.
	PaymentMethod string `json:"payment_method"`

	// PaymentContextToken echoes the token from the challenge.
	PaymentContextToken string `json:"payment_context_token"`
}

// LightningPaymentRequest carries the invoice issued by the
// payment-request endpoint.
type LightningPaymentRequest struct {
	// LightningInvoice is the BOLT11 payment request to be paid.
	LightningInvoice string `json:"lightning_invoice"`
}

// PaymentRequestResponse is the success body of the payment-request
// exchange.
type PaymentRequestResponse struct {
	// PaymentRequest holds the issued invoice.
	PaymentRequest LightningPaymentRequest `json:"payment_request"`

	// ExpiresAt is when the issued invoice expires (server-formatted).
	ExpiresAt string `json:"expires_at"`

	// OfferID echoes the purchased offer.
	OfferID string `json:"offer_id"`

	// Version is the protocol version of the response.
	Version string `json:"version"`
}

// PaymentResult is returned by a PaymentBackend after settling an
// invoice.
type PaymentResult struct {
	// Preimage is the hex-encoded proof of payment.
	Preimage string

	// PaymentHash is the hex-encoded payment hash of the invoice.
	PaymentHash string

	// Status is the backend's settlement status (e.g. "SUCCEEDED").
	Status string
}

// Credential is a paid classic-flow credential held by the
// CredentialCache. Credentials are immutable once stored; a fresh
// payment replaces the entry wholesale.
type Credential struct {
	// Macaroon is the credential token from the challenge.
	Macaroon string

	// Preimage is the proof of payment for the challenge's invoice.
	Preimage string

	// CreatedAt is when the credential was stored.
	CreatedAt time.Time

	// ExpiresAt is when the credential lapses. Zero means no expiry.
	ExpiresAt time.Time
}
