// Package validation provides structural validation for the wire
// shapes of the offer-based L402 variant: the 402 challenge body and
// the payment-request response. Validation is all-or-nothing: callers
// receive either a fully typed value or a definitive "not this shape",
// never a partially checked object.
package validation

import (
	"encoding/json"

	l402 "github.com/satpathdev/l402-go"
)

// ParseOfferChallenge attempts to interpret data as an offer-based 402
// challenge body. The second return value reports whether the body
// matches the variant: a JSON parse failure, an empty offer list, or
// an offer missing its id, amount, or payment-methods array all mean
// the body is simply not this variant, not a hard error.
func ParseOfferChallenge(data []byte) (*l402.OfferChallenge, bool) {
	var ch l402.OfferChallenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, false
	}
	if err := ValidateOfferChallenge(&ch); err != nil {
		return nil, false
	}
	return &ch, true
}

// ValidateOfferChallenge checks the structural requirements of an
// offer-based challenge: a non-empty offer list where every offer
// carries an id and a payment-methods array. Amounts are checked for
// non-negativity; their numeric type is already enforced by decoding.
func ValidateOfferChallenge(ch *l402.OfferChallenge) error {
	if len(ch.Offers) == 0 {
		return l402.NewProtocolError("offer challenge has no offers", l402.ErrUnknownChallenge)
	}
	for i := range ch.Offers {
		o := &ch.Offers[i]
		if o.ID == "" {
			return l402.NewProtocolError("offer entry is missing offer_id", l402.ErrUnknownChallenge)
		}
		if o.Amount < 0 {
			return l402.NewProtocolError("offer entry has a negative amount", l402.ErrUnknownChallenge)
		}
		if o.PaymentMethods == nil {
			return l402.NewProtocolError("offer entry is missing payment_methods", l402.ErrUnknownChallenge)
		}
	}
	return nil
}

// ParsePaymentRequestResponse decodes and validates the success body
// of a payment-request exchange. A body that is not JSON and a body
// missing the lightning invoice are distinct protocol errors.
func ParsePaymentRequestResponse(data []byte) (*l402.PaymentRequestResponse, error) {
	var resp l402.PaymentRequestResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, l402.NewProtocolError("payment request response is not valid JSON", err)
	}
	if resp.PaymentRequest.LightningInvoice == "" {
		return nil, l402.NewProtocolError("payment request response is missing lightning_invoice", l402.ErrMalformedResponse)
	}
	return &resp, nil
}
