package l402

// OfferSelector chooses one offer from the list presented by an
// offer-based challenge. Implementations must be pure: offers in, one
// offer out, or an explicit error. Returning an offer that is not in
// the input list is a caller bug.
type OfferSelector interface {
	// SelectOffer picks the offer to purchase.
	SelectOffer(offers []Offer) (*Offer, error)
}

// OfferSelectorFunc adapts a plain function to the OfferSelector
// interface.
type OfferSelectorFunc func(offers []Offer) (*Offer, error)

// SelectOffer implements OfferSelector.
func (f OfferSelectorFunc) SelectOffer(offers []Offer) (*Offer, error) {
	return f(offers)
}

// DefaultOfferSelector implements the standard selection policy:
// among offers whose payment methods include lightning, pick the one
// with the lowest amount, breaking ties by original order.
type DefaultOfferSelector struct{}

// NewDefaultOfferSelector creates a new DefaultOfferSelector.
func NewDefaultOfferSelector() *DefaultOfferSelector {
	return &DefaultOfferSelector{}
}

// SelectOffer implements OfferSelector. It returns a protocol error
// when no offer supports the lightning payment method.
func (s *DefaultOfferSelector) SelectOffer(offers []Offer) (*Offer, error) {
	var best *Offer
	for i := range offers {
		o := &offers[i]
		if !o.SupportsMethod(PaymentMethodLightning) {
			continue
		}
		if best == nil || o.Amount < best.Amount {
			best = o
		}
	}
	if best == nil {
		return nil, NewProtocolError("no offers support the lightning payment method", ErrNoLightningOffer)
	}
	return best, nil
}
