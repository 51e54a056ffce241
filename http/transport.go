package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	l402 "github.com/satpathdev/l402-go"
	"github.com/satpathdev/l402-go/http/internal/helpers"
	"github.com/satpathdev/l402-go/validation"
)

// L402Transport is a custom RoundTripper that handles L402 payment
// flows. It wraps an existing http.RoundTripper and automatically
// handles 402 Payment Required responses for both the classic
// header-based variant and the offer-based variant, caching classic
// credentials for reuse and deduplicating concurrent payments for the
// same resource.
type L402Transport struct {
	// Base is the underlying RoundTripper (typically
	// http.DefaultTransport).
	Base http.RoundTripper

	// Backend settles Lightning invoices. If it also implements
	// l402.InvoiceDecoder, its decoding is preferred over the textual
	// fallback.
	Backend l402.PaymentBackend

	// Selector chooses among offers in the offer-based flow. Nil
	// means the default cheapest-lightning policy.
	Selector l402.OfferSelector

	// MaxAmountSats is the per-payment ceiling in satoshis. Zero
	// means no ceiling.
	MaxAmountSats int64

	// Tracker enforces spending limits. Nil means no budget or rate
	// enforcement beyond the ceiling.
	Tracker *l402.SpendingTracker

	// CredentialTTL bounds the lifetime of cached classic
	// credentials. Zero means cached credentials never expire.
	CredentialTTL time.Duration

	// OnPaymentAttempt is called when a payment attempt is made.
	OnPaymentAttempt l402.PaymentCallback

	// OnPaymentSuccess is called when a payment succeeds.
	OnPaymentSuccess l402.PaymentCallback

	// OnPaymentFailure is called when a payment fails.
	OnPaymentFailure l402.PaymentCallback

	initOnce sync.Once
	cache    *l402.CredentialCache

	// inflight holds one marker per resource key with a payment
	// outstanding. Waiters block on the channel until the owner
	// settles and closes it.
	mu       sync.Mutex
	inflight map[string]chan struct{}
}

// RoundTrip implements http.RoundTripper.
//
// It presents a cached credential when one exists, issues the request,
// and on a 402 Payment Required response classifies the challenge
// variant, executes the matching payment flow, and retries the
// request. At most one payment is ever in flight per resource key:
// concurrent callers wait for the outstanding payment to settle and
// reuse its outcome.
func (t *L402Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.init()
	key := req.URL.String()

	// Fast path: present the cached credential. A fresh 402 means the
	// server rejected it; evict before any fallback payment attempt.
	if cred, ok := t.cache.Get(key); ok {
		resp, err := t.send(req, helpers.AuthorizationValue(cred.Macaroon, cred.Preimage))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusPaymentRequired {
			return resp, nil
		}
		helpers.DrainBody(resp)
		t.cache.Delete(key)
	}

	for {
		owned, wait := t.acquire(key)
		if !owned {
			select {
			case <-wait:
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
			// The outstanding payment settled. Reuse its credential
			// if it produced one; otherwise fall through and attempt
			// our own payment.
			if cred, ok := t.cache.Get(key); ok {
				resp, err := t.send(req, helpers.AuthorizationValue(cred.Macaroon, cred.Preimage))
				if err != nil {
					return nil, err
				}
				if resp.StatusCode != http.StatusPaymentRequired {
					return resp, nil
				}
				helpers.DrainBody(resp)
				t.cache.Delete(key)
			}
			continue
		}

		resp, err := t.fetchPaying(req, key)
		t.release(key)
		return resp, err
	}
}

// ClearCache removes all cached credentials.
func (t *L402Transport) ClearCache() {
	t.init()
	t.cache.Clear()
}

func (t *L402Transport) init() {
	t.initOnce.Do(func() {
		if t.cache == nil {
			t.cache = l402.NewCredentialCache()
		}
		t.inflight = make(map[string]chan struct{})
	})
}

func (t *L402Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *L402Transport) selector() l402.OfferSelector {
	if t.Selector == nil {
		return l402.NewDefaultOfferSelector()
	}
	return t.Selector
}

// acquire registers the in-flight marker for key. When another call
// already holds it, acquire returns the channel to wait on instead.
func (t *L402Transport) acquire(key string) (owned bool, wait <-chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ch, ok := t.inflight[key]; ok {
		return false, ch
	}
	t.inflight[key] = make(chan struct{})
	return true, nil
}

// release removes the in-flight marker for key and wakes all waiters.
// It is called on every settlement path, success or failure, so a
// failed payment never deadlocks subsequent callers.
func (t *L402Transport) release(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ch, ok := t.inflight[key]; ok {
		close(ch)
		delete(t.inflight, key)
	}
}

// send issues a copy of req through the base transport, attaching the
// given Authorization value when non-empty.
func (t *L402Transport) send(req *http.Request, authorization string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}
	if authorization != "" {
		out.Header.Set("Authorization", authorization)
	}
	return t.base().RoundTrip(out)
}

// fetchPaying makes first contact without payment credentials and, on
// a 402, classifies the challenge and runs the matching payment flow.
// The caller holds the in-flight marker for key.
func (t *L402Transport) fetchPaying(req *http.Request, key string) (*http.Response, error) {
	resp, err := t.send(req, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusPaymentRequired {
		return resp, nil
	}

	// A present challenge header always selects the classic flow,
	// even when the body happens to be valid JSON.
	header, hasClassic := helpers.FindChallenge(resp.Header)
	body := helpers.DrainBody(resp)
	if hasClassic {
		return t.payClassic(req, key, header)
	}
	if ch, ok := validation.ParseOfferChallenge(body); ok {
		return t.payOffer(req, key, ch)
	}
	return nil, l402.NewProtocolError("402 response matches no supported challenge variant", l402.ErrUnknownChallenge)
}

// payClassic runs the classic header-based flow: pay the challenge
// invoice, cache the macaroon and preimage, and retry the request with
// the new credential attached.
func (t *L402Transport) payClassic(req *http.Request, key, header string) (*http.Response, error) {
	ch, err := helpers.ParseClassicChallenge(header)
	if err != nil {
		return nil, err
	}

	amount, err := t.invoiceAmount(req, ch.Invoice)
	if err != nil {
		return nil, err
	}
	if err := t.checkBudget(amount); err != nil {
		return nil, err
	}

	result, err := t.pay(req, l402.VariantClassic, ch.Invoice, amount)
	if err != nil {
		return nil, err
	}
	if t.Tracker != nil {
		t.Tracker.Record(amount, key)
	}
	t.cache.Set(key, ch.Macaroon, result.Preimage, t.CredentialTTL)

	return t.send(req, helpers.AuthorizationValue(ch.Macaroon, result.Preimage))
}

// payOffer runs the offer-based flow: select an offer, obtain an
// invoice from the payment-request endpoint, pay it, and reissue the
// original request unchanged. The server credits the caller's own
// bearer credential out-of-band on payment, so no credential is
// attached or cached.
func (t *L402Transport) payOffer(req *http.Request, key string, ch *l402.OfferChallenge) (*http.Response, error) {
	offer, err := t.selector().SelectOffer(ch.Offers)
	if err != nil {
		return nil, err
	}
	if ch.PaymentRequestURL == "" {
		return nil, l402.NewProtocolError("offer challenge is missing payment_request_url", l402.ErrUnknownChallenge)
	}

	invoice, err := t.requestInvoice(req, ch, offer)
	if err != nil {
		return nil, err
	}

	amount, err := t.invoiceAmount(req, invoice)
	if err != nil {
		return nil, err
	}
	if err := t.checkBudget(amount); err != nil {
		return nil, err
	}

	if _, err := t.pay(req, l402.VariantOffers, invoice, amount); err != nil {
		return nil, err
	}
	if t.Tracker != nil {
		t.Tracker.Record(amount, key)
	}

	return t.send(req, "")
}

// requestInvoice POSTs the payment-request message for the selected
// offer and returns the issued invoice.
func (t *L402Transport) requestInvoice(req *http.Request, ch *l402.OfferChallenge, offer *l402.Offer) (string, error) {
	payload, err := json.Marshal(l402.PaymentRequest{
		OfferID:             offer.ID,
		PaymentMethod:       l402.PaymentMethodLightning,
		PaymentContextToken: ch.PaymentContextToken,
	})
	if err != nil {
		return "", l402.NewProtocolError("encoding payment request", err)
	}

	preq, err := http.NewRequestWithContext(req.Context(), http.MethodPost, ch.PaymentRequestURL, bytes.NewReader(payload))
	if err != nil {
		return "", l402.NewProtocolError("invalid payment_request_url", err)
	}
	preq.Header.Set("Content-Type", "application/json")

	resp, err := t.base().RoundTrip(preq)
	if err != nil {
		return "", l402.NewPaymentError("payment request exchange failed", err)
	}
	body := helpers.DrainBody(resp)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", l402.NewPaymentError(
			fmt.Sprintf("payment request endpoint returned status %d", resp.StatusCode),
			l402.ErrPaymentRequestFailed)
	}

	parsed, err := validation.ParsePaymentRequestResponse(body)
	if err != nil {
		return "", err
	}
	return parsed.PaymentRequest.LightningInvoice, nil
}

// invoiceAmount resolves an invoice's satoshi amount, preferring the
// backend's authoritative decoding when it offers one.
func (t *L402Transport) invoiceAmount(req *http.Request, invoice string) (int64, error) {
	if dec, ok := t.Backend.(l402.InvoiceDecoder); ok {
		amount, err := dec.InvoiceAmount(req.Context(), invoice)
		if err != nil {
			return 0, l402.NewProtocolError("backend failed to decode invoice", err)
		}
		return amount, nil
	}
	return l402.DecodeInvoiceAmount(invoice)
}

// checkBudget enforces the payment ceiling and, when a tracker is
// configured, the spending limits. It runs before any funds move.
func (t *L402Transport) checkBudget(amount int64) error {
	if t.MaxAmountSats > 0 && amount > t.MaxAmountSats {
		return l402.NewBudgetError(
			fmt.Sprintf("invoice amount %d sats exceeds payment ceiling of %d sats", amount, t.MaxAmountSats),
			l402.ErrAmountExceeded)
	}
	if t.Tracker != nil {
		return t.Tracker.Check(amount)
	}
	return nil
}

// pay invokes the payment backend for the resolved invoice, emitting
// attempt, success, and failure events around the call.
func (t *L402Transport) pay(req *http.Request, variant l402.ProtocolVariant, invoice string, amount int64) (*l402.PaymentResult, error) {
	if t.Backend == nil {
		return nil, l402.NewPaymentError("no payment backend configured", l402.ErrPaymentFailed)
	}

	start := time.Now()
	if t.OnPaymentAttempt != nil {
		t.OnPaymentAttempt(l402.PaymentEvent{
			Type:       l402.PaymentEventAttempt,
			Timestamp:  start,
			URL:        req.URL.String(),
			Variant:    variant,
			AmountSats: amount,
		})
	}

	result, err := t.Backend.PayInvoice(req.Context(), invoice)
	duration := time.Since(start)
	if err != nil {
		if t.OnPaymentFailure != nil {
			t.OnPaymentFailure(l402.PaymentEvent{
				Type:       l402.PaymentEventFailure,
				Timestamp:  time.Now(),
				URL:        req.URL.String(),
				Variant:    variant,
				AmountSats: amount,
				Error:      err,
				Duration:   duration,
			})
		}
		return nil, l402.NewPaymentError("paying invoice", err)
	}

	if t.OnPaymentSuccess != nil {
		t.OnPaymentSuccess(l402.PaymentEvent{
			Type:        l402.PaymentEventSuccess,
			Timestamp:   time.Now(),
			URL:         req.URL.String(),
			Variant:     variant,
			AmountSats:  amount,
			PaymentHash: result.PaymentHash,
			Duration:    duration,
		})
	}
	return result, nil
}
