package http

import (
	"net/http"
	"time"

	l402 "github.com/satpathdev/l402-go"
)

// Client is an HTTP client that automatically handles L402 payment
// flows. It wraps a standard http.Client and adds payment handling via
// a custom RoundTripper, so Get, Post, and Do behave exactly as they
// do on http.Client, with payment negotiation interposed.
type Client struct {
	*http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// NewClient creates a new L402-enabled HTTP client.
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		Client: &http.Client{},
	}
	if client.Transport == nil {
		client.Transport = http.DefaultTransport
	}

	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// ClearCache removes all cached credentials.
func (c *Client) ClearCache() {
	if transport, ok := c.Transport.(*L402Transport); ok {
		transport.ClearCache()
	}
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		c.Client = httpClient
		if c.Transport == nil {
			c.Transport = http.DefaultTransport
		}
		return nil
	}
}

// WithBackend sets the payment backend used to settle invoices. When
// the backend also implements l402.InvoiceDecoder, its authoritative
// amount decoding is preferred over the textual fallback parser.
func WithBackend(backend l402.PaymentBackend) ClientOption {
	return func(c *Client) error {
		getOrCreateTransport(c).Backend = backend
		return nil
	}
}

// WithOfferSelector sets a custom offer selection policy for the
// offer-based flow.
func WithOfferSelector(selector l402.OfferSelector) ClientOption {
	return func(c *Client) error {
		getOrCreateTransport(c).Selector = selector
		return nil
	}
}

// WithMaxAmount sets the per-payment ceiling in satoshis. Invoices
// above the ceiling are rejected before any funds move.
func WithMaxAmount(sats int64) ClientOption {
	return func(c *Client) error {
		getOrCreateTransport(c).MaxAmountSats = sats
		return nil
	}
}

// WithSpendingLimits enables budget and rate enforcement with the
// given limits.
func WithSpendingLimits(limits l402.SpendingLimits) ClientOption {
	return func(c *Client) error {
		getOrCreateTransport(c).Tracker = l402.NewSpendingTracker(limits)
		return nil
	}
}

// WithCredentialTTL bounds the lifetime of cached classic credentials.
func WithCredentialTTL(ttl time.Duration) ClientOption {
	return func(c *Client) error {
		getOrCreateTransport(c).CredentialTTL = ttl
		return nil
	}
}

// WithPaymentCallbacks sets all payment callbacks at once.
// Pass nil for any callback you don't want to set.
func WithPaymentCallbacks(onAttempt, onSuccess, onFailure l402.PaymentCallback) ClientOption {
	return func(c *Client) error {
		transport := getOrCreateTransport(c)

		if onAttempt != nil {
			transport.OnPaymentAttempt = onAttempt
		}
		if onSuccess != nil {
			transport.OnPaymentSuccess = onSuccess
		}
		if onFailure != nil {
			transport.OnPaymentFailure = onFailure
		}

		return nil
	}
}

// getOrCreateTransport gets the L402Transport or creates one if it
// doesn't exist, wrapping the client's existing transport.
func getOrCreateTransport(c *Client) *L402Transport {
	transport, ok := c.Transport.(*L402Transport)
	if !ok {
		transport = &L402Transport{
			Base: c.Transport,
		}
		c.Transport = transport
	}
	return transport
}
