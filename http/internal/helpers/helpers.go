// Package helpers provides internal HTTP utilities for L402 protocol
// handling: challenge-header parsing, credential attachment, and
// response-body draining.
package helpers

import (
	"io"
	"net/http"
	"regexp"
	"strings"

	l402 "github.com/satpathdev/l402-go"
)

// maxChallengeBody bounds how much of a 402 body is read while
// classifying the challenge variant.
const maxChallengeBody = 1 << 20

// challengeSchemes are the WWW-Authenticate scheme tokens recognized
// as classic L402 challenges. LSAT is the legacy name for the same
// scheme.
var challengeSchemes = []string{"L402", "LSAT"}

// challengeFieldRegex matches key="value" pairs in a challenge header.
var challengeFieldRegex = regexp.MustCompile(`(\w+)="([^"]*)"`)

// FindChallenge returns the first WWW-Authenticate value carrying a
// classic L402 challenge, and whether one was present. Presence alone
// decides variant classification; a present but malformed challenge is
// still handled by the classic flow, which then fails.
func FindChallenge(h http.Header) (string, bool) {
	for _, value := range h.Values("WWW-Authenticate") {
		trimmed := strings.TrimSpace(value)
		for _, scheme := range challengeSchemes {
			if len(trimmed) >= len(scheme) && strings.EqualFold(trimmed[:len(scheme)], scheme) {
				return trimmed, true
			}
		}
	}
	return "", false
}

// ParseClassicChallenge extracts the macaroon and invoice from a
// classic challenge header value. Absence of either field is a
// protocol error.
func ParseClassicChallenge(header string) (*l402.ClassicChallenge, error) {
	ch := &l402.ClassicChallenge{}
	for _, m := range challengeFieldRegex.FindAllStringSubmatch(header, -1) {
		switch strings.ToLower(m[1]) {
		case "macaroon":
			ch.Macaroon = m[2]
		case "invoice":
			ch.Invoice = m[2]
		}
	}
	if ch.Macaroon == "" {
		return nil, l402.NewProtocolError("challenge header is missing macaroon", l402.ErrMalformedChallenge)
	}
	if ch.Invoice == "" {
		return nil, l402.NewProtocolError("challenge header is missing invoice", l402.ErrMalformedChallenge)
	}
	return ch, nil
}

// AuthorizationValue builds the Authorization header value that
// presents a paid credential: the macaroon and the payment preimage.
func AuthorizationValue(macaroon, preimage string) string {
	return "L402 " + macaroon + ":" + preimage
}

// DrainBody reads a response body up to maxChallengeBody and closes
// it, releasing the underlying connection for reuse. It returns
// whatever bytes were read; read errors yield an empty slice, which
// downstream classification treats as "not the offer variant".
func DrainBody(resp *http.Response) []byte {
	if resp == nil || resp.Body == nil {
		return nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxChallengeBody))
	if err != nil {
		return nil
	}
	// Discard any remainder so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return body
}
