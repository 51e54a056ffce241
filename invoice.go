package l402

import (
	"fmt"
	"math/big"
	"strings"
)

// invoiceNetworks are the recognized BOLT11 human-readable network
// prefixes, longest first so "bcrt" is not misread as "bc".
var invoiceNetworks = []string{"bcrt", "bc", "tb"}

// multiplierRat maps a BOLT11 amount multiplier to satoshis per
// base unit, as exact rationals. The nano and pico multipliers denote
// sub-satoshi fractions, so the arithmetic is done in big.Rat and
// rounded only at the very end.
var multiplierRat = map[byte]*big.Rat{
	'm': big.NewRat(100_000, 1),
	'u': big.NewRat(100, 1),
	'n': big.NewRat(1, 10),
	'p': big.NewRat(1, 10_000),
}

// DecodeInvoiceAmount extracts the amount in satoshis from a BOLT11
// invoice's human-readable prefix.
//
// This is strictly a fallback: it does not validate the invoice's
// checksum or signature, so an InvoiceDecoder backend must be
// preferred whenever one is available. Sub-satoshi results are rounded
// to the nearest satoshi, halves up.
func DecodeInvoiceAmount(invoice string) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(invoice))

	// The bech32 data alphabet excludes '1', so the last '1' in the
	// invoice is the separator between the human-readable part and
	// the data part.
	sep := strings.LastIndexByte(s, '1')
	if sep < 0 {
		return 0, NewProtocolError(fmt.Sprintf("invoice %q has no bech32 separator", truncate(invoice)), ErrInvalidInvoice)
	}
	hrp := s[:sep]

	if !strings.HasPrefix(hrp, "ln") {
		return 0, NewProtocolError(fmt.Sprintf("invoice %q has no ln prefix", truncate(invoice)), ErrInvalidInvoice)
	}
	hrp = hrp[len("ln"):]

	var network string
	for _, n := range invoiceNetworks {
		if strings.HasPrefix(hrp, n) {
			network = n
			break
		}
	}
	if network == "" {
		return 0, NewProtocolError(fmt.Sprintf("invoice %q has an unrecognized network prefix", truncate(invoice)), ErrInvalidInvoice)
	}

	amt := hrp[len(network):]
	if amt == "" {
		return 0, NewProtocolError(fmt.Sprintf("invoice %q carries no amount", truncate(invoice)), ErrInvalidInvoice)
	}

	i := 0
	for i < len(amt) && amt[i] >= '0' && amt[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, NewProtocolError(fmt.Sprintf("invoice %q amount segment is not numeric", truncate(invoice)), ErrInvalidInvoice)
	}
	if i != len(amt)-1 {
		return 0, NewProtocolError(fmt.Sprintf("invoice %q amount segment does not match digits plus multiplier", truncate(invoice)), ErrInvalidInvoice)
	}
	mult, ok := multiplierRat[amt[i]]
	if !ok {
		return 0, NewProtocolError(fmt.Sprintf("invoice %q amount segment has no valid multiplier", truncate(invoice)), ErrInvalidInvoice)
	}

	amount := new(big.Int)
	if _, ok := amount.SetString(amt[:i], 10); !ok {
		return 0, NewProtocolError(fmt.Sprintf("invoice %q amount segment is not numeric", truncate(invoice)), ErrInvalidInvoice)
	}

	sats := new(big.Rat).Mul(new(big.Rat).SetInt(amount), mult)
	return ratToSats(sats), nil
}

// ratToSats rounds a non-negative rational satoshi amount to the
// nearest integer, halves up.
func ratToSats(r *big.Rat) int64 {
	quo, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	// round up when rem/denom >= 1/2
	if new(big.Int).Lsh(rem, 1).Cmp(r.Denom()) >= 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo.Int64()
}

// truncate shortens invoice text for error messages.
func truncate(s string) string {
	const max = 24
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
