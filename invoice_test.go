package l402

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInvoiceAmount(t *testing.T) {
	tests := []struct {
		name    string
		invoice string
		want    int64
	}{
		{"ten micro mainnet", "lnbc10u1pexample", 1000},
		{"one milli mainnet", "lnbc1m1pexample", 100_000},
		{"uppercase invoice", "LNBC10U1PEXAMPLE", 1000},
		{"testnet", "lntb2500u1pexample", 250_000},
		{"regtest", "lnbcrt5u1pexample", 500},
		{"hundred nano", "lnbc100n1pexample", 10},
		{"sub satoshi rounds down", "lnbc4n1pexample", 0},
		{"sub satoshi rounds half up", "lnbc15n1pexample", 2},
		{"pico", "lnbc10000p1pexample", 1},
		{"pico rounds to zero", "lnbc1p1pexample", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInvoiceAmount(tt.invoice)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeInvoiceAmount_Errors(t *testing.T) {
	tests := []struct {
		name    string
		invoice string
	}{
		{"empty", ""},
		{"no ln prefix", "bc10u1pexample"},
		{"unknown network", "lnxx10u1pexample"},
		{"no amount segment", "lnbc1pexample"},
		{"missing multiplier", "lnbc101pexample"},
		{"bad multiplier", "lnbc10x1pexample"},
		{"amount only", "lnbc10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeInvoiceAmount(tt.invoice)
			require.Error(t, err)
			assert.Equal(t, KindProtocol, KindOf(err))
			assert.True(t, errors.Is(err, ErrInvalidInvoice))
		})
	}
}

func TestDecodeInvoiceAmount_RegtestNotMistakenForMainnet(t *testing.T) {
	// "lnbcrt..." must classify as regtest, not mainnet with an "rt"
	// amount segment.
	got, err := DecodeInvoiceAmount("lnbcrt100u1pexample")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), got)
}
