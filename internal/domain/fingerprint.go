package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Fingerprint computes the deterministic integrity hash for a trade: a
// SHA-256 hex digest over "buyer:seller:amount:price:timestamp". Identical
// field values always produce the identical digest; changing any field
// changes it. This is an audit identifier, not a cryptographic signature.
func Fingerprint(req *TradeRequest) string {
	parts := []string{
		req.BuyerID,
		req.SellerID,
		formatFloat(req.EnergyAmount),
		formatFloat(req.PricePerUnit),
		req.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// formatFloat renders a float canonically. The shortest exact
// representation keeps the fingerprint stable across call sites.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
