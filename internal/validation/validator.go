// Package validation holds the stateless trade checks. The checks run in a
// fixed order so error reporting is deterministic: registration first
// (buyer, then seller), then amount, price, self-trade and timestamp.
package validation

import (
	"fmt"
	"time"

	"energytrader/internal/domain"
	"energytrader/internal/ports"
)

// Limits bound the tradeable energy amount and unit price.
type Limits struct {
	MaxEnergyAmount float64
	MaxPricePerUnit float64
}

// Registry reports whether a user belongs to the registered set.
type Registry interface {
	IsRegistered(user string) bool
}

// ValidateTrade checks a trade request against the registered-user set and
// the configured limits. It has no side effects; the balance check happens
// later, atomically with the debit.
func ValidateTrade(req *domain.TradeRequest, reg Registry, limits Limits, now time.Time) error {
	for _, user := range []string{req.BuyerID, req.SellerID} {
		if !reg.IsRegistered(user) {
			return fmt.Errorf("user %q: %w", user, ports.ErrUnknownUser)
		}
	}
	if req.EnergyAmount <= 0 || req.EnergyAmount > limits.MaxEnergyAmount {
		return fmt.Errorf("energy amount %g must be in (0, %g]: %w",
			req.EnergyAmount, limits.MaxEnergyAmount, ports.ErrInvalidAmount)
	}
	if req.PricePerUnit <= 0 || req.PricePerUnit > limits.MaxPricePerUnit {
		return fmt.Errorf("price per unit %g must be in (0, %g]: %w",
			req.PricePerUnit, limits.MaxPricePerUnit, ports.ErrInvalidPrice)
	}
	if req.BuyerID == req.SellerID {
		return fmt.Errorf("user %q trades with itself: %w", req.SellerID, ports.ErrSelfTrade)
	}
	// Naive timestamps are treated as UTC.
	if req.Timestamp.UTC().After(now.UTC()) {
		return fmt.Errorf("trade timestamp %s is after current time %s: %w",
			req.Timestamp.UTC().Format(time.RFC3339Nano),
			now.UTC().Format(time.RFC3339Nano),
			ports.ErrFutureTimestamp)
	}
	return nil
}
