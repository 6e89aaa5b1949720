package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"energytrader/config"
	"energytrader/internal/domain"
	"energytrader/internal/journal"
	"energytrader/internal/ledger"
	"energytrader/internal/ports"
	"energytrader/internal/validation"
)

const successMessage = "Trade processed successfully"

// SettlementService orchestrates trade settlement: validation, the atomic
// ledger debit, fingerprinting and journaling. It owns the ledger and the
// journal; no other component mutates them.
type SettlementService struct {
	cfg     *config.Config
	logger  ports.Logger
	clock   ports.Clock
	ledger  *ledger.Ledger
	journal *journal.Journal
	archive ports.TradeArchive // optional durable store, may be nil
	limits  validation.Limits
}

// NewSettlementService creates a new settlement service instance.
func NewSettlementService(
	cfg *config.Config,
	logger ports.Logger,
	clock ports.Clock,
	ldg *ledger.Ledger,
	jnl *journal.Journal,
	archive ports.TradeArchive,
) (*SettlementService, error) {

	// Validate dependencies (archive is optional)
	if cfg == nil || logger == nil || clock == nil || ldg == nil || jnl == nil {
		return nil, fmt.Errorf("missing required dependencies for SettlementService")
	}

	// Validate config values needed by the service
	if cfg.MaxEnergyAmount <= 0 {
		return nil, fmt.Errorf("configuration MaxEnergyAmount must be positive")
	}
	if cfg.MaxPricePerUnit <= 0 {
		return nil, fmt.Errorf("configuration MaxPricePerUnit must be positive")
	}

	return &SettlementService{
		cfg:     cfg,
		logger:  logger,
		clock:   clock,
		ledger:  ldg,
		journal: jnl,
		archive: archive,
		limits: validation.Limits{
			MaxEnergyAmount: cfg.MaxEnergyAmount,
			MaxPricePerUnit: cfg.MaxPricePerUnit,
		},
	}, nil
}

// Settle applies one trade: validate, atomically debit the seller, compute
// the fingerprint, journal the entry and return a completed receipt.
// Every failure is reported synchronously as a typed error; nothing is
// retried and no partial mutation survives a failure.
func (s *SettlementService) Settle(ctx context.Context, req *domain.TradeRequest) (*domain.TradeReceipt, error) {
	if req == nil {
		return nil, fmt.Errorf("nil trade request: %w", ports.ErrInvalidRequest)
	}

	// Work on a copy so a resolved default timestamp never leaks back to
	// the caller's request.
	trade := *req
	if trade.Timestamp.IsZero() {
		trade.Timestamp = s.clock.Now().UTC()
	}

	s.logger.Info(ctx, "Attempting trade", map[string]interface{}{
		"buyer":  trade.BuyerID,
		"seller": trade.SellerID,
		"amount": trade.EnergyAmount,
	})

	if err := validation.ValidateTrade(&trade, s.ledger, s.limits, s.clock.Now()); err != nil {
		s.logger.Warn(ctx, "Trade rejected", map[string]interface{}{
			"buyer":  trade.BuyerID,
			"seller": trade.SellerID,
			"reason": err.Error(),
		})
		return nil, err
	}

	// The balance check and deduction are a single critical section inside
	// the ledger, keyed by the seller's account.
	if err := s.ledger.Debit(trade.SellerID, trade.EnergyAmount); err != nil {
		s.logger.Warn(ctx, "Trade rejected", map[string]interface{}{
			"seller": trade.SellerID,
			"reason": err.Error(),
		})
		return nil, err
	}

	fingerprint := domain.Fingerprint(&trade)
	settledAt := s.clock.Now().UTC()
	s.journal.Append(domain.JournalEntry{
		Request:     trade,
		Fingerprint: fingerprint,
		SettledAt:   settledAt,
	})

	receipt := &domain.TradeReceipt{
		TradeID:      uuid.NewString(),
		SellerID:     trade.SellerID,
		BuyerID:      trade.BuyerID,
		EnergyAmount: trade.EnergyAmount,
		PricePerUnit: trade.PricePerUnit,
		TotalPrice:   trade.TotalPrice(),
		Status:       domain.StatusCompleted,
		Timestamp:    trade.Timestamp,
		Message:      successMessage,
		TradeHash:    fingerprint,
	}

	if s.archive != nil {
		// The settlement is already committed; the archive is best-effort
		// durability, so a failed write is logged, not surfaced.
		if _, err := s.archive.SaveTrade(ctx, receipt); err != nil {
			s.logger.Error(ctx, err, "Failed to archive settled trade", map[string]interface{}{
				"tradeID": receipt.TradeID,
			})
		}
	}

	s.logger.Info(ctx, "Trade successful", map[string]interface{}{
		"buyer":  trade.BuyerID,
		"amount": trade.EnergyAmount,
		"hash":   fingerprint,
	})
	return receipt, nil
}

// BalanceOf returns the user's current energy balance. Unknown users read
// as 0.0 rather than failing.
func (s *SettlementService) BalanceOf(user string) float64 {
	return s.ledger.BalanceOf(user)
}

// AllBalances returns a snapshot of every known user's balance.
func (s *SettlementService) AllBalances() map[string]float64 {
	return s.ledger.Snapshot()
}

// History returns the settled trades in settlement order.
func (s *SettlementService) History() []domain.JournalEntry {
	return s.journal.All()
}

// HistoryForUser returns the settled trades where the user sold or bought.
func (s *SettlementService) HistoryForUser(user string) []domain.JournalEntry {
	return s.journal.ForUser(user)
}
