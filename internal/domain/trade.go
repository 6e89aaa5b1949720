package domain

import "time"

// TradeStatus represents the lifecycle state of a trade receipt.
type TradeStatus string

const (
	StatusPending   TradeStatus = "pending"
	StatusCompleted TradeStatus = "completed"
	StatusFailed    TradeStatus = "failed"
)

// TradeRequest is a proposed energy trade between two registered users.
// The seller gives up EnergyAmount units; the buyer pays
// EnergyAmount * PricePerUnit for them.
type TradeRequest struct {
	SellerID     string    // User giving up energy
	BuyerID      string    // User receiving energy (must differ from seller)
	EnergyAmount float64   // Units of energy traded, strictly positive and bounded
	PricePerUnit float64   // Price per unit, strictly positive and bounded
	Timestamp    time.Time // Submission time (UTC); zero value means "now"
}

// TotalPrice is the exact floating-point cost of the trade.
func (r *TradeRequest) TotalPrice() float64 {
	return r.EnergyAmount * r.PricePerUnit
}

// TradeReceipt is the immutable outcome of a settled trade. Only the
// settlement engine creates receipts.
type TradeReceipt struct {
	TradeID      string      // Generated UUID for this settlement
	SellerID     string      // Echoed from the request
	BuyerID      string      // Echoed from the request
	EnergyAmount float64     // Echoed from the request
	PricePerUnit float64     // Echoed from the request
	TotalPrice   float64     // EnergyAmount * PricePerUnit
	Status       TradeStatus // Outcome status
	Timestamp    time.Time   // Trade timestamp (UTC)
	Message      string      // Human-readable outcome message
	TradeHash    string      // Deterministic fingerprint over the trade fields
}

// JournalEntry records one settled trade in the append-only journal.
type JournalEntry struct {
	Request     TradeRequest // The trade as settled (timestamp resolved)
	Fingerprint string       // Hash identifying the trade contents
	SettledAt   time.Time    // When the settlement was applied (UTC)
}
