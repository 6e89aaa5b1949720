// Package ledger holds the authoritative mapping of user identifiers to
// current energy balances. All balance mutation goes through it.
package ledger

import (
	"fmt"
	"sync"

	"energytrader/internal/ports"
)

// account pairs a balance with its own lock so settlements for different
// sellers never contend with each other.
type account struct {
	mu      sync.Mutex
	balance float64
}

// Ledger maps registered users to energy balances. The account map is fixed
// at construction: the registered-user set is process-start configuration,
// so after New only individual balances mutate, each under its own lock.
type Ledger struct {
	accounts map[string]*account
}

// New builds a ledger seeded with the given starting balances. The seeded
// users form the registered-user set.
func New(seed map[string]float64) (*Ledger, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("ledger requires at least one seeded account: %w", ports.ErrConfigurationError)
	}
	accounts := make(map[string]*account, len(seed))
	for user, balance := range seed {
		if user == "" {
			return nil, fmt.Errorf("seed contains an empty user id: %w", ports.ErrConfigurationError)
		}
		if balance < 0 {
			return nil, fmt.Errorf("seed balance for %q is negative: %w", user, ports.ErrConfigurationError)
		}
		accounts[user] = &account{balance: balance}
	}
	return &Ledger{accounts: accounts}, nil
}

// IsRegistered reports whether the user belongs to the registered set.
func (l *Ledger) IsRegistered(user string) bool {
	_, ok := l.accounts[user]
	return ok
}

// BalanceOf returns the user's current balance. Unknown users read as 0.0
// rather than failing; settle requests reject unknown users before ever
// reaching the ledger.
func (l *Ledger) BalanceOf(user string) float64 {
	acct, ok := l.accounts[user]
	if !ok {
		return 0.0
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.balance
}

// Snapshot returns a copy of every known user's balance.
func (l *Ledger) Snapshot() map[string]float64 {
	balances := make(map[string]float64, len(l.accounts))
	for user, acct := range l.accounts {
		acct.mu.Lock()
		balances[user] = acct.balance
		acct.mu.Unlock()
	}
	return balances
}

// Debit atomically decreases the seller's balance by amount. The balance
// check and the deduction run under the account lock, so two concurrent
// trades can never both pass the check against a stale balance and
// overdraft the seller. Only the seller side moves: buyers consume the
// purchased energy off-ledger.
func (l *Ledger) Debit(user string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount %g must be positive: %w", amount, ports.ErrInvalidAmount)
	}
	acct, ok := l.accounts[user]
	if !ok {
		return fmt.Errorf("debit of unregistered user %q: %w", user, ports.ErrUnknownUser)
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	if acct.balance < amount {
		return fmt.Errorf("seller %q has %g but needs %g: %w",
			user, acct.balance, amount, ports.ErrInsufficientBalance)
	}
	acct.balance -= amount
	return nil
}
