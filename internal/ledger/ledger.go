package ledger

import (
	"fmt"
	"sync"

	smath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/ethereum/go-ethereum/common"
)

// TokenLedger is an in-memory fungible token balance tracker. It
// implements the pool's Ledger collaborator contract.
type TokenLedger struct {
	mu       sync.RWMutex
	balances map[common.Address]uint64
}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{balances: make(map[common.Address]uint64)}
}

// Credit mints amount to an account. Used for genesis seeding only.
func (l *TokenLedger) Credit(account common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	updated, err := smath.Add(l.balances[account], amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", account.Hex(), ErrBalanceOverflow)
	}
	l.balances[account] = updated
	return nil
}

// Transfer moves amount from one account to another. The whole transfer
// fails without any balance change if the source cannot fund it or the
// destination would overflow.
func (l *TokenLedger) Transfer(from, to common.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	source := l.balances[from]
	if source < amount {
		return fmt.Errorf("transfer %d from %s: %w", amount, from.Hex(), ErrInsufficientBalance)
	}
	updated, err := smath.Add(l.balances[to], amount)
	if err != nil {
		return fmt.Errorf("transfer %d to %s: %w", amount, to.Hex(), ErrBalanceOverflow)
	}

	l.balances[from] = source - amount
	l.balances[to] = updated
	return nil
}

// BalanceOf returns the token balance of an account.
func (l *TokenLedger) BalanceOf(account common.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}
