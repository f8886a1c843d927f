package ledger

import (
	"fmt"
	"sync"

	smath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/ethereum/go-ethereum/common"
)

// Custody holds native currency balances, with one designated holder
// account that Receive credits and Pay debits. It implements the pool's
// Custody collaborator contract.
type Custody struct {
	mu       sync.RWMutex
	holder   common.Address
	balances map[common.Address]uint64
}

// NewCustody builds a custody whose holder is the pool account.
func NewCustody(holder common.Address) *Custody {
	return &Custody{
		holder:   holder,
		balances: make(map[common.Address]uint64),
	}
}

// Credit mints amount of currency to an account. Genesis seeding only.
func (c *Custody) Credit(account common.Address, amount uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := smath.Add(c.balances[account], amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", account.Hex(), ErrBalanceOverflow)
	}
	c.balances[account] = updated
	return nil
}

// Receive pulls amount of currency from the payer into the holder
// account.
func (c *Custody) Receive(from common.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	source := c.balances[from]
	if source < amount {
		return fmt.Errorf("receive %d from %s: %w", amount, from.Hex(), ErrInsufficientBalance)
	}
	updated, err := smath.Add(c.balances[c.holder], amount)
	if err != nil {
		return fmt.Errorf("receive %d: %w", amount, ErrBalanceOverflow)
	}

	c.balances[from] = source - amount
	c.balances[c.holder] = updated
	return nil
}

// Pay sends amount of currency from the holder account to the recipient.
func (c *Custody) Pay(to common.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	held := c.balances[c.holder]
	if held < amount {
		return fmt.Errorf("pay %d to %s: %w", amount, to.Hex(), ErrTransferFailed)
	}
	updated, err := smath.Add(c.balances[to], amount)
	if err != nil {
		return fmt.Errorf("pay %d to %s: %w", amount, to.Hex(), ErrBalanceOverflow)
	}

	c.balances[c.holder] = held - amount
	c.balances[to] = updated
	return nil
}

// BalanceOf returns the currency balance of an account.
func (c *Custody) BalanceOf(account common.Address) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balances[account]
}
