package pool

import "github.com/ethereum/go-ethereum/common"

// Ledger moves and reports fungible token balances.
type Ledger interface {
	Transfer(from, to common.Address, amount uint64) error
	BalanceOf(account common.Address) uint64
}

// Custody holds the pool's native currency. Receive pulls currency from a
// payer into the pool's custody account; Pay sends currency out of it.
type Custody interface {
	Receive(from common.Address, amount uint64) error
	Pay(to common.Address, amount uint64) error
}

// Authorizer answers whether a caller is the pool administrator.
type Authorizer interface {
	IsAdministrator(caller common.Address) bool
}

// Notifier receives pool events. Fire-and-forget: the pool never observes
// a result.
type Notifier interface {
	Emit(eventName string, decoded interface{})
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Emit(string, interface{}) {}
