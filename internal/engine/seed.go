package engine

import (
	"fmt"

	"swapPool/internal/ledger"
	"swapPool/internal/model"
)

// Seed credits genesis balances into the ledger and custody.
func Seed(genesis model.Genesis, tokens *ledger.TokenLedger, custody *ledger.Custody) error {
	for i, account := range genesis.Accounts {
		addr, err := ParseAddress(account.Address)
		if err != nil {
			return fmt.Errorf("genesis account %d: %w", i, err)
		}
		if err := tokens.Credit(addr, account.TokenBalance); err != nil {
			return fmt.Errorf("genesis account %d: %w", i, err)
		}
		if err := custody.Credit(addr, account.CurrencyBalance); err != nil {
			return fmt.Errorf("genesis account %d: %w", i, err)
		}
	}
	return nil
}
