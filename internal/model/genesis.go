package model

// GenesisAccount seeds one account's ledger and custody balances.
type GenesisAccount struct {
	Address         string `json:"address"`
	TokenBalance    uint64 `json:"token_balance"`
	CurrencyBalance uint64 `json:"currency_balance"`
}

// Genesis is the initial balance sheet loaded before replaying operations.
type Genesis struct {
	Accounts []GenesisAccount `json:"accounts"`
}
