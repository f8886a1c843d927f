package model

// PoolState is a reserve snapshot for storage.
type PoolState struct {
	Administrator   string `json:"administrator"`
	PoolAddress     string `json:"pool_address"`
	TokenReserve    uint64 `json:"token_reserve"`
	CurrencyReserve uint64 `json:"currency_reserve"`
	Initialized     bool   `json:"initialized"`
	LastOpSeq       uint64 `json:"last_op_seq"`
}
