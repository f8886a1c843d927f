package model

// Operation names accepted by the engine.
const (
	OpInitialize           = "initialize"
	OpAddLiquidity         = "add_liquidity"
	OpRemoveLiquidity      = "remove_liquidity"
	OpSwapCurrencyForToken = "swap_currency_for_token"
	OpSwapTokenForCurrency = "swap_token_for_currency"
)

// OperationRecord is one line of the operations JSONL input.
type OperationRecord struct {
	Seq            uint64 `json:"seq"`
	Op             string `json:"op"`
	Caller         string `json:"caller"`
	TokenAmount    uint64 `json:"token_amount,omitempty"`
	CurrencyAmount uint64 `json:"currency_amount,omitempty"`
	AmountIn       uint64 `json:"amount_in,omitempty"`
	Timestamp      uint64 `json:"timestamp,omitempty"`
}

// OpFailure records an operation that was rejected by the pool.
type OpFailure struct {
	Seq    uint64 `json:"seq"`
	Op     string `json:"op"`
	Caller string `json:"caller"`
	Error  string `json:"error"`
}
