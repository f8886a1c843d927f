package model

// Event names emitted by the pool.
const (
	EventLiquidityAdded   = "liquidity_added"
	EventLiquidityRemoved = "liquidity_removed"
	EventTokensSwapped    = "tokens_swapped"
)

// Swap directions carried by TokensSwappedData.
const (
	DirectionCurrencyIn = "currency_in"
	DirectionTokenIn    = "token_in"
)

// LiquidityAddedData is the payload of a liquidity_added event.
type LiquidityAddedData struct {
	Provider       string `json:"provider"`
	TokenAmount    uint64 `json:"token_amount"`
	CurrencyAmount uint64 `json:"currency_amount"`
}

// LiquidityRemovedData is the payload of a liquidity_removed event.
type LiquidityRemovedData struct {
	Provider       string `json:"provider"`
	TokenAmount    uint64 `json:"token_amount"`
	CurrencyAmount uint64 `json:"currency_amount"`
}

// TokensSwappedData is the payload of a tokens_swapped event.
type TokensSwappedData struct {
	Swapper        string `json:"swapper"`
	CurrencyAmount uint64 `json:"currency_amount"`
	TokenAmount    uint64 `json:"token_amount"`
	Direction      string `json:"direction"`
}
