package stats

import (
	"encoding/json"
	"fmt"
	"math/big"

	"swapPool/internal/model"
	"swapPool/internal/pricing"
)

// Accumulator holds aggregate values for one swap window.
type Accumulator struct {
	PoolAddress    string
	WindowStart    uint64
	WindowEnd      uint64
	SwapCount      uint64
	VolumeCurrency *big.Int
	VolumeToken    *big.Int
	FeeCurrency    *big.Int
	FeeToken       *big.Int
	LiquidityOps   uint64
	LastTS         uint64
}

func NewAccumulator(poolAddress string, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		PoolAddress:    poolAddress,
		WindowStart:    windowStart,
		WindowEnd:      windowEnd,
		VolumeCurrency: big.NewInt(0),
		VolumeToken:    big.NewInt(0),
		FeeCurrency:    big.NewInt(0),
		FeeToken:       big.NewInt(0),
	}
}

func (a *Accumulator) AddEvent(record model.EventRecord) error {
	if record.Timestamp >= a.LastTS {
		a.LastTS = record.Timestamp
	}

	switch record.EventName {
	case model.EventTokensSwapped:
		var swap model.TokensSwappedData
		if err := json.Unmarshal(record.Decoded, &swap); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		return a.applySwap(swap)
	case model.EventLiquidityAdded, model.EventLiquidityRemoved:
		a.LiquidityOps++
		return nil
	default:
		return nil
	}
}

func (a *Accumulator) applySwap(swap model.TokensSwappedData) error {
	currencyAmount := new(big.Int).SetUint64(swap.CurrencyAmount)
	tokenAmount := new(big.Int).SetUint64(swap.TokenAmount)

	a.VolumeCurrency.Add(a.VolumeCurrency, currencyAmount)
	a.VolumeToken.Add(a.VolumeToken, tokenAmount)

	// The fee stays in the pool on the input side of the trade.
	switch swap.Direction {
	case model.DirectionCurrencyIn:
		a.FeeCurrency.Add(a.FeeCurrency, feeFromAmount(currencyAmount))
	case model.DirectionTokenIn:
		a.FeeToken.Add(a.FeeToken, feeFromAmount(tokenAmount))
	default:
		return fmt.Errorf("unknown swap direction: %s", swap.Direction)
	}

	a.SwapCount++
	return nil
}

func feeFromAmount(amountIn *big.Int) *big.Int {
	fee := new(big.Int).Set(amountIn)
	fee.Mul(fee, big.NewInt(pricing.FeeDenominator-pricing.FeeNumerator))
	fee.Div(fee, big.NewInt(pricing.FeeDenominator))
	return fee
}
