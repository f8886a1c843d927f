package model

import "time"

// SwapWindowMetrics stores aggregated swap metrics for one time window.
type SwapWindowMetrics struct {
	PoolAddress    string
	WindowSizeSecs int64
	WindowStart    time.Time
	WindowEnd      time.Time
	SwapCount      uint64
	VolumeCurrency string
	VolumeToken    string
	FeeCurrency    string
	FeeToken       string
	LiquidityOps   uint64
}
