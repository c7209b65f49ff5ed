package transfer

import (
	"context"
	"errors"
	"math/big"
)

// DefaultGasPriceMultiplier is the percentage applied to the suggested gas
// price, i.e. +10%.
const DefaultGasPriceMultiplier = 110

var hundred = big.NewInt(100)

// FeeEstimator samples the network gas price and bumps it by a fixed
// percentage. It never caches: every call hits the node.
type FeeEstimator struct {
	client  GasPricer
	percent uint64
}

// NewFeeEstimator returns an estimator applying percent (110 means +10%).
// Zero selects DefaultGasPriceMultiplier.
func NewFeeEstimator(client GasPricer, percent uint64) *FeeEstimator {
	if percent == 0 {
		percent = DefaultGasPriceMultiplier
	}
	return &FeeEstimator{client: client, percent: percent}
}

func (f *FeeEstimator) Multiplier() uint64 {
	return f.percent
}

// Estimate returns ceil(suggested * percent / 100).
func (f *FeeEstimator) Estimate(ctx context.Context) (*big.Int, error) {
	base, err := f.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, errors.New("node returned empty gas price")
	}
	return AdjustGasPrice(base, f.percent), nil
}

// AdjustGasPrice scales base by percent/100, rounding up.
func AdjustGasPrice(base *big.Int, percent uint64) *big.Int {
	scaled := new(big.Int).Mul(base, new(big.Int).SetUint64(percent))
	quo, rem := new(big.Int).QuoRem(scaled, hundred, new(big.Int))
	if rem.Sign() > 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}
