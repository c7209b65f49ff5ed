package transfer

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdjustGasPrice(t *testing.T) {
	tests := []struct {
		base    int64
		percent uint64
		want    int64
	}{
		{base: 100, percent: 110, want: 110},
		{base: 101, percent: 110, want: 112},
		{base: 1, percent: 110, want: 2},
		{base: 200, percent: 110, want: 220},
		{base: 0, percent: 110, want: 0},
		{base: 1000000007, percent: 110, want: 1100000008},
		{base: 101, percent: 150, want: 152},
		{base: 101, percent: 100, want: 101},
	}
	for _, tt := range tests {
		got := AdjustGasPrice(big.NewInt(tt.base), tt.percent)
		requireBig(t, big.NewInt(tt.want), got)
	}
}

func TestAdjustGasPriceLargeValues(t *testing.T) {
	base, ok := new(big.Int).SetString("123456789012345678901234567891", 10)
	require.True(t, ok)
	want, ok := new(big.Int).SetString("135802467913580246791358024681", 10)
	require.True(t, ok)
	requireBig(t, want, AdjustGasPrice(base, 110))
}

func TestFeeEstimatorSamplesEveryCall(t *testing.T) {
	client := &fakeClient{prices: []*big.Int{big.NewInt(100), big.NewInt(101)}}
	fees := NewFeeEstimator(client, 0)
	require.Equal(t, uint64(DefaultGasPriceMultiplier), fees.Multiplier())

	first, err := fees.Estimate(context.Background())
	require.NoError(t, err)
	second, err := fees.Estimate(context.Background())
	require.NoError(t, err)

	requireBig(t, big.NewInt(110), first)
	requireBig(t, big.NewInt(112), second)
	require.Equal(t, 2, client.priceCalls)
}

func TestFeeEstimatorPropagatesError(t *testing.T) {
	client := &fakeClient{
		prices:    []*big.Int{big.NewInt(100)},
		priceErrs: map[int]error{0: errConnRefused},
	}
	_, err := NewFeeEstimator(client, 0).Estimate(context.Background())
	require.ErrorIs(t, err, errConnRefused)
}
