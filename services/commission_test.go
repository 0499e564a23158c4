package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommission(t *testing.T) {
	split, err := SplitCommission(decimal.NewFromInt(100), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, "10", split.Commission.String())
	assert.Equal(t, "90", split.HostEarnings.String())
}

func TestSplitCommissionConservesTotal(t *testing.T) {
	totals := []string{"0", "0.01", "0.05", "99.99", "100", "333.33", "1234.57", "9999999.99"}
	rates := []string{"0", "0.5", "7.25", "10", "12.5", "15", "33.33", "99.99", "100"}

	for _, ts := range totals {
		for _, rs := range rates {
			total := decimal.RequireFromString(ts)
			rate := decimal.RequireFromString(rs)

			split, err := SplitCommission(total, rate)
			require.NoError(t, err)
			assert.True(t, split.Commission.Add(split.HostEarnings).Equal(total), "total=%s rate=%s", ts, rs)
			assert.True(t, split.Commission.Equal(split.Commission.Round(2)), "commission kept to cents")
			assert.False(t, split.HostEarnings.IsNegative())
		}
	}
}

func TestSplitCommissionRejectsOutOfRange(t *testing.T) {
	_, err := SplitCommission(decimal.NewFromInt(-1), decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = SplitCommission(decimal.NewFromInt(100), decimal.NewFromInt(101))
	assert.Error(t, err)

	_, err = SplitCommission(decimal.NewFromInt(100), decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestResolveCommissionRate(t *testing.T) {
	fallback := decimal.NewFromInt(10)
	assert.Equal(t, "10", ResolveCommissionRate(nil, fallback).String())

	custom := decimal.RequireFromString("12.5")
	assert.Equal(t, "12.5", ResolveCommissionRate(&custom, fallback).String())

	zero := decimal.Zero
	assert.Equal(t, "0", ResolveCommissionRate(&zero, fallback).String())
}
