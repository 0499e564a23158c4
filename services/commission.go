package services

import (
	"errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Split is the distribution of one booking total between platform and host.
type Split struct {
	Gross        decimal.Decimal
	Rate         decimal.Decimal
	Commission   decimal.Decimal
	HostEarnings decimal.Decimal
}

// SplitCommission rounds the commission to cents and gives the host the
// remainder, so Commission+HostEarnings always equals Gross.
func SplitCommission(total, rate decimal.Decimal) (Split, error) {
	if total.IsNegative() {
		return Split{}, errors.New("booking total cannot be negative")
	}
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return Split{}, errors.New("commission rate must be between 0 and 100")
	}
	commission := total.Mul(rate).Div(hundred).Round(2)
	return Split{
		Gross:        total,
		Rate:         rate,
		Commission:   commission,
		HostEarnings: total.Sub(commission),
	}, nil
}

func ResolveCommissionRate(listingRate *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if listingRate == nil {
		return fallback
	}
	return *listingRate
}
