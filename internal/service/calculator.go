package service

import (
	"charity-receipts/internal/dto"

	"github.com/shopspring/decimal"
)

// DonationAmounts returns one amount per donation-bearing line item on the
// order, in line-item order. Pure: no lookups, no side effects. A line item
// with an unparseable price or non-positive quantity contributes nothing.
func DonationAmounts(order *dto.Order, donationProductIDs map[int64]struct{}) []decimal.Decimal {
	var amounts []decimal.Decimal

	for _, item := range order.LineItems {
		if item == nil {
			continue
		}
		if _, ok := donationProductIDs[item.ProductID]; !ok {
			continue
		}
		if item.Quantity <= 0 {
			continue
		}

		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			continue
		}

		amounts = append(amounts, price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return amounts
}

// SumAmounts adds up the per-line-item donation amounts.
func SumAmounts(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
