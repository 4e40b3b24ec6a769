// Package projector derives signed stock balances and today's delta from a
// window of inventory transactions.
package projector

import (
	"time"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/unit"
)

// Stock classifications. Negative takes precedence over low.
const (
	StockOK       = "ok"
	StockLow      = "low"
	StockNegative = "negative"
)

// Sign maps a transaction type to its balance contribution. Adjustment rows
// already carry a signed delta, so their sign multiplier is +1. Transfers
// net to zero in a single-product view.
func Sign(txType string) float64 {
	switch txType {
	case domain.TxInbound, domain.TxAdjustment:
		return 1
	case domain.TxOutbound, domain.TxSale:
		return -1
	default:
		return 0
	}
}

// SignedTotal sums the signed quantities of all confirmed transactions for
// the given product. Pending optimistic rows are excluded so a projection
// running mid-flight never double-counts.
func SignedTotal(productID string, txs []domain.InventoryTransaction) float64 {
	var total float64
	for _, tx := range txs {
		if tx.Pending || tx.ProductID != productID {
			continue
		}
		total += Sign(tx.Type) * tx.Quantity
	}
	return total
}

// TodayDelta is the net signed movement for the product on the calendar day
// of now, compared by local date rather than UTC-shifted timestamps.
func TodayDelta(productID string, txs []domain.InventoryTransaction, now time.Time) float64 {
	var delta float64
	for _, tx := range txs {
		if tx.Pending || tx.ProductID != productID {
			continue
		}
		if !SameDay(tx.CreatedAt, now) {
			continue
		}
		delta += Sign(tx.Type) * tx.Quantity
	}
	return delta
}

// SameDay compares two timestamps by calendar day in local time.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// MaxAbs returns the largest absolute signed total across all balances,
// used to scale the fractional-unit low-stock threshold.
func MaxAbs(balances []domain.Balance) float64 {
	var maxAbs float64
	for _, b := range balances {
		v := b.SignedTotal
		if v < 0 {
			v = -v
		}
		if v > maxAbs {
			maxAbs = v
		}
	}
	return maxAbs
}

// Threshold returns the low-stock threshold for a balance: a fixed 10 for
// integer-counted units, max(2, 5% of the largest absolute balance) for
// fractional units.
func Threshold(b domain.Balance, maxAbs float64) float64 {
	if unit.IsCount(b.Unit) {
		return 10
	}
	t := 0.05 * maxAbs
	if t < 2 {
		t = 2
	}
	return t
}

// Classify buckets a balance as negative, low or ok. Negative and low are
// mutually exclusive; negative wins.
func Classify(b domain.Balance, maxAbs float64) string {
	if b.SignedTotal < 0 {
		return StockNegative
	}
	if b.SignedTotal <= Threshold(b, maxAbs) {
		return StockLow
	}
	return StockOK
}
