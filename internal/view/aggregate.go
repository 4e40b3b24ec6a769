// Package view groups raw ledger rows into day-bucketed, render-ready
// sequences and rollup statistics. It only reads the slices the ledger
// service owns and never mutates them.
package view

import (
	"sort"
	"time"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/projector"
)

// DayLabel renders a day header: "Today", "Yesterday", or a short date.
func DayLabel(day, now time.Time) string {
	if projector.SameDay(day, now) {
		return "Today"
	}
	if projector.SameDay(day, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return day.Local().Format("02 Jan 2006")
}

// GroupTransactions turns a reverse-chronological transaction list into one
// header per distinct calendar day followed by that day's rows, days
// descending. Pending rows stay in the sequence (they render at the head)
// but remain marked.
func GroupTransactions(txs []domain.InventoryTransaction, now time.Time) []domain.Renderable {
	rows := make([]domain.Renderable, 0, len(txs)+8)
	var lastDay time.Time
	haveDay := false
	for i := range txs {
		tx := txs[i]
		if !haveDay || !projector.SameDay(tx.CreatedAt, lastDay) {
			lastDay = tx.CreatedAt
			haveDay = true
			rows = append(rows, domain.Renderable{
				Kind:  domain.RowHeader,
				Date:  tx.CreatedAt,
				Label: DayLabel(tx.CreatedAt, now),
			})
		}
		rows = append(rows, domain.Renderable{
			Kind:        domain.RowTransaction,
			Date:        tx.CreatedAt,
			Transaction: &tx,
		})
	}
	return rows
}

// GroupBatches day-buckets production batches the same way.
func GroupBatches(batches []domain.ProductionBatch, now time.Time) []domain.Renderable {
	rows := make([]domain.Renderable, 0, len(batches)+8)
	var lastDay time.Time
	haveDay := false
	for i := range batches {
		b := batches[i]
		if !haveDay || !projector.SameDay(b.Date, lastDay) {
			lastDay = b.Date
			haveDay = true
			rows = append(rows, domain.Renderable{
				Kind:  domain.RowHeader,
				Date:  b.Date,
				Label: DayLabel(b.Date, now),
			})
		}
		rows = append(rows, domain.Renderable{
			Kind:  domain.RowBatch,
			Date:  b.Date,
			Batch: &b,
		})
	}
	return rows
}

// InventoryStats counts distinct products and how many sit negative or low.
// Negative and low are mutually exclusive; negative wins.
func InventoryStats(balances []domain.Balance) domain.InventoryStats {
	stats := domain.InventoryStats{TotalProducts: len(balances)}
	maxAbs := projector.MaxAbs(balances)
	for _, b := range balances {
		switch projector.Classify(b, maxAbs) {
		case projector.StockNegative:
			stats.NegativeCount++
		case projector.StockLow:
			stats.LowStockCount++
		}
	}
	return stats
}

// ProductionStats aggregates loaded batches. Every batch contributes to the
// count and animal average; per-unit produced/target/loss/efficiency cover
// only batches whose item details are present in the details cache, so a
// batch with unfetched items is deliberately left out of the unit rollups.
func ProductionStats(batches []domain.ProductionBatch, details map[string][]domain.ProductionItem, now time.Time) domain.ProductionStats {
	stats := domain.ProductionStats{TotalBatches: len(batches)}

	var animalSum int
	for _, b := range batches {
		animalSum += b.AnimalCount
		by, bm, _ := b.Date.Local().Date()
		ny, nm, _ := now.Local().Date()
		if by == ny && bm == nm {
			stats.MonthBatches++
		}
	}
	if len(batches) > 0 {
		stats.AverageAnimals = float64(animalSum) / float64(len(batches))
	}

	byUnit := make(map[string]*domain.UnitRollup)
	for _, b := range batches {
		items, ok := details[b.ID]
		if !ok {
			continue
		}
		for _, item := range items {
			r := byUnit[item.Unit]
			if r == nil {
				r = &domain.UnitRollup{Unit: item.Unit}
				byUnit[item.Unit] = r
			}
			r.Produced += item.Produced
			r.Target += item.Target
			if shortfall := item.Target - item.Produced; shortfall > 0 {
				r.Loss += shortfall
			}
		}
	}

	stats.ByUnit = make([]domain.UnitRollup, 0, len(byUnit))
	for _, r := range byUnit {
		if r.Target > 0 {
			r.Efficiency = r.Produced / r.Target * 100
		}
		stats.ByUnit = append(stats.ByUnit, *r)
	}
	sort.Slice(stats.ByUnit, func(i, j int) bool {
		return stats.ByUnit[i].Unit < stats.ByUnit[j].Unit
	})

	return stats
}
