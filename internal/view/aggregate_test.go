package view

import (
	"math"
	"testing"
	"time"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
)

func TestDayLabel(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.Local)
	if got := DayLabel(now.Add(-3*time.Hour), now); got != "Today" {
		t.Fatalf("expected Today, got %s", got)
	}
	if got := DayLabel(now.AddDate(0, 0, -1), now); got != "Yesterday" {
		t.Fatalf("expected Yesterday, got %s", got)
	}
	if got := DayLabel(now.AddDate(0, 0, -5), now); got != "25 Aug 2026" {
		t.Fatalf("expected short date, got %s", got)
	}
}

func TestGroupTransactionsOneHeaderPerDay(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.Local)
	txs := []domain.InventoryTransaction{
		{ID: "tx-1", ProductID: "prod-a", Type: domain.TxInbound, Quantity: 5, CreatedAt: now},
		{ID: "tx-2", ProductID: "prod-a", Type: domain.TxOutbound, Quantity: 2, CreatedAt: now.Add(-time.Hour)},
		{ID: "tx-3", ProductID: "prod-b", Type: domain.TxInbound, Quantity: 9, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "tx-4", ProductID: "prod-b", Type: domain.TxSale, Quantity: 1, CreatedAt: now.AddDate(0, 0, -4)},
	}

	rows := GroupTransactions(txs, now)

	var headers, txRows int
	for _, r := range rows {
		switch r.Kind {
		case domain.RowHeader:
			headers++
		case domain.RowTransaction:
			txRows++
		}
	}
	if headers != 3 {
		t.Fatalf("expected 3 day headers, got %d", headers)
	}
	if txRows != len(txs) {
		t.Fatalf("expected %d transaction rows, got %d", len(txs), txRows)
	}
	if rows[0].Kind != domain.RowHeader || rows[0].Label != "Today" {
		t.Fatalf("expected leading Today header, got %+v", rows[0])
	}
	if rows[1].Transaction == nil || rows[1].Transaction.ID != "tx-1" {
		t.Fatalf("expected tx-1 right after header, got %+v", rows[1])
	}
}

func TestGroupTransactionsEmpty(t *testing.T) {
	rows := GroupTransactions(nil, time.Now())
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestInventoryStatsCountsDisjointBuckets(t *testing.T) {
	balances := []domain.Balance{
		{ProductID: "prod-a", Unit: "KG", SignedTotal: 1000},
		{ProductID: "prod-b", Unit: "KG", SignedTotal: -3},
		{ProductID: "prod-c", Unit: "UN", SignedTotal: 4},
		{ProductID: "prod-d", Unit: "KG", SignedTotal: 600},
	}

	stats := InventoryStats(balances)

	if stats.TotalProducts != 4 {
		t.Fatalf("expected 4 products, got %d", stats.TotalProducts)
	}
	if stats.NegativeCount != 1 {
		t.Fatalf("expected 1 negative, got %d", stats.NegativeCount)
	}
	if stats.LowStockCount != 1 {
		t.Fatalf("expected 1 low, got %d", stats.LowStockCount)
	}
}

func TestProductionStatsSkipsBatchesWithoutDetails(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	batches := []domain.ProductionBatch{
		{ID: "batch-1", Date: now, AnimalCount: 100},
		{ID: "batch-2", Date: now.AddDate(0, -2, 0), AnimalCount: 50},
	}
	details := map[string][]domain.ProductionItem{
		"batch-1": {
			{BatchID: "batch-1", ProductID: "prod-mocoto", Unit: "UN", Produced: 150, Target: 200},
			{BatchID: "batch-1", ProductID: "prod-tripa", Unit: "KG", Produced: 180, Target: 150},
		},
	}

	stats := ProductionStats(batches, details, now)

	if stats.TotalBatches != 2 {
		t.Fatalf("expected 2 batches, got %d", stats.TotalBatches)
	}
	if stats.MonthBatches != 1 {
		t.Fatalf("expected 1 batch this month, got %d", stats.MonthBatches)
	}
	if stats.AverageAnimals != 75 {
		t.Fatalf("expected average 75 animals, got %v", stats.AverageAnimals)
	}

	if len(stats.ByUnit) != 2 {
		t.Fatalf("expected rollups for 2 units, got %d", len(stats.ByUnit))
	}
	kg, un := stats.ByUnit[0], stats.ByUnit[1]
	if kg.Unit != "KG" || un.Unit != "UN" {
		t.Fatalf("expected units sorted KG then UN, got %s %s", kg.Unit, un.Unit)
	}
	if kg.Loss != 0 {
		t.Fatalf("surplus must not count as loss, got %v", kg.Loss)
	}
	if un.Loss != 50 {
		t.Fatalf("expected loss 50 for UN, got %v", un.Loss)
	}
	if math.Abs(un.Efficiency-75) > 1e-9 {
		t.Fatalf("expected 75%% efficiency for UN, got %v", un.Efficiency)
	}
	if math.Abs(kg.Efficiency-120) > 1e-9 {
		t.Fatalf("expected 120%% efficiency for KG, got %v", kg.Efficiency)
	}
}
