// Package production computes per-product targets, variance and per-animal
// averages for a processing batch.
package production

import "github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"

// Progress bands for UI coloring, a pure function of the produced/target
// ratio: >= 0.8 good, >= 0.5 warning, below critical.
const (
	BandGood     = "good"
	BandWarning  = "warning"
	BandCritical = "critical"
)

func Target(animalCount int, metaPerAnimal float64) float64 {
	return float64(animalCount) * metaPerAnimal
}

// Variance is produced minus target: positive means surplus, negative
// shortfall.
func Variance(produced, target float64) float64 {
	return produced - target
}

// Average is per-animal output. A zero animal count yields 0, never a
// divide-by-zero fault.
func Average(produced float64, animalCount int) float64 {
	if animalCount == 0 {
		return 0
	}
	return produced / float64(animalCount)
}

// Ratio clamps produced/target into [0,1]; a non-positive target yields 0.
func Ratio(produced, target float64) float64 {
	if target <= 0 {
		return 0
	}
	r := produced / target
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func Band(ratio float64) string {
	switch {
	case ratio >= 0.8:
		return BandGood
	case ratio >= 0.5:
		return BandWarning
	default:
		return BandCritical
	}
}

// ComputeItem derives a full production item row from the product's target
// rate, the batch animal count and the produced quantity.
func ComputeItem(p domain.Product, animalCount int, produced float64) domain.ProductionItem {
	target := Target(animalCount, p.MetaPerAnimal)
	return domain.ProductionItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Unit:        p.Unit,
		Produced:    produced,
		Target:      target,
		Variance:    Variance(produced, target),
		Average:     Average(produced, animalCount),
	}
}
