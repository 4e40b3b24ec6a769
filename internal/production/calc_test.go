package production

import (
	"testing"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
)

func TestComputeItem(t *testing.T) {
	product := domain.Product{
		ID:            "prod-mocoto",
		Name:          "Mocotó",
		Unit:          "UN",
		MetaPerAnimal: 2,
	}

	item := ComputeItem(product, 100, 150)

	if item.Target != 200 {
		t.Fatalf("expected target 200, got %v", item.Target)
	}
	if item.Variance != -50 {
		t.Fatalf("expected variance -50, got %v", item.Variance)
	}
	if item.Average != 1.5 {
		t.Fatalf("expected average 1.5, got %v", item.Average)
	}
	if item.ProductName != "Mocotó" || item.Unit != "UN" {
		t.Fatalf("expected product identity carried over, got %+v", item)
	}
}

func TestAverageZeroAnimals(t *testing.T) {
	if got := Average(42, 0); got != 0 {
		t.Fatalf("expected 0 average for zero animals, got %v", got)
	}
}

func TestRatioClampsAndHandlesZeroTarget(t *testing.T) {
	if got := Ratio(50, 0); got != 0 {
		t.Fatalf("expected 0 ratio for zero target, got %v", got)
	}
	if got := Ratio(300, 200); got != 1 {
		t.Fatalf("expected ratio clamped to 1, got %v", got)
	}
	if got := Ratio(-5, 200); got != 0 {
		t.Fatalf("expected ratio clamped to 0, got %v", got)
	}
	if got := Ratio(100, 200); got != 0.5 {
		t.Fatalf("expected ratio 0.5, got %v", got)
	}
}

func TestBandThresholds(t *testing.T) {
	cases := []struct {
		ratio float64
		want  string
	}{
		{1, BandGood},
		{0.8, BandGood},
		{0.79, BandWarning},
		{0.5, BandWarning},
		{0.49, BandCritical},
		{0, BandCritical},
	}
	for _, tc := range cases {
		if got := Band(tc.ratio); got != tc.want {
			t.Fatalf("Band(%v) = %s, want %s", tc.ratio, got, tc.want)
		}
	}
}
