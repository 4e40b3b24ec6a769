package validator

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/projector"
)

func newTestValidator(balance float64) *Validator {
	products := map[string]domain.Product{
		"prod-tripa":  {ID: "prod-tripa", Name: "Tripa Grossa", Unit: "KG", MetaPerAnimal: 1.5, Active: true},
		"prod-mocoto": {ID: "prod-mocoto", Name: "Mocotó", Unit: "UN", MetaPerAnimal: 2, Active: true},
	}
	return &Validator{
		Product: func(id string) (domain.Product, bool) {
			p, ok := products[id]
			return p, ok
		},
		Balance: func(string) float64 { return balance },
	}
}

var operator = domain.Actor{Username: "operador", Role: domain.RoleOperator}
var admin = domain.Actor{Username: "chefe", Role: domain.RoleAdmin}

func TestValidateUnknownProductWinsOverBadQuantity(t *testing.T) {
	v := newTestValidator(0)
	_, err := v.Validate(operator, domain.TransactionInput{
		ProductID:    "prod-nope",
		Type:         domain.TxInbound,
		QuantityText: "abc",
	}, nil)
	if !errors.Is(err, domain.ErrUnknownProduct) {
		t.Fatalf("expected ErrUnknownProduct first, got %v", err)
	}
}

func TestValidateRejectsBadQuantity(t *testing.T) {
	v := newTestValidator(100)
	for _, raw := range []string{"", "zero", "0", "-3", "1000000"} {
		_, err := v.Validate(operator, domain.TransactionInput{
			ProductID:    "prod-tripa",
			Type:         domain.TxInbound,
			QuantityText: raw,
		}, nil)
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("quantity %q: expected ErrInvalidQuantity, got %v", raw, err)
		}
	}
}

func TestValidateOutboundRequiresJustification(t *testing.T) {
	v := newTestValidator(100)
	_, err := v.Validate(operator, domain.TransactionInput{
		ProductID:    "prod-tripa",
		Type:         domain.TxOutbound,
		QuantityText: "5",
	}, nil)
	if !errors.Is(err, domain.ErrMissingJustification) {
		t.Fatalf("expected ErrMissingJustification, got %v", err)
	}

	long := strings.Repeat("x", MaxNoteLen+1)
	_, err = v.Validate(operator, domain.TransactionInput{
		ProductID:     "prod-tripa",
		Type:          domain.TxOutbound,
		QuantityText:  "5",
		Justification: long,
	}, nil)
	if !errors.Is(err, domain.ErrMissingJustification) {
		t.Fatalf("expected over-length note to fail, got %v", err)
	}
}

func TestValidateSoftBlocksInsufficientBalance(t *testing.T) {
	v := newTestValidator(20)
	in := domain.TransactionInput{
		ProductID:     "prod-tripa",
		Type:          domain.TxOutbound,
		QuantityText:  "30",
		Justification: "venda direta no balcão",
	}

	_, err := v.Validate(operator, in, nil)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance with nil confirm, got %v", err)
	}

	_, err = v.Validate(operator, in, func(requested, available float64) bool {
		if requested != 30 || available != 20 {
			t.Fatalf("confirm received requested=%v available=%v", requested, available)
		}
		return false
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected declined confirm to fail, got %v", err)
	}

	tx, err := v.Validate(operator, in, func(requested, available float64) bool { return true })
	if err != nil {
		t.Fatalf("confirmed submission failed: %v", err)
	}
	if tx.Quantity != 30 {
		t.Fatalf("expected quantity 30, got %v", tx.Quantity)
	}
}

func TestValidateSufficientBalanceNeverPrompts(t *testing.T) {
	v := newTestValidator(100)
	_, err := v.Validate(operator, domain.TransactionInput{
		ProductID:     "prod-tripa",
		Type:          domain.TxOutbound,
		QuantityText:  "30",
		Justification: "reposição",
	}, func(requested, available float64) bool {
		t.Fatalf("confirm must not run when balance covers the request")
		return false
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
}

func TestValidateAdjustmentRequiresAdminAndObservation(t *testing.T) {
	v := newTestValidator(80)
	in := domain.TransactionInput{
		ProductID:    "prod-tripa",
		Type:         domain.TxAdjustment,
		QuantityText: "50",
	}

	_, err := v.Validate(admin, in, nil)
	if !errors.Is(err, domain.ErrMissingJustification) {
		t.Fatalf("expected missing observation, got %v", err)
	}

	in.Observation = "contagem física do estoque"
	_, err = v.Validate(operator, in, nil)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for operator, got %v", err)
	}

	tx, err := v.Validate(admin, in, nil)
	if err != nil {
		t.Fatalf("admin adjustment failed: %v", err)
	}
	if tx.Quantity != -30 {
		t.Fatalf("expected signed delta -30 (target 50 from 80), got %v", tx.Quantity)
	}
}

func TestAdjustmentReprojectsToEnteredValue(t *testing.T) {
	current := 123.456
	target := 50.0
	v := newTestValidator(current)

	tx, err := v.Validate(admin, domain.TransactionInput{
		ProductID:    "prod-tripa",
		Type:         domain.TxAdjustment,
		QuantityText: "50",
		Observation:  "acerto",
	}, nil)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	// Replaying the adjustment over the prior history must land exactly on
	// the entered target.
	history := []domain.InventoryTransaction{
		{ID: "tx-1", ProductID: "prod-tripa", Type: domain.TxInbound, Quantity: current},
	}
	tx.ID = "tx-2"
	history = append(history, tx)
	if got := projector.SignedTotal("prod-tripa", history); math.Abs(got-target) > 1e-6 {
		t.Fatalf("expected re-projection to land on %v, got %v", target, got)
	}
}

func TestCapabilityMatrix(t *testing.T) {
	for _, action := range []string{ActionAdjust, ActionUndo, ActionManageCatalog} {
		if !Can(domain.RoleAdmin, action) {
			t.Fatalf("admin must be allowed %s", action)
		}
		if Can(domain.RoleOperator, action) {
			t.Fatalf("operator must be denied %s", action)
		}
	}
}
