// Package validator enforces the per-type business rules for candidate
// inventory transactions before they are submitted.
package validator

import (
	"strings"
	"unicode/utf8"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/unit"
)

const (
	// MaxQuantity is the hard ceiling for any single movement.
	MaxQuantity = 999999
	// MaxNoteLen bounds justification and observation strings.
	MaxNoteLen = 200
)

// ConfirmFunc is the soft-block gate for outbound/sale movements that exceed
// the current balance. It receives the requested quantity and the available
// balance and returns whether the caller wants to proceed anyway.
type ConfirmFunc func(requested, available float64) bool

// Validator resolves products and current balances through lookups owned by
// the ledger service; it never mutates either.
type Validator struct {
	Product func(productID string) (domain.Product, bool)
	Balance func(productID string) float64
}

// Validate checks a candidate in rule order, first failure wins, and returns
// the transaction ready for submission. For adjustments the returned
// quantity is the signed delta between the entered target balance and the
// current balance, not the entered value.
func (v *Validator) Validate(actor domain.Actor, in domain.TransactionInput, confirm ConfirmFunc) (domain.InventoryTransaction, error) {
	p, ok := v.Product(in.ProductID)
	if !ok {
		return domain.InventoryTransaction{}, domain.ErrUnknownProduct
	}

	qty, err := unit.ParsePositive(p.Unit, in.QuantityText)
	if err != nil {
		return domain.InventoryTransaction{}, err
	}
	if qty > MaxQuantity {
		return domain.InventoryTransaction{}, domain.ErrInvalidQuantity
	}

	if in.Type == domain.TxAdjustment {
		if !validNote(in.Observation) {
			return domain.InventoryTransaction{}, domain.ErrMissingJustification
		}
	}
	if in.Type == domain.TxOutbound {
		if !validNote(in.Justification) {
			return domain.InventoryTransaction{}, domain.ErrMissingJustification
		}
	}

	current := v.Balance(p.ID)
	if in.Type == domain.TxOutbound || in.Type == domain.TxSale {
		if current < qty {
			if confirm == nil || !confirm(qty, current) {
				return domain.InventoryTransaction{}, domain.ErrInsufficientBalance
			}
		}
	}

	if in.Type == domain.TxAdjustment {
		if !Can(actor.Role, ActionAdjust) {
			return domain.InventoryTransaction{}, domain.ErrPermissionDenied
		}
		// The entered value is the desired resulting balance.
		qty = AdjustmentDelta(qty, current)
	}

	return domain.InventoryTransaction{
		ProductID:     p.ID,
		ProductName:   p.Name,
		Quantity:      qty,
		Unit:          p.Unit,
		Type:          in.Type,
		CreatedBy:     actor.Username,
		SourceBatchID: in.SourceBatchID,
		Meta: domain.TxMeta{
			Customer:      strings.TrimSpace(in.Customer),
			Justification: strings.TrimSpace(in.Justification),
			Observation:   strings.TrimSpace(in.Observation),
		},
	}, nil
}

func validNote(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && utf8.RuneCountInString(s) <= MaxNoteLen
}
