package ledger

import (
	"context"
	"errors"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/projector"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/validator"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/xid"
)

var errClosed = errors.New("ledger service closed")

// Pending is the handle for one in-flight optimistic submit. The state
// machine is pending -> confirmed | rolled-back, driven by Reconcile.
// Keeping one submit outstanding at a time is the caller's submitting-flag
// concern, not the coordinator's.
type Pending struct {
	TempID string
	tx     domain.InventoryTransaction
}

// Tx returns the speculative record as materialized locally.
func (p *Pending) Tx() domain.InventoryTransaction {
	return p.tx
}

// Submit validates the candidate and materializes a temporary record at the
// head of the transaction window. The record carries a tmp- id and the
// Pending flag, so no derived aggregate can mistake it for a confirmed row
// while the real mutation is in flight.
func (s *Service) Submit(ctx context.Context, in domain.TransactionInput, confirm validator.ConfirmFunc) (*Pending, error) {
	actor := s.actorFrom(ctx)
	v := &validator.Validator{Product: s.Product, Balance: s.BalanceFor}
	tx, err := v.Validate(actor, in, confirm)
	if err != nil {
		return nil, err
	}

	tx.ID = xid.NewTemp()
	tx.CreatedAt = s.now()
	tx.Pending = true

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	s.txs = append([]domain.InventoryTransaction{tx}, s.txs...)

	return &Pending{TempID: tx.ID, tx: tx}, nil
}

// Reconcile resolves a pending submit. On success the temporary record is
// replaced by the server-confirmed one (server-assigned id and timestamp
// included) and balances are re-derived; on failure the temporary record is
// removed and submitErr is surfaced, leaving state exactly as before the
// submit. After Close both paths are no-ops on local state.
func (s *Service) Reconcile(ctx context.Context, p *Pending, confirmed *domain.InventoryTransaction, submitErr error) (*domain.InventoryTransaction, error) {
	if p == nil {
		return nil, submitErr
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, submitErr
	}

	idx := -1
	for i := range s.txs {
		if s.txs[i].ID == p.TempID {
			idx = i
			break
		}
	}

	if submitErr != nil || confirmed == nil {
		if idx >= 0 {
			s.txs = append(s.txs[:idx], s.txs[idx+1:]...)
		}
		s.mu.Unlock()
		if submitErr == nil {
			submitErr = domain.Remote("submit", errors.New("no confirmed record"))
		}
		return nil, submitErr
	}

	done := *confirmed
	done.Pending = false
	if idx >= 0 {
		s.txs[idx] = done
	} else {
		s.txs = append([]domain.InventoryTransaction{done}, s.txs...)
	}
	// The confirmed row now heads the backend dataset, so the running
	// offset moves with it.
	s.txCursor++
	s.applyBalanceDeltaLocked(done.ProductID, projector.Sign(done.Type)*done.Quantity)
	s.mu.Unlock()

	s.invalidateBalanceCache(ctx)
	return &done, nil
}

// SubmitTransaction runs the full round trip: optimistic apply, remote
// insert, reconciliation.
func (s *Service) SubmitTransaction(ctx context.Context, in domain.TransactionInput, confirm validator.ConfirmFunc) (*domain.InventoryTransaction, error) {
	p, err := s.Submit(ctx, in, confirm)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.repo.CreateTransaction(ctx, p.Tx())
	return s.Reconcile(ctx, p, confirmed, err)
}
