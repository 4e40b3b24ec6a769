package cache

import (
	"context"
	"time"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
)

// BalanceCache holds the backend's cached balance projection. It is a hint:
// a miss or an error falls back to the store, and every accepted mutation
// invalidates it.
type BalanceCache interface {
	Get(ctx context.Context) ([]domain.Balance, bool, error)
	Set(ctx context.Context, balances []domain.Balance, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopBalanceCache struct{}

func (NoopBalanceCache) Get(_ context.Context) ([]domain.Balance, bool, error) {
	return nil, false, nil
}

func (NoopBalanceCache) Set(_ context.Context, _ []domain.Balance, _ time.Duration) error {
	return nil
}

func (NoopBalanceCache) Invalidate(_ context.Context) error {
	return nil
}
