package store

import (
	"context"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
)

// Repository is the opaque CRUD boundary in front of the backend. Inventory
// transactions are insert-only except for the undo path, which deletes the
// newest row as a compensating action. Implementations map backend failures
// to the domain sentinels: duplicate keys to domain.ErrDuplicateRecord,
// permission failures to domain.ErrPermissionDenied, missing rows to
// domain.ErrNotFound; anything else is wrapped by domain.Remote so the
// original message passes through verbatim.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)

	// ListBalances returns the backend's cached signed totals enriched with
	// product name and unit. Callers treat it as a hint and recompute
	// today's delta themselves.
	ListBalances(ctx context.Context) ([]domain.Balance, error)

	// ListTransactions serves one descending-by-created_at page. A type
	// filter of "sale" widens to legacy outbound rows tagged with a
	// customer, which some deployments used to record sales.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter, offset int, limit int) ([]domain.InventoryTransaction, error)
	CreateTransaction(ctx context.Context, tx domain.InventoryTransaction) (*domain.InventoryTransaction, error)
	// DeleteNewestTransaction removes and returns the most recent ledger
	// row (the undo compensating action).
	DeleteNewestTransaction(ctx context.Context) (*domain.InventoryTransaction, error)

	ListProductionBatches(ctx context.Context, offset int, limit int) ([]domain.ProductionBatch, error)
	// CreateProduction persists the batch and all of its items in a single
	// atomic operation; both succeed or neither does. A second batch for
	// the same (prod_date, author) fails with domain.ErrDuplicateRecord.
	CreateProduction(ctx context.Context, batch domain.ProductionBatch, items []domain.ProductionItem) (*domain.ProductionBatch, error)
	// ListProductionItems reads the pre-joined per-batch item summary.
	ListProductionItems(ctx context.Context, batchID string) ([]domain.ProductionItem, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
