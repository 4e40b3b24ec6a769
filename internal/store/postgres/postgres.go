package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit, meta_per_animal, active
		FROM products
		WHERE active = true
		ORDER BY name, unit
	`)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Unit, &p.MetaPerAnimal, &p.Active); err != nil {
			return nil, mapError("list products", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list products", err)
	}

	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, unit, meta_per_animal, active
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Unit, &p.MetaPerAnimal, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapError("get product", err)
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	product.Active = true

	// Partial unique index on (name, unit) WHERE active guards the
	// name+unit pair among active products.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, unit, meta_per_animal, active, created_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, product.ID, product.Name, product.Unit, product.MetaPerAnimal, product.Active)
	if err != nil {
		return nil, mapError("create product", err)
	}

	created := product
	return &created, nil
}

func (s *Store) ListBalances(ctx context.Context) ([]domain.Balance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.product_id, p.name, p.unit, b.signed_total, b.updated_at
		FROM inventory_balances b
		JOIN products p ON p.id = b.product_id
		WHERE p.active = true
		ORDER BY p.name
	`)
	if err != nil {
		return nil, mapError("list balances", err)
	}
	defer rows.Close()

	balances := make([]domain.Balance, 0, 64)
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.ProductID, &b.ProductName, &b.Unit, &b.SignedTotal, &b.LastUpdated); err != nil {
			return nil, mapError("list balances", err)
		}
		b.LastUpdated = b.LastUpdated.UTC()
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list balances", err)
	}

	return balances, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter, offset int, limit int) ([]domain.InventoryTransaction, error) {
	if limit < 1 {
		limit = 40
	}
	if offset < 0 {
		offset = 0
	}

	where := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		where = append(where, fmt.Sprintf("t.product_id = $%d", len(args)))
	}
	switch filter.Type {
	case "":
	case domain.TxSale:
		// Legacy deployments recorded sales as outbound rows tagged with a
		// customer; the sale filter covers both.
		where = append(where, `(t.tx_type = 'sale' OR (t.tx_type = 'outbound' AND COALESCE(t.metadata->>'customer','') <> ''))`)
	default:
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("t.tx_type = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where = append(where, fmt.Sprintf("t.created_at < $%d", len(args)))
	}

	query := `
		SELECT t.id, t.product_id, p.name, t.quantity, t.unit, t.tx_type,
		       t.created_at, t.created_by, COALESCE(t.source_batch_id, ''), t.metadata
		FROM inventory_transactions t
		JOIN products p ON p.id = t.product_id
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY t.created_at DESC, t.id DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	defer rows.Close()

	txs := make([]domain.InventoryTransaction, 0, limit)
	for rows.Next() {
		var tx domain.InventoryTransaction
		var meta []byte
		if err := rows.Scan(&tx.ID, &tx.ProductID, &tx.ProductName, &tx.Quantity, &tx.Unit,
			&tx.Type, &tx.CreatedAt, &tx.CreatedBy, &tx.SourceBatchID, &meta); err != nil {
			return nil, mapError("list transactions", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &tx.Meta); err != nil {
				return nil, mapError("list transactions", err)
			}
		}
		tx.CreatedAt = tx.CreatedAt.UTC()
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list transactions", err)
	}

	return txs, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx domain.InventoryTransaction) (*domain.InventoryTransaction, error) {
	if tx.ID == "" || xid.IsTemp(tx.ID) {
		tx.ID = xid.New("tx")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(tx.Meta)
	if err != nil {
		return nil, mapError("create transaction", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO inventory_transactions
			(id, product_id, quantity, unit, tx_type, created_at, created_by, source_batch_id, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, tx.ID, tx.ProductID, tx.Quantity, tx.Unit, tx.Type, tx.CreatedAt, tx.CreatedBy,
		nullIfEmpty(tx.SourceBatchID), meta)
	if err != nil {
		return nil, mapError("create transaction", err)
	}

	created := tx
	created.Pending = false
	return &created, nil
}

func (s *Store) DeleteNewestTransaction(ctx context.Context) (*domain.InventoryTransaction, error) {
	var removed domain.InventoryTransaction
	var meta []byte
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM inventory_transactions
		WHERE id = (
			SELECT id FROM inventory_transactions
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		RETURNING id, product_id, quantity, unit, tx_type, created_at, created_by,
		          COALESCE(source_batch_id, ''), metadata
	`).Scan(&removed.ID, &removed.ProductID, &removed.Quantity, &removed.Unit, &removed.Type,
		&removed.CreatedAt, &removed.CreatedBy, &removed.SourceBatchID, &meta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapError("undo transaction", err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &removed.Meta); err != nil {
			return nil, mapError("undo transaction", err)
		}
	}
	removed.CreatedAt = removed.CreatedAt.UTC()
	return &removed, nil
}

func (s *Store) ListProductionBatches(ctx context.Context, offset int, limit int) ([]domain.ProductionBatch, error) {
	if limit < 1 {
		limit = 40
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prod_date, animal_count, created_by, created_at
		FROM productions
		ORDER BY prod_date DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, mapError("list productions", err)
	}
	defer rows.Close()

	batches := make([]domain.ProductionBatch, 0, limit)
	for rows.Next() {
		var b domain.ProductionBatch
		if err := rows.Scan(&b.ID, &b.Date, &b.AnimalCount, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, mapError("list productions", err)
		}
		b.CreatedAt = b.CreatedAt.UTC()
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list productions", err)
	}

	return batches, nil
}

func (s *Store) CreateProduction(ctx context.Context, batch domain.ProductionBatch, items []domain.ProductionItem) (*domain.ProductionBatch, error) {
	if batch.ID == "" {
		batch.ID = xid.New("pb")
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, mapError("create production", err)
	}
	defer func() { _ = pgTx.Rollback() }()

	// Unique index on (prod_date, created_by) rejects a second batch for
	// the same day and author.
	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO productions (id, prod_date, animal_count, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, batch.ID, batch.Date, batch.AnimalCount, batch.CreatedBy, batch.CreatedAt)
	if err != nil {
		return nil, mapError("create production", err)
	}

	for _, item := range items {
		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO production_items (batch_id, product_id, produced, target, variance, average)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, batch.ID, item.ProductID, item.Produced, item.Target, item.Variance, item.Average)
		if err != nil {
			return nil, mapError("create production", err)
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, mapError("create production", err)
	}

	created := batch
	return &created, nil
}

func (s *Store) ListProductionItems(ctx context.Context, batchID string) ([]domain.ProductionItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT batch_id, product_id, product_name, unit, produced, target, variance, average
		FROM production_item_summary
		WHERE batch_id = $1
		ORDER BY product_name
	`, batchID)
	if err != nil {
		return nil, mapError("list production items", err)
	}
	defer rows.Close()

	items := make([]domain.ProductionItem, 0, 16)
	for rows.Next() {
		var item domain.ProductionItem
		if err := rows.Scan(&item.BatchID, &item.ProductID, &item.ProductName, &item.Unit,
			&item.Produced, &item.Target, &item.Variance, &item.Average); err != nil {
			return nil, mapError("list production items", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list production items", err)
	}

	return items, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	return mapError("create user", err)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
	`)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, mapError("list users", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list users", err)
	}

	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return mapError("update user password", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapError("update user password", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapError translates driver failures into the domain taxonomy: unique-key
// conflicts become ErrDuplicateRecord, backend permission failures become
// ErrPermissionDenied, everything else passes through as a RemoteError with
// the original message intact.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrDuplicateRecord
		case "42501":
			return domain.ErrPermissionDenied
		}
	}
	return domain.Remote(op, err)
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
