package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/projector"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/xid"
)

// Store is an in-memory Repository used for tests and dev mode. It mimics
// the backend faithfully: the transaction log is append-only, balances are a
// projection over it, and duplicate guards mirror the unique indexes.
type Store struct {
	mu           sync.RWMutex
	products     map[string]domain.Product
	txs          []domain.InventoryTransaction
	batches      []domain.ProductionBatch
	itemsByBatch map[string][]domain.ProductionItem
	users        map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_OPERATOR_PASSWORD; if
// unset, hardcoded dev defaults are used with a warning. Production
// deployments use PostgreSQL (DATABASE_URL) and never touch these.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	operatorPwd := envOr("SEED_OPERATOR_PASSWORD", "operator123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_OPERATOR_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_OPERATOR_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"operator", operatorPwd, domain.RoleOperator},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	products := []domain.Product{
		{ID: "prod-mocoto", Name: "Mocotó", Unit: "UN", MetaPerAnimal: 2, Active: true},
		{ID: "prod-figado", Name: "Fígado", Unit: "UN", MetaPerAnimal: 1, Active: true},
		{ID: "prod-couro", Name: "Couro", Unit: "UN", MetaPerAnimal: 1, Active: true},
		{ID: "prod-bucho", Name: "Bucho", Unit: "UN", MetaPerAnimal: 1, Active: true},
		{ID: "prod-tripa", Name: "Tripa Grossa", Unit: "KG", MetaPerAnimal: 1.5, Active: true},
		{ID: "prod-carne-cabeca", Name: "Carne de Cabeça", Unit: "KG", MetaPerAnimal: 3.2, Active: true},
	}

	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	return &Store{
		products:     productMap,
		txs:          make([]domain.InventoryTransaction, 0, 256),
		batches:      make([]domain.ProductionBatch, 0, 64),
		itemsByBatch: make(map[string][]domain.ProductionItem),
		users:        seedUsers(),
	}
}

// New returns an empty store with seeded users only.
func New() *Store {
	return &Store{
		products:     make(map[string]domain.Product),
		txs:          make([]domain.InventoryTransaction, 0, 64),
		batches:      make([]domain.ProductionBatch, 0, 16),
		itemsByBatch: make(map[string][]domain.ProductionItem),
		users:        seedUsers(),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Name == b.Name {
			return strings.Compare(a.Unit, b.Unit)
		}
		return strings.Compare(a.Name, b.Name)
	})

	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	found := p
	return &found, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.Active &&
			strings.EqualFold(existing.Name, product.Name) &&
			strings.EqualFold(existing.Unit, product.Unit) {
			return nil, domain.ErrDuplicateRecord
		}
	}

	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	product.Active = true
	s.products[product.ID] = product

	created := product
	return &created, nil
}

func (s *Store) ListBalances(_ context.Context) ([]domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]float64, len(s.products))
	updated := make(map[string]time.Time, len(s.products))
	for _, tx := range s.txs {
		totals[tx.ProductID] += projector.Sign(tx.Type) * tx.Quantity
		if tx.CreatedAt.After(updated[tx.ProductID]) {
			updated[tx.ProductID] = tx.CreatedAt
		}
	}

	balances := make([]domain.Balance, 0, len(s.products))
	for id, p := range s.products {
		if !p.Active {
			continue
		}
		balances = append(balances, domain.Balance{
			ProductID:   id,
			ProductName: p.Name,
			Unit:        p.Unit,
			SignedTotal: totals[id],
			LastUpdated: updated[id],
		})
	}

	slices.SortFunc(balances, func(a, b domain.Balance) int {
		return strings.Compare(a.ProductName, b.ProductName)
	})

	return balances, nil
}

func (s *Store) ListTransactions(_ context.Context, filter domain.TransactionFilter, offset int, limit int) ([]domain.InventoryTransaction, error) {
	if limit < 1 {
		limit = 40
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.InventoryTransaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if !matchesFilter(tx, filter) {
			continue
		}
		if p, ok := s.products[tx.ProductID]; ok {
			tx.ProductName = p.Name
		}
		matched = append(matched, tx)
	}

	slices.SortFunc(matched, func(a, b domain.InventoryTransaction) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})

	if offset >= len(matched) {
		return []domain.InventoryTransaction{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]domain.InventoryTransaction, end-offset)
	copy(page, matched[offset:end])
	return page, nil
}

func matchesFilter(tx domain.InventoryTransaction, filter domain.TransactionFilter) bool {
	if filter.ProductID != "" && tx.ProductID != filter.ProductID {
		return false
	}
	switch filter.Type {
	case "":
	case domain.TxSale:
		// Widened filter: legacy outbound rows tagged with a customer were
		// sales in some deployments.
		isSale := tx.Type == domain.TxSale ||
			(tx.Type == domain.TxOutbound && tx.Meta.Customer != "")
		if !isSale {
			return false
		}
	default:
		if tx.Type != filter.Type {
			return false
		}
	}
	if !filter.From.IsZero() && tx.CreatedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !tx.CreatedAt.Before(filter.To) {
		return false
	}
	return true
}

func (s *Store) CreateTransaction(_ context.Context, tx domain.InventoryTransaction) (*domain.InventoryTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[tx.ProductID]; !ok {
		return nil, domain.ErrNotFound
	}

	if tx.ID == "" || xid.IsTemp(tx.ID) {
		tx.ID = xid.New("tx")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	tx.Pending = false
	s.txs = append(s.txs, tx)

	created := tx
	return &created, nil
}

func (s *Store) DeleteNewestTransaction(_ context.Context) (*domain.InventoryTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.txs) == 0 {
		return nil, domain.ErrNotFound
	}

	newest := 0
	for i := 1; i < len(s.txs); i++ {
		if s.txs[i].CreatedAt.After(s.txs[newest].CreatedAt) {
			newest = i
		}
	}

	removed := s.txs[newest]
	s.txs = append(s.txs[:newest], s.txs[newest+1:]...)
	return &removed, nil
}

func (s *Store) ListProductionBatches(_ context.Context, offset int, limit int) ([]domain.ProductionBatch, error) {
	if limit < 1 {
		limit = 40
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := make([]domain.ProductionBatch, len(s.batches))
	copy(sorted, s.batches)
	slices.SortFunc(sorted, func(a, b domain.ProductionBatch) int {
		if a.Date.Equal(b.Date) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})

	if offset >= len(sorted) {
		return []domain.ProductionBatch{}, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}

	page := make([]domain.ProductionBatch, end-offset)
	copy(page, sorted[offset:end])
	return page, nil
}

func (s *Store) CreateProduction(_ context.Context, batch domain.ProductionBatch, items []domain.ProductionItem) (*domain.ProductionBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.batches {
		if existing.CreatedBy == batch.CreatedBy && sameLocalDay(existing.Date, batch.Date) {
			return nil, domain.ErrDuplicateRecord
		}
	}

	if batch.ID == "" {
		batch.ID = xid.New("pb")
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	s.batches = append(s.batches, batch)

	// Stored enriched with product name/unit, mirroring the backend's
	// production_item_summary view.
	stored := make([]domain.ProductionItem, 0, len(items))
	for _, item := range items {
		item.BatchID = batch.ID
		if p, ok := s.products[item.ProductID]; ok {
			item.ProductName = p.Name
			item.Unit = p.Unit
		}
		stored = append(stored, item)
	}
	slices.SortFunc(stored, func(a, b domain.ProductionItem) int {
		return strings.Compare(a.ProductName, b.ProductName)
	})
	s.itemsByBatch[batch.ID] = stored

	created := batch
	return &created, nil
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func (s *Store) ListProductionItems(_ context.Context, batchID string) ([]domain.ProductionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.itemsByBatch[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	out := make([]domain.ProductionItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" {
		return domain.ErrNotFound
	}
	if _, exists := s.users[username]; exists {
		return domain.ErrDuplicateRecord
	}
	user.Username = username
	s.users[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return domain.ErrNotFound
	}
	u.Password = password
	s.users[username] = u
	return nil
}
