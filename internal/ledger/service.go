// Package ledger orchestrates remote reads and writes for the inventory and
// production ledgers. The Service exclusively owns the in-memory transaction
// and production windows and their pagination cursors; derived views are
// built by the projector and view packages from read-only copies.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/cache"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/production"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/projector"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/session"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/store"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/validator"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/view"
)

// PageSize is the fixed transaction/batch page size. A page shorter than
// this is the last page.
const PageSize = 40

// MaxAnimalCount bounds a production batch.
const MaxAnimalCount = 10000

const balanceCacheTTL = 30 * time.Second

// LoadReport carries the per-source outcome of the two-phase initial load so
// the caller knows which dataset failed while the other may still render.
type LoadReport struct {
	CatalogErr  error
	BalancesErr error
}

func (r LoadReport) Err() error {
	return errors.Join(r.CatalogErr, r.BalancesErr)
}

type Service struct {
	repo  store.Repository
	cache cache.BalanceCache
	sess  *session.Context
	log   *zap.Logger
	now   func() time.Time

	mu       sync.Mutex
	products map[string]domain.Product
	catalog  []domain.Product
	balances []domain.Balance

	txs        []domain.InventoryTransaction
	txFilter   domain.TransactionFilter
	txCursor   int
	txHasMore  bool
	txFetching bool

	batches       []domain.ProductionBatch
	batchCursor   int
	batchHasMore  bool
	batchFetching bool
	itemDetails   map[string][]domain.ProductionItem

	closed bool
}

func New(repo store.Repository, balanceCache cache.BalanceCache, sess *session.Context, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if balanceCache == nil {
		balanceCache = cache.NoopBalanceCache{}
	}
	return &Service{
		repo:        repo,
		cache:       balanceCache,
		sess:        sess,
		log:         log,
		now:         time.Now,
		products:    make(map[string]domain.Product),
		itemDetails: make(map[string][]domain.ProductionItem),
		txHasMore:   true,
		batchHasMore: true,
	}
}

// Close marks the service torn down. Late-arriving reconciliations become
// no-ops instead of mutating dead state.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Refresh runs the two-phase load: catalog and balances fetched
// concurrently, each reporting its own error. The view-model is settled only
// once both sources completed or failed.
func (s *Service) Refresh(ctx context.Context) LoadReport {
	var report LoadReport
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		report.CatalogErr = s.loadCatalog(ctx)
	}()
	go func() {
		defer wg.Done()
		report.BalancesErr = s.loadBalances(ctx)
	}()
	wg.Wait()
	return report
}

func (s *Service) loadCatalog(ctx context.Context) error {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = products
	s.products = make(map[string]domain.Product, len(products))
	for _, p := range products {
		s.products[p.ID] = p
	}
	return nil
}

func (s *Service) loadBalances(ctx context.Context) error {
	balances, hit, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn("balance cache read failed", zap.Error(err))
		hit = false
	}
	if !hit {
		balances, err = s.repo.ListBalances(ctx)
		if err != nil {
			return err
		}
		if err := s.cache.Set(ctx, balances, balanceCacheTTL); err != nil {
			s.log.Warn("balance cache write failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.balances = balances
	s.mu.Unlock()
	return nil
}

func (s *Service) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.catalog))
	copy(out, s.catalog)
	return out
}

func (s *Service) Product(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// Balances returns the balance list with TodayDelta recomputed from the
// locally held transaction window; the backend's signed totals are used as
// served.
func (s *Service) Balances() []domain.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]domain.Balance, len(s.balances))
	copy(out, s.balances)
	for i := range out {
		out[i].TodayDelta = projector.TodayDelta(out[i].ProductID, s.txs, now)
	}
	return out
}

// BalanceFor returns the current signed total for one product, adjusted by
// any confirmed local transactions newer than the served hint is. Pending
// rows never count.
func (s *Service) BalanceFor(productID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceForLocked(productID)
}

func (s *Service) balanceForLocked(productID string) float64 {
	for _, b := range s.balances {
		if b.ProductID == productID {
			return b.SignedTotal
		}
	}
	return 0
}

// SetTransactionFilter resets the transaction window and cursor for a new
// filter. The next FetchTransactionPage starts from offset zero.
func (s *Service) SetTransactionFilter(filter domain.TransactionFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txFilter = filter
	s.txs = nil
	s.txCursor = 0
	s.txHasMore = true
}

// FetchTransactionPage loads the next page into the window. While a fetch is
// outstanding, another call is a no-op (returns false) rather than queued,
// so concurrent requests cannot corrupt the cursor.
func (s *Service) FetchTransactionPage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.txFetching || !s.txHasMore || s.closed {
		s.mu.Unlock()
		return false, nil
	}
	s.txFetching = true
	filter := s.txFilter
	offset := s.txCursor
	s.mu.Unlock()

	page, err := s.repo.ListTransactions(ctx, filter, offset, PageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txFetching = false
	if err != nil {
		return false, err
	}
	s.txs = append(s.txs, page...)
	s.txCursor += len(page)
	s.txHasMore = len(page) == PageSize
	return true, nil
}

func (s *Service) HasMoreTransactions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txHasMore
}

// Transactions returns a copy of the loaded window, newest first.
func (s *Service) Transactions() []domain.InventoryTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.InventoryTransaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// TransactionRows builds the day-grouped renderable sequence for the loaded
// window.
func (s *Service) TransactionRows() []domain.Renderable {
	return view.GroupTransactions(s.Transactions(), s.now())
}

func (s *Service) InventoryStats() domain.InventoryStats {
	return view.InventoryStats(s.Balances())
}

// UndoLastTransaction deletes the most recent ledger row as a compensating
// action. Admin only.
func (s *Service) UndoLastTransaction(ctx context.Context) (*domain.InventoryTransaction, error) {
	actor := s.actorFrom(ctx)
	if !validator.Can(actor.Role, validator.ActionUndo) {
		return nil, domain.ErrPermissionDenied
	}

	removed, err := s.repo.DeleteNewestTransaction(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.txs {
		if s.txs[i].ID == removed.ID {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			if s.txCursor > 0 {
				s.txCursor--
			}
			break
		}
	}
	s.applyBalanceDeltaLocked(removed.ProductID, -projector.Sign(removed.Type)*removed.Quantity)
	s.mu.Unlock()

	s.invalidateBalanceCache(ctx)
	return removed, nil
}

// FetchBatchPage loads the next production batch page, with the same
// single-flight discipline as the transaction list.
func (s *Service) FetchBatchPage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.batchFetching || !s.batchHasMore || s.closed {
		s.mu.Unlock()
		return false, nil
	}
	s.batchFetching = true
	offset := s.batchCursor
	s.mu.Unlock()

	page, err := s.repo.ListProductionBatches(ctx, offset, PageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchFetching = false
	if err != nil {
		return false, err
	}
	s.batches = append(s.batches, page...)
	s.batchCursor += len(page)
	s.batchHasMore = len(page) == PageSize
	return true, nil
}

func (s *Service) Batches() []domain.ProductionBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ProductionBatch, len(s.batches))
	copy(out, s.batches)
	return out
}

func (s *Service) BatchRows() []domain.Renderable {
	return view.GroupBatches(s.Batches(), s.now())
}

// BatchItems lazily loads a batch's item details into the details cache.
// Until loaded, the batch contributes to counts and averages but not to the
// per-unit production rollups.
func (s *Service) BatchItems(ctx context.Context, batchID string) ([]domain.ProductionItem, error) {
	s.mu.Lock()
	if items, ok := s.itemDetails[batchID]; ok {
		out := make([]domain.ProductionItem, len(items))
		copy(out, items)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	items, err := s.repo.ListProductionItems(ctx, batchID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.itemDetails[batchID] = items
	s.mu.Unlock()

	out := make([]domain.ProductionItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *Service) ProductionStats() domain.ProductionStats {
	s.mu.Lock()
	batches := make([]domain.ProductionBatch, len(s.batches))
	copy(batches, s.batches)
	details := make(map[string][]domain.ProductionItem, len(s.itemDetails))
	for id, items := range s.itemDetails {
		details[id] = items
	}
	s.mu.Unlock()

	return view.ProductionStats(batches, details, s.now())
}

// SaveProduction validates and persists a batch with all of its items in one
// atomic backend operation, then auto-generates the inbound inventory rows
// referencing the batch.
func (s *Service) SaveProduction(ctx context.Context, in domain.ProductionInput) (*domain.ProductionBatch, error) {
	actor := s.actorFrom(ctx)

	if in.AnimalCount < 1 || in.AnimalCount > MaxAnimalCount {
		return nil, domain.ErrInvalidQuantity
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}

	items := make([]domain.ProductionItem, 0, len(in.Items))
	s.mu.Lock()
	for _, itemIn := range in.Items {
		p, ok := s.products[itemIn.ProductID]
		if !ok {
			s.mu.Unlock()
			return nil, domain.ErrUnknownProduct
		}
		if itemIn.Produced < 0 {
			s.mu.Unlock()
			return nil, domain.ErrInvalidQuantity
		}
		items = append(items, production.ComputeItem(p, in.AnimalCount, itemIn.Produced))
	}
	s.mu.Unlock()

	batch := domain.ProductionBatch{
		Date:        in.Date,
		AnimalCount: in.AnimalCount,
		CreatedBy:   actor.Username,
	}
	saved, err := s.repo.CreateProduction(ctx, batch, items)
	if err != nil {
		return nil, err
	}

	// Best-effort follow-up: each produced quantity enters stock as an
	// inbound movement back-referencing the batch.
	for _, item := range items {
		if item.Produced <= 0 {
			continue
		}
		_, err := s.repo.CreateTransaction(ctx, domain.InventoryTransaction{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			Quantity:      item.Produced,
			Unit:          item.Unit,
			Type:          domain.TxInbound,
			CreatedBy:     actor.Username,
			SourceBatchID: saved.ID,
		})
		if err != nil {
			s.log.Warn("failed to record production inbound",
				zap.String("batch_id", saved.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err))
		}
	}

	s.mu.Lock()
	s.batches = append([]domain.ProductionBatch{*saved}, s.batches...)
	s.batchCursor++
	s.itemDetails[saved.ID] = items
	for _, item := range items {
		s.applyBalanceDeltaLocked(item.ProductID, item.Produced)
	}
	s.mu.Unlock()

	s.invalidateBalanceCache(ctx)
	return saved, nil
}

// CreateProduct registers a catalog entry. Admin only; name+unit must be
// unique among active products (the store enforces it).
func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (*domain.Product, error) {
	actor := s.actorFrom(ctx)
	if !validator.Can(actor.Role, validator.ActionManageCatalog) {
		return nil, domain.ErrPermissionDenied
	}
	if req.Name == "" || req.Unit == "" || req.MetaPerAnimal < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:          req.Name,
		Unit:          req.Unit,
		MetaPerAnimal: req.MetaPerAnimal,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.products[created.ID] = *created
	s.catalog = append(s.catalog, *created)
	s.mu.Unlock()

	return created, nil
}

func (s *Service) applyBalanceDeltaLocked(productID string, delta float64) {
	for i := range s.balances {
		if s.balances[i].ProductID == productID {
			s.balances[i].SignedTotal += delta
			s.balances[i].LastUpdated = s.now()
			return
		}
	}
	p, ok := s.products[productID]
	if !ok {
		return
	}
	s.balances = append(s.balances, domain.Balance{
		ProductID:   productID,
		ProductName: p.Name,
		Unit:        p.Unit,
		SignedTotal: delta,
		LastUpdated: s.now(),
	})
}

func (s *Service) invalidateBalanceCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("balance cache invalidation failed", zap.Error(err))
	}
}
