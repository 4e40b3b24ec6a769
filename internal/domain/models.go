package domain

import "time"

// UnitCount is the integer-counted unit-of-measure. Quantities in any other
// unit are fractional and keep up to 3 decimal places.
const UnitCount = "UN"

const (
	TxInbound    = "inbound"
	TxOutbound   = "outbound"
	TxSale       = "sale"
	TxAdjustment = "adjustment"
	TxTransfer   = "transfer"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	MetaPerAnimal float64 `json:"meta_per_animal"`
	Active        bool    `json:"active"`
}

type ProductCreateRequest struct {
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	MetaPerAnimal float64 `json:"meta_per_animal"`
}

// TxMeta is the free-form payload stored alongside a transaction: customer
// name for sales, justification for outbound, observation for adjustments.
type TxMeta struct {
	Customer      string `json:"customer,omitempty"`
	Justification string `json:"justification,omitempty"`
	Observation   string `json:"observation,omitempty"`
}

// InventoryTransaction is one append-only ledger row. Quantity is stored
// positive for every type except adjustment, whose quantity is the signed
// delta between the entered target balance and the balance at entry time.
type InventoryTransaction struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name,omitempty"`
	Quantity      float64   `json:"quantity"`
	Unit          string    `json:"unit"`
	Type          string    `json:"tx_type"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `json:"created_by"`
	SourceBatchID string    `json:"source_batch_id,omitempty"`
	Meta          TxMeta    `json:"metadata"`

	// Pending marks an optimistic local record that has not been confirmed
	// by the backend yet. Pending rows never count toward derived balances
	// or rollups.
	Pending bool `json:"pending,omitempty"`
}

// TransactionInput is the raw candidate a caller submits before validation.
// QuantityText is unparsed user input; for adjustments it is the desired
// resulting balance, not a delta.
type TransactionInput struct {
	ProductID     string `json:"product_id"`
	Type          string `json:"tx_type"`
	QuantityText  string `json:"quantity"`
	Customer      string `json:"customer,omitempty"`
	Justification string `json:"justification,omitempty"`
	Observation   string `json:"observation,omitempty"`
	SourceBatchID string `json:"source_batch_id,omitempty"`
}

type TransactionFilter struct {
	ProductID string
	Type      string
	From      time.Time
	To        time.Time
}

// Balance is the derived signed stock position for one product. SignedTotal
// comes from the backend's cached projection (a hint, not ground truth);
// TodayDelta is always recomputed locally from the transaction window.
type Balance struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Unit        string    `json:"unit"`
	SignedTotal float64   `json:"signed_total"`
	TodayDelta  float64   `json:"today_delta"`
	LastUpdated time.Time `json:"last_updated"`
}

type ProductionBatch struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"prod_date"`
	AnimalCount int       `json:"animal_count"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProductionItem struct {
	BatchID     string  `json:"batch_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Produced    float64 `json:"produced"`
	Target      float64 `json:"target"`
	Variance    float64 `json:"variance"`
	Average     float64 `json:"average"`
}

type ProductionItemInput struct {
	ProductID string  `json:"product_id"`
	Produced  float64 `json:"produced"`
}

type ProductionInput struct {
	Date        time.Time             `json:"prod_date"`
	AnimalCount int                   `json:"animal_count"`
	Items       []ProductionItemInput `json:"items"`
}

type InventoryStats struct {
	TotalProducts int `json:"total_products"`
	NegativeCount int `json:"negative_count"`
	LowStockCount int `json:"low_stock_count"`
}

// UnitRollup aggregates produced/target/loss per unit-of-measure across the
// production batches whose item details are loaded.
type UnitRollup struct {
	Unit       string  `json:"unit"`
	Produced   float64 `json:"produced"`
	Target     float64 `json:"target"`
	Loss       float64 `json:"loss"`
	Efficiency float64 `json:"efficiency_pct"`
}

type ProductionStats struct {
	TotalBatches   int          `json:"total_batches"`
	MonthBatches   int          `json:"month_batches"`
	AverageAnimals float64      `json:"average_animals"`
	ByUnit         []UnitRollup `json:"by_unit"`
}

const (
	RowHeader      = "header"
	RowTransaction = "transaction"
	RowBatch       = "batch"
)

// Renderable is a view-only row: either a day header or a leaf referencing a
// transaction or a batch. Rebuilt on every data change, never persisted.
type Renderable struct {
	Kind        string                `json:"kind"`
	Date        time.Time             `json:"date"`
	Label       string                `json:"label,omitempty"`
	Transaction *InventoryTransaction `json:"transaction,omitempty"`
	Batch       *ProductionBatch      `json:"batch,omitempty"`
}

type Actor struct {
	Username string
	Role     string
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}
