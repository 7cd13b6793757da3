package domain

import "time"

type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category"`
	Price          float64   `json:"price"`
	Cost           float64   `json:"cost"`
	InventoryLevel int       `json:"inventory_level"`
	ReorderPoint   int       `json:"reorder_point"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ProductCreateRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Cost           float64 `json:"cost"`
	InventoryLevel int     `json:"inventory_level"`
	ReorderPoint   int     `json:"reorder_point"`
}

type ProductUpdateRequest struct {
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Cost           *float64 `json:"cost,omitempty"`
	InventoryLevel *int     `json:"inventory_level,omitempty"`
	ReorderPoint   *int     `json:"reorder_point,omitempty"`
}

type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
}

type ShopCreateRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Region string `json:"region"`
}

type ShopUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Type   *string `json:"type,omitempty"`
	Region *string `json:"region,omitempty"`
}

// Invoice is the persisted sales invoice header. ShopName is populated by
// repository reads that join the shop directory; it is never written.
type Invoice struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shop_id"`
	ShopName  string    `json:"shop_name,omitempty"`
	Channel   string    `json:"channel"`
	Date      time.Time `json:"date"`
	Discount  float64   `json:"discount"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// InvoiceItem is a persisted invoice line. ProductName is join-populated
// the same way Invoice.ShopName is.
type InvoiceItem struct {
	ID          string  `json:"id"`
	InvoiceID   string  `json:"invoice_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

type InvoiceItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type InvoiceSubmitRequest struct {
	ShopID   string             `json:"shop_id"`
	Channel  string             `json:"channel"`
	Date     string             `json:"date"`
	Discount string             `json:"discount"`
	Items    []InvoiceItemInput `json:"items"`
}

type InvoiceSubmitResponse struct {
	Invoice        Invoice `json:"invoice"`
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	ItemCount      int     `json:"item_count"`
}

type InvoiceDetailResponse struct {
	Invoice Invoice       `json:"invoice"`
	Items   []InvoiceItem `json:"items"`
}

type Expense struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

type ExpenseCreateRequest struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type Feedback struct {
	ID                string    `json:"id"`
	InvoiceID         string    `json:"invoice_id"`
	SatisfactionScore int       `json:"satisfaction_score"`
	Comments          string    `json:"comments,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type FeedbackCreateRequest struct {
	InvoiceID         string `json:"invoice_id"`
	SatisfactionScore int    `json:"satisfaction_score"`
	Comments          string `json:"comments"`
}

type NameValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthlyBucket accumulates one calendar month of filtered invoices.
// Retail and Direct only receive amounts from invoices whose channel
// matches exactly; Total receives every invoice in the bucket.
type MonthlyBucket struct {
	Month  string  `json:"month"`
	Total  float64 `json:"total"`
	Retail float64 `json:"retail"`
	Direct float64 `json:"direct"`
}

type DashboardInsights struct {
	Total        float64         `json:"total"`
	DirectTotal  float64         `json:"direct_total"`
	BestProduct  string          `json:"best_product"`
	BestStore    string          `json:"best_store"`
	ProductSales []NameValue     `json:"product_sales"`
	StoreSales   []NameValue     `json:"store_sales"`
	MonthlySales []MonthlyBucket `json:"monthly_sales"`
	Generation   uint64          `json:"generation"`
	Partial      bool            `json:"partial"`
	FailedSlices []string        `json:"failed_slices,omitempty"`
	GeneratedAt  string          `json:"generated_at"`
}

const (
	ChannelRetail = "retail"
	ChannelDirect = "direct"

	// ChannelAll is a filter wildcard, never a valid invoice channel.
	ChannelAll = "all"
)

const (
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodAll   = "all"
)

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

const (
	ExpenseCategoryInventory      = "inventory"
	ExpenseCategoryMarketing      = "marketing"
	ExpenseCategoryUtilities      = "utilities"
	ExpenseCategoryRent           = "rent"
	ExpenseCategorySalaries       = "salaries"
	ExpenseCategoryTransportation = "transportation"
	ExpenseCategoryOther          = "other"
)

func IsValidChannel(channel string) bool {
	return channel == ChannelRetail || channel == ChannelDirect
}

func IsValidExpenseCategory(category string) bool {
	switch category {
	case ExpenseCategoryInventory, ExpenseCategoryMarketing, ExpenseCategoryUtilities,
		ExpenseCategoryRent, ExpenseCategorySalaries, ExpenseCategoryTransportation,
		ExpenseCategoryOther:
		return true
	default:
		return false
	}
}
