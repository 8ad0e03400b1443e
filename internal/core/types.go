package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how Sale.Discount is applied to the subtotal.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid reports whether d is a known discount type.
func (d DiscountType) Valid() bool {
	return d == DiscountPercentage || d == DiscountFixed
}

// Supplier provides products. Products reference suppliers optionally.
type Supplier struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone"`
	Email     string `db:"email" json:"email"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
}

// Customer buys products. Every sale references one.
type Customer struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone"`
	Email     string `db:"email" json:"email"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
}

// Seller rings up sales. Every sale references one.
type Seller struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
}

// Product is a stocked item. StockCode is unique and human assigned.
type Product struct {
	ID           string          `db:"id" json:"id"`
	StockCode    string          `db:"stock_code" json:"stockCode"`
	Name         string          `db:"name" json:"name"`
	Category     string          `db:"category" json:"category"`
	BuyingPrice  decimal.Decimal `db:"buying_price" json:"buyingPrice"`
	SellingPrice decimal.Decimal `db:"selling_price" json:"sellingPrice"`
	Quantity     int             `db:"quantity" json:"quantity"`
	SupplierID   *string         `db:"supplier_id" json:"supplierId,omitempty"`
	CreatedAt    int64           `db:"created_at" json:"createdAt"`
}

// Sale is an immutable record of one checkout.
type Sale struct {
	ID            string          `db:"id" json:"id"`
	ReceiptNumber string          `db:"receipt_number" json:"receiptNumber"`
	CustomerID    string          `db:"customer_id" json:"customerId"`
	SellerID      string          `db:"seller_id" json:"sellerId"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	DiscountType  DiscountType    `db:"discount_type" json:"discountType"`
	Total         decimal.Decimal `db:"total" json:"total"`
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	CreatedAt     int64           `db:"created_at" json:"createdAt"`

	Items []SaleItem `db:"-" json:"items,omitempty"`
}

// SaleItem is one line of a sale. Name, stock code and prices are copied
// from the product when the sale is written and never change afterwards.
type SaleItem struct {
	ID          string          `db:"id" json:"id"`
	SaleID      string          `db:"sale_id" json:"saleId"`
	Line        int             `db:"line" json:"line"`
	ProductID   string          `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	StockCode   string          `db:"stock_code" json:"stockCode"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	BuyingPrice decimal.Decimal `db:"buying_price" json:"buyingPrice"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// SupplierInput is the payload for creating a supplier.
type SupplierInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// SupplierPatch is a partial update; nil fields are left unchanged.
type SupplierPatch struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CustomerPatch struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

type SellerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SellerPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	StockCode    string          `json:"stockCode"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	BuyingPrice  decimal.Decimal `json:"buyingPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     int             `json:"quantity"`
	SupplierID   *string         `json:"supplierId"`
}

// ProductPatch is a partial update. An empty SupplierID clears the supplier.
type ProductPatch struct {
	StockCode    *string          `json:"stockCode"`
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	BuyingPrice  *decimal.Decimal `json:"buyingPrice"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
	Quantity     *int             `json:"quantity"`
	SupplierID   *string          `json:"supplierId"`
}

// LineItem is one product and quantity in a cart.
type LineItem struct {
	ProductID         string           `json:"productId"`
	Quantity          int              `json:"quantity"`
	UnitPriceOverride *decimal.Decimal `json:"unitPriceOverride,omitempty"`
}

// SaleRequest is everything needed to record a sale.
type SaleRequest struct {
	CustomerID    string          `json:"customerId"`
	SellerID      string          `json:"sellerId"`
	Items         []LineItem      `json:"items"`
	Discount      decimal.Decimal `json:"discount"`
	DiscountType  DiscountType    `json:"discountType"`
	PaymentMethod string          `json:"paymentMethod"`
}

// Default and maximum page sizes for list operations.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ListOptions filters and pages list operations.
type ListOptions struct {
	Search string
	Limit  int
	Offset int
}

// Normalize clamps paging values and trims the search term.
func (o ListOptions) Normalize() ListOptions {
	o.Search = strings.TrimSpace(o.Search)
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// SearchPattern returns the lowercased LIKE pattern for Search, or "" when unset.
func (o ListOptions) SearchPattern() string {
	if o.Search == "" {
		return ""
	}
	return "%" + strings.ToLower(o.Search) + "%"
}

// ImportResult is the outcome of a bulk import.
type ImportResult struct {
	Entity       string        `json:"entity"`
	FileName     string        `json:"fileName"`
	TotalRows    int           `json:"totalRows"`
	Imported     int           `json:"imported"`
	Failed       int           `json:"failed"`
	HeaderErrors []string      `json:"headerErrors,omitempty"`
	RowErrors    []string      `json:"rowErrors,omitempty"`
	CreateErrors []string      `json:"createErrors,omitempty"`
	Duration     time.Duration `json:"duration"`
	Error        string        `json:"error,omitempty"`
}

// Aborted reports whether the import stopped at the header stage.
func (r *ImportResult) Aborted() bool {
	return len(r.HeaderErrors) > 0
}
