package web

import (
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/stockpos/internal/core"
)

// saleRequest is the POST /api/sales body. It mirrors core.SaleRequest but
// makes the discount optional.
type saleRequest struct {
	CustomerID    string            `json:"customerId"`
	SellerID      string            `json:"sellerId"`
	Items         []core.LineItem   `json:"items"`
	Discount      *decimal.Decimal  `json:"discount"`
	DiscountType  core.DiscountType `json:"discountType"`
	PaymentMethod string            `json:"paymentMethod"`
}

func (r saleRequest) toCore() core.SaleRequest {
	out := core.SaleRequest{
		CustomerID:    r.CustomerID,
		SellerID:      r.SellerID,
		Items:         r.Items,
		Discount:      decimal.Zero,
		DiscountType:  r.DiscountType,
		PaymentMethod: r.PaymentMethod,
	}
	if r.Discount != nil {
		out.Discount = *r.Discount
	}
	return out
}

// healthResponse is the GET /api/health body.
type healthResponse struct {
	Status  string                   `json:"status"`
	Store   string                   `json:"store"`
	Imports core.ImportLimiterStatus `json:"imports"`
}

// entityResponse describes one importable/exportable entity.
type entityResponse struct {
	Key        string              `json:"key"`
	Label      string              `json:"label"`
	Importable bool                `json:"importable"`
	Columns    []core.ExportColumn `json:"columns"`
}
