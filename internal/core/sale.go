package core

// sale.go records a checkout as one atomic unit: the sale row, its item
// snapshots and the stock decrements commit together or not at all.
//
// Products are locked in id order so two carts touching the same products
// cannot deadlock. Stock is checked against the locked rows, then decremented
// with a conditional update, so a concurrent writer that slipped past the
// lock still cannot drive a quantity below zero.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/stockpos/internal/logging"
)

// maxReceiptAttempts bounds retries after a receipt number collision.
const maxReceiptAttempts = 3

// DefaultPaymentMethod is used when a sale names none.
const DefaultPaymentMethod = "cash"

var (
	hundred         = decimal.NewFromInt(100)
	errReceiptTaken = errors.New("receipt number taken")
)

// ApplyDiscount returns subtotal less the discount, floored at zero and
// rounded to cents. A percentage discount is taken against the subtotal.
func ApplyDiscount(subtotal, discount decimal.Decimal, dt DiscountType) decimal.Decimal {
	var total decimal.Decimal
	switch dt {
	case DiscountPercentage:
		total = subtotal.Sub(subtotal.Mul(discount).Div(hundred))
	default:
		total = subtotal.Sub(discount)
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}

// ComputeTotals fills each item's subtotal and returns the sale subtotal and total.
func ComputeTotals(items []SaleItem, discount decimal.Decimal, dt DiscountType) (subtotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	for i := range items {
		items[i].Subtotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))).Round(2)
		subtotal = subtotal.Add(items[i].Subtotal)
	}
	return subtotal, ApplyDiscount(subtotal, discount, dt)
}

func validateSaleRequest(req SaleRequest) (SaleRequest, error) {
	if len(req.Items) == 0 {
		return req, ErrEmptyCart
	}

	var err error
	if req.CustomerID, err = RequireNonEmpty(req.CustomerID, "Customer"); err != nil {
		return req, err
	}
	if req.SellerID, err = RequireNonEmpty(req.SellerID, "Seller"); err != nil {
		return req, err
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return req, invalid(fmt.Sprintf("Item %d product", i+1), "", "is required")
		}
		if it.Quantity <= 0 {
			return req, fmt.Errorf("item %d: %w", i+1, ErrInvalidQuantity)
		}
		if it.UnitPriceOverride != nil && it.UnitPriceOverride.IsNegative() {
			return req, fmt.Errorf("item %d: %w", i+1, ErrInvalidPrice)
		}
	}

	if req.DiscountType == "" {
		req.DiscountType = DiscountFixed
	}
	if !req.DiscountType.Valid() {
		return req, ErrInvalidDiscountType
	}
	if req.Discount.IsNegative() {
		return req, ErrInvalidDiscount
	}
	// Stored with the same two decimals as every other money column.
	req.Discount = req.Discount.Round(2)

	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		req.PaymentMethod = DefaultPaymentMethod
	}
	return req, nil
}

// RecordSale validates the cart and writes the sale atomically. It fails with
// ErrEmptyCart, *ProductNotFoundError or *InsufficientStockError without
// writing anything.
func (s *Service) RecordSale(ctx context.Context, req SaleRequest) (*Sale, error) {
	req, err := validateSaleRequest(req)
	if err != nil {
		s.recorder.SaleFailed(saleFailureReason(err))
		return nil, err
	}

	log := logging.FromContext(ctx)

	var sale *Sale
	for attempt := 1; attempt <= maxReceiptAttempts; attempt++ {
		sale, err = s.writeSale(ctx, req)
		if !errors.Is(err, errReceiptTaken) {
			break
		}
		log.Warn("receipt number collision", "attempt", attempt)
	}
	if errors.Is(err, errReceiptTaken) {
		err = ErrReceiptExhausted
	}
	if err != nil {
		s.recorder.SaleFailed(saleFailureReason(err))
		return nil, err
	}

	s.recorder.SaleRecorded(sale.Total, len(sale.Items))
	log.Info("sale recorded",
		"sale_id", sale.ID,
		"receipt", sale.ReceiptNumber,
		"items", len(sale.Items),
		"total", sale.Total.StringFixed(2),
	)
	return sale, nil
}

func (s *Service) writeSale(ctx context.Context, req SaleRequest) (*Sale, error) {
	var sale *Sale

	err := s.store.InTx(ctx, func(q Queries) error {
		if _, err := q.GetCustomer(ctx, req.CustomerID); err != nil {
			return fmt.Errorf("customer %s: %w", req.CustomerID, err)
		}
		if _, err := q.GetSeller(ctx, req.SellerID); err != nil {
			return fmt.Errorf("seller %s: %w", req.SellerID, err)
		}

		products, order, err := lockLines(ctx, q, req.Items)
		if err != nil {
			return err
		}
		demand := make(map[string]int, len(products))
		for _, it := range req.Items {
			demand[it.ProductID] += it.Quantity
		}
		if err := checkStock(req.Items, products, demand); err != nil {
			return err
		}

		saleID, now := s.stamp()
		items := make([]SaleItem, len(req.Items))
		for i, it := range req.Items {
			p := products[it.ProductID]
			unit := p.SellingPrice
			if it.UnitPriceOverride != nil {
				unit = it.UnitPriceOverride.Round(2)
			}
			items[i] = SaleItem{
				ID:          s.newID(),
				SaleID:      saleID,
				Line:        i + 1,
				ProductID:   p.ID,
				ProductName: p.Name,
				StockCode:   p.StockCode,
				UnitPrice:   unit,
				BuyingPrice: p.BuyingPrice,
				Quantity:    it.Quantity,
			}
		}
		subtotal, total := ComputeTotals(items, req.Discount, req.DiscountType)

		sale = &Sale{
			ID:            saleID,
			ReceiptNumber: s.receipts.Next(),
			CustomerID:    req.CustomerID,
			SellerID:      req.SellerID,
			Subtotal:      subtotal,
			Discount:      req.Discount,
			DiscountType:  req.DiscountType,
			Total:         total,
			PaymentMethod: req.PaymentMethod,
			CreatedAt:     now,
		}
		if err := q.InsertSale(ctx, sale); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return errReceiptTaken
			}
			return fmt.Errorf("insert sale: %w", err)
		}
		for i := range items {
			if err := q.InsertSaleItem(ctx, &items[i]); err != nil {
				return fmt.Errorf("insert sale item %d: %w", i+1, err)
			}
		}

		for _, id := range order {
			ok, err := q.DecrementStock(ctx, id, demand[id])
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return &InsufficientStockError{StockCodes: []string{products[id].StockCode}}
			}
		}

		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// lockLines locks every distinct product on the cart in ascending id order.
func lockLines(ctx context.Context, q Queries, lines []LineItem) (map[string]*Product, []string, error) {
	products := make(map[string]*Product, len(lines))
	order := make([]string, 0, len(lines))
	for _, it := range lines {
		if _, seen := products[it.ProductID]; !seen {
			products[it.ProductID] = nil
			order = append(order, it.ProductID)
		}
	}
	sort.Strings(order)

	for _, id := range order {
		p, err := q.LockProduct(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil, nil, &ProductNotFoundError{ProductID: id}
		}
		if err != nil {
			return nil, nil, fmt.Errorf("lock product %s: %w", id, err)
		}
		products[id] = p
	}
	return products, order, nil
}

// checkStock names every product whose aggregated demand exceeds its stock,
// in cart order.
func checkStock(lines []LineItem, products map[string]*Product, demand map[string]int) error {
	var short []string
	reported := make(map[string]bool)
	for _, it := range lines {
		p := products[it.ProductID]
		if reported[p.ID] || p.Quantity-demand[p.ID] >= 0 {
			continue
		}
		reported[p.ID] = true
		short = append(short, p.StockCode)
	}
	if len(short) > 0 {
		return &InsufficientStockError{StockCodes: short}
	}
	return nil
}

// GetSale returns a sale with its items.
func (s *Service) GetSale(ctx context.Context, id string) (*Sale, error) {
	sale, err := s.store.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListSaleItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sale items: %w", err)
	}
	sale.Items = items
	return sale, nil
}

// ListSales returns sales newest first, without items. Search matches the
// receipt number.
func (s *Service) ListSales(ctx context.Context, opts ListOptions) ([]Sale, error) {
	return s.store.ListSales(ctx, opts.Normalize())
}

func saleFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case IsInsufficientStock(err):
		return "insufficient_stock"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case IsValidationError(err),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidDiscount),
		errors.Is(err, ErrInvalidDiscountType):
		return "invalid"
	case errors.Is(err, ErrReceiptExhausted):
		return "receipt"
	default:
		return "error"
	}
}
