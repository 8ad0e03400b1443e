package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/store/schema"
)

// queries runs core.Queries on either the database or an open transaction.
type queries struct {
	db sqlx.ExtContext
}

func (q *queries) get(ctx context.Context, dest any, query string, args ...any) error {
	return translate(sqlx.GetContext(ctx, q.db, dest, query, args...))
}

func (q *queries) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return translate(sqlx.SelectContext(ctx, q.db, dest, query, args...))
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}

// execOne fails with ErrNotFound when no row matched.
func (q *queries) execOne(ctx context.Context, query string, args ...any) error {
	n, err := q.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ============================================================================
// Suppliers
// ============================================================================

func (q *queries) InsertSupplier(ctx context.Context, s *core.Supplier) error {
	_, err := q.exec(ctx, schema.InsertSupplier, s.ID, s.Name, s.Phone, s.Email, s.CreatedAt)
	return err
}

func (q *queries) GetSupplier(ctx context.Context, id string) (*core.Supplier, error) {
	var s core.Supplier
	if err := q.get(ctx, &s, schema.GetSupplier, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (q *queries) ListSuppliers(ctx context.Context, opts core.ListOptions) ([]core.Supplier, error) {
	out := []core.Supplier{}
	if err := q.selectAll(ctx, &out, schema.ListSuppliers, schema.ListArgs(opts, 1)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (q *queries) UpdateSupplier(ctx context.Context, s *core.Supplier) error {
	return q.execOne(ctx, schema.UpdateSupplier, s.Name, s.Phone, s.Email, s.ID)
}

func (q *queries) DeleteSupplier(ctx context.Context, id string) error {
	return q.execOne(ctx, schema.DeleteSupplier, id)
}

// ============================================================================
// Customers
// ============================================================================

func (q *queries) InsertCustomer(ctx context.Context, c *core.Customer) error {
	_, err := q.exec(ctx, schema.InsertCustomer, c.ID, c.Name, c.Phone, c.Email, c.CreatedAt)
	return err
}

func (q *queries) GetCustomer(ctx context.Context, id string) (*core.Customer, error) {
	var c core.Customer
	if err := q.get(ctx, &c, schema.GetCustomer, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (q *queries) ListCustomers(ctx context.Context, opts core.ListOptions) ([]core.Customer, error) {
	out := []core.Customer{}
	if err := q.selectAll(ctx, &out, schema.ListCustomers, schema.ListArgs(opts, 1)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (q *queries) UpdateCustomer(ctx context.Context, c *core.Customer) error {
	return q.execOne(ctx, schema.UpdateCustomer, c.Name, c.Phone, c.Email, c.ID)
}

func (q *queries) DeleteCustomer(ctx context.Context, id string) error {
	return q.execOne(ctx, schema.DeleteCustomer, id)
}

// ============================================================================
// Sellers
// ============================================================================

func (q *queries) InsertSeller(ctx context.Context, s *core.Seller) error {
	_, err := q.exec(ctx, schema.InsertSeller, s.ID, s.Name, s.Email, s.CreatedAt)
	return err
}

func (q *queries) GetSeller(ctx context.Context, id string) (*core.Seller, error) {
	var s core.Seller
	if err := q.get(ctx, &s, schema.GetSeller, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (q *queries) ListSellers(ctx context.Context, opts core.ListOptions) ([]core.Seller, error) {
	out := []core.Seller{}
	if err := q.selectAll(ctx, &out, schema.ListSellers, schema.ListArgs(opts, 1)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (q *queries) UpdateSeller(ctx context.Context, s *core.Seller) error {
	return q.execOne(ctx, schema.UpdateSeller, s.Name, s.Email, s.ID)
}

func (q *queries) DeleteSeller(ctx context.Context, id string) error {
	return q.execOne(ctx, schema.DeleteSeller, id)
}

// ============================================================================
// Products
// ============================================================================

func (q *queries) InsertProduct(ctx context.Context, p *core.Product) error {
	_, err := q.exec(ctx, schema.InsertProduct,
		p.ID, p.StockCode, p.Name, p.Category, p.BuyingPrice, p.SellingPrice, p.Quantity, p.SupplierID, p.CreatedAt)
	return err
}

func (q *queries) GetProduct(ctx context.Context, id string) (*core.Product, error) {
	var p core.Product
	if err := q.get(ctx, &p, schema.GetProduct, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *queries) ListProducts(ctx context.Context, opts core.ListOptions) ([]core.Product, error) {
	out := []core.Product{}
	if err := q.selectAll(ctx, &out, schema.ListProducts, schema.ListArgs(opts, 2)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (q *queries) UpdateProduct(ctx context.Context, p *core.Product) error {
	return q.execOne(ctx, schema.UpdateProduct,
		p.StockCode, p.Name, p.Category, p.BuyingPrice, p.SellingPrice, p.Quantity, p.SupplierID, p.ID)
}

func (q *queries) DeleteProduct(ctx context.Context, id string) error {
	return q.execOne(ctx, schema.DeleteProduct, id)
}

// LockProduct is a plain read: the single connection already excludes
// other writers for the life of the transaction.
func (q *queries) LockProduct(ctx context.Context, id string) (*core.Product, error) {
	return q.GetProduct(ctx, id)
}

func (q *queries) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	n, err := q.exec(ctx, schema.DecrementStock, qty, productID, qty)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ============================================================================
// Sales
// ============================================================================

func (q *queries) InsertSale(ctx context.Context, s *core.Sale) error {
	_, err := q.exec(ctx, schema.InsertSale,
		s.ID, s.ReceiptNumber, s.CustomerID, s.SellerID, s.Subtotal, s.Discount,
		string(s.DiscountType), s.Total, s.PaymentMethod, s.CreatedAt)
	return err
}

func (q *queries) InsertSaleItem(ctx context.Context, it *core.SaleItem) error {
	_, err := q.exec(ctx, schema.InsertSaleItem,
		it.ID, it.SaleID, it.Line, it.ProductID, it.ProductName, it.StockCode,
		it.UnitPrice, it.BuyingPrice, it.Quantity, it.Subtotal)
	return err
}

func (q *queries) GetSale(ctx context.Context, id string) (*core.Sale, error) {
	var s core.Sale
	if err := q.get(ctx, &s, schema.GetSale, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (q *queries) ListSales(ctx context.Context, opts core.ListOptions) ([]core.Sale, error) {
	out := []core.Sale{}
	if err := q.selectAll(ctx, &out, schema.ListSales, schema.ListArgs(opts, 1)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (q *queries) ListSaleItems(ctx context.Context, saleID string) ([]core.SaleItem, error) {
	out := []core.SaleItem{}
	if err := q.selectAll(ctx, &out, schema.ListSaleItems, saleID); err != nil {
		return nil, err
	}
	return out, nil
}
