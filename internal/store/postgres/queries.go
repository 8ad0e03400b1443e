package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/store/schema"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queries runs core.Queries on either the pool or an open transaction.
type queries struct {
	db DBTX
}

// getOne scans exactly one row into a T by db tag.
func getOne[T any](ctx context.Context, db DBTX, query string, args ...any) (*T, error) {
	rows, err := db.Query(ctx, rebind(query), args...)
	if err != nil {
		return nil, translate(err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, translate(err)
	}
	return v, nil
}

// getAll scans every row into a []T by db tag. It never returns a nil slice.
func getAll[T any](ctx context.Context, db DBTX, query string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, rebind(query), args...)
	if err != nil {
		return nil, translate(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, translate(err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := q.db.Exec(ctx, rebind(query), args...)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
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
	return getOne[core.Supplier](ctx, q.db, schema.GetSupplier, id)
}

func (q *queries) ListSuppliers(ctx context.Context, opts core.ListOptions) ([]core.Supplier, error) {
	return getAll[core.Supplier](ctx, q.db, schema.ListSuppliers, schema.ListArgs(opts, 1)...)
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
	return getOne[core.Customer](ctx, q.db, schema.GetCustomer, id)
}

func (q *queries) ListCustomers(ctx context.Context, opts core.ListOptions) ([]core.Customer, error) {
	return getAll[core.Customer](ctx, q.db, schema.ListCustomers, schema.ListArgs(opts, 1)...)
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
	return getOne[core.Seller](ctx, q.db, schema.GetSeller, id)
}

func (q *queries) ListSellers(ctx context.Context, opts core.ListOptions) ([]core.Seller, error) {
	return getAll[core.Seller](ctx, q.db, schema.ListSellers, schema.ListArgs(opts, 1)...)
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
	return getOne[core.Product](ctx, q.db, schema.GetProduct, id)
}

func (q *queries) ListProducts(ctx context.Context, opts core.ListOptions) ([]core.Product, error) {
	return getAll[core.Product](ctx, q.db, schema.ListProducts, schema.ListArgs(opts, 2)...)
}

func (q *queries) UpdateProduct(ctx context.Context, p *core.Product) error {
	return q.execOne(ctx, schema.UpdateProduct,
		p.StockCode, p.Name, p.Category, p.BuyingPrice, p.SellingPrice, p.Quantity, p.SupplierID, p.ID)
}

func (q *queries) DeleteProduct(ctx context.Context, id string) error {
	return q.execOne(ctx, schema.DeleteProduct, id)
}

// LockProduct takes a row lock held until the transaction ends.
func (q *queries) LockProduct(ctx context.Context, id string) (*core.Product, error) {
	return getOne[core.Product](ctx, q.db, schema.GetProduct+" FOR UPDATE", id)
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
	return getOne[core.Sale](ctx, q.db, schema.GetSale, id)
}

func (q *queries) ListSales(ctx context.Context, opts core.ListOptions) ([]core.Sale, error) {
	return getAll[core.Sale](ctx, q.db, schema.ListSales, schema.ListArgs(opts, 1)...)
}

func (q *queries) ListSaleItems(ctx context.Context, saleID string) ([]core.SaleItem, error) {
	return getAll[core.SaleItem](ctx, q.db, schema.ListSaleItems, saleID)
}
