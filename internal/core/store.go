package core

import (
	"context"
	"errors"
)

// Errors every Store implementation translates its driver errors into.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate value violates unique constraint")
	ErrReferenced = errors.New("record is referenced by other records (violates foreign key)")
)

// Queries is the set of persistence operations the service needs. A Store
// runs them directly; inside InTx they run on one transaction.
//
// Get and Update/Delete return ErrNotFound for unknown ids. Inserts and
// updates return ErrDuplicate on unique violations and ErrReferenced when a
// referenced row does not exist. Deletes return ErrReferenced when other rows
// still point at the record.
type Queries interface {
	InsertSupplier(ctx context.Context, s *Supplier) error
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	ListSuppliers(ctx context.Context, opts ListOptions) ([]Supplier, error)
	UpdateSupplier(ctx context.Context, s *Supplier) error
	DeleteSupplier(ctx context.Context, id string) error

	InsertCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context, opts ListOptions) ([]Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id string) error

	InsertSeller(ctx context.Context, s *Seller) error
	GetSeller(ctx context.Context, id string) (*Seller, error)
	ListSellers(ctx context.Context, opts ListOptions) ([]Seller, error)
	UpdateSeller(ctx context.Context, s *Seller) error
	DeleteSeller(ctx context.Context, id string) error

	InsertProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, opts ListOptions) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error

	// LockProduct reads a product and holds it against concurrent writers
	// until the surrounding transaction ends.
	LockProduct(ctx context.Context, id string) (*Product, error)

	// DecrementStock subtracts qty only if the product still has at least
	// qty units. It reports false when nothing was updated.
	DecrementStock(ctx context.Context, productID string, qty int) (bool, error)

	InsertSale(ctx context.Context, s *Sale) error
	InsertSaleItem(ctx context.Context, item *SaleItem) error
	GetSale(ctx context.Context, id string) (*Sale, error)
	ListSales(ctx context.Context, opts ListOptions) ([]Sale, error)
	ListSaleItems(ctx context.Context, saleID string) ([]SaleItem, error)
}

// Store is the storage port. Backends: sqlite (embedded file), postgres and
// an in-memory store.
type Store interface {
	Queries

	// InTx runs fn in one transaction. It commits when fn returns nil and
	// rolls back otherwise, returning fn's error unchanged.
	InTx(ctx context.Context, fn func(q Queries) error) error

	Ping(ctx context.Context) error
	Close() error
}
