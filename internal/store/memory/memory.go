// Package memory implements core.Store in process memory. It enforces the
// same unique and referential constraints as the SQL schemas and is used by
// tests and by the server when STORE_DRIVER=memory.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/JonMunkholm/stockpos/internal/core"
)

type dataset struct {
	suppliers map[string]core.Supplier
	customers map[string]core.Customer
	sellers   map[string]core.Seller
	products  map[string]core.Product
	sales     map[string]core.Sale
	saleItems map[string][]core.SaleItem // keyed by sale id
}

func newDataset() *dataset {
	return &dataset{
		suppliers: map[string]core.Supplier{},
		customers: map[string]core.Customer{},
		sellers:   map[string]core.Seller{},
		products:  map[string]core.Product{},
		sales:     map[string]core.Sale{},
		saleItems: map[string][]core.SaleItem{},
	}
}

func (d *dataset) clone() *dataset {
	return &dataset{
		suppliers: maps.Clone(d.suppliers),
		customers: maps.Clone(d.customers),
		sellers:   maps.Clone(d.sellers),
		products:  maps.Clone(d.products),
		sales:     maps.Clone(d.sales),
		saleItems: maps.Clone(d.saleItems),
	}
}

// Store is an in-memory core.Store. Transactions run on a copy of the data
// that replaces the original on commit.
type Store struct {
	*queries
	mu sync.Mutex
	d  *dataset
}

var _ core.Store = (*Store)(nil)

func New() *Store {
	s := &Store{d: newDataset()}
	s.queries = &queries{d: s.d, lock: &s.mu}
	return s
}

// InTx holds the store lock for the whole of fn, so transactions are serial.
func (s *Store) InTx(ctx context.Context, fn func(q core.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.d.clone()
	if err := fn(&queries{d: work, lock: noopLocker{}}); err != nil {
		return err
	}
	*s.d = *work
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

type queries struct {
	d    *dataset
	lock sync.Locker
}

// ============================================================================
// Suppliers
// ============================================================================

func (q *queries) InsertSupplier(_ context.Context, s *core.Supplier) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.suppliers[s.ID]; ok {
		return fmt.Errorf("%w: supplier id %s", core.ErrDuplicate, s.ID)
	}
	q.d.suppliers[s.ID] = *s
	return nil
}

func (q *queries) GetSupplier(_ context.Context, id string) (*core.Supplier, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	s, ok := q.d.suppliers[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &s, nil
}

func (q *queries) ListSuppliers(_ context.Context, opts core.ListOptions) ([]core.Supplier, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	return page(q.d.suppliers, opts, func(s core.Supplier) []string { return []string{s.Name} },
		byName(func(s core.Supplier) (string, string) { return s.Name, s.ID })), nil
}

func (q *queries) UpdateSupplier(_ context.Context, s *core.Supplier) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.suppliers[s.ID]; !ok {
		return core.ErrNotFound
	}
	q.d.suppliers[s.ID] = *s
	return nil
}

func (q *queries) DeleteSupplier(_ context.Context, id string) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.suppliers[id]; !ok {
		return core.ErrNotFound
	}
	for _, p := range q.d.products {
		if p.SupplierID != nil && *p.SupplierID == id {
			return fmt.Errorf("%w: supplier %s has products", core.ErrReferenced, id)
		}
	}
	delete(q.d.suppliers, id)
	return nil
}

// ============================================================================
// Customers
// ============================================================================

func (q *queries) InsertCustomer(_ context.Context, c *core.Customer) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.customers[c.ID]; ok {
		return fmt.Errorf("%w: customer id %s", core.ErrDuplicate, c.ID)
	}
	q.d.customers[c.ID] = *c
	return nil
}

func (q *queries) GetCustomer(_ context.Context, id string) (*core.Customer, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	c, ok := q.d.customers[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &c, nil
}

func (q *queries) ListCustomers(_ context.Context, opts core.ListOptions) ([]core.Customer, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	return page(q.d.customers, opts, func(c core.Customer) []string { return []string{c.Name} },
		byName(func(c core.Customer) (string, string) { return c.Name, c.ID })), nil
}

func (q *queries) UpdateCustomer(_ context.Context, c *core.Customer) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.customers[c.ID]; !ok {
		return core.ErrNotFound
	}
	q.d.customers[c.ID] = *c
	return nil
}

func (q *queries) DeleteCustomer(_ context.Context, id string) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.customers[id]; !ok {
		return core.ErrNotFound
	}
	for _, s := range q.d.sales {
		if s.CustomerID == id {
			return fmt.Errorf("%w: customer %s has sales", core.ErrReferenced, id)
		}
	}
	delete(q.d.customers, id)
	return nil
}

// ============================================================================
// Sellers
// ============================================================================

func (q *queries) InsertSeller(_ context.Context, s *core.Seller) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.sellers[s.ID]; ok {
		return fmt.Errorf("%w: seller id %s", core.ErrDuplicate, s.ID)
	}
	q.d.sellers[s.ID] = *s
	return nil
}

func (q *queries) GetSeller(_ context.Context, id string) (*core.Seller, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	s, ok := q.d.sellers[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &s, nil
}

func (q *queries) ListSellers(_ context.Context, opts core.ListOptions) ([]core.Seller, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	return page(q.d.sellers, opts, func(s core.Seller) []string { return []string{s.Name} },
		byName(func(s core.Seller) (string, string) { return s.Name, s.ID })), nil
}

func (q *queries) UpdateSeller(_ context.Context, s *core.Seller) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.sellers[s.ID]; !ok {
		return core.ErrNotFound
	}
	q.d.sellers[s.ID] = *s
	return nil
}

func (q *queries) DeleteSeller(_ context.Context, id string) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.sellers[id]; !ok {
		return core.ErrNotFound
	}
	for _, s := range q.d.sales {
		if s.SellerID == id {
			return fmt.Errorf("%w: seller %s has sales", core.ErrReferenced, id)
		}
	}
	delete(q.d.sellers, id)
	return nil
}

// ============================================================================
// Products
// ============================================================================

// checkProduct enforces the stock code and supplier constraints.
func (q *queries) checkProduct(p *core.Product) error {
	for _, other := range q.d.products {
		if other.ID != p.ID && other.StockCode == p.StockCode {
			return fmt.Errorf("%w: stock code %s", core.ErrDuplicate, p.StockCode)
		}
	}
	if p.SupplierID != nil {
		if _, ok := q.d.suppliers[*p.SupplierID]; !ok {
			return fmt.Errorf("%w: supplier %s does not exist", core.ErrReferenced, *p.SupplierID)
		}
	}
	return nil
}

func (q *queries) InsertProduct(_ context.Context, p *core.Product) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.products[p.ID]; ok {
		return fmt.Errorf("%w: product id %s", core.ErrDuplicate, p.ID)
	}
	if err := q.checkProduct(p); err != nil {
		return err
	}
	q.d.products[p.ID] = *p
	return nil
}

func (q *queries) GetProduct(_ context.Context, id string) (*core.Product, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	p, ok := q.d.products[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &p, nil
}

func (q *queries) ListProducts(_ context.Context, opts core.ListOptions) ([]core.Product, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	return page(q.d.products, opts, func(p core.Product) []string { return []string{p.Name, p.StockCode} },
		byName(func(p core.Product) (string, string) { return p.Name, p.ID })), nil
}

func (q *queries) UpdateProduct(_ context.Context, p *core.Product) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.products[p.ID]; !ok {
		return core.ErrNotFound
	}
	if err := q.checkProduct(p); err != nil {
		return err
	}
	q.d.products[p.ID] = *p
	return nil
}

func (q *queries) DeleteProduct(_ context.Context, id string) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.products[id]; !ok {
		return core.ErrNotFound
	}
	for _, items := range q.d.saleItems {
		for _, it := range items {
			if it.ProductID == id {
				return fmt.Errorf("%w: product %s appears on sales", core.ErrReferenced, id)
			}
		}
	}
	delete(q.d.products, id)
	return nil
}

// LockProduct is a read; InTx already holds the store lock.
func (q *queries) LockProduct(ctx context.Context, id string) (*core.Product, error) {
	return q.GetProduct(ctx, id)
}

func (q *queries) DecrementStock(_ context.Context, productID string, qty int) (bool, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	p, ok := q.d.products[productID]
	if !ok || p.Quantity < qty {
		return false, nil
	}
	p.Quantity -= qty
	q.d.products[productID] = p
	return true, nil
}

// ============================================================================
// Sales
// ============================================================================

func (q *queries) InsertSale(_ context.Context, s *core.Sale) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.sales[s.ID]; ok {
		return fmt.Errorf("%w: sale id %s", core.ErrDuplicate, s.ID)
	}
	for _, other := range q.d.sales {
		if other.ReceiptNumber == s.ReceiptNumber {
			return fmt.Errorf("%w: receipt %s", core.ErrDuplicate, s.ReceiptNumber)
		}
	}
	if _, ok := q.d.customers[s.CustomerID]; !ok {
		return fmt.Errorf("%w: customer %s does not exist", core.ErrReferenced, s.CustomerID)
	}
	if _, ok := q.d.sellers[s.SellerID]; !ok {
		return fmt.Errorf("%w: seller %s does not exist", core.ErrReferenced, s.SellerID)
	}
	stored := *s
	stored.Items = nil
	q.d.sales[s.ID] = stored
	return nil
}

func (q *queries) InsertSaleItem(_ context.Context, it *core.SaleItem) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.d.sales[it.SaleID]; !ok {
		return fmt.Errorf("%w: sale %s does not exist", core.ErrReferenced, it.SaleID)
	}
	if _, ok := q.d.products[it.ProductID]; !ok {
		return fmt.Errorf("%w: product %s does not exist", core.ErrReferenced, it.ProductID)
	}
	q.d.saleItems[it.SaleID] = append(slices.Clip(q.d.saleItems[it.SaleID]), *it)
	return nil
}

func (q *queries) GetSale(_ context.Context, id string) (*core.Sale, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	s, ok := q.d.sales[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &s, nil
}

// ListSales returns newest first.
func (q *queries) ListSales(_ context.Context, opts core.ListOptions) ([]core.Sale, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	return page(q.d.sales, opts, func(s core.Sale) []string { return []string{s.ReceiptNumber} },
		func(a, b core.Sale) int {
			if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		}), nil
}

func (q *queries) ListSaleItems(_ context.Context, saleID string) ([]core.SaleItem, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	items := slices.Clone(q.d.saleItems[saleID])
	if items == nil {
		items = []core.SaleItem{}
	}
	slices.SortFunc(items, func(a, b core.SaleItem) int { return cmp.Compare(a.Line, b.Line) })
	return items, nil
}

// page filters by a case-insensitive substring on any of the search fields,
// sorts, then applies offset and limit. It never returns nil.
func page[T any](m map[string]T, opts core.ListOptions, fields func(T) []string, order func(a, b T) int) []T {
	needle := strings.ToLower(opts.Search)
	all := make([]T, 0, len(m))
	for _, v := range m {
		if needle == "" || matches(fields(v), needle) {
			all = append(all, v)
		}
	}
	slices.SortFunc(all, order)

	if opts.Offset >= len(all) {
		return []T{}
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all
}

func matches(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// byName orders by name then id, matching the SQL stores.
func byName[T any](key func(T) (string, string)) func(a, b T) int {
	return func(a, b T) int {
		an, aid := key(a)
		bn, bid := key(b)
		if c := strings.Compare(an, bn); c != 0 {
			return c
		}
		return strings.Compare(aid, bid)
	}
}
