// Package schema holds the DDL for both SQL backends and the query text they
// share. Queries are written with ? placeholders; the PostgreSQL store
// rebinds them to $n.
package schema

import "github.com/JonMunkholm/stockpos/internal/core"

// SQLite stores money as TEXT so decimal values round-trip exactly.
var SQLite = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sellers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		stock_code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		buying_price TEXT NOT NULL,
		selling_price TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		supplier_id TEXT REFERENCES suppliers(id),
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		receipt_number TEXT NOT NULL UNIQUE,
		customer_id TEXT NOT NULL REFERENCES customers(id),
		seller_id TEXT NOT NULL REFERENCES sellers(id),
		subtotal TEXT NOT NULL,
		discount TEXT NOT NULL,
		discount_type TEXT NOT NULL,
		total TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id TEXT PRIMARY KEY,
		sale_id TEXT NOT NULL REFERENCES sales(id),
		line INTEGER NOT NULL,
		product_id TEXT NOT NULL REFERENCES products(id),
		product_name TEXT NOT NULL,
		stock_code TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		buying_price TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		subtotal TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_supplier ON products(supplier_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created ON sales(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_product ON sale_items(product_id)`,
}

// Postgres mirrors SQLite with NUMERIC money and BIGINT timestamps.
var Postgres = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sellers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		stock_code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		buying_price NUMERIC(12,2) NOT NULL,
		selling_price NUMERIC(12,2) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		supplier_id TEXT REFERENCES suppliers(id),
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		receipt_number TEXT NOT NULL UNIQUE,
		customer_id TEXT NOT NULL REFERENCES customers(id),
		seller_id TEXT NOT NULL REFERENCES sellers(id),
		subtotal NUMERIC(12,2) NOT NULL,
		discount NUMERIC(12,2) NOT NULL,
		discount_type TEXT NOT NULL,
		total NUMERIC(12,2) NOT NULL,
		payment_method TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id TEXT PRIMARY KEY,
		sale_id TEXT NOT NULL REFERENCES sales(id),
		line INTEGER NOT NULL,
		product_id TEXT NOT NULL REFERENCES products(id),
		product_name TEXT NOT NULL,
		stock_code TEXT NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		buying_price NUMERIC(12,2) NOT NULL,
		quantity INTEGER NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_supplier ON products(supplier_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created ON sales(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_product ON sale_items(product_id)`,
}

const (
	supplierCols = `id, name, phone, email, created_at`
	customerCols = `id, name, phone, email, created_at`
	sellerCols   = `id, name, email, created_at`
	productCols  = `id, stock_code, name, category, buying_price, selling_price, quantity, supplier_id, created_at`
	saleCols     = `id, receipt_number, customer_id, seller_id, subtotal, discount, discount_type, total, payment_method, created_at`
	saleItemCols = `id, sale_id, line, product_id, product_name, stock_code, unit_price, buying_price, quantity, subtotal`
)

// List queries take (pattern, pattern, limit, offset); an empty pattern
// disables the search filter.
const (
	InsertSupplier = `INSERT INTO suppliers (` + supplierCols + `) VALUES (?, ?, ?, ?, ?)`
	GetSupplier    = `SELECT ` + supplierCols + ` FROM suppliers WHERE id = ?`
	ListSuppliers  = `SELECT ` + supplierCols + ` FROM suppliers
		WHERE (? = '' OR lower(name) LIKE ?)
		ORDER BY name, id LIMIT ? OFFSET ?`
	UpdateSupplier = `UPDATE suppliers SET name = ?, phone = ?, email = ? WHERE id = ?`
	DeleteSupplier = `DELETE FROM suppliers WHERE id = ?`

	InsertCustomer = `INSERT INTO customers (` + customerCols + `) VALUES (?, ?, ?, ?, ?)`
	GetCustomer    = `SELECT ` + customerCols + ` FROM customers WHERE id = ?`
	ListCustomers  = `SELECT ` + customerCols + ` FROM customers
		WHERE (? = '' OR lower(name) LIKE ?)
		ORDER BY name, id LIMIT ? OFFSET ?`
	UpdateCustomer = `UPDATE customers SET name = ?, phone = ?, email = ? WHERE id = ?`
	DeleteCustomer = `DELETE FROM customers WHERE id = ?`

	InsertSeller = `INSERT INTO sellers (` + sellerCols + `) VALUES (?, ?, ?, ?)`
	GetSeller    = `SELECT ` + sellerCols + ` FROM sellers WHERE id = ?`
	ListSellers  = `SELECT ` + sellerCols + ` FROM sellers
		WHERE (? = '' OR lower(name) LIKE ?)
		ORDER BY name, id LIMIT ? OFFSET ?`
	UpdateSeller = `UPDATE sellers SET name = ?, email = ? WHERE id = ?`
	DeleteSeller = `DELETE FROM sellers WHERE id = ?`

	InsertProduct = `INSERT INTO products (` + productCols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	GetProduct    = `SELECT ` + productCols + ` FROM products WHERE id = ?`
	ListProducts  = `SELECT ` + productCols + ` FROM products
		WHERE (? = '' OR lower(name) LIKE ? OR lower(stock_code) LIKE ?)
		ORDER BY name, id LIMIT ? OFFSET ?`
	UpdateProduct = `UPDATE products SET stock_code = ?, name = ?, category = ?,
		buying_price = ?, selling_price = ?, quantity = ?, supplier_id = ? WHERE id = ?`
	DeleteProduct = `DELETE FROM products WHERE id = ?`

	// DecrementStock only matches while enough stock remains.
	DecrementStock = `UPDATE products SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`

	InsertSale = `INSERT INTO sales (` + saleCols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	GetSale    = `SELECT ` + saleCols + ` FROM sales WHERE id = ?`
	ListSales  = `SELECT ` + saleCols + ` FROM sales
		WHERE (? = '' OR lower(receipt_number) LIKE ?)
		ORDER BY created_at DESC, id LIMIT ? OFFSET ?`

	InsertSaleItem = `INSERT INTO sale_items (` + saleItemCols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	ListSaleItems  = `SELECT ` + saleItemCols + ` FROM sale_items WHERE sale_id = ? ORDER BY line`
)

// ListArgs builds the arguments for a list query with searchCols LIKE
// comparisons.
func ListArgs(opts core.ListOptions, searchCols int) []any {
	pattern := opts.SearchPattern()
	args := make([]any, 0, searchCols+3)
	args = append(args, pattern)
	for i := 0; i < searchCols; i++ {
		args = append(args, pattern)
	}
	return append(args, opts.Limit, opts.Offset)
}
