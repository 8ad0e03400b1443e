package core

import (
	"context"
	"strconv"
	"time"
)

func init() {
	registerSuppliers()
	registerCustomers()
	registerSellers()
	registerProducts()
	registerSales()
}

func registerSuppliers() {
	mapping := []ColumnMapping{
		{Header: "Name", Field: "name"},
		{Header: "Phone", Field: "phone"},
		{Header: "Email", Field: "email"},
	}
	RegisterEntity(EntityDefinition{
		Key:     "suppliers",
		Label:   "Suppliers",
		Mapping: mapping,
		parse: importer(mapping, func(row Row) (SupplierInput, error) {
			in := SupplierInput{Name: row["Name"], Phone: row["Phone"], Email: row["Email"]}
			return in, in.validate()
		}, func(ctx context.Context, s *Service, in SupplierInput) error {
			_, err := s.CreateSupplier(ctx, in)
			return err
		}),
		export: func(ctx context.Context, s *Service) ([]ExportRecord, error) {
			rows, err := listAll(ctx, s.ListSuppliers)
			if err != nil {
				return nil, err
			}
			out := make([]ExportRecord, len(rows))
			for i, r := range rows {
				out[i] = ExportRecord{"name": r.Name, "phone": r.Phone, "email": r.Email}
			}
			return out, nil
		},
	})
}

func registerCustomers() {
	mapping := []ColumnMapping{
		{Header: "Name", Field: "name"},
		{Header: "Phone", Field: "phone"},
		{Header: "Email", Field: "email"},
	}
	RegisterEntity(EntityDefinition{
		Key:     "customers",
		Label:   "Customers",
		Mapping: mapping,
		parse: importer(mapping, func(row Row) (CustomerInput, error) {
			in := CustomerInput{Name: row["Name"], Phone: row["Phone"], Email: row["Email"]}
			return in, in.validate()
		}, func(ctx context.Context, s *Service, in CustomerInput) error {
			_, err := s.CreateCustomer(ctx, in)
			return err
		}),
		export: func(ctx context.Context, s *Service) ([]ExportRecord, error) {
			rows, err := listAll(ctx, s.ListCustomers)
			if err != nil {
				return nil, err
			}
			out := make([]ExportRecord, len(rows))
			for i, r := range rows {
				out[i] = ExportRecord{"name": r.Name, "phone": r.Phone, "email": r.Email}
			}
			return out, nil
		},
	})
}

func registerSellers() {
	mapping := []ColumnMapping{
		{Header: "Name", Field: "name"},
		{Header: "Email", Field: "email"},
	}
	RegisterEntity(EntityDefinition{
		Key:     "sellers",
		Label:   "Sellers",
		Mapping: mapping,
		parse: importer(mapping, func(row Row) (SellerInput, error) {
			in := SellerInput{Name: row["Name"], Email: row["Email"]}
			return in, in.validate()
		}, func(ctx context.Context, s *Service, in SellerInput) error {
			_, err := s.CreateSeller(ctx, in)
			return err
		}),
		export: func(ctx context.Context, s *Service) ([]ExportRecord, error) {
			rows, err := listAll(ctx, s.ListSellers)
			if err != nil {
				return nil, err
			}
			out := make([]ExportRecord, len(rows))
			for i, r := range rows {
				out[i] = ExportRecord{"name": r.Name, "email": r.Email}
			}
			return out, nil
		},
	})
}

// productMapping is shared by import, export and the template download.
var productMapping = []ColumnMapping{
	{Header: "Stock Code", Field: "stockCode"},
	{Header: "Name", Field: "name"},
	{Header: "Category", Field: "category"},
	{Header: "Buying Price", Field: "buyingPrice"},
	{Header: "Selling Price", Field: "sellingPrice"},
	{Header: "Quantity", Field: "quantity"},
}

// productFromRow converts one CSV row. Cell errors are reported in column order.
func productFromRow(row Row) (ProductInput, error) {
	var in ProductInput
	var err error

	if in.StockCode, err = RequireNonEmpty(row["Stock Code"], "Stock Code"); err != nil {
		return in, err
	}
	if in.Name, err = RequireNonEmpty(row["Name"], "Name"); err != nil {
		return in, err
	}
	in.Category = row["Category"]
	if in.BuyingPrice, err = ParseNonNegativeDecimal(row["Buying Price"], "Buying Price"); err != nil {
		return in, err
	}
	if in.SellingPrice, err = ParseNonNegativeDecimal(row["Selling Price"], "Selling Price"); err != nil {
		return in, err
	}
	if in.Quantity, err = ParseNonNegativeWholeNumber(row["Quantity"], "Quantity"); err != nil {
		return in, err
	}
	return in, nil
}

func registerProducts() {
	RegisterEntity(EntityDefinition{
		Key:     "products",
		Label:   "Products",
		Mapping: productMapping,
		parse: importer(productMapping, productFromRow, func(ctx context.Context, s *Service, in ProductInput) error {
			_, err := s.CreateProduct(ctx, in)
			return err
		}),
		export: func(ctx context.Context, s *Service) ([]ExportRecord, error) {
			rows, err := listAll(ctx, s.ListProducts)
			if err != nil {
				return nil, err
			}
			out := make([]ExportRecord, len(rows))
			for i, p := range rows {
				out[i] = ExportRecord{
					"stockCode":    p.StockCode,
					"name":         p.Name,
					"category":     p.Category,
					"buyingPrice":  p.BuyingPrice.StringFixed(2),
					"sellingPrice": p.SellingPrice.StringFixed(2),
					"quantity":     strconv.Itoa(p.Quantity),
				}
			}
			return out, nil
		},
	})
}

func registerSales() {
	RegisterEntity(EntityDefinition{
		Key:   "sales",
		Label: "Sales",
		Columns: []ExportColumn{
			{Field: "receiptNumber", Label: "Receipt Number"},
			{Field: "date", Label: "Date"},
			{Field: "customerId", Label: "Customer ID"},
			{Field: "sellerId", Label: "Seller ID"},
			{Field: "subtotal", Label: "Subtotal"},
			{Field: "discount", Label: "Discount"},
			{Field: "discountType", Label: "Discount Type"},
			{Field: "total", Label: "Total"},
			{Field: "paymentMethod", Label: "Payment Method"},
		},
		export: func(ctx context.Context, s *Service) ([]ExportRecord, error) {
			rows, err := listAll(ctx, s.ListSales)
			if err != nil {
				return nil, err
			}
			out := make([]ExportRecord, len(rows))
			for i, sale := range rows {
				out[i] = ExportRecord{
					"receiptNumber": sale.ReceiptNumber,
					"date":          time.UnixMilli(sale.CreatedAt).UTC().Format(time.RFC3339),
					"customerId":    sale.CustomerID,
					"sellerId":      sale.SellerID,
					"subtotal":      sale.Subtotal.StringFixed(2),
					"discount":      sale.Discount.StringFixed(2),
					"discountType":  string(sale.DiscountType),
					"total":         sale.Total.StringFixed(2),
					"paymentMethod": sale.PaymentMethod,
				}
			}
			return out, nil
		},
	})
}

// listAll pages through a list operation until a short page is returned.
func listAll[T any](ctx context.Context, list func(context.Context, ListOptions) ([]T, error)) ([]T, error) {
	var all []T
	opts := ListOptions{Limit: MaxListLimit}
	for {
		page, err := list(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < opts.Limit {
			return all, nil
		}
		opts.Offset += len(page)
	}
}
