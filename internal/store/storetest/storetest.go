// Package storetest is a conformance suite run against every core.Store
// backend. It drives the stores through core.Service so the sale, import
// and referential-integrity behavior is checked end to end.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/stockpos/internal/core"
)

// Factory returns an empty, migrated store. The suite closes it.
type Factory func(t *testing.T) core.Store

// Run executes the suite.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, f *fixture)
	}{
		{"CRUDRoundTrip", testCRUDRoundTrip},
		{"NotFound", testNotFound},
		{"DuplicateStockCode", testDuplicateStockCode},
		{"UnknownSupplier", testUnknownSupplier},
		{"ListSearchAndPaging", testListSearchAndPaging},
		{"SaleDecrementsStock", testSaleDecrementsStock},
		{"SaleInsufficientStock", testSaleInsufficientStock},
		{"SaleAggregatesDuplicateLines", testSaleAggregatesDuplicateLines},
		{"SaleUnknownProduct", testSaleUnknownProduct},
		{"SaleUnknownCustomer", testSaleUnknownCustomer},
		{"SaleDiscounts", testSaleDiscounts},
		{"SaleSnapshotsSurviveProductEdit", testSaleSnapshots},
		{"DeleteReferencedProduct", testDeleteReferencedProduct},
		{"DeleteReferencedParties", testDeleteReferencedParties},
		{"ImportContinuesPastBadRow", testImportContinuesPastBadRow},
		{"ImportDuplicateStockCode", testImportDuplicateStockCode},
		{"SaleDiscountRounded", testSaleDiscountRounded},
		{"ConcurrentSalesDoNotOversell", testConcurrentSales},
		{"PatchAfterSaleKeepsStock", testPatchAfterSaleKeepsStock},
		{"ConcurrentSalesAndPatches", testConcurrentSalesAndPatches},
		{"Receipt", testReceipt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newStore(t)
			t.Cleanup(func() { st.Close() })
			tt.fn(t, newFixture(t, st))
		})
	}
}

type fixture struct {
	svc      *core.Service
	store    core.Store
	customer *core.Customer
	seller   *core.Seller
}

func newFixture(t *testing.T, st core.Store) *fixture {
	t.Helper()
	ctx := context.Background()
	svc := core.NewService(st)

	cust, err := svc.CreateCustomer(ctx, core.CustomerInput{Name: "Walk-in"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	sel, err := svc.CreateSeller(ctx, core.SellerInput{Name: "Dana", Email: "dana@example.com"})
	if err != nil {
		t.Fatalf("CreateSeller: %v", err)
	}
	return &fixture{svc: svc, store: st, customer: cust, seller: sel}
}

func (f *fixture) product(t *testing.T, code string, price string, qty int) *core.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), core.ProductInput{
		StockCode:    code,
		Name:         "Item " + code,
		BuyingPrice:  decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		SellingPrice: decimal.RequireFromString(price),
		Quantity:     qty,
	})
	if err != nil {
		t.Fatalf("CreateProduct(%s): %v", code, err)
	}
	return p
}

func (f *fixture) sale(items ...core.LineItem) core.SaleRequest {
	return core.SaleRequest{
		CustomerID:    f.customer.ID,
		SellerID:      f.seller.ID,
		Items:         items,
		PaymentMethod: "cash",
	}
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	p, err := f.svc.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	return p.Quantity
}

// ============================================================================
// CRUD
// ============================================================================

func testCRUDRoundTrip(t *testing.T, f *fixture) {
	ctx := context.Background()

	sup, err := f.svc.CreateSupplier(ctx, core.SupplierInput{Name: "Acme, Inc", Email: "sales@acme.test"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	if sup.ID == "" || sup.CreatedAt == 0 {
		t.Errorf("CreateSupplier did not assign id/created_at: %+v", sup)
	}

	p, err := f.svc.CreateProduct(ctx, core.ProductInput{
		StockCode:    "SKU-1",
		Name:         "Widget",
		Category:     "tools",
		BuyingPrice:  decimal.RequireFromString("4.25"),
		SellingPrice: decimal.RequireFromString("9.99"),
		Quantity:     7,
		SupplierID:   &sup.ID,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	got, err := f.svc.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.StockCode != "SKU-1" || got.Quantity != 7 || got.SupplierID == nil || *got.SupplierID != sup.ID {
		t.Errorf("GetProduct = %+v", got)
	}
	if !got.SellingPrice.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("SellingPrice = %s, want 9.99", got.SellingPrice)
	}

	name := "Widget Pro"
	qty := 3
	upd, err := f.svc.UpdateProduct(ctx, p.ID, core.ProductPatch{Name: &name, Quantity: &qty})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if upd.Name != "Widget Pro" || upd.Quantity != 3 || upd.StockCode != "SKU-1" {
		t.Errorf("UpdateProduct = %+v", upd)
	}

	clear := ""
	upd, err = f.svc.UpdateProduct(ctx, p.ID, core.ProductPatch{SupplierID: &clear})
	if err != nil {
		t.Fatalf("UpdateProduct clear supplier: %v", err)
	}
	if upd.SupplierID != nil {
		t.Errorf("SupplierID = %v, want nil", *upd.SupplierID)
	}

	if err := f.svc.DeleteSupplier(ctx, sup.ID); err != nil {
		t.Fatalf("DeleteSupplier after unlink: %v", err)
	}
	if err := f.svc.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := f.svc.GetProduct(ctx, p.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetProduct after delete: err = %v, want ErrNotFound", err)
	}
}

func testNotFound(t *testing.T, f *fixture) {
	ctx := context.Background()
	name := "x"

	checks := []struct {
		name string
		err  error
	}{
		{"get supplier", second(f.svc.GetSupplier(ctx, "missing"))},
		{"get customer", second(f.svc.GetCustomer(ctx, "missing"))},
		{"get seller", second(f.svc.GetSeller(ctx, "missing"))},
		{"get product", second(f.svc.GetProduct(ctx, "missing"))},
		{"get sale", second(f.svc.GetSale(ctx, "missing"))},
		{"update customer", second(f.svc.UpdateCustomer(ctx, "missing", core.CustomerPatch{Name: &name}))},
		{"delete seller", f.svc.DeleteSeller(ctx, "missing")},
		{"delete product", f.svc.DeleteProduct(ctx, "missing")},
	}
	for _, c := range checks {
		if !errors.Is(c.err, core.ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", c.name, c.err)
		}
	}
}

func second[T any](_ T, err error) error { return err }

func testDuplicateStockCode(t *testing.T, f *fixture) {
	f.product(t, "DUP", "1.00", 1)
	_, err := f.svc.CreateProduct(context.Background(), core.ProductInput{
		StockCode: "DUP", Name: "Other", SellingPrice: decimal.NewFromInt(1),
	})
	if !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}

	other := f.product(t, "OTHER", "1.00", 1)
	code := "DUP"
	if _, err := f.svc.UpdateProduct(context.Background(), other.ID, core.ProductPatch{StockCode: &code}); !errors.Is(err, core.ErrDuplicate) {
		t.Errorf("update to taken code: err = %v, want ErrDuplicate", err)
	}
}

func testUnknownSupplier(t *testing.T, f *fixture) {
	missing := "no-such-supplier"
	_, err := f.svc.CreateProduct(context.Background(), core.ProductInput{
		StockCode: "S1", Name: "x", SellingPrice: decimal.NewFromInt(1), SupplierID: &missing,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func testListSearchAndPaging(t *testing.T, f *fixture) {
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		f.product(t, fmt.Sprintf("LS-%d", i), "1.00", 1)
	}
	if _, err := f.svc.CreateProduct(ctx, core.ProductInput{
		StockCode: "ZZ-9", Name: "Blue Mug", SellingPrice: decimal.NewFromInt(3),
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	all, err := f.svc.ListProducts(ctx, core.ListOptions{})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("len = %d, want 6", len(all))
	}
	if all[0].Name != "Blue Mug" {
		t.Errorf("first = %q, want Blue Mug (name order)", all[0].Name)
	}

	byName, _ := f.svc.ListProducts(ctx, core.ListOptions{Search: "mug"})
	if len(byName) != 1 || byName[0].StockCode != "ZZ-9" {
		t.Errorf("search by name = %+v", byName)
	}
	byCode, _ := f.svc.ListProducts(ctx, core.ListOptions{Search: "ls-"})
	if len(byCode) != 5 {
		t.Errorf("search by stock code: len = %d, want 5", len(byCode))
	}

	paged, _ := f.svc.ListProducts(ctx, core.ListOptions{Limit: 2, Offset: 4})
	if len(paged) != 2 || paged[0].ID != all[4].ID {
		t.Errorf("page = %+v, want items 5-6", paged)
	}

	none, err := f.svc.ListSuppliers(ctx, core.ListOptions{})
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("empty list = %v, %v; want empty non-nil slice", none, err)
	}
}

// ============================================================================
// Sales
// ============================================================================

func testSaleDecrementsStock(t *testing.T, f *fixture) {
	ctx := context.Background()
	a := f.product(t, "A", "10.00", 10)
	b := f.product(t, "B", "2.50", 4)

	sale, err := f.svc.RecordSale(ctx, f.sale(
		core.LineItem{ProductID: a.ID, Quantity: 3},
		core.LineItem{ProductID: b.ID, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	if got := f.quantity(t, a.ID); got != 7 {
		t.Errorf("A quantity = %d, want 7", got)
	}
	if got := f.quantity(t, b.ID); got != 2 {
		t.Errorf("B quantity = %d, want 2", got)
	}

	stored, err := f.svc.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(stored.Items))
	}
	sum := decimal.Zero
	for _, it := range stored.Items {
		sum = sum.Add(it.Subtotal)
	}
	if !sum.Equal(stored.Subtotal) {
		t.Errorf("sum of item subtotals %s != sale subtotal %s", sum, stored.Subtotal)
	}
	if !stored.Subtotal.Equal(decimal.RequireFromString("35")) {
		t.Errorf("subtotal = %s, want 35.00", stored.Subtotal)
	}
	if stored.Items[0].StockCode != "A" || stored.Items[1].StockCode != "B" {
		t.Errorf("items out of cart order: %s, %s", stored.Items[0].StockCode, stored.Items[1].StockCode)
	}
	if !strings.HasPrefix(stored.ReceiptNumber, "RCP-") {
		t.Errorf("receipt = %q", stored.ReceiptNumber)
	}

	list, err := f.svc.ListSales(ctx, core.ListOptions{Search: stored.ReceiptNumber})
	if err != nil || len(list) != 1 {
		t.Errorf("ListSales by receipt = %v, %v", list, err)
	}
}

func testSaleInsufficientStock(t *testing.T, f *fixture) {
	ctx := context.Background()
	a := f.product(t, "LOW", "5.00", 3)
	b := f.product(t, "OK", "1.00", 10)

	_, err := f.svc.RecordSale(ctx, f.sale(
		core.LineItem{ProductID: b.ID, Quantity: 1},
		core.LineItem{ProductID: a.ID, Quantity: 5},
	))
	var stockErr *core.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if len(stockErr.StockCodes) != 1 || stockErr.StockCodes[0] != "LOW" {
		t.Errorf("StockCodes = %v, want [LOW]", stockErr.StockCodes)
	}

	if got := f.quantity(t, a.ID); got != 3 {
		t.Errorf("LOW quantity = %d, want 3", got)
	}
	if got := f.quantity(t, b.ID); got != 10 {
		t.Errorf("OK quantity = %d, want 10 (nothing written)", got)
	}
	sales, _ := f.svc.ListSales(ctx, core.ListOptions{})
	if len(sales) != 0 {
		t.Errorf("sales = %d, want 0", len(sales))
	}
}

func testSaleAggregatesDuplicateLines(t *testing.T, f *fixture) {
	a := f.product(t, "AGG", "1.00", 4)
	_, err := f.svc.RecordSale(context.Background(), f.sale(
		core.LineItem{ProductID: a.ID, Quantity: 3},
		core.LineItem{ProductID: a.ID, Quantity: 2},
	))
	if !core.IsInsufficientStock(err) {
		t.Fatalf("err = %v, want insufficient stock for 5 of 4", err)
	}
	if got := f.quantity(t, a.ID); got != 4 {
		t.Errorf("quantity = %d, want 4", got)
	}
}

func testSaleUnknownProduct(t *testing.T, f *fixture) {
	a := f.product(t, "REAL", "1.00", 4)
	_, err := f.svc.RecordSale(context.Background(), f.sale(
		core.LineItem{ProductID: a.ID, Quantity: 1},
		core.LineItem{ProductID: "ghost", Quantity: 1},
	))
	var nf *core.ProductNotFoundError
	if !errors.As(err, &nf) || nf.ProductID != "ghost" {
		t.Fatalf("err = %v, want ProductNotFoundError(ghost)", err)
	}
	if got := f.quantity(t, a.ID); got != 4 {
		t.Errorf("quantity = %d, want 4", got)
	}
}

func testSaleUnknownCustomer(t *testing.T, f *fixture) {
	a := f.product(t, "C1", "1.00", 4)
	req := f.sale(core.LineItem{ProductID: a.ID, Quantity: 1})
	req.CustomerID = "nobody"
	if _, err := f.svc.RecordSale(context.Background(), req); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func testSaleDiscounts(t *testing.T, f *fixture) {
	ctx := context.Background()
	a := f.product(t, "D", "100.00", 10)

	tests := []struct {
		name     string
		discount string
		dt       core.DiscountType
		want     string
	}{
		{"percentage", "10", core.DiscountPercentage, "180"},
		{"fixed", "25.50", core.DiscountFixed, "174.5"},
		{"fixed above subtotal floors at zero", "250", core.DiscountFixed, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.sale(core.LineItem{ProductID: a.ID, Quantity: 2})
			req.Discount = decimal.RequireFromString(tt.discount)
			req.DiscountType = tt.dt
			sale, err := f.svc.RecordSale(ctx, req)
			if err != nil {
				t.Fatalf("RecordSale: %v", err)
			}
			if !sale.Total.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("total = %s, want %s", sale.Total, tt.want)
			}
			stored, err := f.svc.GetSale(ctx, sale.ID)
			if err != nil {
				t.Fatalf("GetSale: %v", err)
			}
			if !stored.Total.Equal(sale.Total) || stored.DiscountType != tt.dt {
				t.Errorf("stored = %s/%s, want %s/%s", stored.Total, stored.DiscountType, sale.Total, tt.dt)
			}
		})
	}
}

func testSaleDiscountRounded(t *testing.T, f *fixture) {
	ctx := context.Background()
	a := f.product(t, "DR", "100.00", 10)

	tests := []struct {
		name     string
		discount string
		dt       core.DiscountType
		want     string
		total    string
	}{
		{"fixed", "12.345", core.DiscountFixed, "12.35", "87.65"},
		{"percentage", "12.345", core.DiscountPercentage, "12.35", "87.65"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.sale(core.LineItem{ProductID: a.ID, Quantity: 1})
			req.Discount = decimal.RequireFromString(tt.discount)
			req.DiscountType = tt.dt
			sale, err := f.svc.RecordSale(ctx, req)
			if err != nil {
				t.Fatalf("RecordSale: %v", err)
			}
			stored, err := f.svc.GetSale(ctx, sale.ID)
			if err != nil {
				t.Fatalf("GetSale: %v", err)
			}
			want := decimal.RequireFromString(tt.want)
			if !sale.Discount.Equal(want) || !stored.Discount.Equal(want) {
				t.Errorf("discount returned %s, stored %s, want %s", sale.Discount, stored.Discount, want)
			}
			if !stored.Total.Equal(decimal.RequireFromString(tt.total)) {
				t.Errorf("total = %s, want %s", stored.Total, tt.total)
			}
		})
	}
}

func testSaleSnapshots(t *testing.T, f *fixture) {
	ctx := context.Background()
	a := f.product(t, "SNAP", "8.00", 5)
	sale, err := f.svc.RecordSale(ctx, f.sale(core.LineItem{ProductID: a.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	name := "Renamed"
	price := decimal.RequireFromString("99")
	if _, err := f.svc.UpdateProduct(ctx, a.ID, core.ProductPatch{Name: &name, SellingPrice: &price}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	stored, err := f.svc.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	it := stored.Items[0]
	if it.ProductName != "Item SNAP" || !it.UnitPrice.Equal(decimal.NewFromInt(8)) {
		t.Errorf("snapshot changed: %+v", it)
	}
}

func testDeleteReferencedProduct(t *testing.T, f *fixture) {
	ctx := context.Background()
	a := f.product(t, "REF", "1.00", 5)
	if _, err := f.svc.RecordSale(ctx, f.sale(core.LineItem{ProductID: a.ID, Quantity: 1})); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	err := f.svc.DeleteProduct(ctx, a.ID)
	if !errors.Is(err, core.ErrReferenced) {
		t.Fatalf("err = %v, want ErrReferenced", err)
	}
	if _, err := f.svc.GetProduct(ctx, a.ID); err != nil {
		t.Errorf("product gone after failed delete: %v", err)
	}
}

func testDeleteReferencedParties(t *testing.T, f *fixture) {
	ctx := context.Background()
	sup, err := f.svc.CreateSupplier(ctx, core.SupplierInput{Name: "Supplies Co"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	if _, err := f.svc.CreateProduct(ctx, core.ProductInput{
		StockCode: "P-SUP", Name: "x", SellingPrice: decimal.NewFromInt(1), Quantity: 2, SupplierID: &sup.ID,
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	a := f.product(t, "P-SALE", "1.00", 2)
	if _, err := f.svc.RecordSale(ctx, f.sale(core.LineItem{ProductID: a.ID, Quantity: 1})); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	if err := f.svc.DeleteSupplier(ctx, sup.ID); !errors.Is(err, core.ErrReferenced) {
		t.Errorf("DeleteSupplier: err = %v, want ErrReferenced", err)
	}
	if err := f.svc.DeleteCustomer(ctx, f.customer.ID); !errors.Is(err, core.ErrReferenced) {
		t.Errorf("DeleteCustomer: err = %v, want ErrReferenced", err)
	}
	if err := f.svc.DeleteSeller(ctx, f.seller.ID); !errors.Is(err, core.ErrReferenced) {
		t.Errorf("DeleteSeller: err = %v, want ErrReferenced", err)
	}
}

// ============================================================================
// Import
// ============================================================================

func testImportContinuesPastBadRow(t *testing.T, f *fixture) {
	var b strings.Builder
	b.WriteString("Stock Code,Name,Category,Buying Price,Selling Price,Quantity\n")
	for i := 1; i <= 10; i++ {
		price := "2.50"
		if i == 4 {
			price = "abc"
		}
		fmt.Fprintf(&b, "IMP-%02d,Item %d,misc,1.00,%s,%d\n", i, i, price, i)
	}

	res, err := f.svc.Import(context.Background(), "products", "products.csv", []byte(b.String()))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 9 || res.Failed != 1 || res.TotalRows != 10 {
		t.Errorf("imported=%d failed=%d total=%d, want 9/1/10", res.Imported, res.Failed, res.TotalRows)
	}
	if len(res.RowErrors) != 1 || !strings.Contains(res.RowErrors[0], "row 5") {
		t.Errorf("RowErrors = %v, want one error naming row 5", res.RowErrors)
	}

	all, err := f.svc.ListProducts(context.Background(), core.ListOptions{Search: "IMP-"})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(all) != 9 {
		t.Errorf("stored products = %d, want 9", len(all))
	}
	for _, p := range all {
		if p.StockCode == "IMP-04" {
			t.Error("row with bad price was stored")
		}
	}
}

func testImportDuplicateStockCode(t *testing.T, f *fixture) {
	f.product(t, "EXISTING", "1.00", 1)
	csv := "Stock Code,Name,Category,Buying Price,Selling Price,Quantity\n" +
		"NEW-1,New,misc,1,2,3\n" +
		"EXISTING,Clash,misc,1,2,3\n" +
		"NEW-2,New 2,misc,1,2,3\n"

	res, err := f.svc.Import(context.Background(), "products", "p.csv", []byte(csv))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 2 || len(res.CreateErrors) != 1 {
		t.Fatalf("imported=%d createErrors=%v, want 2 and one error", res.Imported, res.CreateErrors)
	}
	if !strings.HasPrefix(res.CreateErrors[0], "Error on row 3:") || !strings.Contains(res.CreateErrors[0], "DB001") {
		t.Errorf("CreateErrors[0] = %q", res.CreateErrors[0])
	}
}

// ============================================================================
// Concurrency and receipts
// ============================================================================

func testConcurrentSales(t *testing.T, f *fixture) {
	a := f.product(t, "RACE", "1.00", 5)

	const buyers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordSale(context.Background(), f.sale(core.LineItem{ProductID: a.ID, Quantity: 1}))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !core.IsInsufficientStock(err) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 5 {
		t.Errorf("succeeded = %d, want 5", succeeded)
	}
	if got := f.quantity(t, a.ID); got != 0 {
		t.Errorf("quantity = %d, want 0", got)
	}
}

// saleFirstStore records a sale right before the next transaction it opens.
type saleFirstStore struct {
	core.Store
	before func()
}

func (s *saleFirstStore) InTx(ctx context.Context, fn func(q core.Queries) error) error {
	if hook := s.before; hook != nil {
		s.before = nil
		hook()
	}
	return s.Store.InTx(ctx, fn)
}

func testPatchAfterSaleKeepsStock(t *testing.T, f *fixture) {
	ctx := context.Background()
	a := f.product(t, "PATCH", "5.00", 10)

	st := &saleFirstStore{Store: f.store}
	editor := core.NewService(st)
	st.before = func() {
		if _, err := f.svc.RecordSale(ctx, f.sale(core.LineItem{ProductID: a.ID, Quantity: 4})); err != nil {
			t.Fatalf("RecordSale: %v", err)
		}
	}

	name := "Widget v2"
	got, err := editor.UpdateProduct(ctx, a.ID, core.ProductPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if st.before != nil {
		t.Fatal("UpdateProduct did not open a transaction")
	}
	if got.Quantity != 6 || got.Name != name {
		t.Errorf("returned %s qty %d, want %s qty 6", got.Name, got.Quantity, name)
	}
	if q := f.quantity(t, a.ID); q != 6 {
		t.Errorf("stored quantity = %d, want 6", q)
	}
}

func testConcurrentSalesAndPatches(t *testing.T, f *fixture) {
	ctx := context.Background()
	a := f.product(t, "MIX", "1.00", 50)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := f.svc.RecordSale(ctx, f.sale(core.LineItem{ProductID: a.ID, Quantity: 1})); err != nil {
				t.Errorf("RecordSale: %v", err)
			}
		}()
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("Renamed %d", i)
			if _, err := f.svc.UpdateProduct(ctx, a.ID, core.ProductPatch{Name: &name}); err != nil {
				t.Errorf("UpdateProduct: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := f.quantity(t, a.ID); got != 50-workers {
		t.Errorf("quantity = %d, want %d", got, 50-workers)
	}
}

func testReceipt(t *testing.T, f *fixture) {
	ctx := context.Background()
	a := f.product(t, "RCP", "4.00", 5)
	sale, err := f.svc.RecordSale(ctx, f.sale(core.LineItem{ProductID: a.ID, Quantity: 2}))
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	r, err := f.svc.Receipt(ctx, sale.ID)
	if err != nil {
		t.Fatalf("Receipt: %v", err)
	}
	if r.CustomerName != "Walk-in" || r.SellerName != "Dana" || len(r.Sale.Items) != 1 {
		t.Errorf("Receipt = %+v", r)
	}

	var b strings.Builder
	if err := r.WriteText(&b); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	for _, want := range []string{sale.ReceiptNumber, "Item RCP", "8.00", "Walk-in"} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("receipt text missing %q:\n%s", want, b.String())
		}
	}
}
