package core_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/store/memory"
)

// fakeRecorder captures domain events.
type fakeRecorder struct {
	mu       sync.Mutex
	sales    []decimal.Decimal
	failures []string
	imports  []string
}

func (r *fakeRecorder) SaleRecorded(total decimal.Decimal, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales = append(r.sales, total)
}

func (r *fakeRecorder) SaleFailed(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, reason)
}

func (r *fakeRecorder) ImportFinished(entity string, imported, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.imports = append(r.imports, fmt.Sprintf("%s:%d:%d", entity, imported, failed))
}

// collidingStore reports a receipt collision for the first n sale inserts.
type collidingStore struct {
	core.Store
	n int
}

func (s *collidingStore) InTx(ctx context.Context, fn func(q core.Queries) error) error {
	return s.Store.InTx(ctx, func(q core.Queries) error {
		return fn(&collidingQueries{Queries: q, s: s})
	})
}

type collidingQueries struct {
	core.Queries
	s *collidingStore
}

func (q *collidingQueries) InsertSale(ctx context.Context, sale *core.Sale) error {
	if q.s.n > 0 {
		q.s.n--
		return fmt.Errorf("%w: receipt_number", core.ErrDuplicate)
	}
	return q.Queries.InsertSale(ctx, sale)
}

type env struct {
	svc      *core.Service
	rec      *fakeRecorder
	customer string
	seller   string
	product  string
}

func setup(t *testing.T, st core.Store, opts ...core.Option) *env {
	t.Helper()
	ctx := context.Background()
	rec := &fakeRecorder{}
	svc := core.NewService(st, append([]core.Option{core.WithRecorder(rec)}, opts...)...)

	c, err := svc.CreateCustomer(ctx, core.CustomerInput{Name: "Walk-in"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	s, err := svc.CreateSeller(ctx, core.SellerInput{Name: "Dana", Email: "dana@example.com"})
	if err != nil {
		t.Fatalf("CreateSeller: %v", err)
	}
	p, err := svc.CreateProduct(ctx, core.ProductInput{
		StockCode: "A1", Name: "Apple", SellingPrice: decimal.RequireFromString("1.25"), Quantity: 10,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return &env{svc: svc, rec: rec, customer: c.ID, seller: s.ID, product: p.ID}
}

func (e *env) cart(qty int) core.SaleRequest {
	return core.SaleRequest{
		CustomerID: e.customer,
		SellerID:   e.seller,
		Items:      []core.LineItem{{ProductID: e.product, Quantity: qty}},
	}
}

// ============================================================================
// Sales
// ============================================================================

func TestRecordSale_EmptyCartWritesNothing(t *testing.T) {
	e := setup(t, memory.New())
	ctx := context.Background()

	_, err := e.svc.RecordSale(ctx, core.SaleRequest{CustomerID: e.customer, SellerID: e.seller})
	if !errors.Is(err, core.ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	sales, _ := e.svc.ListSales(ctx, core.ListOptions{})
	if len(sales) != 0 {
		t.Errorf("sales = %d, want 0", len(sales))
	}
	if len(e.rec.failures) != 1 || e.rec.failures[0] != "empty_cart" {
		t.Errorf("failures = %v", e.rec.failures)
	}
}

func TestRecordSale_FixedClockAndIDs(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var n int
	e := setup(t, memory.New(),
		core.WithClock(func() time.Time { return now }),
		core.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%03d", n) }),
	)

	sale, err := e.svc.RecordSale(context.Background(), e.cart(2))
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if sale.CreatedAt != now.UnixMilli() {
		t.Errorf("CreatedAt = %d, want %d", sale.CreatedAt, now.UnixMilli())
	}
	if !strings.HasPrefix(sale.ReceiptNumber, "RCP-20250102-030405-") {
		t.Errorf("ReceiptNumber = %q", sale.ReceiptNumber)
	}
	if sale.ID != "id-004" || sale.Items[0].ID != "id-005" || sale.Items[0].Line != 1 {
		t.Errorf("ids = %s / %s line %d", sale.ID, sale.Items[0].ID, sale.Items[0].Line)
	}
	if sale.PaymentMethod != "cash" || sale.DiscountType != core.DiscountFixed {
		t.Errorf("defaults = %q / %q", sale.PaymentMethod, sale.DiscountType)
	}
	if len(e.rec.sales) != 1 || !e.rec.sales[0].Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("recorded sales = %v", e.rec.sales)
	}
}

func TestRecordSale_UnitPriceOverride(t *testing.T) {
	e := setup(t, memory.New())
	req := e.cart(3)
	override := decimal.RequireFromString("0.999")
	req.Items[0].UnitPriceOverride = &override

	sale, err := e.svc.RecordSale(context.Background(), req)
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if !sale.Items[0].UnitPrice.Equal(decimal.NewFromInt(1)) || !sale.Subtotal.Equal(decimal.NewFromInt(3)) {
		t.Errorf("unit %s subtotal %s, want 1.00 and 3.00", sale.Items[0].UnitPrice, sale.Subtotal)
	}
}

func TestRecordSale_RetriesReceiptCollision(t *testing.T) {
	st := &collidingStore{Store: memory.New()}
	e := setup(t, st)
	st.n = 2

	sale, err := e.svc.RecordSale(context.Background(), e.cart(1))
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	p, _ := e.svc.GetProduct(context.Background(), e.product)
	if p.Quantity != 9 {
		t.Errorf("quantity = %d, want 9 (one decrement only)", p.Quantity)
	}
	if sale.ReceiptNumber == "" {
		t.Error("no receipt number")
	}
}

func TestRecordSale_ReceiptExhausted(t *testing.T) {
	st := &collidingStore{Store: memory.New()}
	e := setup(t, st)
	st.n = 3

	_, err := e.svc.RecordSale(context.Background(), e.cart(1))
	if !errors.Is(err, core.ErrReceiptExhausted) {
		t.Fatalf("err = %v, want ErrReceiptExhausted", err)
	}
	p, _ := e.svc.GetProduct(context.Background(), e.product)
	if p.Quantity != 10 {
		t.Errorf("quantity = %d, want 10", p.Quantity)
	}
	if e.rec.failures[len(e.rec.failures)-1] != "receipt" {
		t.Errorf("failures = %v", e.rec.failures)
	}
}

// ============================================================================
// Parties and products
// ============================================================================

func TestCreateValidation(t *testing.T) {
	e := setup(t, memory.New())
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
	}{
		{"supplier without name", second(e.svc.CreateSupplier(ctx, core.SupplierInput{Email: "a@b.co"}))},
		{"supplier bad email", second(e.svc.CreateSupplier(ctx, core.SupplierInput{Name: "A", Email: "nope"}))},
		{"customer without name", second(e.svc.CreateCustomer(ctx, core.CustomerInput{Phone: "1"}))},
		{"seller without email", second(e.svc.CreateSeller(ctx, core.SellerInput{Name: "B"}))},
		{"product negative price", second(e.svc.CreateProduct(ctx, core.ProductInput{
			StockCode: "X", Name: "x", SellingPrice: decimal.NewFromInt(-1),
		}))},
		{"product negative quantity", second(e.svc.CreateProduct(ctx, core.ProductInput{
			StockCode: "X", Name: "x", Quantity: -1,
		}))},
		{"product without stock code", second(e.svc.CreateProduct(ctx, core.ProductInput{Name: "x"}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !core.IsValidationError(tt.err) {
				t.Errorf("err = %v, want ValidationError", tt.err)
			}
		})
	}
}

func second[T any](_ T, err error) error { return err }

func TestCreateProduct_RoundsPrices(t *testing.T) {
	e := setup(t, memory.New())
	blank := "  "
	p, err := e.svc.CreateProduct(context.Background(), core.ProductInput{
		StockCode:    " B2 ",
		Name:         "Bread",
		BuyingPrice:  decimal.RequireFromString("1.005"),
		SellingPrice: decimal.RequireFromString("2.499"),
		SupplierID:   &blank,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if p.StockCode != "B2" || p.SupplierID != nil {
		t.Errorf("product = %+v", p)
	}
	if p.BuyingPrice.String() != "1.01" || p.SellingPrice.String() != "2.5" {
		t.Errorf("prices = %s / %s", p.BuyingPrice, p.SellingPrice)
	}
}

func TestUpdateParties(t *testing.T) {
	e := setup(t, memory.New())
	ctx := context.Background()

	phone := "555-0100"
	c, err := e.svc.UpdateCustomer(ctx, e.customer, core.CustomerPatch{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if c.Name != "Walk-in" || c.Phone != phone {
		t.Errorf("customer = %+v", c)
	}

	bad := "not-an-email"
	if _, err := e.svc.UpdateSeller(ctx, e.seller, core.SellerPatch{Email: &bad}); !core.IsValidationError(err) {
		t.Errorf("UpdateSeller bad email: err = %v", err)
	}
	s, _ := e.svc.GetSeller(ctx, e.seller)
	if s.Email != "dana@example.com" {
		t.Errorf("seller email changed to %q after failed update", s.Email)
	}
}

// ============================================================================
// Import and export
// ============================================================================

func TestImport_UnknownEntity(t *testing.T) {
	e := setup(t, memory.New())
	for _, entity := range []string{"widgets", "sales"} {
		if _, err := e.svc.Import(context.Background(), entity, "f.csv", []byte("x")); !errors.Is(err, core.ErrUnknownEntity) {
			t.Errorf("Import(%s): err = %v, want ErrUnknownEntity", entity, err)
		}
	}
}

func TestImport_HeaderRejected(t *testing.T) {
	e := setup(t, memory.New())
	res, err := e.svc.Import(context.Background(), "products", "p.csv", []byte("Code,Title\nA,B\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !res.Aborted() || len(res.HeaderErrors) != 3 || res.Imported != 0 {
		t.Errorf("result = %+v, want three capped header errors", res)
	}
	if len(e.rec.imports) != 0 {
		t.Errorf("rejected file reported as finished: %v", e.rec.imports)
	}
}

func TestImport_SuppliersWithQuotedCommas(t *testing.T) {
	e := setup(t, memory.New())
	ctx := context.Background()
	data := "\xEF\xBB\xBFName,Phone,Email\r\n\"Acme, Inc\",555,sales@acme.test\r\nBeta,,bad-email\r\n"

	res, err := e.svc.Import(ctx, "suppliers", "s.csv", []byte(data))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 1 || res.Failed != 1 {
		t.Fatalf("imported=%d failed=%d", res.Imported, res.Failed)
	}
	if res.RowErrors[0] != "Error on row 3: Email must be a valid email address" {
		t.Errorf("RowErrors = %q", res.RowErrors)
	}
	sups, _ := e.svc.ListSuppliers(ctx, core.ListOptions{})
	if len(sups) != 1 || sups[0].Name != "Acme, Inc" {
		t.Errorf("suppliers = %+v", sups)
	}
	if len(e.rec.imports) != 1 || e.rec.imports[0] != "suppliers:1:1" {
		t.Errorf("imports = %v", e.rec.imports)
	}
}

func TestImportStatus(t *testing.T) {
	e := setup(t, memory.New(), core.WithImportLimits(1, 20*time.Millisecond, time.Minute))

	status := e.svc.ImportStatus()
	if status.MaxConcurrent != 1 || status.Available != 1 || status.Active != 0 {
		t.Fatalf("status = %+v", status)
	}
	if err := e.svc.DrainImports(context.Background()); err != nil {
		t.Fatalf("DrainImports on idle limiter: %v", err)
	}
}

func TestExportProducts_ImportsBack(t *testing.T) {
	src := setup(t, memory.New())
	ctx := context.Background()

	var b strings.Builder
	if err := src.svc.Export(ctx, "products", &b); err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "Stock Code,Name,Category,Buying Price,Selling Price,Quantity\nA1,Apple,,0.00,1.25,10\n"
	if b.String() != want {
		t.Errorf("export = %q, want %q", b.String(), want)
	}

	dst := core.NewService(memory.New())
	res, err := dst.Import(ctx, "products", "export.csv", []byte(b.String()))
	if err != nil || res.Imported != 1 {
		t.Fatalf("re-import = %+v, %v", res, err)
	}
}

func TestExportSales(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	e := setup(t, memory.New(), core.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	req := e.cart(4)
	req.Discount = decimal.NewFromInt(10)
	req.DiscountType = core.DiscountPercentage
	sale, err := e.svc.RecordSale(ctx, req)
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	var b strings.Builder
	if err := e.svc.Export(ctx, "sales", &b); err != nil {
		t.Fatalf("Export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	want := fmt.Sprintf("%s,2025-06-01T09:30:00Z,%s,%s,5.00,10.00,percentage,4.50,cash",
		sale.ReceiptNumber, e.customer, e.seller)
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestTemplate(t *testing.T) {
	svc := core.NewService(memory.New())
	var b strings.Builder
	if err := svc.Template("sellers", &b); err != nil {
		t.Fatalf("Template: %v", err)
	}
	if b.String() != "Name,Email\n" {
		t.Errorf("template = %q", b.String())
	}
	if err := svc.Template("sales", &b); !errors.Is(err, core.ErrUnknownEntity) {
		t.Errorf("Template(sales): err = %v, want ErrUnknownEntity", err)
	}
}

func TestEntities(t *testing.T) {
	var keys []string
	for _, def := range core.Entities() {
		keys = append(keys, def.Key)
		if def.Key == "sales" && def.Importable() {
			t.Error("sales must not be importable")
		}
		if len(def.Columns) == 0 {
			t.Errorf("%s has no export columns", def.Key)
		}
	}
	if got := strings.Join(keys, ","); got != "customers,products,sales,sellers,suppliers" {
		t.Errorf("entities = %s", got)
	}
}
