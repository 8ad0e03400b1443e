package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/store/storetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	st, err := Open(ctx, filepath.Join(t.TempDir(), "pos.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		t.Fatalf("Migrate: %v", err)
	}
	return st
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.Store { return openTemp(t) })
}

func TestMigrateIsIdempotent(t *testing.T) {
	st := openTemp(t)
	defer st.Close()
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestDSN(t *testing.T) {
	got := DSN("/tmp/pos.db")
	want := "file:/tmp/pos.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	defer st.Close()

	p := &core.Product{
		ID:           "p1",
		StockCode:    "DEC",
		Name:         "Decimal",
		BuyingPrice:  decimal.RequireFromString("0.10"),
		SellingPrice: decimal.RequireFromString("1234567.89"),
		Quantity:     1,
	}
	if err := st.InsertProduct(ctx, p); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}
	got, err := st.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if !got.SellingPrice.Equal(p.SellingPrice) || !got.BuyingPrice.Equal(p.BuyingPrice) {
		t.Errorf("prices = %s/%s, want %s/%s", got.BuyingPrice, got.SellingPrice, p.BuyingPrice, p.SellingPrice)
	}
	if got.SupplierID != nil {
		t.Errorf("SupplierID = %v, want nil", *got.SupplierID)
	}
}

func TestTranslateConstraintErrors(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	defer st.Close()

	if err := st.InsertProduct(ctx, &core.Product{ID: "p1", StockCode: "A", Name: "a"}); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}

	err := st.InsertProduct(ctx, &core.Product{ID: "p2", StockCode: "A", Name: "b"})
	if !errors.Is(err, core.ErrDuplicate) {
		t.Errorf("duplicate stock code: err = %v, want ErrDuplicate", err)
	}

	missing := "nope"
	err = st.InsertProduct(ctx, &core.Product{ID: "p3", StockCode: "C", Name: "c", SupplierID: &missing})
	if !errors.Is(err, core.ErrReferenced) {
		t.Errorf("unknown supplier: err = %v, want ErrReferenced", err)
	}

	ok, err := st.DecrementStock(ctx, "p1", 1)
	if err != nil || ok {
		t.Errorf("DecrementStock on empty stock = %v, %v; want false, nil", ok, err)
	}
}

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	defer st.Close()
	boom := errors.New("boom")

	err := st.InTx(ctx, func(q core.Queries) error {
		if err := q.InsertCustomer(ctx, &core.Customer{ID: "c1", Name: "A"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := st.GetCustomer(ctx, "c1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("customer visible after rollback: err = %v", err)
	}
}
