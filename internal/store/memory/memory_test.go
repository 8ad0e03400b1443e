package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.Store { return New() })
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := New()
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

func TestInTxCommit(t *testing.T) {
	ctx := context.Background()
	st := New()

	err := st.InTx(ctx, func(q core.Queries) error {
		return q.InsertSeller(ctx, &core.Seller{ID: "s1", Name: "B", Email: "b@example.com"})
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if _, err := st.GetSeller(ctx, "s1"); err != nil {
		t.Errorf("GetSeller after commit: %v", err)
	}
}

func TestInTxCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := New().InTx(ctx, func(core.Queries) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Errorf("err = %v, called = %v; want context.Canceled without running fn", err, called)
	}
}

func TestInsertEnforcesReferences(t *testing.T) {
	ctx := context.Background()
	st := New()
	missing := "nope"

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "product with unknown supplier",
			err:  st.InsertProduct(ctx, &core.Product{ID: "p1", StockCode: "X", Name: "x", SupplierID: &missing}),
			want: core.ErrReferenced,
		},
		{
			name: "sale with unknown customer",
			err:  st.InsertSale(ctx, &core.Sale{ID: "s1", ReceiptNumber: "R1", CustomerID: "c", SellerID: "s"}),
			want: core.ErrReferenced,
		},
		{
			name: "item for unknown sale",
			err:  st.InsertSaleItem(ctx, &core.SaleItem{ID: "i1", SaleID: "s1", ProductID: "p1"}),
			want: core.ErrReferenced,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("err = %v, want %v", tt.err, tt.want)
			}
		})
	}
}

func TestDecrementStock(t *testing.T) {
	ctx := context.Background()
	st := New()
	if err := st.InsertProduct(ctx, &core.Product{ID: "p1", StockCode: "X", Name: "x", Quantity: 3}); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}

	ok, err := st.DecrementStock(ctx, "p1", 2)
	if err != nil || !ok {
		t.Fatalf("DecrementStock(2) = %v, %v", ok, err)
	}
	ok, err = st.DecrementStock(ctx, "p1", 2)
	if err != nil || ok {
		t.Fatalf("DecrementStock(2) past zero = %v, %v; want false", ok, err)
	}
	p, _ := st.GetProduct(ctx, "p1")
	if p.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", p.Quantity)
	}
}
