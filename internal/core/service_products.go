package core

import (
	"context"
	"fmt"
	"strings"
)

func (in ProductInput) normalize() (ProductInput, error) {
	var err error
	if in.StockCode, err = RequireNonEmpty(in.StockCode, "Stock Code"); err != nil {
		return in, err
	}
	if in.Name, err = RequireNonEmpty(in.Name, "Name"); err != nil {
		return in, err
	}
	in.Category = strings.TrimSpace(in.Category)
	if err := requireNonNegative(in.BuyingPrice, "Buying Price"); err != nil {
		return in, err
	}
	if err := requireNonNegative(in.SellingPrice, "Selling Price"); err != nil {
		return in, err
	}
	if in.Quantity < 0 {
		return in, invalid("Quantity", fmt.Sprint(in.Quantity), "must not be negative")
	}
	in.BuyingPrice = in.BuyingPrice.Round(2)
	in.SellingPrice = in.SellingPrice.Round(2)
	if in.SupplierID != nil {
		if id := strings.TrimSpace(*in.SupplierID); id == "" {
			in.SupplierID = nil
		} else {
			in.SupplierID = &id
		}
	}
	return in, nil
}

// CreateProduct validates and stores a new product. An unknown supplier id
// yields ErrNotFound and a taken stock code ErrDuplicate.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, in.SupplierID); err != nil {
		return nil, err
	}

	id, now := s.stamp()
	p := &Product{
		ID:           id,
		StockCode:    in.StockCode,
		Name:         in.Name,
		Category:     in.Category,
		BuyingPrice:  in.BuyingPrice,
		SellingPrice: in.SellingPrice,
		Quantity:     in.Quantity,
		SupplierID:   in.SupplierID,
		CreatedAt:    now,
	}
	if err := s.store.InsertProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product %s: %w", in.StockCode, err)
	}
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.store.GetProduct(ctx, id)
}

// ListProducts matches Search against name and stock code.
func (s *Service) ListProducts(ctx context.Context, opts ListOptions) ([]Product, error) {
	return s.store.ListProducts(ctx, opts.Normalize())
}

// UpdateProduct applies a partial update. An empty SupplierID clears the link.
// The read and the write share one transaction holding the product lock, so a
// sale committing in between cannot have its stock decrement overwritten.
func (s *Service) UpdateProduct(ctx context.Context, id string, p ProductPatch) (*Product, error) {
	var out *Product
	err := s.store.InTx(ctx, func(q Queries) error {
		cur, err := q.LockProduct(ctx, id)
		if err != nil {
			return err
		}

		in := ProductInput{
			StockCode:    patched(p.StockCode, cur.StockCode),
			Name:         patched(p.Name, cur.Name),
			Category:     patched(p.Category, cur.Category),
			BuyingPrice:  patched(p.BuyingPrice, cur.BuyingPrice),
			SellingPrice: patched(p.SellingPrice, cur.SellingPrice),
			Quantity:     patched(p.Quantity, cur.Quantity),
			SupplierID:   cur.SupplierID,
		}
		if p.SupplierID != nil {
			in.SupplierID = p.SupplierID
		}
		if in, err = in.normalize(); err != nil {
			return err
		}
		if p.SupplierID != nil && in.SupplierID != nil {
			if _, err := q.GetSupplier(ctx, *in.SupplierID); err != nil {
				return fmt.Errorf("supplier %s: %w", *in.SupplierID, err)
			}
		}

		cur.StockCode = in.StockCode
		cur.Name = in.Name
		cur.Category = in.Category
		cur.BuyingPrice = in.BuyingPrice
		cur.SellingPrice = in.SellingPrice
		cur.Quantity = in.Quantity
		cur.SupplierID = in.SupplierID
		if err := q.UpdateProduct(ctx, cur); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProduct fails with ErrReferenced once the product appears on a sale.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *Service) checkSupplier(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := s.store.GetSupplier(ctx, *id); err != nil {
		return fmt.Errorf("supplier %s: %w", *id, err)
	}
	return nil
}
