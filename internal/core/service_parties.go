package core

import (
	"context"
	"fmt"
	"strings"
)

// ============================================================================
// Suppliers
// ============================================================================

func (in SupplierInput) normalize() (SupplierInput, error) {
	var err error
	if in.Name, err = RequireNonEmpty(in.Name, "Name"); err != nil {
		return in, err
	}
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Email, err = OptionalEmail(in.Email, "Email"); err != nil {
		return in, err
	}
	return in, nil
}

func (in SupplierInput) validate() error {
	_, err := in.normalize()
	return err
}

// CreateSupplier validates and stores a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, in SupplierInput) (*Supplier, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	id, now := s.stamp()
	sup := &Supplier{ID: id, Name: in.Name, Phone: in.Phone, Email: in.Email, CreatedAt: now}
	if err := s.store.InsertSupplier(ctx, sup); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return sup, nil
}

func (s *Service) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	return s.store.GetSupplier(ctx, id)
}

func (s *Service) ListSuppliers(ctx context.Context, opts ListOptions) ([]Supplier, error) {
	return s.store.ListSuppliers(ctx, opts.Normalize())
}

// UpdateSupplier applies a partial update and re-validates the result.
func (s *Service) UpdateSupplier(ctx context.Context, id string, p SupplierPatch) (*Supplier, error) {
	cur, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	in := SupplierInput{
		Name:  patched(p.Name, cur.Name),
		Phone: patched(p.Phone, cur.Phone),
		Email: patched(p.Email, cur.Email),
	}
	if in, err = in.normalize(); err != nil {
		return nil, err
	}
	cur.Name, cur.Phone, cur.Email = in.Name, in.Phone, in.Email
	if err := s.store.UpdateSupplier(ctx, cur); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return cur, nil
}

// DeleteSupplier fails with ErrReferenced while products point at the supplier.
func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	if err := s.store.DeleteSupplier(ctx, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}

// ============================================================================
// Customers
// ============================================================================

func (in CustomerInput) normalize() (CustomerInput, error) {
	var err error
	if in.Name, err = RequireNonEmpty(in.Name, "Name"); err != nil {
		return in, err
	}
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Email, err = OptionalEmail(in.Email, "Email"); err != nil {
		return in, err
	}
	return in, nil
}

func (in CustomerInput) validate() error {
	_, err := in.normalize()
	return err
}

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	id, now := s.stamp()
	c := &Customer{ID: id, Name: in.Name, Phone: in.Phone, Email: in.Email, CreatedAt: now}
	if err := s.store.InsertCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context, opts ListOptions) ([]Customer, error) {
	return s.store.ListCustomers(ctx, opts.Normalize())
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, p CustomerPatch) (*Customer, error) {
	cur, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	in := CustomerInput{
		Name:  patched(p.Name, cur.Name),
		Phone: patched(p.Phone, cur.Phone),
		Email: patched(p.Email, cur.Email),
	}
	if in, err = in.normalize(); err != nil {
		return nil, err
	}
	cur.Name, cur.Phone, cur.Email = in.Name, in.Phone, in.Email
	if err := s.store.UpdateCustomer(ctx, cur); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return cur, nil
}

// DeleteCustomer fails with ErrReferenced once the customer has sales.
func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// ============================================================================
// Sellers
// ============================================================================

func (in SellerInput) normalize() (SellerInput, error) {
	var err error
	if in.Name, err = RequireNonEmpty(in.Name, "Name"); err != nil {
		return in, err
	}
	if in.Email, err = ParseEmail(in.Email, "Email"); err != nil {
		return in, err
	}
	return in, nil
}

func (in SellerInput) validate() error {
	_, err := in.normalize()
	return err
}

func (s *Service) CreateSeller(ctx context.Context, in SellerInput) (*Seller, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	id, now := s.stamp()
	sel := &Seller{ID: id, Name: in.Name, Email: in.Email, CreatedAt: now}
	if err := s.store.InsertSeller(ctx, sel); err != nil {
		return nil, fmt.Errorf("create seller: %w", err)
	}
	return sel, nil
}

func (s *Service) GetSeller(ctx context.Context, id string) (*Seller, error) {
	return s.store.GetSeller(ctx, id)
}

func (s *Service) ListSellers(ctx context.Context, opts ListOptions) ([]Seller, error) {
	return s.store.ListSellers(ctx, opts.Normalize())
}

func (s *Service) UpdateSeller(ctx context.Context, id string, p SellerPatch) (*Seller, error) {
	cur, err := s.store.GetSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	in := SellerInput{
		Name:  patched(p.Name, cur.Name),
		Email: patched(p.Email, cur.Email),
	}
	if in, err = in.normalize(); err != nil {
		return nil, err
	}
	cur.Name, cur.Email = in.Name, in.Email
	if err := s.store.UpdateSeller(ctx, cur); err != nil {
		return nil, fmt.Errorf("update seller: %w", err)
	}
	return cur, nil
}

// DeleteSeller fails with ErrReferenced once the seller has sales.
func (s *Service) DeleteSeller(ctx context.Context, id string) error {
	if err := s.store.DeleteSeller(ctx, id); err != nil {
		return fmt.Errorf("delete seller: %w", err)
	}
	return nil
}

// patched returns *p when set, otherwise cur.
func patched[T any](p *T, cur T) T {
	if p != nil {
		return *p
	}
	return cur
}
