package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/stockpos/internal/core"
)

// bind adapts a context-taking service method to a request-taking one.
func bind[A, R any](fn func(context.Context, A) (R, error)) func(*http.Request, A) (R, error) {
	return func(r *http.Request, a A) (R, error) { return fn(r.Context(), a) }
}

func bind2[A, B, R any](fn func(context.Context, A, B) (R, error)) func(*http.Request, A, B) (R, error) {
	return func(r *http.Request, a A, b B) (R, error) { return fn(r.Context(), a, b) }
}

func bindDelete(fn func(context.Context, string) error) func(*http.Request, string) error {
	return func(r *http.Request, id string) error { return fn(r.Context(), id) }
}

func (s *Server) suppliers() crud[core.Supplier, core.SupplierInput, core.SupplierPatch] {
	return crud[core.Supplier, core.SupplierInput, core.SupplierPatch]{
		create: bind(s.service.CreateSupplier),
		get:    bind(s.service.GetSupplier),
		list:   bind(s.service.ListSuppliers),
		update: bind2(s.service.UpdateSupplier),
		remove: bindDelete(s.service.DeleteSupplier),
	}
}

func (s *Server) customers() crud[core.Customer, core.CustomerInput, core.CustomerPatch] {
	return crud[core.Customer, core.CustomerInput, core.CustomerPatch]{
		create: bind(s.service.CreateCustomer),
		get:    bind(s.service.GetCustomer),
		list:   bind(s.service.ListCustomers),
		update: bind2(s.service.UpdateCustomer),
		remove: bindDelete(s.service.DeleteCustomer),
	}
}

func (s *Server) sellers() crud[core.Seller, core.SellerInput, core.SellerPatch] {
	return crud[core.Seller, core.SellerInput, core.SellerPatch]{
		create: bind(s.service.CreateSeller),
		get:    bind(s.service.GetSeller),
		list:   bind(s.service.ListSellers),
		update: bind2(s.service.UpdateSeller),
		remove: bindDelete(s.service.DeleteSeller),
	}
}

func (s *Server) products() crud[core.Product, core.ProductInput, core.ProductPatch] {
	return crud[core.Product, core.ProductInput, core.ProductPatch]{
		create: bind(s.service.CreateProduct),
		get:    bind(s.service.GetProduct),
		list:   bind(s.service.ListProducts),
		update: bind2(s.service.UpdateProduct),
		remove: bindDelete(s.service.DeleteProduct),
	}
}
