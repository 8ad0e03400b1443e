package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
)

// ReceiptGenerator issues receipt numbers of the form RCP-YYYYMMDD-HHMMSS-XXXXXXXX.
// The suffix is random, so numbers are unique with overwhelming probability;
// the store's unique constraint catches the rest and the sale is retried.
type ReceiptGenerator struct {
	now func() time.Time
}

func NewReceiptGenerator(now func() time.Time) *ReceiptGenerator {
	if now == nil {
		now = time.Now
	}
	return &ReceiptGenerator{now: now}
}

// Next returns a new receipt number.
func (g *ReceiptGenerator) Next() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("RCP-%s-%s", g.now().UTC().Format("20060102-150405"), suffix)
}

// Receipt is the printable view of a sale.
type Receipt struct {
	Sale         *Sale  `json:"sale"`
	CustomerName string `json:"customerName"`
	SellerName   string `json:"sellerName"`
}

// Receipt loads a sale with its items and the names of its parties.
func (s *Service) Receipt(ctx context.Context, saleID string) (*Receipt, error) {
	sale, err := s.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	cust, err := s.store.GetCustomer(ctx, sale.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("receipt customer: %w", err)
	}
	sel, err := s.store.GetSeller(ctx, sale.SellerID)
	if err != nil {
		return nil, fmt.Errorf("receipt seller: %w", err)
	}
	return &Receipt{Sale: sale, CustomerName: cust.Name, SellerName: sel.Name}, nil
}

// WriteText renders the receipt as aligned plain text.
func (r *Receipt) WriteText(w io.Writer) error {
	sale := r.Sale
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Receipt\t%s\n", sale.ReceiptNumber)
	fmt.Fprintf(tw, "Date\t%s\n", time.UnixMilli(sale.CreatedAt).UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "Customer\t%s\n", r.CustomerName)
	fmt.Fprintf(tw, "Seller\t%s\n", r.SellerName)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Code\tItem\tQty\tPrice\tAmount")
	for _, it := range sale.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			it.StockCode, it.ProductName, it.Quantity, it.UnitPrice.StringFixed(2), it.Subtotal.StringFixed(2))
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Subtotal\t\t\t\t%s\n", sale.Subtotal.StringFixed(2))
	if sale.DiscountType == DiscountPercentage {
		fmt.Fprintf(tw, "Discount (%s%%)\t\t\t\t%s\n", sale.Discount.String(), sale.Subtotal.Sub(sale.Total).StringFixed(2))
	} else {
		fmt.Fprintf(tw, "Discount\t\t\t\t%s\n", sale.Discount.StringFixed(2))
	}
	fmt.Fprintf(tw, "Total\t\t\t\t%s\n", sale.Total.StringFixed(2))
	fmt.Fprintf(tw, "Paid by\t\t\t\t%s\n", sale.PaymentMethod)

	return tw.Flush()
}
