package core

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// ============================================================================
// CSV Codec Benchmarks
// ============================================================================

// productCSV builds a products file with n data rows.
func productCSV(n int) string {
	var b strings.Builder
	b.WriteString("Stock Code,Name,Category,Buying Price,Selling Price,Quantity\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "SKU%05d,\"Widget, size %d\",hardware,1.25,2.50,%d\n", i, i, i%100)
	}
	return b.String()
}

// BenchmarkParseCSV_Products measures a full parse of a 1000 row import.
func BenchmarkParseCSV_Products(b *testing.B) {
	raw := productCSV(1000)
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseCSV(raw, productMapping, productFromRow)
	}
}

// BenchmarkTokenizeLine_Quoted measures the quoted-field path of the tokenizer.
func BenchmarkTokenizeLine_Quoted(b *testing.B) {
	line := `"Acme, Inc","She said ""hi""",100,5,,"x"`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tokenizeLine(line)
	}
}

// BenchmarkTokenizeLine_Plain measures the common unquoted case.
func BenchmarkTokenizeLine_Plain(b *testing.B) {
	line := "SKU00001,Widget,hardware,1.25,2.50,10"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tokenizeLine(line)
	}
}

// ============================================================================
// Validation Benchmarks
// ============================================================================

func BenchmarkParseDecimal(b *testing.B) {
	cases := []string{"1", "12.50", "  999.99  ", "0.001", "1234567.89"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cases {
			ParseDecimal(c, "Price") //nolint:errcheck // benchmark
		}
	}
}

// ============================================================================
// Export Benchmarks
// ============================================================================

func BenchmarkExportCSV(b *testing.B) {
	cols := ColumnsFromMapping(productMapping)
	records := make([]ExportRecord, 1000)
	for i := range records {
		records[i] = ExportRecord{
			"stockCode":    fmt.Sprintf("SKU%05d", i),
			"name":         "Widget, large",
			"category":     "hardware",
			"buyingPrice":  "1.25",
			"sellingPrice": "2.50",
			"quantity":     "10",
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ExportCSV(io.Discard, cols, records) //nolint:errcheck // benchmark
	}
}

func BenchmarkComputeTotals(b *testing.B) {
	items := make([]SaleItem, 20)
	for i := range items {
		items[i] = SaleItem{UnitPrice: decimal.RequireFromString("9.99"), Quantity: i + 1}
	}
	discount := decimal.NewFromInt(15)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeTotals(items, discount, DiscountPercentage)
	}
}
