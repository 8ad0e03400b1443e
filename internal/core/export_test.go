package core

import (
	"strings"
	"testing"
)

func TestExportCSV(t *testing.T) {
	cols := []ExportColumn{
		{Field: "name", Label: "Name"},
		{Field: "phone", Label: "Phone"},
	}
	records := []ExportRecord{
		{"name": "Acme, Inc", "phone": "555"},
		{"name": `The "Best" Shop`},
	}

	var b strings.Builder
	if err := ExportCSV(&b, cols, records); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	want := "Name,Phone\n\"Acme, Inc\",555\n\"The \"\"Best\"\" Shop\",\n"
	if b.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", b.String(), want)
	}
}

func TestExportCSV_RoundTripsThroughParser(t *testing.T) {
	cols := ColumnsFromMapping(testMapping)
	records := []ExportRecord{{"name": "Pear, green", "qty": "4"}}

	var b strings.Builder
	if err := ExportCSV(&b, cols, records); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	res := ParseCSV(b.String(), testMapping, testTransform)
	if len(res.Records) != 1 || res.Records[0] != (testRecord{"Pear, green", 4}) {
		t.Errorf("round trip = %+v", res)
	}
}

func TestTemplateCSV(t *testing.T) {
	var b strings.Builder
	if err := TemplateCSV(&b, productMapping); err != nil {
		t.Fatalf("TemplateCSV: %v", err)
	}
	want := "Stock Code,Name,Category,Buying Price,Selling Price,Quantity\n"
	if b.String() != want {
		t.Errorf("template = %q, want %q", b.String(), want)
	}
}
