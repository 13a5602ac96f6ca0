package export

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/toko-ops/toko-ops/internal/reporting"
)

func sampleSales() []reporting.AggregateBucket {
	return []reporting.AggregateBucket{
		{Key: "2025-06-W1", Label: "W1 Jun", TotalSales: 1200.5, UnitsSold: 7},
		{Key: "2025-06-W2", Label: "W2 Jun", TotalSales: 0, UnitsSold: 0},
	}
}

func TestWriteCSVQuoting(t *testing.T) {
	table := Table{
		Header: []string{"Product", "Note"},
		Rows:   [][]string{{`6" Bolt`, "a,b"}},
	}
	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, table); err != nil {
		t.Fatalf("csv error: %v", err)
	}
	want := "\"Product\",\"Note\"\r\n\"6\"\" Bolt\",\"a,b\"\r\n"
	if buf.String() != want {
		t.Fatalf("csv output %q want %q", buf.String(), want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	err := WriteCSV(&bytes.Buffer{}, Table{Header: []string{"A"}})
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if _, err := BuildDocument(Document{Title: "x"}); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("document path should agree, got %v", err)
	}
}

func TestCSVDocumentParity(t *testing.T) {
	table := SalesTable(sampleSales())
	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, table); err != nil {
		t.Fatalf("csv error: %v", err)
	}
	html, err := BuildDocument(Document{Title: "Sales", Table: table})
	if err != nil {
		t.Fatalf("document error: %v", err)
	}
	// Both paths must enumerate the same cells in the same order.
	for _, row := range table.Rows {
		for _, cell := range row {
			if !strings.Contains(buf.String(), `"`+strings.ReplaceAll(cell, `"`, `""`)+`"`) {
				t.Fatalf("csv missing cell %q", cell)
			}
			if !strings.Contains(html, ">"+htmlEscape(cell)+"<") {
				t.Fatalf("document missing cell %q", cell)
			}
		}
	}
	if strings.Index(html, "2025-06-W1") > strings.Index(html, "2025-06-W2") {
		t.Fatalf("document rows out of order")
	}
}

func TestProfitTableGrandTotal(t *testing.T) {
	report := reporting.ProfitReport{
		Totals: reporting.ProfitTotals{Daily: 10, Weekly: 20, Monthly: 30, Total: 40},
		PerProduct: []reporting.ProductProfit{
			{Key: "p1", Label: "Hammer", Totals: reporting.ProfitTotals{Total: 40}},
		},
	}
	table := ProfitTable(report)
	if len(table.Rows) != 2 {
		t.Fatalf("expected product row + total row, got %d", len(table.Rows))
	}
	last := table.Rows[len(table.Rows)-1]
	if last[0] != "TOTAL" || last[4] != "40.00" {
		t.Fatalf("grand total row = %v", last)
	}
}

func TestDocumentMetadataLabels(t *testing.T) {
	html, err := BuildDocument(Document{
		Title:    "Profit",
		Table:    SalesTable(sampleSales()),
		Metadata: map[string]string{"generated_at": "2025-06-18", "channel": "all"},
	})
	if err != nil {
		t.Fatalf("document error: %v", err)
	}
	if !strings.Contains(html, "Generated At") || !strings.Contains(html, "Channel") {
		t.Fatalf("metadata labels not humanised: %s", html)
	}
}

func TestPDFExporterRender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/chromium/convert/html" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(4 << 10); err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("PDF"))
	}))
	defer srv.Close()

	exporter := &PDFExporter{Endpoint: srv.URL}
	data, err := exporter.Render(context.Background(), Document{Title: "Sales", Table: SalesTable(sampleSales())})
	if err != nil {
		t.Fatalf("pdf render error: %v", err)
	}
	if string(data) != "PDF" {
		t.Fatalf("unexpected payload %q", string(data))
	}
}
