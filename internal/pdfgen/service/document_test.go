package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/internal/pdfgen/domain"
	"gorm.io/datatypes"
)

func invoiceData() map[string]any {
	return map[string]any{
		"client_name": "Acme SRL",
		"discount":    10.0,
		"tax":         22.0,
		"items": []any{
			map[string]any{"description": "Diseño web", "quantity": 2.0, "price": 100.0},
			map[string]any{"description": "Hosting", "quantity": "1", "price": "50"},
		},
	}
}

func TestProcessInvoiceTotals(t *testing.T) {
	out := ProcessDocumentData(invoiceData(), domain.TypeInvoice)

	items := out["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "200.00", items[0].(map[string]any)["total"])
	assert.Equal(t, "100.00", items[0].(map[string]any)["price"])
	assert.Equal(t, "50.00", items[1].(map[string]any)["total"])

	assert.Equal(t, "250.00", out["subtotal"])
	assert.Equal(t, "25.00", out["discount_amount"])
	assert.Equal(t, "49.50", out["tax_amount"])
	assert.Equal(t, "274.50", out["total"])
}

func TestProcessLeavesInputUntouched(t *testing.T) {
	in := invoiceData()
	ProcessDocumentData(in, domain.TypeQuote)

	first := in["items"].([]any)[0].(map[string]any)
	assert.Equal(t, 100.0, first["price"])
	_, hasTotal := first["total"]
	assert.False(t, hasTotal)
	_, hasSubtotal := in["subtotal"]
	assert.False(t, hasSubtotal)
}

func TestProcessReceiptSkipsTaxes(t *testing.T) {
	out := ProcessDocumentData(map[string]any{
		"tax":            22.0,
		"payment_amount": 150.0,
		"total":          150,
	}, domain.TypeReceipt)

	_, hasTax := out["tax_amount"]
	assert.False(t, hasTax)
	assert.Equal(t, "150.00", out["payment_amount"])
	assert.Equal(t, "150.00", out["total"])
}

func TestProcessInvoiceWithoutDiscount(t *testing.T) {
	out := ProcessDocumentData(map[string]any{"subtotal": 100.0, "tax": 10.0}, domain.TypeInvoice)

	_, hasDiscount := out["discount_amount"]
	assert.False(t, hasDiscount)
	assert.Equal(t, "100.00", out["subtotal"])
	assert.Equal(t, "10.00", out["tax_amount"])
	assert.Equal(t, "110.00", out["total"])
}

func TestLayout(t *testing.T) {
	tpl := &domain.Template{
		TemplateType: domain.TypeInvoice,
		TemplateData: datatypes.JSONMap{
			"footer":  "Gracias",
			"company": map[string]any{"name": "Verlyx", "email": "hola@verlyx.com"},
			"colors":  map[string]any{"primary": "#112233"},
		},
	}
	data := ProcessDocumentData(invoiceData(), domain.TypeInvoice)
	doc := Layout(tpl, data, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "Factura", doc.Title)
	assert.Equal(t, "Verlyx", doc.CompanyName)
	assert.Equal(t, []string{"hola@verlyx.com"}, doc.CompanyInfo)
	assert.Equal(t, "#112233", doc.PrimaryColor)
	assert.Equal(t, "01/09/2025", doc.IssuedOn)
	require.Len(t, doc.Fields, 1)
	assert.Equal(t, "Client name", doc.Fields[0].Label)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "Hosting", doc.Items[1].Description)
	assert.Equal(t, "1", doc.Items[1].Quantity)

	labels := make([]string, 0, len(doc.Totals))
	for _, total := range doc.Totals {
		labels = append(labels, total.Label)
	}
	assert.Equal(t, []string{"Subtotal", "Descuento", "Impuestos", "Total"}, labels)
}
