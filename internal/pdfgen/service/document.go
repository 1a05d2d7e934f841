package service

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/verlyx/hub/internal/pdfgen/domain"
	"github.com/verlyx/hub/internal/providers/pdf"
)

var titles = map[string]string{
	domain.TypeContract: "Contrato",
	domain.TypeInvoice:  "Factura",
	domain.TypeReceipt:  "Recibo",
	domain.TypeQuote:    "Presupuesto",
	domain.TypeReport:   "Reporte",
}

// totalKeys render in this order below the items table.
var totalKeys = []struct {
	key   string
	label string
}{
	{"subtotal", "Subtotal"},
	{"discount_amount", "Descuento"},
	{"tax_amount", "Impuestos"},
	{"amount", "Monto"},
	{"payment_amount", "Monto pagado"},
	{"total", "Total"},
}

var layoutSkip = map[string]bool{
	"items": true, "notes": true, "discount": true, "tax": true,
	"subtotal": true, "discount_amount": true, "tax_amount": true,
	"amount": true, "payment_amount": true, "total": true,
}

// ProcessDocumentData computes line totals and, for invoices and quotes,
// discount, tax and grand total. Money values come back as 2-decimal strings.
func ProcessDocumentData(data map[string]any, templateType string) map[string]any {
	out := make(map[string]any, len(data)+4)
	for k, v := range data {
		out[k] = v
	}

	subtotal, hasSubtotal := number(out["subtotal"])
	if raw, ok := out["items"].([]any); ok {
		items := make([]any, 0, len(raw))
		subtotal, hasSubtotal = 0, true
		for _, entry := range raw {
			src, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			item := make(map[string]any, len(src)+1)
			for k, v := range src {
				item[k] = v
			}
			quantity, _ := number(item["quantity"])
			price, _ := number(item["price"])
			total := quantity * price
			subtotal += total
			item["price"] = money(price)
			item["total"] = money(total)
			items = append(items, item)
		}
		out["items"] = items
	}

	if templateType == domain.TypeInvoice || templateType == domain.TypeQuote {
		discountRate, _ := number(out["discount"])
		taxRate, _ := number(out["tax"])
		var discount float64
		if discountRate > 0 {
			discount = subtotal * discountRate / 100
			out["discount_amount"] = money(discount)
		}
		tax := (subtotal - discount) * taxRate / 100
		out["tax_amount"] = money(tax)
		out["total"] = money(subtotal - discount + tax)
	} else if total, ok := number(out["total"]); ok {
		out["total"] = money(total)
	}

	if hasSubtotal {
		out["subtotal"] = money(subtotal)
	}
	for _, key := range []string{"amount", "payment_amount"} {
		if v, ok := number(out[key]); ok {
			out[key] = money(v)
		}
	}
	return out
}

// Layout maps a template and processed data onto the printable document.
func Layout(tpl *domain.Template, data map[string]any, issued time.Time) pdf.Document {
	settings := map[string]any(tpl.TemplateData)
	company, _ := settings["company"].(map[string]any)
	colors, _ := settings["colors"].(map[string]any)

	doc := pdf.Document{
		Title:        firstString(settings["title"], titles[tpl.TemplateType]),
		CompanyName:  firstString(settings["company_name"], company["name"]),
		Header:       firstString(settings["header"]),
		Footer:       firstString(settings["footer"]),
		PrimaryColor: firstString(settings["primary_color"], colors["primary"]),
		IssuedOn:     issued.Format("02/01/2006"),
		Notes:        firstString(data["notes"]),
	}
	for _, key := range []string{"address", "phone", "email", "tax_id", "website"} {
		if v := firstString(company[key]); v != "" {
			doc.CompanyInfo = append(doc.CompanyInfo, v)
		}
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		if !layoutSkip[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value, ok := scalar(data[key]); ok && value != "" {
			doc.Fields = append(doc.Fields, pdf.Field{Label: humanize(key), Value: value})
		}
	}

	if items, ok := data["items"].([]any); ok {
		for _, entry := range items {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			quantity, _ := scalar(item["quantity"])
			doc.Items = append(doc.Items, pdf.Item{
				Description: firstString(item["description"], item["name"]),
				Quantity:    quantity,
				Price:       firstString(item["price"]),
				Total:       firstString(item["total"]),
			})
		}
	}

	for _, t := range totalKeys {
		if value, ok := scalar(data[t.key]); ok && value != "" {
			doc.Totals = append(doc.Totals, pdf.Field{Label: t.label, Value: value})
		}
	}
	return doc
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func money(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}

func scalar(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		if s {
			return "Sí", true
		}
		return "No", true
	case nil:
		return "", false
	}
	if n, ok := number(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

func firstString(values ...any) string {
	for _, v := range values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func humanize(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	if len(words) == 0 {
		return key
	}
	first := []rune(words[0])
	first[0] = unicode.ToUpper(first[0])
	words[0] = string(first)
	return strings.Join(words, " ")
}
