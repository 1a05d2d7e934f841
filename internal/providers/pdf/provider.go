package pdf

import "context"

// Renderer turns a laid-out document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

type Document struct {
	Title        string
	CompanyName  string
	CompanyInfo  []string
	Header       string
	Footer       string
	PrimaryColor string
	IssuedOn     string
	Fields       []Field
	Items        []Item
	Totals       []Field
	Notes        string
}

type Field struct {
	Label string
	Value string
}

type Item struct {
	Description string
	Quantity    string
	Price       string
	Total       string
}

type NoOpRenderer struct{}

func (NoOpRenderer) Render(context.Context, Document) ([]byte, error) {
	return []byte("%PDF-1.3\n%%EOF\n"), nil
}
