package pdf

import (
	"context"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoRenderer struct{}

func New() Renderer {
	return &MarotoRenderer{}
}

func (r *MarotoRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)
	accent := parseHexColor(doc.PrimaryColor)

	if doc.Header != "" {
		m.AddRow(8, text.NewCol(12, doc.Header, props.Text{Size: 8, Align: align.Right}))
	}

	company := col.New(6)
	if doc.CompanyName != "" {
		company.Add(text.New(doc.CompanyName, props.Text{Style: fontstyle.Bold, Size: 12, Color: accent}))
	}
	for i, line := range doc.CompanyInfo {
		company.Add(text.New(line, props.Text{Size: 8, Top: float64(6 + 4*i)}))
	}
	m.AddRow(float64(12+4*len(doc.CompanyInfo)),
		company,
		col.New(6).Add(
			text.New(doc.Title, props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Right, Color: accent}),
			text.New(doc.IssuedOn, props.Text{Size: 9, Top: 10, Align: align.Right}),
		),
	)

	for _, field := range doc.Fields {
		m.AddRow(6,
			text.NewCol(4, field.Label, props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(8, field.Value, props.Text{Size: 9}),
		)
	}

	if len(doc.Items) > 0 {
		m.AddRow(6, col.New(12))
		m.AddRow(10,
			text.NewCol(6, "Descripción", props.Text{Style: fontstyle.Bold, Size: 9, Color: accent}),
			text.NewCol(2, "Cantidad", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: accent}),
			text.NewCol(2, "Precio", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: accent}),
			text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: accent}),
		)
		for _, item := range doc.Items {
			m.AddRow(8,
				text.NewCol(6, item.Description, props.Text{Size: 9}),
				text.NewCol(2, item.Quantity, props.Text{Size: 9, Align: align.Right}),
				text.NewCol(2, item.Price, props.Text{Size: 9, Align: align.Right}),
				text.NewCol(2, item.Total, props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	for i, total := range doc.Totals {
		style := props.Text{Size: 9, Align: align.Right}
		if i == len(doc.Totals)-1 {
			style.Style = fontstyle.Bold
		}
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, total.Label, props.Text{Size: 9, Style: style.Style}),
			text.NewCol(2, total.Value, style),
		)
	}

	if doc.Notes != "" {
		m.AddRow(15, text.NewCol(12, doc.Notes, props.Text{Size: 9, Top: 5}))
	}
	if doc.Footer != "" {
		m.AddRow(12, text.NewCol(12, doc.Footer, props.Text{Size: 8, Top: 6, Align: align.Center}))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

// parseHexColor reads "#RRGGBB". Anything else renders in the default color.
func parseHexColor(hex string) *props.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return nil
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil
	}
	return &props.Color{
		Red:   int(v >> 16 & 0xff),
		Green: int(v >> 8 & 0xff),
		Blue:  int(v & 0xff),
	}
}
