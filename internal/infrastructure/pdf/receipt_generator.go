// Package pdf genera el comprobante de venta en A4 con Maroto v2.
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Sucursal + dirección  │  N° Documento + Fecha       │
//	│  CLIENTE: Nombre + NIT/CC + contacto (o "Consumidor final")  │
//	│  TABLA: Cant | Descripción | P.Unit | Desc. | Subtotal       │
//	│  TOTALES: Bruto / Descuento / TOTAL                          │
//	│  CONDICIÓN: Contado o Crédito, vencimiento, saldo, estado    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 20, Blue: 20}
)

var _ ports.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ReceiptGenerator implementa ports.ReceiptRenderer.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// RenderSaleReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) RenderSaleReceipt(_ context.Context, data ports.ReceiptData) ([]byte, error) {
	if data.Sale == nil {
		return nil, fmt.Errorf("pdf: venta requerida")
	}
	sale := data.Sale

	author := "Backoffice"
	if data.Branch != nil {
		author = data.Branch.Nombre
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta", true).
		WithAuthor(author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sale, data.Branch))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(sale, data.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(data.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(sale))
	m.AddRows(line.NewRow(3))
	m.AddRows(conditionRows(sale)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(sale *entity.Sale, branch *entity.Branch) core.Row {
	nombre, dir := "Sucursal", ""
	if branch != nil {
		nombre, dir = branch.Nombre, branch.Direccion
	}
	numero := nonEmpty(sale.NumeroDocumento, shortID(sale.ID))

	return row.New(18).Add(
		col.New(7).Add(
			text.New(nombre, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(dir, "-"), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(numero, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+sale.FechaVenta.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func customerRow(sale *entity.Sale, c *entity.Customer) core.Row {
	nombre := nonEmpty(sale.ClienteNombre, "Consumidor final")
	detalle := ""
	if c != nil {
		nombre = c.Nombre
		detalle = fmt.Sprintf("NIT/CC: %s   |   Tel: %s   |   Email: %s",
			nonEmpty(c.NIT, "-"), nonEmpty(c.ContactPhone(), "-"), nonEmpty(c.Email, "-"))
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nombre, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(detalle, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Desc.", 1, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func tableLineRows(lines []*entity.SaleLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(quantity(l.Cantidad), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(nonEmpty(l.ProductoNombre, l.ProductoID), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money(l.PrecioUnitario), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(money(l.Descuento), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(sale *entity.Sale) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Total bruto:", 0),
			label("Descuento:", 6),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 12, Color: colorPrimary}),
		),
		col.New(3).Add(
			value(money(sale.TotalBruto), 0),
			value(money(sale.DescuentoTotal), 6),
			text.New(money(sale.TotalNeto), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 12, Color: colorPrimary}),
		),
	)
}

// conditionRows condición de pago; en crédito agrega vencimiento y saldo.
func conditionRows(sale *entity.Sale) []core.Row {
	cond := "Condición: CONTADO"
	if sale.TipoVenta == entity.TipoCredito {
		cond = "Condición: CRÉDITO"
		if sale.FechaVencimiento != nil {
			cond += "   |   Vence: " + sale.FechaVencimiento.Format("02/01/2006")
		}
		cond += "   |   Saldo pendiente: " + money(sale.SaldoPendiente)
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New(cond, props.Text{Size: 9, Top: 1}))),
		row.New(6).Add(col.New(12).Add(text.New("Estado: "+sale.Estado, props.Text{Size: 9, Top: 1, Color: colorGray}))),
	}
	if sale.Estado == entity.EstadoAnulada {
		rows = append(rows, row.New(10).Add(col.New(12).Add(text.New("DOCUMENTO ANULADO", props.Text{
			Style: fontstyle.Bold, Size: 14, Align: align.Center, Color: colorRed, Top: 2,
		}))))
	}
	if sale.Observaciones != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(text.New(sale.Observaciones, props.Text{
			Size: 7, Color: colorGray, Top: 2,
		}))))
	}
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func quantity(d decimal.Decimal) string {
	return d.Truncate(3).String()
}

// money formatea sin decimales y con puntos de miles: 1234567.4 → "$1.234.567".
func money(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg, s = true, s[1:]
	}
	s = thousands(s)
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// thousands inserta puntos de miles en un string numérico sin decimales.
func thousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
