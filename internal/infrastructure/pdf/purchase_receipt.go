// Package pdf genera el comprobante imprimible de una compra.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  COMPROBANTE DE COMPRA       │  N° compra + Fecha + Estado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR / RECIBIDO POR                                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Lote | Producto | Bodega | Cant. | Disp. | Costo     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + observaciones                                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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

	"github.com/jhoicas/compras-api/internal/application/dto"
	"github.com/jhoicas/compras-api/internal/application/purchase"
	"github.com/jhoicas/compras-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorDanger  = &props.Color{Red: 170, Green: 20, Blue: 20}
)

var _ purchase.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ReceiptGenerator dibuja el comprobante con Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// RenderPurchaseReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) RenderPurchaseReceipt(_ context.Context, p *dto.PurchaseFormatted) ([]byte, error) {
	rows, err := detailRows(p.Details)
	if err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de compra "+p.Header.DocumentNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(p.Header))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(p.Header))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(rows...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(p.Header.Total))
	if p.Header.Notes != nil && *p.Header.Notes != "" {
		m.AddRows(notesRow(*p.Header.Notes))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(h dto.PurchaseHeaderFormatted) core.Row {
	status := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 14, Color: colorGray}
	if h.Status == entity.PurchaseStatusAnulated {
		status.Color = colorDanger
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New("COMPROBANTE DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Ref. interna: "+h.ID, props.Text{Size: 7, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(h.DocumentNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+h.Date, props.Text{Size: 8, Align: align.Right, Top: 8, Color: colorGray}),
			text.New(statusLabel(h.Status), status),
		),
	)
}

func partiesRow(h dto.PurchaseHeaderFormatted) core.Row {
	block := func(title, name, id string) core.Col {
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(name, "—"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Código: "+id, props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(
		block("PROVEEDOR", h.SupplierName, h.SupplierID),
		block("RECIBIDO POR", h.EmployeeName, h.EmployeeID),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
	}
	return row.New(8).Add(
		h("Lote", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Bodega", 2, align.Left),
		h("Cant.", 1, align.Center),
		h("Disp.", 1, align.Center),
		h("Costo unit.", 1, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

// detailRows una fila por lote; el subtotal es cantidad × costo unitario.
func detailRows(details []dto.PurchaseLineFormatted) ([]core.Row, error) {
	out := make([]core.Row, 0, len(details))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, d := range details {
		cost, err := decimal.NewFromString(d.UnitCost)
		if err != nil {
			return nil, fmt.Errorf("pdf: costo del lote %s: %w", d.LotID, err)
		}
		subtotal := (&entity.PurchaseLine{Quantity: d.Quantity, UnitCost: cost}).Subtotal()
		out = append(out, row.New(7).Add(
			cell(d.LotID, 2, align.Left),
			cell(nonEmpty(d.ProductName, d.ProductID), 3, align.Left),
			cell(nonEmpty(d.WarehouseName, d.WarehouseID), 2, align.Left),
			cell(fmt.Sprint(d.Quantity), 1, align.Center),
			cell(fmt.Sprint(d.QuantityAvailable), 1, align.Center),
			cell(formatMoney(cost), 1, align.Right),
			cell("$"+formatMoney(subtotal), 2, align.Right),
		))
	}
	return out, nil
}

func totalRow(total string) core.Row {
	amount := total
	if d, err := decimal.NewFromString(total); err == nil {
		amount = formatMoney(d)
	}
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL COMPRA:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+amount, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func notesRow(notes string) core.Row {
	return row.New(14).Add(col.New(12).Add(
		text.New("OBSERVACIONES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
		text.New(notes, props.Text{Size: 8, Top: 7, Color: colorGray}),
	))
}

func statusLabel(status string) string {
	switch status {
	case entity.PurchaseStatusProcessed:
		return "PROCESADA"
	case entity.PurchaseStatusAnulated:
		return "ANULADA"
	case entity.PurchaseStatusPending:
		return "PENDIENTE"
	case entity.PurchaseStatusCanceled:
		return "CANCELADA"
	}
	return strings.ToUpper(status)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney separa miles con punto y decimales con coma, siempre con dos decimales.
// Ej: 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}
