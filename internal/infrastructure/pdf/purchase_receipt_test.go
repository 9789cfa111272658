package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/compras-api/internal/application/dto"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"45":        "45,00",
		"1234":      "1.234,00",
		"1234567.5": "1.234.567,50",
		"-2500.25":  "-2.500,25",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "ANULADA", statusLabel("anulated"))
	assert.Equal(t, "PROCESADA", statusLabel("processed"))
	assert.Equal(t, "OTRO", statusLabel("otro"))
}

func samplePurchase() *dto.PurchaseFormatted {
	notes := "Entrega parcial"
	return &dto.PurchaseFormatted{
		Header: dto.PurchaseHeaderFormatted{
			PurchaseHeaderResponse: dto.PurchaseHeaderResponse{
				ID: "c1", DocumentNumber: "comp-2025-03-000001", SupplierID: "PROV1",
				EmployeeID: "EMP1", Date: "2025-03-14", Total: "45.00", Notes: &notes, Status: "processed",
			},
			SupplierName: "Distribuidora Andina",
			EmployeeName: "María Pérez",
		},
		Details: []dto.PurchaseLineFormatted{{
			PurchaseLineResponse: dto.PurchaseLineResponse{
				LotID: "P1-20250314093000-001", PurchaseID: "c1", ProductID: "P1", WarehouseID: "B1",
				Quantity: 10, UnitCost: "2.50", QuantityAvailable: 10,
			},
			ProductName:   "Arroz 500g",
			WarehouseName: "Bodega Central",
		}},
	}
}

func TestRenderPurchaseReceipt(t *testing.T) {
	doc, err := NewReceiptGenerator().RenderPurchaseReceipt(context.Background(), samplePurchase())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestRenderPurchaseReceipt_CostoInvalido(t *testing.T) {
	p := samplePurchase()
	p.Details[0].UnitCost = "abc"
	_, err := NewReceiptGenerator().RenderPurchaseReceipt(context.Background(), p)
	assert.ErrorContains(t, err, "P1-20250314093000-001")
}
