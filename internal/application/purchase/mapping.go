package purchase

import (
	"github.com/jhoicas/compras-api/internal/application/dto"
	"github.com/jhoicas/compras-api/internal/domain/entity"
)

func toHeaderResponse(h *entity.Purchase) dto.PurchaseHeaderResponse {
	r := dto.PurchaseHeaderResponse{
		ID:             h.ID,
		DocumentNumber: h.DocumentNumber,
		SupplierID:     h.SupplierID,
		EmployeeID:     h.EmployeeID,
		Date:           h.Date.Format(dto.DateLayout),
		Total:          h.Total.StringFixed(2),
		Status:         h.Status,
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
	}
	if h.Notes != "" {
		notes := h.Notes
		r.Notes = &notes
	}
	return r
}

func toLineResponse(l *entity.PurchaseLine) dto.PurchaseLineResponse {
	return dto.PurchaseLineResponse{
		LotID:             l.LotID,
		PurchaseID:        l.PurchaseID,
		ProductID:         l.ProductID,
		WarehouseID:       l.WarehouseID,
		Quantity:          l.Quantity,
		UnitCost:          l.UnitCost.String(),
		QuantityAvailable: l.QuantityAvailable,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func toPurchaseResponse(h *entity.Purchase, lines []*entity.PurchaseLine) *dto.PurchaseResponse {
	out := &dto.PurchaseResponse{
		Header:  toHeaderResponse(h),
		Details: make([]dto.PurchaseLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		out.Details = append(out.Details, toLineResponse(l))
	}
	return out
}
