package purchase

import (
	"context"
	"fmt"

	"github.com/jhoicas/compras-api/internal/application/dto"
	"github.com/jhoicas/compras-api/internal/domain"
)

// ReceiptRenderer genera el comprobante PDF de una compra.
type ReceiptRenderer interface {
	RenderPurchaseReceipt(ctx context.Context, p *dto.PurchaseFormatted) ([]byte, error)
}

// ReceiptService arma el comprobante con la misma vista que GET /compras/:id.
type ReceiptService struct {
	query    *QueryService
	renderer ReceiptRenderer
}

// NewReceiptService construye el servicio.
func NewReceiptService(query *QueryService, renderer ReceiptRenderer) *ReceiptService {
	return &ReceiptService{query: query, renderer: renderer}
}

// Receipt devuelve los bytes del PDF y el nombre de archivo sugerido.
func (s *ReceiptService) Receipt(ctx context.Context, ref string) ([]byte, string, error) {
	p, err := s.query.GetByRef(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	if p == nil {
		return nil, "", domain.NotFound(fmt.Sprintf("la compra %s no existe", ref))
	}
	doc, err := s.renderer.RenderPurchaseReceipt(ctx, p)
	if err != nil {
		return nil, "", domain.Internal("error al generar el comprobante", err)
	}
	return doc, p.Header.DocumentNumber + ".pdf", nil
}
