package purchase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/compras-api/internal/domain/document"
	"github.com/jhoicas/compras-api/internal/domain/repository"
)

// NewPurchaseID id opaco de compra.
func NewPurchaseID() string {
	return uuid.New().String()
}

// FormatLotID arma "<producto>-<AAAAMMDDHHMMSS>-<NNN>".
func FormatLotID(productID string, at time.Time, suffix int) string {
	return fmt.Sprintf("%s-%s-%03d", productID, at.Format("20060102150405"), suffix)
}

// LotIDs generador de ids de lote con sufijo aleatorio 0-999. No verifica unicidad:
// una colisión la rechaza la llave primaria de compra_detalle.
type LotIDs struct {
	now  func() time.Time
	intn func(n int) int
}

// NewLotIDs generador con reloj y aleatoriedad reales.
func NewLotIDs() *LotIDs {
	return &LotIDs{now: time.Now, intn: rand.IntN}
}

// NewLotID implementa LotIDGenerator.
func (g *LotIDs) NewLotID(productID string) string {
	return FormatLotID(productID, g.now(), g.intn(1000))
}

// Numberer numeración de documentos <prefijo>-AAAA-MM-NNNNNN sobre un consecutivo por mes.
type Numberer struct {
	prefix string
	seq    repository.DocumentSequence
}

// NewNumberer construye el numerador.
func NewNumberer(prefix string, seq repository.DocumentSequence) *Numberer {
	return &Numberer{prefix: prefix, seq: seq}
}

// Next implementa DocumentNumberer. Debe llamarse dentro de la transacción de la compra.
func (n *Numberer) Next(ctx context.Context, date time.Time) (string, error) {
	s, err := n.seq.Next(ctx, n.prefix, date)
	if err != nil {
		return "", fmt.Errorf("siguiente consecutivo %s: %w", document.MonthPrefix(n.prefix, date), err)
	}
	return document.Format(n.prefix, date, s), nil
}
