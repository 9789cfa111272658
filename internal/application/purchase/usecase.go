package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/compras-api/internal/application/dto"
	"github.com/jhoicas/compras-api/internal/domain"
	"github.com/jhoicas/compras-api/internal/domain/entity"
	"github.com/jhoicas/compras-api/internal/domain/inventory"
	"github.com/jhoicas/compras-api/internal/domain/repository"
	"github.com/jhoicas/compras-api/pkg/logger"
)

// UseCase crea, actualiza y anula compras. Cada operación corre en una sola unidad de trabajo:
// cabecera, lotes y ajustes de stock se confirman juntos o no se confirma nada.
type UseCase struct {
	tx           TxRunner
	purchases    repository.PurchaseRepository
	catalog      repository.CatalogRepository
	invoiceLines repository.InvoiceLineRepository
	stock        StockAdjuster
	numbers      DocumentNumberer
	lots         LotIDGenerator
	now          func() time.Time
	log          *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tx TxRunner,
	purchases repository.PurchaseRepository,
	catalog repository.CatalogRepository,
	invoiceLines repository.InvoiceLineRepository,
	stock StockAdjuster,
	numbers DocumentNumberer,
	lots LotIDGenerator,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		tx:           tx,
		purchases:    purchases,
		catalog:      catalog,
		invoiceLines: invoiceLines,
		stock:        stock,
		numbers:      numbers,
		lots:         lots,
		now:          time.Now,
		log:          log.Component("purchase"),
	}
}

// Create registra la compra en estado processed, un lote por detalle, y suma cada cantidad al stock.
func (uc *UseCase) Create(ctx context.Context, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.Validation("debe incluir al menos un detalle de compra", nil)
	}
	if in.SupplierID == "" {
		return nil, domain.Validation("el idProveedor no puede estar vacío", nil)
	}
	if in.EmployeeID == "" {
		return nil, domain.Validation("el empleado es requerido", nil)
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	if in.Total != nil && in.Total.IsNegative() {
		return nil, domain.Validation("el total no puede ser negativo", nil)
	}
	if err := uc.checkRefs(ctx, in.SupplierID, in.EmployeeID, in.Lines); err != nil {
		return nil, err
	}

	now := uc.now()
	header := &entity.Purchase{
		ID:         NewPurchaseID(),
		SupplierID: in.SupplierID,
		EmployeeID: in.EmployeeID,
		Date:       date,
		Total:      totalOf(in.Total, in.Lines),
		Status:     entity.PurchaseStatusProcessed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Notes != nil {
		header.Notes = *in.Notes
	}

	var lines []*entity.PurchaseLine
	err = uc.tx.Run(ctx, func(ctx context.Context) error {
		lines = lines[:0]
		number, err := uc.numbers.Next(ctx, date)
		if err != nil {
			return err
		}
		header.DocumentNumber = number
		if err := uc.purchases.Create(ctx, header); err != nil {
			return fmt.Errorf("insertar cabecera: %w", err)
		}
		for i := range in.Lines {
			line, err := uc.newLine(header.ID, i, in.Lines[i], now)
			if err != nil {
				return err
			}
			if err := uc.purchases.CreateLine(ctx, line); err != nil {
				return fmt.Errorf("insertar lote %s: %w", line.LotID, err)
			}
			lines = append(lines, line)
		}
		for _, l := range lines {
			if _, err := uc.stock.Adjust(ctx, l.WarehouseID, l.ProductID, l.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		err = wrap("error al crear la compra", err)
		uc.failure(err).
			Str("purchase_id", header.ID).
			Str("document_number", header.DocumentNumber).
			Msg("crear compra")
		return nil, err
	}

	uc.log.Info().
		Str("purchase_id", header.ID).
		Str("document_number", header.DocumentNumber).
		Int("lotes", len(lines)).
		Msg("compra creada")
	return toPurchaseResponse(header, lines), nil
}

// Update aplica un patch parcial sobre la cabecera y los detalles enviados.
// Los detalles se emparejan por (producto, bodega): si cambian cantidad o costo se actualiza el lote
// y se ajusta el stock por la diferencia; los que no emparejan son lotes nuevos. Los lotes omitidos
// no se tocan; solo se eliminan los listados en RemoveLots.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if id == "" {
		return nil, domain.Validation("el id de la compra es requerido", nil)
	}
	current, err := uc.purchases.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("error al consultar la compra", err)
	}
	if current == nil {
		return nil, domain.NotFound(fmt.Sprintf("la compra %s no existe", id))
	}
	var date *time.Time
	if in.Date != nil {
		d, err := parseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		date = &d
	}
	if in.SupplierID != nil && *in.SupplierID == "" {
		return nil, domain.Validation("el idProveedor no puede estar vacío", nil)
	}
	if in.EmployeeID != nil && *in.EmployeeID == "" {
		return nil, domain.Validation("el empleado no puede estar vacío", nil)
	}
	if in.Total != nil && in.Total.IsNegative() {
		return nil, domain.Validation("el total no puede ser negativo", nil)
	}
	for i := range in.Lines {
		if err := validateLine(i, in.Lines[i]); err != nil {
			return nil, err
		}
	}
	var supplierID, employeeID string
	if in.SupplierID != nil {
		supplierID = *in.SupplierID
	}
	if in.EmployeeID != nil {
		employeeID = *in.EmployeeID
	}
	if err := uc.checkRefs(ctx, supplierID, employeeID, in.Lines); err != nil {
		return nil, err
	}

	now := uc.now()
	var header *entity.Purchase
	var lines []*entity.PurchaseLine
	err = uc.tx.Run(ctx, func(ctx context.Context) error {
		h, err := uc.purchases.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return domain.NotFound(fmt.Sprintf("la compra %s no existe", id))
		}
		if h.IsAnulated() {
			return domain.Conflict(fmt.Sprintf("la compra %s está anulada y no se puede modificar", h.DocumentNumber))
		}

		patch := headerPatch(h, in, date)
		if !patch.IsEmpty() {
			if err := uc.purchases.UpdateHeader(ctx, h.ID, patch, now); err != nil {
				return fmt.Errorf("actualizar cabecera: %w", err)
			}
			patch.Apply(h)
			h.UpdatedAt = now
		}

		if len(in.Lines) > 0 || len(in.RemoveLots) > 0 {
			if err := uc.applyLineChanges(ctx, h, in, now); err != nil {
				return err
			}
		}

		lines, err = uc.purchases.ListLines(ctx, h.ID)
		if err != nil {
			return fmt.Errorf("listar lotes: %w", err)
		}
		header = h
		return nil
	})
	if err != nil {
		err = wrap("error al actualizar la compra", err)
		uc.failure(err).Str("purchase_id", id).Msg("actualizar compra")
		return nil, err
	}

	uc.log.Info().Str("purchase_id", header.ID).Str("document_number", header.DocumentNumber).Msg("compra actualizada")
	return toPurchaseResponse(header, lines), nil
}

func (uc *UseCase) applyLineChanges(ctx context.Context, h *entity.Purchase, in dto.UpdatePurchaseRequest, now time.Time) error {
	existing, err := uc.purchases.ListLines(ctx, h.ID)
	if err != nil {
		return fmt.Errorf("listar lotes: %w", err)
	}
	byLot := make(map[string]*entity.PurchaseLine, len(existing))
	for _, l := range existing {
		byLot[l.LotID] = l
	}

	removed := make(map[string]bool, len(in.RemoveLots))
	if len(in.RemoveLots) > 0 {
		for _, lot := range in.RemoveLots {
			if _, ok := byLot[lot]; !ok {
				return domain.Validation(fmt.Sprintf("el lote %s no pertenece a la compra %s", lot, h.DocumentNumber), nil)
			}
		}
		invoiced, err := uc.invoiceLines.FirstInvoicedLot(ctx, in.RemoveLots)
		if err != nil {
			return fmt.Errorf("verificar lotes facturados: %w", err)
		}
		if invoiced != "" {
			return domain.Conflict(fmt.Sprintf("el lote %s ya fue facturado y no se puede eliminar", invoiced))
		}
		for _, lot := range in.RemoveLots {
			if removed[lot] {
				continue
			}
			removed[lot] = true
			l := byLot[lot]
			if err := uc.purchases.DeleteLine(ctx, lot); err != nil {
				return fmt.Errorf("eliminar lote %s: %w", lot, err)
			}
			if _, err := uc.stock.Adjust(ctx, l.WarehouseID, l.ProductID, -l.Quantity); err != nil {
				return err
			}
		}
	}

	index := make(map[entity.LineKey]*entity.PurchaseLine, len(existing))
	for _, l := range existing {
		if removed[l.LotID] {
			continue
		}
		if _, dup := index[l.Key()]; !dup {
			index[l.Key()] = l
		}
	}

	for i, req := range in.Lines {
		key := entity.LineKey{ProductID: req.ProductID, WarehouseID: req.WarehouseID}
		old, ok := index[key]
		if !ok {
			line, err := uc.newLine(h.ID, i, req, now)
			if err != nil {
				return err
			}
			if err := uc.purchases.CreateLine(ctx, line); err != nil {
				return fmt.Errorf("insertar lote %s: %w", line.LotID, err)
			}
			if _, err := uc.stock.Adjust(ctx, line.WarehouseID, line.ProductID, line.Quantity); err != nil {
				return err
			}
			continue
		}
		delete(index, key)

		qty, cost := *req.Quantity, *req.UnitCost
		if qty == old.Quantity && cost.Equal(old.UnitCost) {
			continue
		}
		available, err := inventory.AvailableAfterResize(old.Quantity, old.QuantityAvailable, qty)
		if err != nil {
			return domain.Conflict(fmt.Sprintf("lote %s: %v", old.LotID, err))
		}
		upd := *old
		upd.Quantity = qty
		upd.UnitCost = cost
		upd.QuantityAvailable = available
		upd.UpdatedAt = now
		if err := uc.purchases.UpdateLine(ctx, &upd); err != nil {
			return fmt.Errorf("actualizar lote %s: %w", old.LotID, err)
		}
		if delta := qty - old.Quantity; delta != 0 {
			if _, err := uc.stock.Adjust(ctx, old.WarehouseID, old.ProductID, delta); err != nil {
				return err
			}
		}
	}
	return nil
}

// Void anula la compra y revierte del stock la cantidad de cada lote.
// Falla si ya estaba anulada o si algún lote ya fue facturado.
func (uc *UseCase) Void(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	if id == "" {
		return nil, domain.Validation("el id de la compra es requerido", nil)
	}
	now := uc.now()
	var header *entity.Purchase
	var lines []*entity.PurchaseLine
	err := uc.tx.Run(ctx, func(ctx context.Context) error {
		h, err := uc.purchases.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return domain.NotFound(fmt.Sprintf("la compra %s no existe", id))
		}
		if h.IsAnulated() {
			return domain.Conflict(fmt.Sprintf("la compra %s ya está anulada", h.DocumentNumber))
		}

		ls, err := uc.purchases.ListLines(ctx, h.ID)
		if err != nil {
			return fmt.Errorf("listar lotes: %w", err)
		}
		lotIDs := make([]string, len(ls))
		for i, l := range ls {
			lotIDs[i] = l.LotID
		}
		invoiced, err := uc.invoiceLines.FirstInvoicedLot(ctx, lotIDs)
		if err != nil {
			return fmt.Errorf("verificar lotes facturados: %w", err)
		}
		if invoiced != "" {
			return domain.Conflict(fmt.Sprintf("el lote %s ya fue facturado; no se puede anular la compra %s", invoiced, h.DocumentNumber))
		}

		status := entity.PurchaseStatusAnulated
		notes := voidNote(h.Notes, now)
		patch := entity.PurchaseHeaderPatch{Status: &status, Notes: &notes}
		if err := uc.purchases.UpdateHeader(ctx, h.ID, patch, now); err != nil {
			return fmt.Errorf("anular cabecera: %w", err)
		}
		patch.Apply(h)
		h.UpdatedAt = now

		for _, l := range ls {
			if _, err := uc.stock.Adjust(ctx, l.WarehouseID, l.ProductID, -l.Quantity); err != nil {
				return err
			}
		}
		header, lines = h, ls
		return nil
	})
	if err != nil {
		err = wrap("error al anular la compra", err)
		uc.failure(err).Str("purchase_id", id).Msg("anular compra")
		return nil, err
	}

	uc.log.Info().Str("purchase_id", header.ID).Str("document_number", header.DocumentNumber).Msg("compra anulada")
	return toPurchaseResponse(header, lines), nil
}

// checkRefs valida que el proveedor y el empleado (si vienen) y cada producto y bodega referenciados existan.
// Los ids vacíos se dejan para la validación por detalle.
func (uc *UseCase) checkRefs(ctx context.Context, supplierID, employeeID string, lines []dto.PurchaseLineRequest) error {
	if supplierID != "" {
		s, err := uc.catalog.GetSupplier(ctx, supplierID)
		if err != nil {
			return domain.Internal("error al consultar el proveedor", err)
		}
		if s == nil {
			return domain.Validation(fmt.Sprintf("el proveedor %s no existe", supplierID), nil)
		}
	}
	if employeeID != "" {
		e, err := uc.catalog.GetEmployee(ctx, employeeID)
		if err != nil {
			return domain.Internal("error al consultar el empleado", err)
		}
		if e == nil {
			return domain.Validation(fmt.Sprintf("el empleado %s no existe", employeeID), nil)
		}
	}
	seenP := map[string]bool{}
	seenW := map[string]bool{}
	for _, l := range lines {
		if l.ProductID != "" && !seenP[l.ProductID] {
			seenP[l.ProductID] = true
			p, err := uc.catalog.GetProduct(ctx, l.ProductID)
			if err != nil {
				return domain.Internal("error al consultar el producto", err)
			}
			if p == nil {
				return domain.Validation(fmt.Sprintf("el producto %s no existe", l.ProductID), nil)
			}
		}
		if l.WarehouseID != "" && !seenW[l.WarehouseID] {
			seenW[l.WarehouseID] = true
			w, err := uc.catalog.GetWarehouse(ctx, l.WarehouseID)
			if err != nil {
				return domain.Internal("error al consultar la bodega", err)
			}
			if w == nil {
				return domain.Validation(fmt.Sprintf("la bodega %s no existe", l.WarehouseID), nil)
			}
		}
	}
	return nil
}

func (uc *UseCase) newLine(purchaseID string, i int, req dto.PurchaseLineRequest, now time.Time) (*entity.PurchaseLine, error) {
	if err := validateLine(i, req); err != nil {
		return nil, err
	}
	available := *req.Quantity
	if req.QuantityAvailable != nil {
		available = *req.QuantityAvailable
	}
	return &entity.PurchaseLine{
		LotID:             uc.lots.NewLotID(req.ProductID),
		PurchaseID:        purchaseID,
		ProductID:         req.ProductID,
		WarehouseID:       req.WarehouseID,
		Quantity:          *req.Quantity,
		QuantityAvailable: available,
		UnitCost:          *req.UnitCost,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// failure elige el nivel de log según el tipo de error: los errores del cliente van en warn.
func (uc *UseCase) failure(err error) *zerolog.Event {
	ev := uc.log.Error()
	if domain.KindOf(err) != domain.ErrInternal {
		ev = uc.log.Warn()
	}
	return ev.Err(err)
}

func validateLine(i int, l dto.PurchaseLineRequest) error {
	field := func(msg string) error {
		return domain.Validation(fmt.Sprintf("detalle %d: %s", i+1, msg), nil)
	}
	switch {
	case l.ProductID == "":
		return field("el idProducto no puede estar vacío")
	case l.WarehouseID == "":
		return field("el idBodega no puede estar vacío")
	case l.Quantity == nil:
		return field("la cantidad no puede estar vacía")
	case *l.Quantity < 0:
		return field("la cantidad no puede ser negativa")
	case l.UnitCost == nil:
		return field("el costo unitario es requerido")
	case l.UnitCost.IsNegative():
		return field("el costo unitario no puede ser negativo")
	}
	if l.QuantityAvailable != nil && !inventory.ValidAvailable(*l.Quantity, *l.QuantityAvailable) {
		return field("la cantidad disponible debe estar entre 0 y la cantidad recibida")
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, domain.Validation("la fecha debe tener el formato YYYY-MM-DD", err)
	}
	return d, nil
}

// totalOf usa el total enviado o, si no viene, la suma de cantidad * costo de los detalles válidos.
func totalOf(given *decimal.Decimal, lines []dto.PurchaseLineRequest) decimal.Decimal {
	if given != nil {
		return *given
	}
	sum := decimal.Zero
	for _, l := range lines {
		if l.Quantity == nil || l.UnitCost == nil {
			continue
		}
		line := entity.PurchaseLine{Quantity: *l.Quantity, UnitCost: *l.UnitCost}
		sum = sum.Add(line.Subtotal())
	}
	return sum
}

// headerPatch solo incluye los campos enviados cuyo valor difiere del actual.
func headerPatch(h *entity.Purchase, in dto.UpdatePurchaseRequest, date *time.Time) entity.PurchaseHeaderPatch {
	var p entity.PurchaseHeaderPatch
	if in.SupplierID != nil && *in.SupplierID != h.SupplierID {
		p.SupplierID = in.SupplierID
	}
	if in.EmployeeID != nil && *in.EmployeeID != h.EmployeeID {
		p.EmployeeID = in.EmployeeID
	}
	if date != nil && !sameDay(*date, h.Date) {
		p.Date = date
	}
	if in.Total != nil && !in.Total.Equal(h.Total) {
		p.Total = in.Total
	}
	if in.Notes != nil && *in.Notes != h.Notes {
		p.Notes = in.Notes
	}
	return p
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func voidNote(prev string, at time.Time) string {
	stamp := "Compra anulada el " + at.Format("2006-01-02 15:04:05")
	if strings.TrimSpace(prev) == "" {
		return stamp
	}
	return prev + " | " + stamp
}

// wrap deja pasar los errores de dominio. Una referencia rechazada por la base es error del cliente
// y una transacción concurrente abortada es conflicto; el resto se envuelve como error interno.
func wrap(msg string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return domain.Validation(msg+": referencia inexistente", err)
	case errors.Is(err, domain.ErrConflict):
		return &domain.Error{Kind: domain.ErrConflict, Message: msg + ": otra operación modificó los mismos datos, reintente", Cause: err}
	}
	return domain.Internal(msg, err)
}
