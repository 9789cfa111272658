package purchase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/compras-api/internal/application/dto"
	"github.com/jhoicas/compras-api/internal/domain"
	"github.com/jhoicas/compras-api/internal/domain/entity"
	"github.com/jhoicas/compras-api/internal/domain/repository"
	"github.com/jhoicas/compras-api/pkg/logger"
)

// Mensajes del listado.
const (
	msgListEmpty      = "No se encontraron compras con los filtros especificados"
	msgListOutOfRange = "La página solicitada (%d) excede el total de páginas disponibles (%d)"
	msgListFound      = "Se encontraron %d compras"
)

var sortFields = map[string]repository.PurchaseSortField{
	"fecha":               repository.SortByDate,
	"numerofactura":       repository.SortByDocumentNumber,
	"numero_factura":      repository.SortByDocumentNumber,
	"numerofacturacompra": repository.SortByDocumentNumber,
	"total":               repository.SortByTotal,
	"estado":              repository.SortByStatus,
	"createdat":           repository.SortByCreatedAt,
	"created_at":          repository.SortByCreatedAt,
	"updatedat":           repository.SortByUpdatedAt,
	"updated_at":          repository.SortByUpdatedAt,
}

var statuses = map[string]bool{
	entity.PurchaseStatusPending:   true,
	entity.PurchaseStatusProcessed: true,
	entity.PurchaseStatusAnulated:  true,
	entity.PurchaseStatusCanceled:  true,
}

// ParseSort traduce sortBy/sortOrder a una columna permitida. Por defecto fecha descendente.
func ParseSort(sortBy, sortOrder string) (repository.PurchaseSortField, bool, error) {
	field := repository.SortByDate
	if sortBy != "" {
		f, ok := sortFields[strings.ToLower(sortBy)]
		if !ok {
			return "", false, domain.Validation(fmt.Sprintf("no se puede ordenar por %q", sortBy), nil)
		}
		field = f
	}
	switch strings.ToLower(sortOrder) {
	case "", "desc":
		return field, true, nil
	case "asc":
		return field, false, nil
	default:
		return "", false, domain.Validation("sortOrder debe ser asc o desc", nil)
	}
}

// QueryService lecturas de compras con los nombres de proveedor, empleado, producto y bodega resueltos.
type QueryService struct {
	purchases repository.PurchaseRepository
	catalog   repository.CatalogRepository
	log       *logger.Logger
}

// NewQueryService construye el servicio de consulta.
func NewQueryService(purchases repository.PurchaseRepository, catalog repository.CatalogRepository, log *logger.Logger) *QueryService {
	return &QueryService{purchases: purchases, catalog: catalog, log: log.Component("purchase_query")}
}

// GetByRef busca por id o número de documento. Devuelve nil, nil si la cabecera no existe;
// una compra sin lotes se devuelve con la lista de detalles vacía.
func (s *QueryService) GetByRef(ctx context.Context, ref string) (*dto.PurchaseFormatted, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.Validation("el id o número de la compra es requerido", nil)
	}
	h, err := s.purchases.FindByRef(ctx, ref)
	if err != nil {
		s.log.Error().Err(err).Str("ref", ref).Msg("consultar compra")
		return nil, domain.Internal("error al consultar la compra", err)
	}
	if h == nil {
		return nil, nil
	}
	lines, err := s.purchases.ListLines(ctx, h.ID)
	if err != nil {
		s.log.Error().Err(err).Str("purchase_id", h.ID).Msg("listar lotes")
		return nil, domain.Internal("error al consultar los detalles de la compra", err)
	}
	names, err := s.resolveNames(ctx, []*entity.Purchase{h}, lines)
	if err != nil {
		return nil, err
	}

	out := &dto.PurchaseFormatted{
		Header:  names.header(h),
		Details: make([]dto.PurchaseLineFormatted, 0, len(lines)),
	}
	for _, l := range lines {
		out.Details = append(out.Details, dto.PurchaseLineFormatted{
			PurchaseLineResponse: toLineResponse(l),
			ProductName:          names[repository.CatalogProduct][l.ProductID],
			WarehouseName:        names[repository.CatalogWarehouse][l.WarehouseID],
		})
	}
	return out, nil
}

// List filtra, ordena y pagina cabeceras. Una página mayor que el total de páginas
// no es error: se responde con status "error", sin compras y con la paginación calculada.
func (s *QueryService) List(ctx context.Context, q dto.PurchaseListQuery) (*dto.PurchaseListResponse, error) {
	q.Defaults()
	if q.Size > 100 {
		return nil, domain.Validation("el tamaño de página no debe exceder 100", nil)
	}
	sortBy, desc, err := ParseSort(q.SortBy, q.SortOrder)
	if err != nil {
		return nil, err
	}
	if q.Status != "" && !statuses[q.Status] {
		return nil, domain.Validation(fmt.Sprintf("estado inválido %q", q.Status), nil)
	}
	f := repository.PurchaseFilter{
		SupplierID:     strings.TrimSpace(q.SupplierID),
		Employee:       strings.TrimSpace(q.Employee),
		Status:         q.Status,
		Product:        strings.TrimSpace(q.Product),
		Warehouse:      strings.TrimSpace(q.Warehouse),
		DocumentNumber: strings.TrimSpace(q.DocumentNumber),
		SortBy:         sortBy,
		SortDesc:       desc,
		Limit:          q.Size,
		Offset:         (q.Page - 1) * q.Size,
	}
	if q.Date != "" {
		d, err := parseDate(q.Date)
		if err != nil {
			return nil, err
		}
		f.Date = &d
	}

	items, total, err := s.purchases.List(ctx, f)
	if err != nil {
		s.log.Error().Err(err).Msg("listar compras")
		return nil, domain.Internal("error al listar las compras", err)
	}

	meta := dto.NewPaginationMeta(total, q.Page, q.Size)
	resp := &dto.PurchaseListResponse{
		Status:     dto.ResponseStatusSuccess,
		Data:       dto.PurchaseListData{Compras: []dto.PurchaseHeaderFormatted{}},
		Pagination: meta,
	}
	switch {
	case total == 0:
		resp.Message = msgListEmpty
		return resp, nil
	case q.Page > meta.Pages:
		resp.Status = dto.ResponseStatusError
		resp.Message = fmt.Sprintf(msgListOutOfRange, q.Page, meta.Pages)
		return resp, nil
	}

	names, err := s.resolveNames(ctx, items, nil)
	if err != nil {
		return nil, err
	}
	for _, h := range items {
		resp.Data.Compras = append(resp.Data.Compras, names.header(h))
	}
	resp.Message = fmt.Sprintf(msgListFound, total)
	return resp, nil
}

type catalogNames map[repository.CatalogKind]map[string]string

func (n catalogNames) header(h *entity.Purchase) dto.PurchaseHeaderFormatted {
	return dto.PurchaseHeaderFormatted{
		PurchaseHeaderResponse: toHeaderResponse(h),
		SupplierName:           n[repository.CatalogSupplier][h.SupplierID],
		EmployeeName:           n[repository.CatalogEmployee][h.EmployeeID],
	}
}

// resolveNames hace una consulta por tabla de catálogo con los ids distintos, sin importar cuántos lotes haya.
func (s *QueryService) resolveNames(ctx context.Context, headers []*entity.Purchase, lines []*entity.PurchaseLine) (catalogNames, error) {
	ids := map[repository.CatalogKind][]string{}
	seen := map[repository.CatalogKind]map[string]bool{}
	add := func(kind repository.CatalogKind, id string) {
		if id == "" {
			return
		}
		if seen[kind] == nil {
			seen[kind] = map[string]bool{}
		}
		if !seen[kind][id] {
			seen[kind][id] = true
			ids[kind] = append(ids[kind], id)
		}
	}
	for _, h := range headers {
		add(repository.CatalogSupplier, h.SupplierID)
		add(repository.CatalogEmployee, h.EmployeeID)
	}
	for _, l := range lines {
		add(repository.CatalogProduct, l.ProductID)
		add(repository.CatalogWarehouse, l.WarehouseID)
	}

	out := catalogNames{}
	for _, kind := range []repository.CatalogKind{
		repository.CatalogSupplier, repository.CatalogEmployee, repository.CatalogProduct, repository.CatalogWarehouse,
	} {
		if len(ids[kind]) == 0 {
			continue
		}
		m, err := s.catalog.Names(ctx, kind, ids[kind])
		if err != nil {
			s.log.Error().Err(err).Str("catalog", string(kind)).Msg("resolver nombres")
			return nil, domain.Internal("error al resolver nombres de catálogo", err)
		}
		if kind == repository.CatalogEmployee {
			caser := cases.Title(language.Spanish)
			titled := make(map[string]string, len(m))
			for id, name := range m {
				titled[id] = caser.String(name)
			}
			m = titled
		}
		out[kind] = m
	}
	return out, nil
}
