package purchase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jhoicas/compras-api/internal/application/inventory"
	"github.com/jhoicas/compras-api/internal/domain"
	"github.com/jhoicas/compras-api/internal/domain/document"
	"github.com/jhoicas/compras-api/internal/domain/entity"
	"github.com/jhoicas/compras-api/internal/domain/repository"
	"github.com/jhoicas/compras-api/pkg/logger"
)

var fixedNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

// memState base de datos en memoria. fakeTx la copia antes de cada unidad de trabajo
// y la restaura si fn falla, igual que un ROLLBACK.
type memState struct {
	purchases map[string]entity.Purchase
	lines     []entity.PurchaseLine
	stock     map[string]entity.Stock
	invoiced  map[string]bool

	suppliers  map[string]string
	employees  map[string]string
	products   map[string]string
	warehouses map[string]string

	// failAdjust, si no es nil, se consulta antes de cada ajuste de stock.
	failAdjust  func(productID string) error
	headerPatch []entity.PurchaseHeaderPatch
	namesCalls  int
}

func newMemState() *memState {
	return &memState{
		purchases:  map[string]entity.Purchase{},
		stock:      map[string]entity.Stock{},
		invoiced:   map[string]bool{},
		suppliers:  map[string]string{"PROV1": "Distribuidora Andina", "PROV2": "Lácteos del Valle"},
		employees:  map[string]string{"EMP1": "maría pérez", "EMP2": "juan gómez"},
		products:   map[string]string{"P1": "Arroz 500g", "P2": "Aceite 1L", "P3": "Azúcar 1kg"},
		warehouses: map[string]string{"B1": "Bodega Central", "B2": "Bodega Norte"},
	}
}

func (s *memState) snapshot() memState {
	cp := *s
	cp.purchases = make(map[string]entity.Purchase, len(s.purchases))
	for k, v := range s.purchases {
		cp.purchases[k] = v
	}
	cp.lines = append([]entity.PurchaseLine(nil), s.lines...)
	cp.stock = make(map[string]entity.Stock, len(s.stock))
	for k, v := range s.stock {
		cp.stock[k] = v
	}
	cp.headerPatch = append([]entity.PurchaseHeaderPatch(nil), s.headerPatch...)
	return cp
}

func (s *memState) restore(snap memState) {
	s.purchases = snap.purchases
	s.lines = snap.lines
	s.stock = snap.stock
	s.headerPatch = snap.headerPatch
}

func (s *memState) qty(productID, warehouseID string) int {
	return s.stock[entity.StockID(productID, warehouseID)].Quantity
}

func (s *memState) seedStock(productID, warehouseID string, qty int) {
	id := entity.StockID(productID, warehouseID)
	s.stock[id] = entity.Stock{ID: id, ProductID: productID, WarehouseID: warehouseID, Quantity: qty}
}

type fakeTx struct {
	st   *memState
	runs int
}

type txMarker struct{}

func (f *fakeTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	f.runs++
	snap := f.st.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		f.st.restore(snap)
		return err
	}
	return nil
}

type memPurchases struct{ st *memState }

var _ repository.PurchaseRepository = memPurchases{}

func (r memPurchases) Create(_ context.Context, p *entity.Purchase) error {
	if _, ok := r.st.purchases[p.ID]; ok {
		return fmt.Errorf("%w: compra %s", domain.ErrDuplicate, p.ID)
	}
	for _, other := range r.st.purchases {
		if other.DocumentNumber == p.DocumentNumber {
			return fmt.Errorf("%w: numero_factura %s", domain.ErrDuplicate, p.DocumentNumber)
		}
	}
	r.st.purchases[p.ID] = *p
	return nil
}

func (r memPurchases) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	p, ok := r.st.purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPurchases) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r memPurchases) FindByRef(_ context.Context, ref string) (*entity.Purchase, error) {
	for _, p := range r.st.purchases {
		if p.ID == ref || p.DocumentNumber == ref {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memPurchases) UpdateHeader(_ context.Context, id string, patch entity.PurchaseHeaderPatch, updatedAt time.Time) error {
	p, ok := r.st.purchases[id]
	if !ok {
		return errors.New("update sin filas")
	}
	patch.Apply(&p)
	p.UpdatedAt = updatedAt
	r.st.purchases[id] = p
	r.st.headerPatch = append(r.st.headerPatch, patch)
	return nil
}

func (r memPurchases) CreateLine(_ context.Context, l *entity.PurchaseLine) error {
	for _, other := range r.st.lines {
		if other.LotID == l.LotID {
			return fmt.Errorf("%w: id_lote %s", domain.ErrDuplicate, l.LotID)
		}
	}
	r.st.lines = append(r.st.lines, *l)
	return nil
}

func (r memPurchases) UpdateLine(_ context.Context, l *entity.PurchaseLine) error {
	for i := range r.st.lines {
		if r.st.lines[i].LotID == l.LotID {
			r.st.lines[i] = *l
			return nil
		}
	}
	return errors.New("update sin filas")
}

func (r memPurchases) DeleteLine(_ context.Context, lotID string) error {
	for i := range r.st.lines {
		if r.st.lines[i].LotID == lotID {
			r.st.lines = append(r.st.lines[:i:i], r.st.lines[i+1:]...)
			return nil
		}
	}
	return errors.New("delete sin filas")
}

func (r memPurchases) ListLines(_ context.Context, purchaseID string) ([]*entity.PurchaseLine, error) {
	var out []*entity.PurchaseLine
	for _, l := range r.st.lines {
		if l.PurchaseID == purchaseID {
			cp := l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memPurchases) List(_ context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, int, error) {
	contains := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	hasLine := func(p entity.Purchase, match func(entity.PurchaseLine) bool) bool {
		for _, l := range r.st.lines {
			if l.PurchaseID == p.ID && match(l) {
				return true
			}
		}
		return false
	}
	var all []*entity.Purchase
	for _, p := range r.st.purchases {
		switch {
		case f.SupplierID != "" && p.SupplierID != f.SupplierID:
			continue
		case f.Status != "" && p.Status != f.Status:
			continue
		case f.Date != nil && !sameDay(*f.Date, p.Date):
			continue
		case f.DocumentNumber != "" && !contains(p.DocumentNumber, f.DocumentNumber):
			continue
		case f.Employee != "" && p.EmployeeID != f.Employee && !contains(r.st.employees[p.EmployeeID], f.Employee):
			continue
		case f.Product != "" && !hasLine(p, func(l entity.PurchaseLine) bool {
			return l.ProductID == f.Product || contains(r.st.products[l.ProductID], f.Product)
		}):
			continue
		case f.Warehouse != "" && !hasLine(p, func(l entity.PurchaseLine) bool {
			return l.WarehouseID == f.Warehouse || contains(r.st.warehouses[l.WarehouseID], f.Warehouse)
		}):
			continue
		}
		cp := p
		all = append(all, &cp)
	}
	less := func(a, b *entity.Purchase) bool {
		switch f.SortBy {
		case repository.SortByTotal:
			return a.Total.LessThan(b.Total)
		case repository.SortByDocumentNumber:
			return a.DocumentNumber < b.DocumentNumber
		case repository.SortByStatus:
			return a.Status < b.Status
		case repository.SortByCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case repository.SortByUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.Date.Before(b.Date)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if f.SortDesc {
			return less(all[j], all[i])
		}
		return less(all[i], all[j])
	})
	total := len(all)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return all[f.Offset:end], total, nil
}

type memStock struct{ st *memState }

var _ repository.StockRepository = memStock{}

func (r memStock) Exists(_ context.Context, p, w string) (bool, error) {
	_, ok := r.st.stock[entity.StockID(p, w)]
	return ok, nil
}

func (r memStock) Get(_ context.Context, p, w string) (*entity.Stock, error) {
	s, ok := r.st.stock[entity.StockID(p, w)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memStock) Create(_ context.Context, p, w string, qty int) (*entity.Stock, error) {
	id := entity.StockID(p, w)
	if _, ok := r.st.stock[id]; ok {
		return nil, domain.ErrDuplicate
	}
	s := entity.Stock{ID: id, ProductID: p, WarehouseID: w, Quantity: qty}
	r.st.stock[id] = s
	return &s, nil
}

func (r memStock) SetQuantity(_ context.Context, p, w string, qty int) (*entity.Stock, error) {
	id := entity.StockID(p, w)
	s, ok := r.st.stock[id]
	if !ok {
		return nil, nil
	}
	s.Quantity = qty
	r.st.stock[id] = s
	return &s, nil
}

func (r memStock) Adjust(_ context.Context, w, p string, delta int) (*entity.Stock, error) {
	if r.st.failAdjust != nil {
		if err := r.st.failAdjust(p); err != nil {
			return nil, err
		}
	}
	id := entity.StockID(p, w)
	s, ok := r.st.stock[id]
	if !ok {
		s = entity.Stock{ID: id, ProductID: p, WarehouseID: w}
	}
	s.Quantity += delta
	r.st.stock[id] = s
	return &s, nil
}

type memCatalog struct{ st *memState }

var _ repository.CatalogRepository = memCatalog{}

func (c memCatalog) GetSupplier(_ context.Context, id string) (*entity.Supplier, error) {
	name, ok := c.st.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &entity.Supplier{ID: id, Name: name}, nil
}

func (c memCatalog) GetEmployee(_ context.Context, id string) (*entity.Employee, error) {
	name, ok := c.st.employees[id]
	if !ok {
		return nil, nil
	}
	return &entity.Employee{ID: id, FirstName: name}, nil
}

func (c memCatalog) GetProduct(_ context.Context, id string) (*entity.Product, error) {
	name, ok := c.st.products[id]
	if !ok {
		return nil, nil
	}
	return &entity.Product{ID: id, Name: name}, nil
}

func (c memCatalog) GetWarehouse(_ context.Context, id string) (*entity.Warehouse, error) {
	name, ok := c.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &entity.Warehouse{ID: id, Name: name}, nil
}

func (c memCatalog) Names(_ context.Context, kind repository.CatalogKind, ids []string) (map[string]string, error) {
	c.st.namesCalls++
	src := map[repository.CatalogKind]map[string]string{
		repository.CatalogSupplier:  c.st.suppliers,
		repository.CatalogEmployee:  c.st.employees,
		repository.CatalogProduct:   c.st.products,
		repository.CatalogWarehouse: c.st.warehouses,
	}[kind]
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := src[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type memInvoices struct{ st *memState }

func (r memInvoices) FirstInvoicedLot(_ context.Context, lotIDs []string) (string, error) {
	for _, id := range lotIDs {
		if r.st.invoiced[id] {
			return id, nil
		}
	}
	return "", nil
}

// memSequence numeración leyendo el mayor número del mes, como la estrategia legacy.
type memSequence struct{ st *memState }

func (s memSequence) Next(_ context.Context, prefix string, date time.Time) (int, error) {
	month := document.MonthPrefix(prefix, date)
	last := ""
	for _, p := range s.st.purchases {
		if strings.HasPrefix(p.DocumentNumber, month) && p.DocumentNumber > last {
			last = p.DocumentNumber
		}
	}
	return document.Next(last), nil
}

// seqLots ids de lote deterministas.
type seqLots struct {
	n     int
	fixed string
}

func (g *seqLots) NewLotID(productID string) string {
	if g.fixed != "" {
		return g.fixed
	}
	g.n++
	return FormatLotID(productID, fixedNow, g.n)
}

type testEnv struct {
	st   *memState
	tx   *fakeTx
	lots *seqLots
	uc   *UseCase
	q    *QueryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := newMemState()
	tx := &fakeTx{st: st}
	lots := &seqLots{}
	log := logger.Nop()
	ledger := inventory.NewStockLedger(memStock{st}, memCatalog{st}, log)
	uc := NewUseCase(tx, memPurchases{st}, memCatalog{st}, memInvoices{st}, ledger,
		NewNumberer("comp", memSequence{st}), lots, log)
	uc.now = func() time.Time { return fixedNow }
	return &testEnv{
		st:   st,
		tx:   tx,
		lots: lots,
		uc:   uc,
		q:    NewQueryService(memPurchases{st}, memCatalog{st}, log),
	}
}
