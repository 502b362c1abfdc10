// Package memstore implementa repository.Set y repository.UnitOfWork en memoria.
// Las transacciones se serializan y se revierten restaurando una copia del estado;
// FailOn permite inyectar fallas en una operación concreta para probar rollbacks.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

type stockKey struct {
	empresa, sucursal, producto string
}

type state struct {
	branches         map[string]entity.Branch
	products         map[string]entity.Product
	customers        map[string]entity.Customer
	suppliers        map[string]entity.Supplier
	stock            map[stockKey]entity.BranchStock
	movements        []entity.Movement
	purchases        []entity.Purchase
	purchaseLines    []entity.PurchaseLine
	purchasePayments []entity.PurchasePayment
	sales            []entity.Sale
	saleLines        []entity.SaleLine
	salePayments     []entity.SalePayment
	notifications    []entity.Notification
	alertConfigs     []entity.AlertConfig
	alertEvents      []entity.AlertEvent
}

func newState() *state {
	return &state{
		branches:  map[string]entity.Branch{},
		products:  map[string]entity.Product{},
		customers: map[string]entity.Customer{},
		suppliers: map[string]entity.Supplier{},
		stock:     map[stockKey]entity.BranchStock{},
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.branches {
		c.branches[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.customers {
		c.customers[k] = v
	}
	for k, v := range st.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range st.stock {
		c.stock[k] = v
	}
	c.movements = append([]entity.Movement(nil), st.movements...)
	c.purchases = append([]entity.Purchase(nil), st.purchases...)
	c.purchaseLines = append([]entity.PurchaseLine(nil), st.purchaseLines...)
	c.purchasePayments = append([]entity.PurchasePayment(nil), st.purchasePayments...)
	c.sales = append([]entity.Sale(nil), st.sales...)
	c.saleLines = append([]entity.SaleLine(nil), st.saleLines...)
	c.salePayments = append([]entity.SalePayment(nil), st.salePayments...)
	c.notifications = append([]entity.Notification(nil), st.notifications...)
	c.alertConfigs = append([]entity.AlertConfig(nil), st.alertConfigs...)
	c.alertEvents = append([]entity.AlertEvent(nil), st.alertEvents...)
	return c
}

type fault struct {
	remaining int
	err       error
}

// Store almacenamiento en memoria.
type Store struct {
	txMu   sync.Mutex
	mu     sync.Mutex
	data   *state
	faults map[string]*fault
}

// New crea un almacenamiento vacío.
func New() *Store {
	return &Store{data: newState(), faults: map[string]*fault{}}
}

var _ repository.UnitOfWork = (*Store)(nil)

// Set repositorios atados al almacenamiento.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Branches:      branchRepo{s},
		Products:      productRepo{s},
		Customers:     customerRepo{s},
		Suppliers:     supplierRepo{s},
		Stock:         stockRepo{s},
		Movements:     movementRepo{s},
		Purchases:     purchaseRepo{s},
		Sales:         saleRepo{s},
		Notifications: notificationRepo{s},
		Alerts:        alertRepo{s},
	}
}

// Run serializa las transacciones; si fn falla el estado vuelve a la copia previa.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Set) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s.Set()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// FailOn hace que la n-ésima llamada (desde ahora, base 1) a op devuelva err.
// op tiene la forma "Repositorio.Metodo", por ejemplo "Movements.Create".
func (s *Store) FailOn(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{remaining: n, err: err}
}

// check debe llamarse con mu tomado.
func (s *Store) check(op string) error {
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	f.remaining--
	if f.remaining > 0 {
		return nil
	}
	delete(s.faults, op)
	return f.err
}

// ---------------------------------------------------------------------------
// Datos de prueba e inspección
// ---------------------------------------------------------------------------

// AddBranch registra una sucursal.
func (s *Store) AddBranch(b entity.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.branches[b.EmpresaID+"/"+b.ID] = b
}

// AddProduct registra un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.EmpresaID+"/"+p.ID] = p
}

// AddCustomer registra un cliente.
func (s *Store) AddCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[c.EmpresaID+"/"+c.ID] = c
}

// AddSupplier registra un proveedor.
func (s *Store) AddSupplier(p entity.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.suppliers[p.EmpresaID+"/"+p.ID] = p
}

// PutStock fija una fila de stock sin generar movimiento (configuración de mínimos en pruebas).
func (s *Store) PutStock(b entity.BranchStock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.stock[stockKey{b.EmpresaID, b.SucursalID, b.ProductoID}] = b
}

// StockOf saldo actual; false si la fila no existe.
func (s *Store) StockOf(empresaID, sucursalID, productoID string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.stock[stockKey{empresaID, sucursalID, productoID}]
	return b.StockActual, ok
}

// AllMovements copia del log en orden de creación.
func (s *Store) AllMovements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Movement(nil), s.data.movements...)
}

// ---------------------------------------------------------------------------
// Directorios
// ---------------------------------------------------------------------------

type branchRepo struct{ s *Store }

func (r branchRepo) GetByID(_ context.Context, empresaID, id string) (*entity.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Branches.GetByID"); err != nil {
		return nil, err
	}
	b, ok := r.s.data.branches[empresaID+"/"+id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

type productRepo struct{ s *Store }

func (r productRepo) GetByID(_ context.Context, empresaID, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Products.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.data.products[empresaID+"/"+id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type customerRepo struct{ s *Store }

func (r customerRepo) GetByID(_ context.Context, empresaID, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Customers.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.data.customers[empresaID+"/"+id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type supplierRepo struct{ s *Store }

func (r supplierRepo) GetByID(_ context.Context, empresaID, id string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Suppliers.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.data.suppliers[empresaID+"/"+id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// ---------------------------------------------------------------------------
// Stock y movimientos
// ---------------------------------------------------------------------------

type stockRepo struct{ s *Store }

func (r stockRepo) GetForUpdate(_ context.Context, empresaID, sucursalID, productoID string) (*entity.BranchStock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Stock.GetForUpdate"); err != nil {
		return nil, err
	}
	b, ok := r.s.data.stock[stockKey{empresaID, sucursalID, productoID}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r stockRepo) Insert(_ context.Context, b *entity.BranchStock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Stock.Insert"); err != nil {
		return err
	}
	k := stockKey{b.EmpresaID, b.SucursalID, b.ProductoID}
	if _, ok := r.s.data.stock[k]; ok {
		return nil
	}
	r.s.data.stock[k] = *b
	return nil
}

func (r stockRepo) UpdateBalance(_ context.Context, empresaID, sucursalID, productoID string, stockActual decimal.Decimal, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Stock.UpdateBalance"); err != nil {
		return err
	}
	k := stockKey{empresaID, sucursalID, productoID}
	b, ok := r.s.data.stock[k]
	if !ok {
		return fmt.Errorf("stock %s/%s no existe", sucursalID, productoID)
	}
	b.StockActual = stockActual
	b.UpdatedAt = at
	r.s.data.stock[k] = b
	return nil
}

func (r stockRepo) view(b entity.BranchStock) *entity.StockView {
	v := &entity.StockView{BranchStock: b}
	if br, ok := r.s.data.branches[b.EmpresaID+"/"+b.SucursalID]; ok {
		v.SucursalNombre = br.Nombre
	}
	if p, ok := r.s.data.products[b.EmpresaID+"/"+b.ProductoID]; ok {
		v.ProductoNombre = p.Nombre
		v.SKU = p.SKU
		v.CategoriaID = p.CategoriaID
	}
	return v
}

func sortViews(out []*entity.StockView) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SucursalNombre != out[j].SucursalNombre {
			return out[i].SucursalNombre < out[j].SucursalNombre
		}
		if out[i].ProductoNombre != out[j].ProductoNombre {
			return out[i].ProductoNombre < out[j].ProductoNombre
		}
		return out[i].ProductoID < out[j].ProductoID
	})
}

func (r stockRepo) List(_ context.Context, empresaID string, f repository.StockFilter) ([]*entity.StockView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Stock.List"); err != nil {
		return nil, err
	}
	out := []*entity.StockView{}
	for _, b := range r.s.data.stock {
		if b.EmpresaID != empresaID {
			continue
		}
		if f.SucursalID != "" && b.SucursalID != f.SucursalID {
			continue
		}
		if f.ProductoID != "" && b.ProductoID != f.ProductoID {
			continue
		}
		v := r.view(b)
		if f.CategoriaID != "" && v.CategoriaID != f.CategoriaID {
			continue
		}
		out = append(out, v)
	}
	sortViews(out)
	return page(out, f.Limit, f.Offset), nil
}

func (r stockRepo) ListBelowMinimum(_ context.Context, empresaID, sucursalID string) ([]*entity.StockView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Stock.ListBelowMinimum"); err != nil {
		return nil, err
	}
	out := []*entity.StockView{}
	for _, b := range r.s.data.stock {
		if b.EmpresaID != empresaID || (sucursalID != "" && b.SucursalID != sucursalID) {
			continue
		}
		if !b.BelowMinimum() {
			continue
		}
		out = append(out, r.view(b))
	}
	sortViews(out)
	return out, nil
}

type movementRepo struct{ s *Store }

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Movements.Create"); err != nil {
		return err
	}
	r.s.data.movements = append(r.s.data.movements, *m)
	return nil
}

func (r movementRepo) GetByID(_ context.Context, empresaID, id string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Movements.GetByID"); err != nil {
		return nil, err
	}
	for _, m := range r.s.data.movements {
		if m.EmpresaID == empresaID && m.ID == id {
			return &m, nil
		}
	}
	return nil, nil
}

// List más recientes primero; a igual fecha, el último creado primero.
func (r movementRepo) List(_ context.Context, empresaID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Movements.List"); err != nil {
		return nil, err
	}
	out := []*entity.Movement{}
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		if m.EmpresaID != empresaID ||
			(f.SucursalID != "" && m.SucursalID != f.SucursalID) ||
			(f.ProductoID != "" && m.ProductoID != f.ProductoID) ||
			(f.Tipo != "" && m.Tipo != f.Tipo) ||
			(f.Motivo != "" && m.Motivo != f.Motivo) ||
			!inRange(m.FechaMovimiento, f.Desde, f.Hasta) {
			continue
		}
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FechaMovimiento.After(out[j].FechaMovimiento) })
	return page(out, f.Limit, f.Offset), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func inRange(t time.Time, desde, hasta *time.Time) bool {
	if desde != nil && t.Before(*desde) {
		return false
	}
	if hasta != nil && t.After(*hasta) {
		return false
	}
	return true
}

func page[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return in[:0]
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// creditMatch criterio común de cuentas por cobrar/pagar.
func creditMatch(tipo, estado string, saldo decimal.Decimal, venc *time.Time, fecha time.Time, f repository.CreditFilter) bool {
	if tipo != entity.TipoCredito {
		return false
	}
	if f.Estado == "" {
		if !saldo.IsPositive() || (estado != entity.EstadoPendiente && estado != entity.EstadoParcial) {
			return false
		}
	} else if estado != f.Estado {
		return false
	}
	if f.Vencidos && (venc == nil || !venc.Before(f.Now) || !saldo.IsPositive()) {
		return false
	}
	return inRange(fecha, f.Desde, f.Hasta)
}

// creditLess NULL de vencimiento al final, luego vencimiento y fecha ascendentes.
func creditLess(vi, vj *time.Time, fi, fj time.Time) bool {
	switch {
	case vi == nil && vj == nil:
	case vi == nil:
		return false
	case vj == nil:
		return true
	case !vi.Equal(*vj):
		return vi.Before(*vj)
	}
	return fi.Before(fj)
}
