package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

type purchaseRepo struct{ s *Store }

func (r purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Purchases.Create"); err != nil {
		return err
	}
	for _, x := range r.s.data.purchases {
		if x.ID == p.ID {
			return fmt.Errorf("compra %s duplicada", p.ID)
		}
	}
	r.s.data.purchases = append(r.s.data.purchases, *p)
	return nil
}

func (r purchaseRepo) CreateLine(_ context.Context, l *entity.PurchaseLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Purchases.CreateLine"); err != nil {
		return err
	}
	r.s.data.purchaseLines = append(r.s.data.purchaseLines, *l)
	return nil
}

func (r purchaseRepo) find(empresaID, id string) (int, bool) {
	for i, p := range r.s.data.purchases {
		if p.EmpresaID == empresaID && p.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (r purchaseRepo) get(op, empresaID, id string) (*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(op); err != nil {
		return nil, err
	}
	i, ok := r.find(empresaID, id)
	if !ok {
		return nil, nil
	}
	p := r.s.data.purchases[i]
	return &p, nil
}

func (r purchaseRepo) GetByID(_ context.Context, empresaID, id string) (*entity.Purchase, error) {
	return r.get("Purchases.GetByID", empresaID, id)
}

func (r purchaseRepo) GetForUpdate(_ context.Context, empresaID, id string) (*entity.Purchase, error) {
	return r.get("Purchases.GetForUpdate", empresaID, id)
}

func (r purchaseRepo) ListLines(_ context.Context, empresaID, compraID string) ([]*entity.PurchaseLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Purchases.ListLines"); err != nil {
		return nil, err
	}
	out := []*entity.PurchaseLine{}
	for _, l := range r.s.data.purchaseLines {
		if l.EmpresaID == empresaID && l.CompraID == compraID {
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r purchaseRepo) UpdateBalance(_ context.Context, empresaID, id string, patch entity.BalancePatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Purchases.UpdateBalance"); err != nil {
		return err
	}
	i, ok := r.find(empresaID, id)
	if !ok {
		return fmt.Errorf("compra %s no existe", id)
	}
	r.s.data.purchases[i].SaldoPendiente = patch.SaldoPendiente
	r.s.data.purchases[i].Estado = patch.Estado
	r.s.data.purchases[i].UpdatedAt = patch.UpdatedAt
	return nil
}

func (r purchaseRepo) List(_ context.Context, empresaID string, f repository.DocumentFilter) ([]*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Purchases.List"); err != nil {
		return nil, err
	}
	out := []*entity.Purchase{}
	for i := len(r.s.data.purchases) - 1; i >= 0; i-- {
		p := r.s.data.purchases[i]
		if p.EmpresaID != empresaID ||
			(f.ContraparteID != "" && p.ProveedorID != f.ContraparteID) ||
			(f.SucursalID != "" && p.SucursalID != f.SucursalID) ||
			(f.Tipo != "" && p.TipoCompra != f.Tipo) ||
			(f.Estado != "" && p.Estado != f.Estado) ||
			!inRange(p.FechaCompra, f.Desde, f.Hasta) {
			continue
		}
		out = append(out, &p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FechaCompra.After(out[j].FechaCompra) })
	return page(out, f.Limit, f.Offset), nil
}

func (r purchaseRepo) ListCredits(_ context.Context, empresaID string, f repository.CreditFilter) ([]*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Purchases.ListCredits"); err != nil {
		return nil, err
	}
	out := []*entity.Purchase{}
	for _, p := range r.s.data.purchases {
		if p.EmpresaID != empresaID ||
			(f.ContraparteID != "" && p.ProveedorID != f.ContraparteID) ||
			(f.SucursalID != "" && p.SucursalID != f.SucursalID) ||
			!creditMatch(p.TipoCompra, p.Estado, p.SaldoPendiente, p.FechaVencimiento, p.FechaCompra, f) {
			continue
		}
		out = append(out, &p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return creditLess(out[i].FechaVencimiento, out[j].FechaVencimiento, out[i].FechaCompra, out[j].FechaCompra)
	})
	return out, nil
}

func (r purchaseRepo) CreatePayment(_ context.Context, p *entity.PurchasePayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Purchases.CreatePayment"); err != nil {
		return err
	}
	r.s.data.purchasePayments = append(r.s.data.purchasePayments, *p)
	return nil
}

func (r purchaseRepo) ListPayments(_ context.Context, empresaID, compraID string) ([]*entity.PurchasePayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Purchases.ListPayments"); err != nil {
		return nil, err
	}
	out := []*entity.PurchasePayment{}
	for _, p := range r.s.data.purchasePayments {
		if p.EmpresaID == empresaID && p.CompraID == compraID {
			out = append(out, &p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FechaPago.Before(out[j].FechaPago) })
	return out, nil
}

type saleRepo struct{ s *Store }

func (r saleRepo) Create(_ context.Context, v *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Sales.Create"); err != nil {
		return err
	}
	for _, x := range r.s.data.sales {
		if x.ID == v.ID {
			return fmt.Errorf("venta %s duplicada", v.ID)
		}
	}
	r.s.data.sales = append(r.s.data.sales, *v)
	return nil
}

func (r saleRepo) CreateLine(_ context.Context, l *entity.SaleLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Sales.CreateLine"); err != nil {
		return err
	}
	r.s.data.saleLines = append(r.s.data.saleLines, *l)
	return nil
}

func (r saleRepo) find(empresaID, id string) (int, bool) {
	for i, v := range r.s.data.sales {
		if v.EmpresaID == empresaID && v.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (r saleRepo) get(op, empresaID, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(op); err != nil {
		return nil, err
	}
	i, ok := r.find(empresaID, id)
	if !ok {
		return nil, nil
	}
	v := r.s.data.sales[i]
	return &v, nil
}

func (r saleRepo) GetByID(_ context.Context, empresaID, id string) (*entity.Sale, error) {
	return r.get("Sales.GetByID", empresaID, id)
}

func (r saleRepo) GetForUpdate(_ context.Context, empresaID, id string) (*entity.Sale, error) {
	return r.get("Sales.GetForUpdate", empresaID, id)
}

func (r saleRepo) ListLines(_ context.Context, empresaID, ventaID string) ([]*entity.SaleLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Sales.ListLines"); err != nil {
		return nil, err
	}
	out := []*entity.SaleLine{}
	for _, l := range r.s.data.saleLines {
		if l.EmpresaID == empresaID && l.VentaID == ventaID {
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r saleRepo) UpdateBalance(_ context.Context, empresaID, id string, patch entity.BalancePatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Sales.UpdateBalance"); err != nil {
		return err
	}
	i, ok := r.find(empresaID, id)
	if !ok {
		return fmt.Errorf("venta %s no existe", id)
	}
	r.s.data.sales[i].SaldoPendiente = patch.SaldoPendiente
	r.s.data.sales[i].Estado = patch.Estado
	r.s.data.sales[i].UpdatedAt = patch.UpdatedAt
	return nil
}

func (r saleRepo) List(_ context.Context, empresaID string, f repository.DocumentFilter) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Sales.List"); err != nil {
		return nil, err
	}
	out := []*entity.Sale{}
	for i := len(r.s.data.sales) - 1; i >= 0; i-- {
		v := r.s.data.sales[i]
		if v.EmpresaID != empresaID ||
			(f.ContraparteID != "" && strVal(v.ClienteID) != f.ContraparteID) ||
			(f.SucursalID != "" && v.SucursalID != f.SucursalID) ||
			(f.Tipo != "" && v.TipoVenta != f.Tipo) ||
			(f.Estado != "" && v.Estado != f.Estado) ||
			!inRange(v.FechaVenta, f.Desde, f.Hasta) {
			continue
		}
		out = append(out, &v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FechaVenta.After(out[j].FechaVenta) })
	return page(out, f.Limit, f.Offset), nil
}

func (r saleRepo) ListCredits(_ context.Context, empresaID string, f repository.CreditFilter) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Sales.ListCredits"); err != nil {
		return nil, err
	}
	out := []*entity.Sale{}
	for _, v := range r.s.data.sales {
		if v.EmpresaID != empresaID ||
			(f.ContraparteID != "" && strVal(v.ClienteID) != f.ContraparteID) ||
			(f.SucursalID != "" && v.SucursalID != f.SucursalID) ||
			!creditMatch(v.TipoVenta, v.Estado, v.SaldoPendiente, v.FechaVencimiento, v.FechaVenta, f) {
			continue
		}
		out = append(out, &v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return creditLess(out[i].FechaVencimiento, out[j].FechaVencimiento, out[i].FechaVenta, out[j].FechaVenta)
	})
	return out, nil
}

func (r saleRepo) CreatePayment(_ context.Context, p *entity.SalePayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Sales.CreatePayment"); err != nil {
		return err
	}
	r.s.data.salePayments = append(r.s.data.salePayments, *p)
	return nil
}

func (r saleRepo) ListPayments(_ context.Context, empresaID, ventaID string) ([]*entity.SalePayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Sales.ListPayments"); err != nil {
		return nil, err
	}
	out := []*entity.SalePayment{}
	for _, p := range r.s.data.salePayments {
		if p.EmpresaID == empresaID && p.VentaID == ventaID {
			out = append(out, &p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FechaPago.Before(out[j].FechaPago) })
	return out, nil
}
