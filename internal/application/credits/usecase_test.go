package credits_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice-api/internal/application/credits"
	"github.com/jhoicas/retail-backoffice-api/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/application/purchasing"
	"github.com/jhoicas/retail-backoffice-api/internal/application/sales"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/memstore"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func day(m time.Month, d int) *time.Time {
	t := time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amount(v string) *decimal.Decimal {
	x := decimal.RequireFromString(v)
	return &x
}

type fixture struct {
	store     *memstore.Store
	credits   *credits.UseCase
	sales     *sales.UseCase
	purchases *purchasing.UseCase
}

func newFixture() fixture {
	s := memstore.NewDemo()
	clock := ports.FixedClock{T: fixedNow}
	m := inventory.NewStockMutator(clock)
	repos := s.Set()
	return fixture{
		store:     s,
		credits:   credits.NewUseCase(repos.Sales, repos.Purchases, clock),
		sales:     sales.NewUseCase(s, repos, m, clock, nil),
		purchases: purchasing.NewUseCase(s, repos, m, clock, nil),
	}
}

func (f fixture) creditSale(t *testing.T, fecha, vence *time.Time, total string) *sales.Detail {
	t.Helper()
	res, err := f.sales.CreateSale(context.Background(), sales.CreateInput{
		EmpresaID:        memstore.EmpresaDemo,
		SucursalID:       memstore.SucursalCentro,
		ClienteID:        memstore.ClienteAna,
		TipoVenta:        "CREDITO",
		FechaVenta:       fecha,
		FechaVencimiento: vence,
		Items: []sales.LineInput{{
			ProductoID: memstore.ProductoCafe, UnidadMedidaID: "und", Cantidad: amount("1"), PrecioUnitario: amount(total),
		}},
	})
	require.NoError(t, err)
	return res
}

func TestListCustomerCredits_SoloConSaldoYOrdenPorVencimiento(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tarde := f.creditSale(t, day(6, 1), day(7, 1), "50")
	vencida := f.creditSale(t, day(5, 1), day(6, 1), "80")
	pagada := f.creditSale(t, day(5, 2), day(6, 2), "10")
	_, err := f.sales.CreateSale(ctx, sales.CreateInput{
		EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalCentro, FechaVenta: day(6, 1),
		Items: []sales.LineInput{{ProductoID: memstore.ProductoCafe, UnidadMedidaID: "und", Cantidad: amount("1"), PrecioUnitario: amount("3")}},
	})
	require.NoError(t, err)

	_, err = f.sales.RegisterPayment(ctx, sales.PaymentInput{
		EmpresaID: memstore.EmpresaDemo, VentaID: pagada.ID, FechaPago: day(6, 3), Monto: amount("10"),
	})
	require.NoError(t, err)

	list, err := f.credits.ListCustomerCredits(ctx, memstore.EmpresaDemo, credits.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2, "sin filtro de estado solo aparecen créditos con saldo")
	assert.Equal(t, vencida.ID, list[0].ID)
	assert.Equal(t, tarde.ID, list[1].ID)

	overdue, err := f.credits.ListCustomerCredits(ctx, memstore.EmpresaDemo, credits.Filter{Vencidos: true})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, vencida.ID, overdue[0].ID)

	paid, err := f.credits.ListCustomerCredits(ctx, memstore.EmpresaDemo, credits.Filter{Estado: "pagada"})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, pagada.ID, paid[0].ID)

	_, err = f.credits.ListCustomerCredits(ctx, memstore.EmpresaDemo, credits.Filter{Estado: "MOROSA"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCustomerCreditDetail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.creditSale(t, day(5, 1), day(6, 1), "100")

	_, err := f.sales.RegisterPayment(ctx, sales.PaymentInput{
		EmpresaID: memstore.EmpresaDemo, VentaID: v.ID, FechaPago: day(6, 5), Monto: amount("30"),
	})
	require.NoError(t, err)
	_, err = f.sales.RegisterPayment(ctx, sales.PaymentInput{
		EmpresaID: memstore.EmpresaDemo, VentaID: v.ID, FechaPago: day(5, 20), Monto: amount("20"),
	})
	require.NoError(t, err)

	det, err := f.credits.CustomerCreditDetail(ctx, memstore.EmpresaDemo, v.ID)
	require.NoError(t, err)
	assert.True(t, det.Vencido)
	assert.True(t, det.Venta.SaldoPendiente.Equal(decimal.NewFromInt(50)))
	require.Len(t, det.Pagos, 2)
	assert.True(t, det.Pagos[0].FechaPago.Before(det.Pagos[1].FechaPago), "pagos en orden cronológico")

	_, err = f.credits.CustomerCreditDetail(ctx, memstore.EmpresaDemo, "no-existe")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestSupplierCredits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	compra, err := f.purchases.CreatePurchase(ctx, purchasing.CreateInput{
		EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalCentro, ProveedorID: memstore.ProveedorAndes,
		TipoCompra: "CREDITO", FechaCompra: day(5, 1), FechaVencimiento: day(5, 31),
		Items: []purchasing.LineInput{{ProductoID: memstore.ProductoCafe, UnidadMedidaID: "und", Cantidad: amount("2"), CostoUnitario: amount("5")}},
	})
	require.NoError(t, err)
	contado, err := f.purchases.CreatePurchase(ctx, purchasing.CreateInput{
		EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalCentro, ProveedorID: memstore.ProveedorAndes,
		FechaCompra: day(5, 1),
		Items:       []purchasing.LineInput{{ProductoID: memstore.ProductoCafe, UnidadMedidaID: "und", Cantidad: amount("2"), CostoUnitario: amount("5")}},
	})
	require.NoError(t, err)

	list, err := f.credits.ListSupplierCredits(ctx, memstore.EmpresaDemo, credits.Filter{ContraparteID: memstore.ProveedorAndes, Vencidos: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, compra.ID, list[0].ID)

	det, err := f.credits.SupplierCreditDetail(ctx, memstore.EmpresaDemo, compra.ID)
	require.NoError(t, err)
	assert.True(t, det.Vencido)
	assert.Empty(t, det.Pagos)
	assert.NotNil(t, det.Pagos)

	_, err = f.credits.SupplierCreditDetail(ctx, memstore.EmpresaDemo, contado.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err), "una compra de contado no es un crédito")
}
