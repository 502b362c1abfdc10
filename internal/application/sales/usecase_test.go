package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice-api/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/application/purchasing"
	"github.com/jhoicas/retail-backoffice-api/internal/application/sales"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/memstore"
)

var (
	fixedNow   = time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	fechaVenta = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	vence      = time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
)

type env struct {
	store     *memstore.Store
	sales     *sales.UseCase
	purchases *purchasing.UseCase
	inventory *inventory.UseCase
}

func newEnv() env {
	s := memstore.NewDemo()
	clock := ports.FixedClock{T: fixedNow}
	m := inventory.NewStockMutator(clock)
	return env{
		store:     s,
		sales:     sales.NewUseCase(s, s.Set(), m, clock, nil),
		purchases: purchasing.NewUseCase(s, s.Set(), m, clock, nil),
		inventory: inventory.NewUseCase(s, s.Set(), m, clock, nil),
	}
}

func d(v string) *decimal.Decimal {
	x := decimal.RequireFromString(v)
	return &x
}

func cafe(qty, precio string) sales.LineInput {
	return sales.LineInput{ProductoID: memstore.ProductoCafe, UnidadMedidaID: "und", Cantidad: d(qty), PrecioUnitario: d(precio)}
}

func saleInput(tipo string, items ...sales.LineInput) sales.CreateInput {
	in := sales.CreateInput{
		EmpresaID:  memstore.EmpresaDemo,
		UsuarioID:  memstore.UsuarioDemo,
		SucursalID: memstore.SucursalCentro,
		TipoVenta:  tipo,
		FechaVenta: &fechaVenta,
		Items:      items,
	}
	if tipo == entity.TipoCredito {
		in.ClienteID = memstore.ClienteAna
		in.FechaVencimiento = &vence
	}
	return in
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_ContadoAnonima(t *testing.T) {
	e := newEnv()
	res, err := e.sales.CreateSale(context.Background(), saleInput("", cafe("3", "9")))
	require.NoError(t, err)

	assert.Nil(t, res.ClienteID)
	assert.Equal(t, entity.EstadoPagada, res.Estado)
	assert.True(t, res.TotalNeto.Equal(decimal.NewFromInt(27)))

	stock, _ := e.store.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	assert.True(t, stock.Equal(decimal.NewFromInt(-3)), "no hay piso de stock")

	movs := e.store.AllMovements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementSalida, movs[0].Tipo)
	assert.Equal(t, entity.MotivoVenta, movs[0].Motivo)
	assert.True(t, movs[0].PrecioUnitario.Equal(decimal.NewFromInt(9)))
	assert.True(t, movs[0].CostoUnitario.Equal(decimal.NewFromInt(5)))
}

func TestCreateSale_FotoDelCostoDeReferencia(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	res, err := e.sales.CreateSale(ctx, saleInput("", cafe("1", "9")))
	require.NoError(t, err)
	assert.True(t, res.Items[0].CostoUnitario.Equal(decimal.NewFromInt(5)))

	// Cambio posterior del costo de referencia: la línea ya creada no cambia.
	nuevo := decimal.NewFromInt(7)
	e.store.AddProduct(entity.Product{ID: memstore.ProductoCafe, EmpresaID: memstore.EmpresaDemo, Nombre: "Café molido",
		PrecioCompraReferencia: &nuevo, Activo: true})

	det, err := e.sales.Detail(ctx, memstore.EmpresaDemo, res.ID)
	require.NoError(t, err)
	assert.True(t, det.Items[0].CostoUnitario.Equal(decimal.NewFromInt(5)))

	res2, err := e.sales.CreateSale(ctx, saleInput("", cafe("1", "9")))
	require.NoError(t, err)
	assert.True(t, res2.Items[0].CostoUnitario.Equal(decimal.NewFromInt(7)))

	// Producto sin costo de referencia: cero.
	res3, err := e.sales.CreateSale(ctx, saleInput("", sales.LineInput{
		ProductoID: memstore.ProductoAzucar, UnidadMedidaID: "kg", Cantidad: d("1"), PrecioUnitario: d("4"),
	}))
	require.NoError(t, err)
	assert.True(t, res3.Items[0].CostoUnitario.IsZero())
}

func TestCreateSale_Validaciones(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(in *sales.CreateInput)
		kind   domain.Kind
	}{
		{"sin sucursal", func(in *sales.CreateInput) { in.SucursalID = "" }, domain.KindValidation},
		{"sin fecha", func(in *sales.CreateInput) { in.FechaVenta = nil }, domain.KindValidation},
		{"sucursal ajena", func(in *sales.CreateInput) { in.SucursalID = "suc-ajena" }, domain.KindNotFound},
		{"cliente inexistente", func(in *sales.CreateInput) { in.ClienteID = "x" }, domain.KindNotFound},
		{"cliente inactivo", func(in *sales.CreateInput) { in.ClienteID = memstore.ClienteInactivo }, domain.KindConflict},
		{"tipo inválido", func(in *sales.CreateInput) { in.TipoVenta = "FIADO" }, domain.KindValidation},
		{"crédito sin vencimiento", func(in *sales.CreateInput) { in.FechaVencimiento = nil }, domain.KindValidation},
		{"sin items", func(in *sales.CreateInput) { in.Items = []sales.LineInput{} }, domain.KindValidation},
		{"item sin producto", func(in *sales.CreateInput) { in.Items[0].ProductoID = "" }, domain.KindValidation},
		{"producto inactivo", func(in *sales.CreateInput) { in.Items[0].ProductoID = memstore.ProductoInactivo }, domain.KindConflict},
		{"precio negativo", func(in *sales.CreateInput) { in.Items[0].PrecioUnitario = d("-0.01") }, domain.KindValidation},
		{"cantidad negativa", func(in *sales.CreateInput) { in.Items[0].Cantidad = d("-1") }, domain.KindValidation},
		{"cantidad con cuatro decimales", func(in *sales.CreateInput) { in.Items[0].Cantidad = d("0.0005") }, domain.KindValidation},
		{"descuento con tres decimales", func(in *sales.CreateInput) { in.Items[0].Descuento = d("0.005") }, domain.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := saleInput(entity.TipoCredito, cafe("1", "9"))
			tc.mutate(&in)
			_, err := e.sales.CreateSale(ctx, in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, domain.KindOf(err))
		})
	}
	assert.Empty(t, e.store.AllMovements())
}

func TestCreateSale_DescuentoTopadoPorBruto(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	line := cafe("1", "5")
	line.Descuento = d("10")
	_, err := e.sales.CreateSale(ctx, saleInput(entity.TipoCredito, line))
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Contains(t, err.Error(), "precio_unitario")

	_, err = e.sales.CreateSale(ctx, saleInput(entity.TipoContado, line))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err), "el tope aplica también de contado")

	line.Descuento = d("5")
	_, err = e.sales.CreateSale(ctx, saleInput(entity.TipoCredito, line))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err), "un crédito con neto cero no tiene saldo que cobrar")

	assert.Empty(t, e.store.AllMovements())
	list, err := e.sales.List(ctx, memstore.EmpresaDemo, repository.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRegisterPayment_VentaRechazaFraccionDeCentavo(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sale, err := e.sales.CreateSale(ctx, saleInput(entity.TipoCredito, cafe("1", "10")))
	require.NoError(t, err)
	fecha := fixedNow

	_, err = e.sales.RegisterPayment(ctx, sales.PaymentInput{
		EmpresaID: memstore.EmpresaDemo, VentaID: sale.ID, FechaPago: &fecha, Monto: d("0.004"),
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	det, err := e.sales.Detail(ctx, memstore.EmpresaDemo, sale.ID)
	require.NoError(t, err)
	assert.True(t, det.SaldoPendiente.Equal(decimal.NewFromInt(10)))
	pagos, err := e.sales.ListPayments(ctx, memstore.EmpresaDemo, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, pagos)
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación y pagos
// ──────────────────────────────────────────────────────────────────────────────

func TestVoidSale_DevuelveStock(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, err := e.inventory.RegisterAdjustment(ctx, inventory.AdjustmentInput{
		EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalCentro, ProductoID: memstore.ProductoCafe, Cantidad: d("10"),
	})
	require.NoError(t, err)

	sale, err := e.sales.CreateSale(ctx, saleInput(entity.TipoCredito, cafe("4", "9"), cafe("2", "8")))
	require.NoError(t, err)
	stock, _ := e.store.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	require.True(t, stock.Equal(decimal.NewFromInt(4)))

	voided, err := e.sales.VoidSale(ctx, memstore.EmpresaDemo, memstore.UsuarioDemo, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoAnulada, voided.Estado)
	assert.True(t, voided.SaldoPendiente.IsZero())

	stock, _ = e.store.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	assert.True(t, stock.Equal(decimal.NewFromInt(10)), "la anulación restituye el saldo previo a la venta")

	movs := e.store.AllMovements()
	require.Len(t, movs, 5)
	for _, m := range movs[3:] {
		assert.Equal(t, entity.MovementEntrada, m.Tipo)
		assert.Equal(t, entity.MotivoDevolucionCliente, m.Motivo)
	}

	_, err = e.sales.VoidSale(ctx, memstore.EmpresaDemo, memstore.UsuarioDemo, sale.ID)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestRegisterPayment_VentaACredito(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sale, err := e.sales.CreateSale(ctx, saleInput(entity.TipoCredito, cafe("10", "10")))
	require.NoError(t, err)
	fecha := fixedNow

	res, err := e.sales.RegisterPayment(ctx, sales.PaymentInput{
		EmpresaID: memstore.EmpresaDemo, VentaID: sale.ID, FechaPago: &fecha, Monto: d("40"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoParcial, res.Venta.Estado)
	assert.Equal(t, entity.MetodoEfectivo, res.Pago.MetodoPago)
	require.NotNil(t, res.Pago.ClienteID)
	assert.Equal(t, memstore.ClienteAna, *res.Pago.ClienteID)

	res, err = e.sales.RegisterPayment(ctx, sales.PaymentInput{
		EmpresaID: memstore.EmpresaDemo, VentaID: sale.ID, FechaPago: &fecha, Monto: d("60"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoPagada, res.Venta.Estado)

	_, err = e.sales.RegisterPayment(ctx, sales.PaymentInput{
		EmpresaID: memstore.EmpresaDemo, VentaID: sale.ID, FechaPago: &fecha, Monto: d("0.01"),
	})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = e.sales.VoidSale(ctx, memstore.EmpresaDemo, memstore.UsuarioDemo, sale.ID)
	require.NoError(t, err, "una venta pagada se puede anular")
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenarioCompraVentaAjuste(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, ok := e.store.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	require.False(t, ok)

	fechaCompra := fechaVenta.AddDate(0, 0, -1)
	compra, err := e.purchases.CreatePurchase(ctx, purchasing.CreateInput{
		EmpresaID:   memstore.EmpresaDemo,
		SucursalID:  memstore.SucursalCentro,
		ProveedorID: memstore.ProveedorAndes,
		TipoCompra:  entity.TipoContado,
		FechaCompra: &fechaCompra,
		Items: []purchasing.LineInput{{
			ProductoID: memstore.ProductoCafe, UnidadMedidaID: "und", Cantidad: d("20"), CostoUnitario: d("5"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoPagada, compra.Estado)
	stock, _ := e.store.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	assert.True(t, stock.Equal(decimal.NewFromInt(20)))

	venta, err := e.sales.CreateSale(ctx, saleInput(entity.TipoContado, cafe("8", "9")))
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoPagada, venta.Estado)
	stock, _ = e.store.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	assert.True(t, stock.Equal(decimal.NewFromInt(12)))

	ajuste, err := e.inventory.RegisterAdjustment(ctx, inventory.AdjustmentInput{
		EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalCentro, ProductoID: memstore.ProductoCafe, Cantidad: d("-2"),
	})
	require.NoError(t, err)
	assert.True(t, ajuste.StockActual.Equal(decimal.NewFromInt(10)))

	movs := e.store.AllMovements()
	require.Len(t, movs, 3)
	assert.Equal(t, []string{entity.MotivoCompra, entity.MotivoVenta, entity.MotivoAjuste},
		[]string{movs[0].Motivo, movs[1].Motivo, movs[2].Motivo})
	assert.Equal(t, []string{entity.MovementEntrada, entity.MovementSalida, entity.MovementSalida},
		[]string{movs[0].Tipo, movs[1].Tipo, movs[2].Tipo})
	assert.True(t, movs[2].StockDespues.Equal(decimal.NewFromInt(10)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Comprobante
// ──────────────────────────────────────────────────────────────────────────────

type fakeRenderer struct {
	got ports.ReceiptData
}

func (f *fakeRenderer) RenderSaleReceipt(_ context.Context, data ports.ReceiptData) ([]byte, error) {
	f.got = data
	return []byte("%PDF-1.3"), nil
}

func TestReceipt_IncluyeSucursalClienteYLineas(t *testing.T) {
	e := newEnv()
	r := &fakeRenderer{}
	e.sales.WithReceipts(r)
	ctx := context.Background()
	res, err := e.sales.CreateSale(ctx, saleInput(entity.TipoCredito, cafe("2", "10")))
	require.NoError(t, err)

	pdf, err := e.sales.Receipt(ctx, memstore.EmpresaDemo, res.ID)

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), pdf)
	require.NotNil(t, r.got.Branch)
	assert.Equal(t, memstore.SucursalCentro, r.got.Branch.ID)
	require.NotNil(t, r.got.Customer)
	assert.Equal(t, memstore.ClienteAna, r.got.Customer.ID)
	assert.Len(t, r.got.Lines, 1)
}

func TestReceipt_VentaInexistente(t *testing.T) {
	e := newEnv()
	e.sales.WithReceipts(&fakeRenderer{})

	_, err := e.sales.Receipt(context.Background(), memstore.EmpresaDemo, "no-existe")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceipt_SinGeneradorEsValidacion(t *testing.T) {
	e := newEnv()
	_, err := e.sales.Receipt(context.Background(), memstore.EmpresaDemo, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
