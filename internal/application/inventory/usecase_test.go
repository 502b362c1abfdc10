package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice-api/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/memstore"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newUseCase(s *memstore.Store) *inventory.UseCase {
	clock := ports.FixedClock{T: fixedNow}
	return inventory.NewUseCase(s, s.Set(), inventory.NewStockMutator(clock), clock, nil)
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func frac(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func adjust(t *testing.T, uc *inventory.UseCase, sucursal, producto string, qty int64) *inventory.AdjustmentResult {
	t.Helper()
	res, err := uc.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		EmpresaID:  memstore.EmpresaDemo,
		UsuarioID:  memstore.UsuarioDemo,
		SucursalID: sucursal,
		ProductoID: producto,
		Cantidad:   dec(qty),
	})
	require.NoError(t, err)
	return res
}

// assertConservation verifica que cada saldo sea la suma con signo de sus movimientos
// y que stock_despues siga la suma acumulada en orden de creación.
func assertConservation(t *testing.T, s *memstore.Store) {
	t.Helper()
	type key struct{ suc, prod string }
	running := map[key]decimal.Decimal{}
	for _, m := range s.AllMovements() {
		k := key{m.SucursalID, m.ProductoID}
		running[k] = running[k].Add(m.Signed())
		assert.True(t, running[k].Equal(m.StockDespues), "stock_despues de %s debe ser %s, es %s", m.ID, running[k], m.StockDespues)
		assert.True(t, m.Cantidad.IsPositive(), "la cantidad del movimiento es siempre positiva")
	}
	for k, sum := range running {
		actual, ok := s.StockOf(memstore.EmpresaDemo, k.suc, k.prod)
		require.True(t, ok)
		assert.True(t, sum.Equal(actual), "saldo %s/%s: esperado %s, actual %s", k.suc, k.prod, sum, actual)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterAdjustment_CreaFilaYMovimiento(t *testing.T) {
	s := memstore.NewDemo()
	uc := newUseCase(s)

	res := adjust(t, uc, memstore.SucursalCentro, memstore.ProductoCafe, 10)
	assert.True(t, res.StockActual.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, entity.MovementEntrada, res.Movimiento.Tipo)
	assert.Equal(t, entity.MotivoAjuste, res.Movimiento.Motivo)
	require.NotNil(t, res.Movimiento.ReferenciaTipo)
	assert.Equal(t, entity.ReferenciaAjuste, *res.Movimiento.ReferenciaTipo)
	assert.Nil(t, res.Movimiento.ReferenciaID)
	assert.Equal(t, fixedNow, res.Movimiento.FechaMovimiento)

	res = adjust(t, uc, memstore.SucursalCentro, memstore.ProductoCafe, -4)
	assert.Equal(t, entity.MovementSalida, res.Movimiento.Tipo)
	assert.True(t, res.Movimiento.Cantidad.Equal(decimal.NewFromInt(4)))
	assert.True(t, res.StockActual.Equal(decimal.NewFromInt(6)))
	assertConservation(t, s)
}

func TestRegisterAdjustment_PermiteSaldoNegativo(t *testing.T) {
	s := memstore.NewDemo()
	uc := newUseCase(s)

	res := adjust(t, uc, memstore.SucursalCentro, memstore.ProductoAzucar, -3)
	assert.True(t, res.StockActual.Equal(decimal.NewFromInt(-3)))
	assertConservation(t, s)
}

func TestRegisterAdjustment_Validaciones(t *testing.T) {
	s := memstore.NewDemo()
	uc := newUseCase(s)
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.AdjustmentInput
		kind domain.Kind
	}{
		{"sin sucursal", inventory.AdjustmentInput{ProductoID: memstore.ProductoCafe, Cantidad: dec(1)}, domain.KindValidation},
		{"sin producto", inventory.AdjustmentInput{SucursalID: memstore.SucursalCentro, Cantidad: dec(1)}, domain.KindValidation},
		{"sin cantidad", inventory.AdjustmentInput{SucursalID: memstore.SucursalCentro, ProductoID: memstore.ProductoCafe}, domain.KindValidation},
		{"cantidad cero", inventory.AdjustmentInput{SucursalID: memstore.SucursalCentro, ProductoID: memstore.ProductoCafe, Cantidad: dec(0)}, domain.KindValidation},
		{"cantidad con cuatro decimales", inventory.AdjustmentInput{SucursalID: memstore.SucursalCentro, ProductoID: memstore.ProductoCafe, Cantidad: frac("0.0005")}, domain.KindValidation},
		{"salida con cuatro decimales", inventory.AdjustmentInput{SucursalID: memstore.SucursalCentro, ProductoID: memstore.ProductoCafe, Cantidad: frac("-1.2345")}, domain.KindValidation},
		{"sucursal de otra empresa", inventory.AdjustmentInput{SucursalID: "suc-ajena", ProductoID: memstore.ProductoCafe, Cantidad: dec(1)}, domain.KindNotFound},
		{"producto inexistente", inventory.AdjustmentInput{SucursalID: memstore.SucursalCentro, ProductoID: "nada", Cantidad: dec(1)}, domain.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.EmpresaID = memstore.EmpresaDemo
			_, err := uc.RegisterAdjustment(ctx, tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, domain.KindOf(err))
		})
	}
	assert.Empty(t, s.AllMovements(), "ninguna validación fallida escribe movimientos")
}

func TestStockMutator_UsaMinimoGeneralAlCrearFila(t *testing.T) {
	s := memstore.NewDemo()
	uc := newUseCase(s)
	adjust(t, uc, memstore.SucursalNorte, memstore.ProductoCafe, 1)

	rows, err := uc.GetStock(context.Background(), memstore.EmpresaDemo, repository.StockFilter{SucursalID: memstore.SucursalNorte})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].StockMinimo.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "Café molido", rows[0].ProductoNombre)
}

func TestStockMutator_RechazaCantidadCero(t *testing.T) {
	s := memstore.NewDemo()
	m := inventory.NewStockMutator(ports.FixedClock{T: fixedNow})
	err := s.Run(context.Background(), func(tx repository.Set) error {
		_, err := m.Apply(context.Background(), tx, inventory.MovementInput{
			EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalCentro, ProductoID: memstore.ProductoCafe,
			Motivo: entity.MotivoAjuste,
		})
		return err
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Traspasos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterTransfer_MueveEntreSucursales(t *testing.T) {
	s := memstore.NewDemo()
	uc := newUseCase(s)
	adjust(t, uc, memstore.SucursalCentro, memstore.ProductoCafe, 10)

	res, err := uc.RegisterTransfer(context.Background(), inventory.TransferInput{
		EmpresaID:         memstore.EmpresaDemo,
		UsuarioID:         memstore.UsuarioDemo,
		SucursalOrigenID:  memstore.SucursalCentro,
		SucursalDestinoID: memstore.SucursalNorte,
		ProductoID:        memstore.ProductoCafe,
		Cantidad:          dec(4),
	})
	require.NoError(t, err)
	assert.True(t, res.StockOrigen.Equal(decimal.NewFromInt(6)))
	assert.True(t, res.StockDestino.Equal(decimal.NewFromInt(4)))

	movs := s.AllMovements()
	require.Len(t, movs, 3)
	salida, entrada := movs[1], movs[2]
	assert.Equal(t, entity.MotivoTraspasoSalida, salida.Motivo)
	assert.Equal(t, entity.MotivoTraspasoEntrada, entrada.Motivo)
	assert.Equal(t, salida.FechaMovimiento, entrada.FechaMovimiento)
	assert.Equal(t, entity.ReferenciaTraspaso, *salida.ReferenciaTipo)
	assertConservation(t, s)
}

func TestRegisterTransfer_RollbackSiFallaLaEntrada(t *testing.T) {
	s := memstore.NewDemo()
	uc := newUseCase(s)
	adjust(t, uc, memstore.SucursalCentro, memstore.ProductoCafe, 10)
	before := len(s.AllMovements())

	boom := errors.New("disco lleno")
	s.FailOn("Movements.Create", 2, boom)

	_, err := uc.RegisterTransfer(context.Background(), inventory.TransferInput{
		EmpresaID:         memstore.EmpresaDemo,
		SucursalOrigenID:  memstore.SucursalCentro,
		SucursalDestinoID: memstore.SucursalNorte,
		ProductoID:        memstore.ProductoCafe,
		Cantidad:          dec(4),
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindPersistence, domain.KindOf(err))
	assert.ErrorIs(t, err, boom)

	origen, _ := s.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	assert.True(t, origen.Equal(decimal.NewFromInt(10)), "la salida debe revertirse")
	_, ok := s.StockOf(memstore.EmpresaDemo, memstore.SucursalNorte, memstore.ProductoCafe)
	assert.False(t, ok)
	assert.Len(t, s.AllMovements(), before)
}

func TestRegisterTransfer_Validaciones(t *testing.T) {
	s := memstore.NewDemo()
	uc := newUseCase(s)
	ctx := context.Background()

	base := inventory.TransferInput{
		EmpresaID:         memstore.EmpresaDemo,
		SucursalOrigenID:  memstore.SucursalCentro,
		SucursalDestinoID: memstore.SucursalNorte,
		ProductoID:        memstore.ProductoCafe,
		Cantidad:          dec(1),
	}

	same := base
	same.SucursalDestinoID = memstore.SucursalCentro
	_, err := uc.RegisterTransfer(ctx, same)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	negative := base
	negative.Cantidad = dec(-2)
	_, err = uc.RegisterTransfer(ctx, negative)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	fraction := base
	fraction.Cantidad = frac("0.0001")
	_, err = uc.RegisterTransfer(ctx, fraction)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	unknown := base
	unknown.SucursalDestinoID = "suc-ajena"
	_, err = uc.RegisterTransfer(ctx, unknown)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestStockMutator_RechazaFraccionFueraDeEscala(t *testing.T) {
	s := memstore.NewDemo()
	m := inventory.NewStockMutator(ports.FixedClock{T: fixedNow})
	err := s.Run(context.Background(), func(tx repository.Set) error {
		_, err := m.Apply(context.Background(), tx, inventory.MovementInput{
			EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalCentro, ProductoID: memstore.ProductoCafe,
			Cantidad: decimal.RequireFromString("2.0004"), Motivo: entity.MotivoAjuste,
		})
		return err
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Empty(t, s.AllMovements())
}

func TestAjustesYTraspasosConcurrentes_ConservanSaldos(t *testing.T) {
	s := memstore.NewDemo()
	uc := newUseCase(s)
	ctx := context.Background()

	const adjustments, transfers = 30, 20
	var wg sync.WaitGroup
	errs := make(chan error, adjustments+transfers)
	for i := 0; i < adjustments; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RegisterAdjustment(ctx, inventory.AdjustmentInput{
				EmpresaID:  memstore.EmpresaDemo,
				UsuarioID:  memstore.UsuarioDemo,
				SucursalID: memstore.SucursalCentro,
				ProductoID: memstore.ProductoCafe,
				Cantidad:   dec(1),
			})
			errs <- err
		}()
	}
	for i := 0; i < transfers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RegisterTransfer(ctx, inventory.TransferInput{
				EmpresaID:         memstore.EmpresaDemo,
				UsuarioID:         memstore.UsuarioDemo,
				SucursalOrigenID:  memstore.SucursalCentro,
				SucursalDestinoID: memstore.SucursalNorte,
				ProductoID:        memstore.ProductoCafe,
				Cantidad:          dec(1),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, s.AllMovements(), adjustments+2*transfers, "un movimiento por ajuste y dos por traspaso")
	assertConservation(t, s)

	centro, ok := s.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	require.True(t, ok)
	norte, ok := s.StockOf(memstore.EmpresaDemo, memstore.SucursalNorte, memstore.ProductoCafe)
	require.True(t, ok)
	assert.True(t, centro.Equal(decimal.NewFromInt(adjustments-transfers)), "centro=%s", centro)
	assert.True(t, norte.Equal(decimal.NewFromInt(transfers)), "norte=%s", norte)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetMovements_FiltrosYLecturaIdempotente(t *testing.T) {
	s := memstore.NewDemo()
	uc := newUseCase(s)
	ctx := context.Background()
	adjust(t, uc, memstore.SucursalCentro, memstore.ProductoCafe, 5)
	adjust(t, uc, memstore.SucursalCentro, memstore.ProductoCafe, -2)

	f := repository.MovementFilter{Tipo: "salida"}
	first, err := uc.GetMovements(ctx, memstore.EmpresaDemo, f)
	require.NoError(t, err)
	second, err := uc.GetMovements(ctx, memstore.EmpresaDemo, f)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, first, second)

	_, err = uc.GetMovements(ctx, memstore.EmpresaDemo, repository.MovementFilter{Tipo: "OTRO"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	empty, err := uc.GetMovements(ctx, memstore.OtraEmpresa, repository.MovementFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	mov, err := uc.GetMovementByID(ctx, memstore.EmpresaDemo, first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, mov.ID)

	_, err = uc.GetMovementByID(ctx, memstore.OtraEmpresa, first[0].ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestBelowMinimum_SugiereReposicion(t *testing.T) {
	s := memstore.NewDemo()
	maximo := decimal.NewFromInt(20)
	s.PutStock(entity.BranchStock{
		EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalCentro, ProductoID: memstore.ProductoCafe,
		StockActual: decimal.NewFromInt(2), StockMinimo: decimal.NewFromInt(5), StockMaximo: &maximo,
	})
	s.PutStock(entity.BranchStock{
		EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalNorte, ProductoID: memstore.ProductoAzucar,
		StockActual: decimal.NewFromInt(-1), StockMinimo: decimal.NewFromInt(10),
	})
	s.PutStock(entity.BranchStock{
		EmpresaID: memstore.EmpresaDemo, SucursalID: memstore.SucursalNorte, ProductoID: memstore.ProductoCafe,
		StockActual: decimal.NewFromInt(8), StockMinimo: decimal.NewFromInt(3),
	})

	uc := inventory.NewReplenishmentUseCase(s.Set().Stock)
	out, err := uc.BelowMinimum(context.Background(), memstore.EmpresaDemo, "")
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, memstore.ProductoAzucar, out[0].ProductoID)
	assert.Equal(t, 1, out[0].Prioridad)
	assert.True(t, out[0].StockIdeal.Equal(decimal.NewFromInt(15)))
	assert.True(t, out[0].CantidadSugerida.Equal(decimal.NewFromInt(16)))

	assert.Equal(t, memstore.ProductoCafe, out[1].ProductoID)
	assert.True(t, out[1].StockIdeal.Equal(decimal.NewFromInt(20)))
	assert.True(t, out[1].CantidadSugerida.Equal(decimal.NewFromInt(18)))
}
