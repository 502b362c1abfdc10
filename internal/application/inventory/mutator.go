package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/ledger"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// MovementInput datos para aplicar un movimiento. Cantidad lleva signo: + entrada, - salida.
type MovementInput struct {
	EmpresaID      string
	SucursalID     string
	ProductoID     string
	Cantidad       decimal.Decimal
	Motivo         string
	ReferenciaTipo *string
	ReferenciaID   *string
	CostoUnitario  *decimal.Decimal
	PrecioUnitario *decimal.Decimal
	Fecha          time.Time
	UsuarioID      string
}

// StockMutator es la única vía para modificar inventario_sucursal: actualiza el saldo
// y agrega el movimiento al kardex con el saldo resultante.
type StockMutator struct {
	clock ports.Clock
}

// NewStockMutator construye el mutador.
func NewStockMutator(clock ports.Clock) *StockMutator {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &StockMutator{clock: clock}
}

// Apply debe ejecutarse dentro de una unidad de trabajo: bloquea la fila (SELECT FOR UPDATE)
// hasta el commit, de modo que dos movimientos sobre la misma sucursal+producto se serializan.
// No hay piso: el saldo puede quedar negativo.
func (m *StockMutator) Apply(ctx context.Context, tx repository.Set, in MovementInput) (*entity.Movement, error) {
	if in.Cantidad.IsZero() {
		return nil, domain.Validation("la cantidad del movimiento no puede ser cero")
	}
	if !ledger.FitsPlaces(in.Cantidad, ledger.QuantityPlaces) {
		return nil, domain.Validation("la cantidad del movimiento admite hasta 3 decimales")
	}

	stock, err := tx.Stock.GetForUpdate(ctx, in.EmpresaID, in.SucursalID, in.ProductoID)
	if err != nil {
		return nil, domain.Persistence("bloquear stock", err)
	}
	if stock == nil {
		// Primera vez que la sucursal mueve este producto: saldo previo cero.
		minimo := decimal.Zero
		product, err := tx.Products.GetByID(ctx, in.EmpresaID, in.ProductoID)
		if err != nil {
			return nil, domain.Persistence("consultar producto", err)
		}
		if product != nil {
			minimo = product.DefaultMinimum()
		}
		if err := tx.Stock.Insert(ctx, &entity.BranchStock{
			EmpresaID:   in.EmpresaID,
			SucursalID:  in.SucursalID,
			ProductoID:  in.ProductoID,
			StockActual: decimal.Zero,
			StockMinimo: minimo,
			UpdatedAt:   m.clock.Now(),
		}); err != nil {
			return nil, domain.Persistence("crear stock de sucursal", err)
		}
		stock, err = tx.Stock.GetForUpdate(ctx, in.EmpresaID, in.SucursalID, in.ProductoID)
		if err != nil {
			return nil, domain.Persistence("bloquear stock", err)
		}
		if stock == nil {
			return nil, domain.Persistence("bloquear stock", domain.ErrNotFound)
		}
	}

	now := m.clock.Now()
	newBalance := stock.StockActual.Add(in.Cantidad)
	if err := tx.Stock.UpdateBalance(ctx, in.EmpresaID, in.SucursalID, in.ProductoID, newBalance, now); err != nil {
		return nil, domain.Persistence("actualizar stock", err)
	}

	tipo := entity.MovementEntrada
	if in.Cantidad.IsNegative() {
		tipo = entity.MovementSalida
	}
	fecha := in.Fecha
	if fecha.IsZero() {
		fecha = now
	}
	mov := &entity.Movement{
		ID:              uuid.NewString(),
		EmpresaID:       in.EmpresaID,
		SucursalID:      in.SucursalID,
		ProductoID:      in.ProductoID,
		Tipo:            tipo,
		Motivo:          in.Motivo,
		ReferenciaTipo:  in.ReferenciaTipo,
		ReferenciaID:    in.ReferenciaID,
		Cantidad:        in.Cantidad.Abs(),
		CostoUnitario:   in.CostoUnitario,
		PrecioUnitario:  in.PrecioUnitario,
		StockDespues:    newBalance,
		FechaMovimiento: fecha,
		UsuarioID:       in.UsuarioID,
		CreatedAt:       now,
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, domain.Persistence("registrar movimiento", err)
	}
	return mov, nil
}

func strPtr(s string) *string { return &s }
