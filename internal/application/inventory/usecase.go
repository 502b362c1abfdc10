package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/ledger"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice-api/internal/observability"
)

// UseCase operaciones directas de inventario (ajustes, traspasos) y consultas del kardex.
type UseCase struct {
	uow     repository.UnitOfWork
	repos   repository.Set
	mutator *StockMutator
	clock   ports.Clock
	metrics *observability.Metrics
}

// NewUseCase construye el caso de uso. repos son los repositorios de lectura (pool).
func NewUseCase(
	uow repository.UnitOfWork,
	repos repository.Set,
	mutator *StockMutator,
	clock ports.Clock,
	metrics *observability.Metrics,
) *UseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &UseCase{uow: uow, repos: repos, mutator: mutator, clock: clock, metrics: metrics}
}

// AdjustmentInput ajuste manual. Cantidad con signo: positiva entra, negativa sale.
type AdjustmentInput struct {
	EmpresaID      string
	UsuarioID      string
	SucursalID     string
	ProductoID     string
	Cantidad       *decimal.Decimal
	Motivo         string
	ReferenciaTipo string
}

// AdjustmentResult saldo resultante del ajuste.
type AdjustmentResult struct {
	SucursalID  string           `json:"sucursal_id"`
	ProductoID  string           `json:"producto_id"`
	StockActual decimal.Decimal  `json:"stock_actual"`
	Movimiento  *entity.Movement `json:"movimiento"`
}

// RegisterAdjustment aplica un ajuste con motivo AJUSTE (o el indicado) y sin documento de referencia.
func (uc *UseCase) RegisterAdjustment(ctx context.Context, in AdjustmentInput) (*AdjustmentResult, error) {
	if in.SucursalID == "" {
		return nil, domain.Validation("sucursal_id es requerido")
	}
	if in.ProductoID == "" {
		return nil, domain.Validation("producto_id es requerido")
	}
	if in.Cantidad == nil {
		return nil, domain.Validation("cantidad es requerida")
	}
	if in.Cantidad.IsZero() {
		return nil, domain.Validation("cantidad debe ser un número distinto de 0")
	}
	if !ledger.FitsPlaces(*in.Cantidad, ledger.QuantityPlaces) {
		return nil, domain.Validation("cantidad admite hasta 3 decimales")
	}
	if err := uc.requireBranch(ctx, in.EmpresaID, in.SucursalID, "la sucursal no existe en esta empresa"); err != nil {
		return nil, err
	}
	if err := uc.requireProduct(ctx, in.EmpresaID, in.ProductoID); err != nil {
		return nil, err
	}

	motivo := strings.TrimSpace(in.Motivo)
	if motivo == "" {
		motivo = entity.MotivoAjuste
	}
	refTipo := strings.TrimSpace(in.ReferenciaTipo)
	if refTipo == "" {
		refTipo = entity.ReferenciaAjuste
	}

	var mov *entity.Movement
	err := uc.uow.Run(ctx, func(tx repository.Set) error {
		var err error
		mov, err = uc.mutator.Apply(ctx, tx, MovementInput{
			EmpresaID:      in.EmpresaID,
			SucursalID:     in.SucursalID,
			ProductoID:     in.ProductoID,
			Cantidad:       *in.Cantidad,
			Motivo:         motivo,
			ReferenciaTipo: strPtr(refTipo),
			Fecha:          uc.clock.Now(),
			UsuarioID:      in.UsuarioID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.MovementsApplied(mov)

	return &AdjustmentResult{
		SucursalID:  in.SucursalID,
		ProductoID:  in.ProductoID,
		StockActual: mov.StockDespues,
		Movimiento:  mov,
	}, nil
}

// TransferInput traspaso entre sucursales de la misma empresa.
type TransferInput struct {
	EmpresaID         string
	UsuarioID         string
	SucursalOrigenID  string
	SucursalDestinoID string
	ProductoID        string
	Cantidad          *decimal.Decimal
}

// TransferResult saldos finales en ambas sucursales.
type TransferResult struct {
	SucursalOrigenID  string          `json:"sucursal_origen_id"`
	SucursalDestinoID string          `json:"sucursal_destino_id"`
	ProductoID        string          `json:"producto_id"`
	Cantidad          decimal.Decimal `json:"cantidad"`
	StockOrigen       decimal.Decimal `json:"stock_origen"`
	StockDestino      decimal.Decimal `json:"stock_destino"`
}

// RegisterTransfer aplica la salida en origen y la entrada en destino en una sola transacción,
// con la misma fecha. No verifica existencias en origen.
func (uc *UseCase) RegisterTransfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.SucursalOrigenID == "" || in.SucursalDestinoID == "" {
		return nil, domain.Validation("sucursal_origen_id y sucursal_destino_id son requeridos")
	}
	if in.SucursalOrigenID == in.SucursalDestinoID {
		return nil, domain.Validation("la sucursal origen y destino deben ser distintas")
	}
	if in.ProductoID == "" {
		return nil, domain.Validation("producto_id es requerido")
	}
	if in.Cantidad == nil {
		return nil, domain.Validation("cantidad es requerida")
	}
	if !in.Cantidad.IsPositive() {
		return nil, domain.Validation("cantidad debe ser un número mayor a 0")
	}
	if !ledger.FitsPlaces(*in.Cantidad, ledger.QuantityPlaces) {
		return nil, domain.Validation("cantidad admite hasta 3 decimales")
	}
	if err := uc.requireBranch(ctx, in.EmpresaID, in.SucursalOrigenID, "la sucursal de origen no existe en esta empresa"); err != nil {
		return nil, err
	}
	if err := uc.requireBranch(ctx, in.EmpresaID, in.SucursalDestinoID, "la sucursal de destino no existe en esta empresa"); err != nil {
		return nil, err
	}
	if err := uc.requireProduct(ctx, in.EmpresaID, in.ProductoID); err != nil {
		return nil, err
	}

	fecha := uc.clock.Now()
	qty := *in.Cantidad
	var salida, entrada *entity.Movement
	err := uc.uow.Run(ctx, func(tx repository.Set) error {
		var err error
		salida, err = uc.mutator.Apply(ctx, tx, MovementInput{
			EmpresaID:      in.EmpresaID,
			SucursalID:     in.SucursalOrigenID,
			ProductoID:     in.ProductoID,
			Cantidad:       qty.Neg(),
			Motivo:         entity.MotivoTraspasoSalida,
			ReferenciaTipo: strPtr(entity.ReferenciaTraspaso),
			Fecha:          fecha,
			UsuarioID:      in.UsuarioID,
		})
		if err != nil {
			return err
		}
		entrada, err = uc.mutator.Apply(ctx, tx, MovementInput{
			EmpresaID:      in.EmpresaID,
			SucursalID:     in.SucursalDestinoID,
			ProductoID:     in.ProductoID,
			Cantidad:       qty,
			Motivo:         entity.MotivoTraspasoEntrada,
			ReferenciaTipo: strPtr(entity.ReferenciaTraspaso),
			Fecha:          fecha,
			UsuarioID:      in.UsuarioID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.MovementsApplied(salida, entrada)

	return &TransferResult{
		SucursalOrigenID:  in.SucursalOrigenID,
		SucursalDestinoID: in.SucursalDestinoID,
		ProductoID:        in.ProductoID,
		Cantidad:          qty,
		StockOrigen:       salida.StockDespues,
		StockDestino:      entrada.StockDespues,
	}, nil
}

// GetStock saldos por sucursal/producto/categoría. Sin filas devuelve lista vacía.
func (uc *UseCase) GetStock(ctx context.Context, empresaID string, f repository.StockFilter) ([]*entity.StockView, error) {
	list, err := uc.repos.Stock.List(ctx, empresaID, f)
	if err != nil {
		return nil, domain.Persistence("listar stock", err)
	}
	if list == nil {
		list = []*entity.StockView{}
	}
	return list, nil
}

// GetMovements consulta el kardex con filtros.
func (uc *UseCase) GetMovements(ctx context.Context, empresaID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.Tipo != "" {
		f.Tipo = strings.ToUpper(f.Tipo)
		if f.Tipo != entity.MovementEntrada && f.Tipo != entity.MovementSalida {
			return nil, domain.Validation("tipo debe ser ENTRADA o SALIDA")
		}
	}
	list, err := uc.repos.Movements.List(ctx, empresaID, f)
	if err != nil {
		return nil, domain.Persistence("listar movimientos", err)
	}
	if list == nil {
		list = []*entity.Movement{}
	}
	return list, nil
}

// GetMovementByID detalle de un movimiento.
func (uc *UseCase) GetMovementByID(ctx context.Context, empresaID, id string) (*entity.Movement, error) {
	mov, err := uc.repos.Movements.GetByID(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("consultar movimiento", err)
	}
	if mov == nil {
		return nil, domain.NotFound("movimiento no encontrado")
	}
	return mov, nil
}

func (uc *UseCase) requireBranch(ctx context.Context, empresaID, id, msg string) error {
	b, err := uc.repos.Branches.GetByID(ctx, empresaID, id)
	if err != nil {
		return domain.Persistence("consultar sucursal", err)
	}
	if b == nil {
		return domain.NotFound(msg)
	}
	return nil
}

func (uc *UseCase) requireProduct(ctx context.Context, empresaID, id string) error {
	p, err := uc.repos.Products.GetByID(ctx, empresaID, id)
	if err != nil {
		return domain.Persistence("consultar producto", err)
	}
	if p == nil {
		return domain.NotFound("el producto no existe en esta empresa")
	}
	return nil
}
