// Package purchasing implementa el flujo de compras a proveedor: alta con entrada de stock,
// anulación (devolución al proveedor) y pagos de compras a crédito.
package purchasing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/ledger"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice-api/internal/observability"
)

const metricDocument = "compra"

// UseCase casos de uso de compras.
type UseCase struct {
	uow     repository.UnitOfWork
	repos   repository.Set
	mutator *inventory.StockMutator
	clock   ports.Clock
	metrics *observability.Metrics
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	uow repository.UnitOfWork,
	repos repository.Set,
	mutator *inventory.StockMutator,
	clock ports.Clock,
	metrics *observability.Metrics,
) *UseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &UseCase{uow: uow, repos: repos, mutator: mutator, clock: clock, metrics: metrics}
}

// LineInput ítem de la compra. Descuento nil equivale a cero.
type LineInput struct {
	ProductoID     string
	UnidadMedidaID string
	Cantidad       *decimal.Decimal
	CostoUnitario  *decimal.Decimal
	Descuento      *decimal.Decimal
}

// CreateInput datos de alta de una compra.
type CreateInput struct {
	EmpresaID        string
	UsuarioID        string
	SucursalID       string
	ProveedorID      string
	TipoCompra       string
	FechaCompra      *time.Time
	FechaVencimiento *time.Time
	NumeroFactura    string
	Observaciones    string
	Items            []LineInput
}

// Detail compra con su detalle.
type Detail struct {
	*entity.Purchase
	Items []*entity.PurchaseLine `json:"items"`
}

// CreatePurchase valida fuera de la transacción y luego persiste encabezado, líneas y
// movimientos (ENTRADA/COMPRA por línea) de forma atómica.
func (uc *UseCase) CreatePurchase(ctx context.Context, in CreateInput) (*Detail, error) {
	if in.SucursalID == "" {
		return nil, domain.Validation("sucursal_id es requerido")
	}
	if in.ProveedorID == "" {
		return nil, domain.Validation("proveedor_id es requerido")
	}
	if in.FechaCompra == nil || in.FechaCompra.IsZero() {
		return nil, domain.Validation("fecha_compra es requerida")
	}

	branch, err := uc.repos.Branches.GetByID(ctx, in.EmpresaID, in.SucursalID)
	if err != nil {
		return nil, domain.Persistence("consultar sucursal", err)
	}
	if branch == nil {
		return nil, domain.NotFound("la sucursal no existe en esta empresa")
	}
	supplier, err := uc.repos.Suppliers.GetByID(ctx, in.EmpresaID, in.ProveedorID)
	if err != nil {
		return nil, domain.Persistence("consultar proveedor", err)
	}
	if supplier == nil {
		return nil, domain.NotFound("el proveedor no existe en esta empresa")
	}
	if !supplier.Activo {
		return nil, domain.Conflict("el proveedor está inactivo")
	}

	tipo, ok := ledger.NormalizeTipo(in.TipoCompra)
	if !ok {
		return nil, domain.Validation("tipo_compra inválido (CONTADO | CREDITO)")
	}
	if tipo == entity.TipoCredito && in.FechaVencimiento == nil {
		return nil, domain.Validation("fecha_vencimiento es requerida para compras a crédito")
	}
	if len(in.Items) == 0 {
		return nil, domain.Validation("se requiere al menos un item en la compra")
	}

	amounts := make([]ledger.LineAmount, 0, len(in.Items))
	names := make([]string, 0, len(in.Items))
	for i, it := range in.Items {
		amount, product, err := uc.validateLine(ctx, in.EmpresaID, i+1, it)
		if err != nil {
			return nil, err
		}
		amounts = append(amounts, amount)
		names = append(names, product.Nombre)
	}

	totals := ledger.ComputeTotals(amounts)
	if err := ledger.CheckOpening(tipo, totals.Neto); err != nil {
		return nil, err
	}
	balance := ledger.OpeningBalance(tipo, totals.Neto)
	now := uc.clock.Now()

	var venc *time.Time
	if tipo == entity.TipoCredito {
		venc = in.FechaVencimiento
	}
	purchase := &entity.Purchase{
		ID:               uuid.NewString(),
		EmpresaID:        in.EmpresaID,
		SucursalID:       in.SucursalID,
		ProveedorID:      in.ProveedorID,
		ProveedorNombre:  supplier.Nombre,
		UsuarioID:        in.UsuarioID,
		TipoCompra:       tipo,
		FechaCompra:      *in.FechaCompra,
		FechaVencimiento: venc,
		NumeroFactura:    strings.TrimSpace(in.NumeroFactura),
		Observaciones:    strings.TrimSpace(in.Observaciones),
		TotalBruto:       totals.Bruto,
		DescuentoTotal:   totals.Descuento,
		TotalNeto:        totals.Neto,
		SaldoPendiente:   balance.SaldoPendiente,
		Estado:           balance.Estado,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	lines := make([]*entity.PurchaseLine, 0, len(in.Items))
	for i, it := range in.Items {
		lines = append(lines, &entity.PurchaseLine{
			ID:             uuid.NewString(),
			EmpresaID:      in.EmpresaID,
			CompraID:       purchase.ID,
			ProductoID:     it.ProductoID,
			ProductoNombre: names[i],
			UnidadMedidaID: it.UnidadMedidaID,
			Cantidad:       amounts[i].Cantidad,
			CostoUnitario:  amounts[i].Precio,
			Descuento:      amounts[i].Descuento,
			Subtotal:       amounts[i].Subtotal(),
		})
	}

	var movs []*entity.Movement
	err = uc.uow.Run(ctx, func(tx repository.Set) error {
		movs = movs[:0]
		if err := tx.Purchases.Create(ctx, purchase); err != nil {
			return domain.Persistence("crear compra", err)
		}
		for _, l := range lines {
			if err := tx.Purchases.CreateLine(ctx, l); err != nil {
				return domain.Persistence("crear detalle de compra", err)
			}
			costo := l.CostoUnitario
			mov, err := uc.mutator.Apply(ctx, tx, inventory.MovementInput{
				EmpresaID:      in.EmpresaID,
				SucursalID:     in.SucursalID,
				ProductoID:     l.ProductoID,
				Cantidad:       l.Cantidad,
				Motivo:         entity.MotivoCompra,
				ReferenciaTipo: strPtr(entity.ReferenciaCompra),
				ReferenciaID:   strPtr(purchase.ID),
				CostoUnitario:  &costo,
				Fecha:          purchase.FechaCompra,
				UsuarioID:      in.UsuarioID,
			})
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.DocumentRecorded(metricDocument, "crear")
	uc.metrics.MovementsApplied(movs...)

	return &Detail{Purchase: purchase, Items: lines}, nil
}

func (uc *UseCase) validateLine(ctx context.Context, empresaID string, n int, it LineInput) (ledger.LineAmount, *entity.Product, error) {
	if it.ProductoID == "" {
		return ledger.LineAmount{}, nil, domain.Validationf("item %d: producto_id es requerido", n)
	}
	if it.UnidadMedidaID == "" {
		return ledger.LineAmount{}, nil, domain.Validationf("item %d: unidad_medida_id es requerido", n)
	}
	product, err := uc.repos.Products.GetByID(ctx, empresaID, it.ProductoID)
	if err != nil {
		return ledger.LineAmount{}, nil, domain.Persistence("consultar producto", err)
	}
	if product == nil {
		return ledger.LineAmount{}, nil, domain.NotFoundf("item %d: el producto no pertenece a esta empresa", n)
	}
	if !product.Activo {
		return ledger.LineAmount{}, nil, domain.Conflictf("item %d: el producto %s está inactivo", n, product.Nombre)
	}
	if it.Cantidad == nil || !it.Cantidad.IsPositive() {
		return ledger.LineAmount{}, nil, domain.Validationf("item %d: cantidad inválida", n)
	}
	if it.CostoUnitario == nil || it.CostoUnitario.IsNegative() {
		return ledger.LineAmount{}, nil, domain.Validationf("item %d: costo_unitario inválido", n)
	}
	descuento := decimal.Zero
	if it.Descuento != nil {
		if it.Descuento.IsNegative() {
			return ledger.LineAmount{}, nil, domain.Validationf("item %d: descuento inválido", n)
		}
		descuento = *it.Descuento
	}
	amount := ledger.LineAmount{Cantidad: *it.Cantidad, Precio: *it.CostoUnitario, Descuento: descuento}
	if err := ledger.CheckLine(n, "costo_unitario", amount); err != nil {
		return ledger.LineAmount{}, nil, err
	}
	return amount, product, nil
}

// VoidPurchase revierte cada línea con una SALIDA motivo DEVOLUCION_PROVEEDOR y deja la compra
// ANULADA con saldo cero. Una compra ya anulada produce Conflict.
func (uc *UseCase) VoidPurchase(ctx context.Context, empresaID, usuarioID, id string) (*Detail, error) {
	var (
		purchase *entity.Purchase
		lines    []*entity.PurchaseLine
		movs     []*entity.Movement
	)
	err := uc.uow.Run(ctx, func(tx repository.Set) error {
		movs = movs[:0]
		var err error
		purchase, err = tx.Purchases.GetForUpdate(ctx, empresaID, id)
		if err != nil {
			return domain.Persistence("bloquear compra", err)
		}
		if purchase == nil {
			return domain.NotFound("compra no encontrada")
		}
		if purchase.Estado == entity.EstadoAnulada {
			return domain.Conflict("la compra ya está anulada")
		}
		lines, err = tx.Purchases.ListLines(ctx, empresaID, id)
		if err != nil {
			return domain.Persistence("listar detalle de compra", err)
		}
		for _, l := range lines {
			costo := l.CostoUnitario
			mov, err := uc.mutator.Apply(ctx, tx, inventory.MovementInput{
				EmpresaID:      empresaID,
				SucursalID:     purchase.SucursalID,
				ProductoID:     l.ProductoID,
				Cantidad:       l.Cantidad.Neg(),
				Motivo:         entity.MotivoDevolucionProveedor,
				ReferenciaTipo: strPtr(entity.ReferenciaCompra),
				ReferenciaID:   strPtr(purchase.ID),
				CostoUnitario:  &costo,
				Fecha:          purchase.FechaCompra,
				UsuarioID:      usuarioID,
			})
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		patch := ledger.VoidedBalance()
		patch.UpdatedAt = uc.clock.Now()
		if err := tx.Purchases.UpdateBalance(ctx, empresaID, id, patch); err != nil {
			return domain.Persistence("anular compra", err)
		}
		purchase.SaldoPendiente = patch.SaldoPendiente
		purchase.Estado = patch.Estado
		purchase.UpdatedAt = patch.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.DocumentRecorded(metricDocument, "anular")
	uc.metrics.MovementsApplied(movs...)

	return &Detail{Purchase: purchase, Items: lines}, nil
}

// PaymentInput abono a una compra a crédito.
type PaymentInput struct {
	EmpresaID     string
	UsuarioID     string
	CompraID      string
	FechaPago     *time.Time
	Monto         *decimal.Decimal
	MetodoPago    string
	Referencia    string
	Observaciones string
}

// PaymentResult pago registrado y compra con el saldo actualizado.
type PaymentResult struct {
	Pago   *entity.PurchasePayment `json:"pago"`
	Compra *entity.Purchase        `json:"compra"`
}

// RegisterPayment registra un abono con la compra bloqueada; nunca toca stock.
func (uc *UseCase) RegisterPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	var res PaymentResult
	err := uc.uow.Run(ctx, func(tx repository.Set) error {
		purchase, err := tx.Purchases.GetForUpdate(ctx, in.EmpresaID, in.CompraID)
		if err != nil {
			return domain.Persistence("bloquear compra", err)
		}
		if purchase == nil {
			return domain.NotFound("compra no encontrada")
		}
		if err := ledger.CheckPayment(purchase.TipoCompra, purchase.Estado, purchase.SaldoPendiente, ledger.PaymentRequest{
			FechaPago: in.FechaPago, Monto: in.Monto, MetodoPago: in.MetodoPago,
		}); err != nil {
			return err
		}
		now := uc.clock.Now()
		pago := &entity.PurchasePayment{
			ID:            uuid.NewString(),
			EmpresaID:     in.EmpresaID,
			CompraID:      purchase.ID,
			ProveedorID:   purchase.ProveedorID,
			FechaPago:     *in.FechaPago,
			Monto:         *in.Monto,
			MetodoPago:    ledger.NormalizeMetodoPago(in.MetodoPago),
			Referencia:    strings.TrimSpace(in.Referencia),
			Observaciones: strings.TrimSpace(in.Observaciones),
			UsuarioID:     in.UsuarioID,
			CreatedAt:     now,
		}
		if err := tx.Purchases.CreatePayment(ctx, pago); err != nil {
			return domain.Persistence("registrar pago de compra", err)
		}
		patch := ledger.ApplyPayment(purchase.SaldoPendiente, *in.Monto)
		patch.UpdatedAt = now
		if err := tx.Purchases.UpdateBalance(ctx, in.EmpresaID, purchase.ID, patch); err != nil {
			return domain.Persistence("actualizar saldo de compra", err)
		}
		purchase.SaldoPendiente = patch.SaldoPendiente
		purchase.Estado = patch.Estado
		purchase.UpdatedAt = now
		res = PaymentResult{Pago: pago, Compra: purchase}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.PaymentRecorded(metricDocument, res.Compra.Estado)
	return &res, nil
}

// List compras con filtros, más recientes primero.
func (uc *UseCase) List(ctx context.Context, empresaID string, f repository.DocumentFilter) ([]*entity.Purchase, error) {
	f.Tipo = strings.ToUpper(f.Tipo)
	f.Estado = strings.ToUpper(f.Estado)
	list, err := uc.repos.Purchases.List(ctx, empresaID, f)
	if err != nil {
		return nil, domain.Persistence("listar compras", err)
	}
	if list == nil {
		list = []*entity.Purchase{}
	}
	return list, nil
}

// Detail encabezado y líneas de una compra.
func (uc *UseCase) Detail(ctx context.Context, empresaID, id string) (*Detail, error) {
	purchase, err := uc.repos.Purchases.GetByID(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("consultar compra", err)
	}
	if purchase == nil {
		return nil, domain.NotFound("compra no encontrada")
	}
	lines, err := uc.repos.Purchases.ListLines(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("listar detalle de compra", err)
	}
	if lines == nil {
		lines = []*entity.PurchaseLine{}
	}
	return &Detail{Purchase: purchase, Items: lines}, nil
}

// ListPayments pagos de una compra en orden cronológico.
func (uc *UseCase) ListPayments(ctx context.Context, empresaID, id string) ([]*entity.PurchasePayment, error) {
	purchase, err := uc.repos.Purchases.GetByID(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("consultar compra", err)
	}
	if purchase == nil {
		return nil, domain.NotFound("compra no encontrada")
	}
	list, err := uc.repos.Purchases.ListPayments(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("listar pagos de compra", err)
	}
	if list == nil {
		list = []*entity.PurchasePayment{}
	}
	return list, nil
}

func strPtr(s string) *string { return &s }
