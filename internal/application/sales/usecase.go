// Package sales implementa el flujo de ventas: alta con salida de stock, anulación
// (devolución del cliente) y abonos de ventas a crédito.
package sales

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

const metricDocument = "venta"

// UseCase casos de uso de ventas.
type UseCase struct {
	uow     repository.UnitOfWork
	repos   repository.Set
	mutator *inventory.StockMutator
	clock   ports.Clock
	metrics *observability.Metrics

	receipts ports.ReceiptRenderer
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

// LineInput ítem de la venta.
type LineInput struct {
	ProductoID     string
	UnidadMedidaID string
	Cantidad       *decimal.Decimal
	PrecioUnitario *decimal.Decimal
	Descuento      *decimal.Decimal
}

// CreateInput datos de alta de una venta. ClienteID vacío es venta anónima.
type CreateInput struct {
	EmpresaID        string
	UsuarioID        string
	SucursalID       string
	ClienteID        string
	TipoVenta        string
	FechaVenta       *time.Time
	FechaVencimiento *time.Time
	NumeroDocumento  string
	Observaciones    string
	Items            []LineInput
}

// Detail venta con su detalle.
type Detail struct {
	*entity.Sale
	Items []*entity.SaleLine `json:"items"`
}

// CreateSale valida, calcula totales y persiste encabezado, líneas y salidas de stock
// en una sola transacción. Cada línea guarda el costo de referencia vigente del producto.
func (uc *UseCase) CreateSale(ctx context.Context, in CreateInput) (*Detail, error) {
	if in.SucursalID == "" {
		return nil, domain.Validation("sucursal_id es requerido")
	}
	if in.FechaVenta == nil || in.FechaVenta.IsZero() {
		return nil, domain.Validation("fecha_venta es requerida")
	}

	branch, err := uc.repos.Branches.GetByID(ctx, in.EmpresaID, in.SucursalID)
	if err != nil {
		return nil, domain.Persistence("consultar sucursal", err)
	}
	if branch == nil {
		return nil, domain.NotFound("la sucursal no existe en esta empresa")
	}

	var (
		clienteID     *string
		clienteNombre string
	)
	if in.ClienteID != "" {
		customer, err := uc.repos.Customers.GetByID(ctx, in.EmpresaID, in.ClienteID)
		if err != nil {
			return nil, domain.Persistence("consultar cliente", err)
		}
		if customer == nil {
			return nil, domain.NotFound("el cliente no existe en esta empresa")
		}
		if !customer.Activo {
			return nil, domain.Conflict("el cliente está inactivo")
		}
		id := customer.ID
		clienteID = &id
		clienteNombre = customer.Nombre
	}

	tipo, ok := ledger.NormalizeTipo(in.TipoVenta)
	if !ok {
		return nil, domain.Validation("tipo_venta inválido (CONTADO | CREDITO)")
	}
	if tipo == entity.TipoCredito && in.FechaVencimiento == nil {
		return nil, domain.Validation("fecha_vencimiento es requerida para ventas a crédito")
	}
	if len(in.Items) == 0 {
		return nil, domain.Validation("se requiere al menos un item en la venta")
	}

	amounts := make([]ledger.LineAmount, 0, len(in.Items))
	costs := make([]decimal.Decimal, 0, len(in.Items))
	products := make(map[string]*entity.Product, len(in.Items))
	for i, it := range in.Items {
		n := i + 1
		if it.ProductoID == "" {
			return nil, domain.Validationf("item %d: producto_id es requerido", n)
		}
		if it.UnidadMedidaID == "" {
			return nil, domain.Validationf("item %d: unidad_medida_id es requerido", n)
		}
		product, cached := products[it.ProductoID]
		if !cached {
			product, err = uc.repos.Products.GetByID(ctx, in.EmpresaID, it.ProductoID)
			if err != nil {
				return nil, domain.Persistence("consultar producto", err)
			}
			if product == nil {
				return nil, domain.NotFoundf("item %d: el producto no pertenece a esta empresa", n)
			}
			if !product.Activo {
				return nil, domain.Conflictf("item %d: el producto %s está inactivo", n, product.Nombre)
			}
			products[it.ProductoID] = product
		}
		if it.Cantidad == nil || !it.Cantidad.IsPositive() {
			return nil, domain.Validationf("item %d: cantidad inválida", n)
		}
		if it.PrecioUnitario == nil || it.PrecioUnitario.IsNegative() {
			return nil, domain.Validationf("item %d: precio_unitario inválido", n)
		}
		descuento := decimal.Zero
		if it.Descuento != nil {
			if it.Descuento.IsNegative() {
				return nil, domain.Validationf("item %d: descuento inválido", n)
			}
			descuento = *it.Descuento
		}
		amount := ledger.LineAmount{Cantidad: *it.Cantidad, Precio: *it.PrecioUnitario, Descuento: descuento}
		if err := ledger.CheckLine(n, "precio_unitario", amount); err != nil {
			return nil, err
		}
		amounts = append(amounts, amount)
		costs = append(costs, product.ReferenceCost())
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
	sale := &entity.Sale{
		ID:               uuid.NewString(),
		EmpresaID:        in.EmpresaID,
		SucursalID:       in.SucursalID,
		ClienteID:        clienteID,
		ClienteNombre:    clienteNombre,
		UsuarioID:        in.UsuarioID,
		TipoVenta:        tipo,
		FechaVenta:       *in.FechaVenta,
		FechaVencimiento: venc,
		NumeroDocumento:  strings.TrimSpace(in.NumeroDocumento),
		Observaciones:    strings.TrimSpace(in.Observaciones),
		TotalBruto:       totals.Bruto,
		DescuentoTotal:   totals.Descuento,
		TotalNeto:        totals.Neto,
		SaldoPendiente:   balance.SaldoPendiente,
		Estado:           balance.Estado,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	lines := make([]*entity.SaleLine, 0, len(in.Items))
	for i, it := range in.Items {
		lines = append(lines, &entity.SaleLine{
			ID:             uuid.NewString(),
			EmpresaID:      in.EmpresaID,
			VentaID:        sale.ID,
			ProductoID:     it.ProductoID,
			ProductoNombre: products[it.ProductoID].Nombre,
			UnidadMedidaID: it.UnidadMedidaID,
			Cantidad:       amounts[i].Cantidad,
			PrecioUnitario: amounts[i].Precio,
			CostoUnitario:  costs[i],
			Descuento:      amounts[i].Descuento,
			Subtotal:       amounts[i].Subtotal(),
		})
	}

	var movs []*entity.Movement
	err = uc.uow.Run(ctx, func(tx repository.Set) error {
		movs = movs[:0]
		if err := tx.Sales.Create(ctx, sale); err != nil {
			return domain.Persistence("crear venta", err)
		}
		for _, l := range lines {
			if err := tx.Sales.CreateLine(ctx, l); err != nil {
				return domain.Persistence("crear detalle de venta", err)
			}
			mov, err := uc.mutator.Apply(ctx, tx, lineMovement(sale, l, l.Cantidad.Neg(), entity.MotivoVenta, in.UsuarioID))
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

	return &Detail{Sale: sale, Items: lines}, nil
}

func lineMovement(sale *entity.Sale, l *entity.SaleLine, qty decimal.Decimal, motivo, usuarioID string) inventory.MovementInput {
	costo := l.CostoUnitario
	precio := l.PrecioUnitario
	refTipo := entity.ReferenciaVenta
	refID := sale.ID
	return inventory.MovementInput{
		EmpresaID:      sale.EmpresaID,
		SucursalID:     sale.SucursalID,
		ProductoID:     l.ProductoID,
		Cantidad:       qty,
		Motivo:         motivo,
		ReferenciaTipo: &refTipo,
		ReferenciaID:   &refID,
		CostoUnitario:  &costo,
		PrecioUnitario: &precio,
		Fecha:          sale.FechaVenta,
		UsuarioID:      usuarioID,
	}
}

// VoidSale devuelve al stock cada línea (ENTRADA DEVOLUCION_CLIENTE) y deja la venta
// ANULADA con saldo cero. Anular dos veces produce Conflict.
func (uc *UseCase) VoidSale(ctx context.Context, empresaID, usuarioID, id string) (*Detail, error) {
	var (
		sale  *entity.Sale
		lines []*entity.SaleLine
		movs  []*entity.Movement
	)
	err := uc.uow.Run(ctx, func(tx repository.Set) error {
		movs = movs[:0]
		var err error
		sale, err = tx.Sales.GetForUpdate(ctx, empresaID, id)
		if err != nil {
			return domain.Persistence("bloquear venta", err)
		}
		if sale == nil {
			return domain.NotFound("venta no encontrada")
		}
		if sale.Estado == entity.EstadoAnulada {
			return domain.Conflict("la venta ya está anulada")
		}
		lines, err = tx.Sales.ListLines(ctx, empresaID, id)
		if err != nil {
			return domain.Persistence("listar detalle de venta", err)
		}
		for _, l := range lines {
			mov, err := uc.mutator.Apply(ctx, tx, lineMovement(sale, l, l.Cantidad, entity.MotivoDevolucionCliente, usuarioID))
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		patch := ledger.VoidedBalance()
		patch.UpdatedAt = uc.clock.Now()
		if err := tx.Sales.UpdateBalance(ctx, empresaID, id, patch); err != nil {
			return domain.Persistence("anular venta", err)
		}
		sale.SaldoPendiente = patch.SaldoPendiente
		sale.Estado = patch.Estado
		sale.UpdatedAt = patch.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.DocumentRecorded(metricDocument, "anular")
	uc.metrics.MovementsApplied(movs...)

	return &Detail{Sale: sale, Items: lines}, nil
}

// PaymentInput abono de cliente.
type PaymentInput struct {
	EmpresaID     string
	UsuarioID     string
	VentaID       string
	FechaPago     *time.Time
	Monto         *decimal.Decimal
	MetodoPago    string
	Referencia    string
	Observaciones string
}

// PaymentResult pago registrado y venta con el saldo actualizado.
type PaymentResult struct {
	Pago  *entity.SalePayment `json:"pago"`
	Venta *entity.Sale        `json:"venta"`
}

// RegisterPayment aplica un abono con la venta bloqueada. No modifica stock.
func (uc *UseCase) RegisterPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	var res PaymentResult
	err := uc.uow.Run(ctx, func(tx repository.Set) error {
		sale, err := tx.Sales.GetForUpdate(ctx, in.EmpresaID, in.VentaID)
		if err != nil {
			return domain.Persistence("bloquear venta", err)
		}
		if sale == nil {
			return domain.NotFound("venta no encontrada")
		}
		if err := ledger.CheckPayment(sale.TipoVenta, sale.Estado, sale.SaldoPendiente, ledger.PaymentRequest{
			FechaPago: in.FechaPago, Monto: in.Monto, MetodoPago: in.MetodoPago,
		}); err != nil {
			return err
		}
		now := uc.clock.Now()
		pago := &entity.SalePayment{
			ID:            uuid.NewString(),
			EmpresaID:     in.EmpresaID,
			VentaID:       sale.ID,
			ClienteID:     sale.ClienteID,
			FechaPago:     *in.FechaPago,
			Monto:         *in.Monto,
			MetodoPago:    ledger.NormalizeMetodoPago(in.MetodoPago),
			Referencia:    strings.TrimSpace(in.Referencia),
			Observaciones: strings.TrimSpace(in.Observaciones),
			UsuarioID:     in.UsuarioID,
			CreatedAt:     now,
		}
		if err := tx.Sales.CreatePayment(ctx, pago); err != nil {
			return domain.Persistence("registrar pago de venta", err)
		}
		patch := ledger.ApplyPayment(sale.SaldoPendiente, *in.Monto)
		patch.UpdatedAt = now
		if err := tx.Sales.UpdateBalance(ctx, in.EmpresaID, sale.ID, patch); err != nil {
			return domain.Persistence("actualizar saldo de venta", err)
		}
		sale.SaldoPendiente = patch.SaldoPendiente
		sale.Estado = patch.Estado
		sale.UpdatedAt = now
		res = PaymentResult{Pago: pago, Venta: sale}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.PaymentRecorded(metricDocument, res.Venta.Estado)
	return &res, nil
}

// List ventas con filtros, más recientes primero.
func (uc *UseCase) List(ctx context.Context, empresaID string, f repository.DocumentFilter) ([]*entity.Sale, error) {
	f.Tipo = strings.ToUpper(f.Tipo)
	f.Estado = strings.ToUpper(f.Estado)
	list, err := uc.repos.Sales.List(ctx, empresaID, f)
	if err != nil {
		return nil, domain.Persistence("listar ventas", err)
	}
	if list == nil {
		list = []*entity.Sale{}
	}
	return list, nil
}

// Detail encabezado y líneas de una venta.
func (uc *UseCase) Detail(ctx context.Context, empresaID, id string) (*Detail, error) {
	sale, err := uc.repos.Sales.GetByID(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("consultar venta", err)
	}
	if sale == nil {
		return nil, domain.NotFound("venta no encontrada")
	}
	lines, err := uc.repos.Sales.ListLines(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("listar detalle de venta", err)
	}
	if lines == nil {
		lines = []*entity.SaleLine{}
	}
	return &Detail{Sale: sale, Items: lines}, nil
}

// ListPayments abonos de una venta en orden cronológico.
func (uc *UseCase) ListPayments(ctx context.Context, empresaID, id string) ([]*entity.SalePayment, error) {
	sale, err := uc.repos.Sales.GetByID(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("consultar venta", err)
	}
	if sale == nil {
		return nil, domain.NotFound("venta no encontrada")
	}
	list, err := uc.repos.Sales.ListPayments(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("listar pagos de venta", err)
	}
	if list == nil {
		list = []*entity.SalePayment{}
	}
	return list, nil
}
