// Package credits expone las cuentas por cobrar (ventas a crédito) y por pagar
// (compras a crédito) como proyecciones de lectura sobre documentos y pagos.
package credits

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/ledger"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// UseCase consultas del sub-libro de créditos.
type UseCase struct {
	sales     repository.SaleRepository
	purchases repository.PurchaseRepository
	clock     ports.Clock
}

// NewUseCase construye el caso de uso.
func NewUseCase(sales repository.SaleRepository, purchases repository.PurchaseRepository, clock ports.Clock) *UseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &UseCase{sales: sales, purchases: purchases, clock: clock}
}

// Filter filtros de listado. ContraparteID es cliente o proveedor según la consulta.
type Filter struct {
	ContraparteID string
	SucursalID    string
	Estado        string
	Vencidos      bool
	Desde         *time.Time
	Hasta         *time.Time
}

func (uc *UseCase) toRepo(f Filter) (repository.CreditFilter, error) {
	estado := strings.ToUpper(strings.TrimSpace(f.Estado))
	switch estado {
	case "", entity.EstadoPendiente, entity.EstadoParcial, entity.EstadoPagada, entity.EstadoAnulada:
	default:
		return repository.CreditFilter{}, domain.Validation("estado inválido (PENDIENTE | PARCIAL | PAGADA | ANULADA)")
	}
	return repository.CreditFilter{
		ContraparteID: f.ContraparteID,
		SucursalID:    f.SucursalID,
		Estado:        estado,
		Vencidos:      f.Vencidos,
		Desde:         f.Desde,
		Hasta:         f.Hasta,
		Now:           uc.clock.Now(),
	}, nil
}

// ListCustomerCredits ventas a crédito. Sin filtro de estado solo devuelve las que tienen saldo.
func (uc *UseCase) ListCustomerCredits(ctx context.Context, empresaID string, f Filter) ([]*entity.Sale, error) {
	rf, err := uc.toRepo(f)
	if err != nil {
		return nil, err
	}
	list, err := uc.sales.ListCredits(ctx, empresaID, rf)
	if err != nil {
		return nil, domain.Persistence("listar créditos de clientes", err)
	}
	if list == nil {
		list = []*entity.Sale{}
	}
	return list, nil
}

// ListSupplierCredits compras a crédito con el mismo criterio que ListCustomerCredits.
func (uc *UseCase) ListSupplierCredits(ctx context.Context, empresaID string, f Filter) ([]*entity.Purchase, error) {
	rf, err := uc.toRepo(f)
	if err != nil {
		return nil, err
	}
	list, err := uc.purchases.ListCredits(ctx, empresaID, rf)
	if err != nil {
		return nil, domain.Persistence("listar créditos de proveedores", err)
	}
	if list == nil {
		list = []*entity.Purchase{}
	}
	return list, nil
}

// CustomerCredit venta a crédito con su historial de abonos.
type CustomerCredit struct {
	Venta   *entity.Sale          `json:"venta"`
	Pagos   []*entity.SalePayment `json:"pagos"`
	Vencido bool                  `json:"vencido"`
}

// SupplierCredit compra a crédito con su historial de pagos.
type SupplierCredit struct {
	Compra  *entity.Purchase          `json:"compra"`
	Pagos   []*entity.PurchasePayment `json:"pagos"`
	Vencido bool                      `json:"vencido"`
}

// CustomerCreditDetail NotFound si la venta no existe o no es a crédito.
func (uc *UseCase) CustomerCreditDetail(ctx context.Context, empresaID, ventaID string) (*CustomerCredit, error) {
	sale, err := uc.sales.GetByID(ctx, empresaID, ventaID)
	if err != nil {
		return nil, domain.Persistence("consultar venta", err)
	}
	if sale == nil || sale.TipoVenta != entity.TipoCredito {
		return nil, domain.NotFound("crédito de cliente no encontrado")
	}
	pagos, err := uc.sales.ListPayments(ctx, empresaID, ventaID)
	if err != nil {
		return nil, domain.Persistence("listar pagos de venta", err)
	}
	if pagos == nil {
		pagos = []*entity.SalePayment{}
	}
	return &CustomerCredit{
		Venta:   sale,
		Pagos:   pagos,
		Vencido: ledger.IsOverdue(sale.FechaVencimiento, sale.SaldoPendiente, uc.clock.Now()),
	}, nil
}

// SupplierCreditDetail NotFound si la compra no existe o no es a crédito.
func (uc *UseCase) SupplierCreditDetail(ctx context.Context, empresaID, compraID string) (*SupplierCredit, error) {
	purchase, err := uc.purchases.GetByID(ctx, empresaID, compraID)
	if err != nil {
		return nil, domain.Persistence("consultar compra", err)
	}
	if purchase == nil || purchase.TipoCompra != entity.TipoCredito {
		return nil, domain.NotFound("crédito de proveedor no encontrado")
	}
	pagos, err := uc.purchases.ListPayments(ctx, empresaID, compraID)
	if err != nil {
		return nil, domain.Persistence("listar pagos de compra", err)
	}
	if pagos == nil {
		pagos = []*entity.PurchasePayment{}
	}
	return &SupplierCredit{
		Compra:  purchase,
		Pagos:   pagos,
		Vencido: ledger.IsOverdue(purchase.FechaVencimiento, purchase.SaldoPendiente, uc.clock.Now()),
	}, nil
}
