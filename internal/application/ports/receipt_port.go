package ports

import (
	"context"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// ReceiptData datos para la representación impresa de una venta. Customer es nil en ventas anónimas.
type ReceiptData struct {
	Sale     *entity.Sale
	Lines    []*entity.SaleLine
	Branch   *entity.Branch
	Customer *entity.Customer
}

// ReceiptRenderer genera el comprobante de venta (PDF) y devuelve sus bytes.
type ReceiptRenderer interface {
	RenderSaleReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}
