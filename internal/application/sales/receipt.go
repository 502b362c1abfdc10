package sales

import (
	"context"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
)

// WithReceipts habilita la generación de comprobantes PDF.
func (uc *UseCase) WithReceipts(r ports.ReceiptRenderer) *UseCase {
	uc.receipts = r
	return uc
}

// Receipt arma el comprobante PDF de una venta, incluida una venta anulada.
func (uc *UseCase) Receipt(ctx context.Context, empresaID, id string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, domain.Validation("generación de comprobantes no disponible")
	}
	d, err := uc.Detail(ctx, empresaID, id)
	if err != nil {
		return nil, err
	}
	data := ports.ReceiptData{Sale: d.Sale, Lines: d.Items}

	branch, err := uc.repos.Branches.GetByID(ctx, empresaID, d.SucursalID)
	if err != nil {
		return nil, domain.Persistence("consultar sucursal", err)
	}
	data.Branch = branch
	if d.ClienteID != nil {
		c, err := uc.repos.Customers.GetByID(ctx, empresaID, *d.ClienteID)
		if err != nil {
			return nil, domain.Persistence("consultar cliente", err)
		}
		data.Customer = c
	}

	pdf, err := uc.receipts.RenderSaleReceipt(ctx, data)
	if err != nil {
		return nil, domain.Persistence("generar comprobante", err)
	}
	return pdf, nil
}
