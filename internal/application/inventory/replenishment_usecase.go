package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// ReplenishmentSuggestion fila bajo mínimo con la cantidad sugerida de pedido.
type ReplenishmentSuggestion struct {
	SucursalID       string          `json:"sucursal_id"`
	SucursalNombre   string          `json:"sucursal_nombre"`
	ProductoID       string          `json:"producto_id"`
	ProductoNombre   string          `json:"producto_nombre"`
	SKU              string          `json:"sku"`
	StockActual      decimal.Decimal `json:"stock_actual"`
	StockMinimo      decimal.Decimal `json:"stock_minimo"`
	StockIdeal       decimal.Decimal `json:"stock_ideal"` // stock_maximo o 1.5 × mínimo
	CantidadSugerida decimal.Decimal `json:"cantidad_sugerida"`
	Prioridad        int             `json:"prioridad"` // 1 = mayor déficit
}

// ReplenishmentUseCase lista de reposición por sucursal a partir de inventario_sucursal.
type ReplenishmentUseCase struct {
	stock repository.StockRepository
}

// NewReplenishmentUseCase construye el caso de uso.
func NewReplenishmentUseCase(stock repository.StockRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{stock: stock}
}

// BelowMinimum productos con stock_actual < stock_minimo. sucursalID vacío = todas las sucursales.
func (uc *ReplenishmentUseCase) BelowMinimum(ctx context.Context, empresaID, sucursalID string) ([]ReplenishmentSuggestion, error) {
	rows, err := uc.stock.ListBelowMinimum(ctx, empresaID, sucursalID)
	if err != nil {
		return nil, domain.Persistence("listar stock bajo mínimo", err)
	}
	factor := decimal.NewFromFloat(1.5)

	out := make([]ReplenishmentSuggestion, 0, len(rows))
	for _, r := range rows {
		if !r.BelowMinimum() {
			continue
		}
		ideal := r.StockMinimo.Mul(factor)
		if r.StockMaximo != nil && r.StockMaximo.GreaterThan(r.StockMinimo) {
			ideal = *r.StockMaximo
		}
		sugerida := ideal.Sub(r.StockActual)
		if sugerida.IsNegative() {
			sugerida = decimal.Zero
		}
		out = append(out, ReplenishmentSuggestion{
			SucursalID:       r.SucursalID,
			SucursalNombre:   r.SucursalNombre,
			ProductoID:       r.ProductoID,
			ProductoNombre:   r.ProductoNombre,
			SKU:              r.SKU,
			StockActual:      r.StockActual,
			StockMinimo:      r.StockMinimo,
			StockIdeal:       ideal,
			CantidadSugerida: sugerida,
		})
	}

	// Mayor déficit primero
	sort.SliceStable(out, func(i, j int) bool {
		di := out[i].StockMinimo.Sub(out[i].StockActual)
		dj := out[j].StockMinimo.Sub(out[j].StockActual)
		return di.GreaterThan(dj)
	})
	for i := range out {
		out[i].Prioridad = i + 1
	}
	return out, nil
}
