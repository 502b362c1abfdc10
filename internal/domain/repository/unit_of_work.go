package repository

import "context"

// Set agrupa los repositorios atados a una misma conexión (pool o transacción).
type Set struct {
	Branches      BranchRepository
	Products      ProductRepository
	Customers     CustomerRepository
	Suppliers     SupplierRepository
	Stock         StockRepository
	Movements     MovementRepository
	Purchases     PurchaseRepository
	Sales         SaleRepository
	Notifications NotificationRepository
	Alerts        AlertRepository
}

// UnitOfWork ejecuta fn dentro de una transacción con repositorios atados a ella.
// Commit si fn devuelve nil; Rollback ante cualquier error.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(tx Set) error) error
}
