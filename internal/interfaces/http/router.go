package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/alerts"
	"github.com/jhoicas/retail-backoffice-api/internal/application/credits"
	"github.com/jhoicas/retail-backoffice-api/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice-api/internal/application/notifications"
	"github.com/jhoicas/retail-backoffice-api/internal/application/purchasing"
	"github.com/jhoicas/retail-backoffice-api/internal/application/sales"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/cache"
)

// RouterDeps dependencias para el router. Idempotency es opcional (sin Redis).
type RouterDeps struct {
	PurchaseUC      *purchasing.UseCase
	SaleUC          *sales.UseCase
	InventoryUC     *inventory.UseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	CreditUC        *credits.UseCase
	NotificationUC  *notifications.UseCase
	AlertUC         *alerts.UseCase
	Idempotency     *cache.IdempotencyStore
	JWTSecret       string
	JWTIssuer       string
	Log             zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	const (
		admin     = entity.RoleAdmin
		bodeguero = entity.RoleBodeguero
		vendedor  = entity.RoleVendedor
	)
	idem := Idempotency(deps.Idempotency, deps.Log)

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Compras
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC, deps.Log)
	compras := api.Group("/compras", RequireRole(admin, bodeguero))
	compras.Get("/", purchaseHandler.List)
	compras.Post("/", idem, purchaseHandler.Create)
	compras.Get("/:id", purchaseHandler.Detail)
	compras.Post("/:id/anular", RequireRole(admin), purchaseHandler.Void)
	compras.Get("/:id/pagos", purchaseHandler.ListPayments)
	compras.Post("/:id/pagos", idem, purchaseHandler.RegisterPayment)

	// Ventas
	saleHandler := NewSaleHandler(deps.SaleUC, deps.Log)
	ventas := api.Group("/ventas", RequireRole(admin, vendedor))
	ventas.Get("/", saleHandler.List)
	ventas.Post("/", idem, saleHandler.Create)
	ventas.Get("/:id", saleHandler.Detail)
	ventas.Get("/:id/comprobante", saleHandler.Receipt)
	ventas.Post("/:id/anular", RequireRole(admin), saleHandler.Void)
	ventas.Get("/:id/pagos", saleHandler.ListPayments)
	ventas.Post("/:id/pagos", idem, saleHandler.RegisterPayment)

	// Inventario: consultas para todos los roles, escrituras para admin y bodeguero
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.ReplenishmentUC, deps.Log)
	inv := api.Group("/inventario", RequireRole(admin, bodeguero, vendedor))
	inv.Get("/stock", inventoryHandler.GetStock)
	inv.Get("/stock/bajo-minimo", inventoryHandler.BelowMinimum)
	inv.Get("/movimientos", inventoryHandler.GetMovements)
	inv.Get("/movimientos/:id", inventoryHandler.GetMovement)
	inv.Post("/ajustes", RequireRole(admin, bodeguero), idem, inventoryHandler.RegisterAdjustment)
	inv.Post("/traspasos", RequireRole(admin, bodeguero), idem, inventoryHandler.RegisterTransfer)

	// Créditos
	creditHandler := NewCreditHandler(deps.CreditUC, deps.Log)
	creditos := api.Group("/creditos")
	creditos.Get("/clientes", RequireRole(admin, vendedor), creditHandler.ListCustomerCredits)
	creditos.Get("/clientes/:id", RequireRole(admin, vendedor), creditHandler.CustomerCreditDetail)
	creditos.Get("/proveedores", RequireRole(admin, bodeguero), creditHandler.ListSupplierCredits)
	creditos.Get("/proveedores/:id", RequireRole(admin, bodeguero), creditHandler.SupplierCreditDetail)

	// WhatsApp (solo admin)
	whatsappHandler := NewWhatsAppHandler(deps.NotificationUC, deps.Log)
	wa := api.Group("/whatsapp", RequireRole(admin))
	wa.Post("/test", whatsappHandler.SendTest)
	wa.Post("/recordatorio-cliente", whatsappHandler.SendCustomerReminder)
	wa.Post("/recordatorio-cliente/preview", whatsappHandler.PreviewCustomerReminder)
	wa.Get("/notificaciones", whatsappHandler.List)
	wa.Get("/notificaciones/:id", whatsappHandler.Get)

	// Alertas: configuración solo admin, eventos para todos
	alertHandler := NewAlertHandler(deps.AlertUC, deps.Log)
	alertas := api.Group("/alertas")
	alertas.Get("/configuracion", RequireRole(admin), alertHandler.GetConfig)
	alertas.Put("/configuracion", RequireRole(admin), alertHandler.ReplaceConfig)
	alertas.Get("/", alertHandler.List)
	alertas.Get("/:id", alertHandler.Get)
	alertas.Post("/:id/leer", alertHandler.MarkRead)
}
