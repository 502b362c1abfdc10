package memstore

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// Identificadores del catálogo de ejemplo.
const (
	EmpresaDemo      = "emp-1"
	OtraEmpresa      = "emp-2"
	SucursalCentro   = "suc-centro"
	SucursalNorte    = "suc-norte"
	ProductoCafe     = "prod-cafe"
	ProductoAzucar   = "prod-azucar"
	ProductoInactivo = "prod-inactivo"
	ClienteAna       = "cli-ana"
	ClienteInactivo  = "cli-inactivo"
	ProveedorAndes   = "prov-andes"
	ProveedorCerrado = "prov-cerrado"
	UsuarioDemo      = "usr-1"
)

// NewDemo almacenamiento con un catálogo mínimo para pruebas de flujos.
func NewDemo() *Store {
	s := New()
	s.AddBranch(entity.Branch{ID: SucursalCentro, EmpresaID: EmpresaDemo, Nombre: "Centro", Activo: true})
	s.AddBranch(entity.Branch{ID: SucursalNorte, EmpresaID: EmpresaDemo, Nombre: "Norte", Activo: true})
	s.AddBranch(entity.Branch{ID: "suc-ajena", EmpresaID: OtraEmpresa, Nombre: "Ajena", Activo: true})

	costoCafe := decimal.NewFromInt(5)
	minimoCafe := decimal.NewFromInt(3)
	s.AddProduct(entity.Product{
		ID: ProductoCafe, EmpresaID: EmpresaDemo, SKU: "CAF-01", Nombre: "Café molido",
		PrecioVenta: decimal.NewFromInt(9), PrecioCompraReferencia: &costoCafe, StockMinimoGeneral: &minimoCafe, Activo: true,
	})
	s.AddProduct(entity.Product{
		ID: ProductoAzucar, EmpresaID: EmpresaDemo, SKU: "AZU-01", Nombre: "Azúcar",
		PrecioVenta: decimal.NewFromInt(4), Activo: true,
	})
	s.AddProduct(entity.Product{
		ID: ProductoInactivo, EmpresaID: EmpresaDemo, SKU: "OLD-01", Nombre: "Descontinuado",
		PrecioVenta: decimal.NewFromInt(1), Activo: false,
	})

	s.AddCustomer(entity.Customer{ID: ClienteAna, EmpresaID: EmpresaDemo, Nombre: "Ana Pérez", WhatsApp: "50255550000", Activo: true})
	s.AddCustomer(entity.Customer{ID: ClienteInactivo, EmpresaID: EmpresaDemo, Nombre: "Cliente Baja", Activo: false})
	s.AddSupplier(entity.Supplier{ID: ProveedorAndes, EmpresaID: EmpresaDemo, Nombre: "Distribuidora Andes", Activo: true})
	s.AddSupplier(entity.Supplier{ID: ProveedorCerrado, EmpresaID: EmpresaDemo, Nombre: "Proveedor Cerrado", Activo: false})
	return s
}
