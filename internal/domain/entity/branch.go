package entity

// Branch representa una sucursal de la empresa; el stock se lleva por sucursal.
type Branch struct {
	ID        string `json:"id"`
	EmpresaID string `json:"empresa_id"`
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion,omitempty"`
	Activo    bool   `json:"activo"`
}
