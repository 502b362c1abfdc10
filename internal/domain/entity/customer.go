package entity

// Customer representa un cliente de la empresa.
type Customer struct {
	ID        string `json:"id"`
	EmpresaID string `json:"empresa_id"`
	Nombre    string `json:"nombre"`
	NIT       string `json:"nit,omitempty"`
	Telefono  string `json:"telefono,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"`
	Email     string `json:"email,omitempty"`
	Activo    bool   `json:"activo"`
}

// ContactPhone número para notificaciones: WhatsApp si existe, si no el teléfono.
func (c *Customer) ContactPhone() string {
	if c.WhatsApp != "" {
		return c.WhatsApp
	}
	return c.Telefono
}

// Supplier representa un proveedor de la empresa.
type Supplier struct {
	ID        string `json:"id"`
	EmpresaID string `json:"empresa_id"`
	Nombre    string `json:"nombre"`
	NIT       string `json:"nit,omitempty"`
	Telefono  string `json:"telefono,omitempty"`
	Activo    bool   `json:"activo"`
}
