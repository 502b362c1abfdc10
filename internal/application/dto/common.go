package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DataResponse envoltorio de respuestas exitosas.
type DataResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

// ListResponse listado con su cantidad de filas.
type ListResponse struct {
	OK    bool `json:"ok"`
	Total int  `json:"total"`
	Data  any  `json:"data"`
}
