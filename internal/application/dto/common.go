package dto

// PageRequest paginación del historial de corridas.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage 20 por página si Limit no viene; offsets negativos cuentan como 0.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	p.Offset = max(p.Offset, 0)
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable (VALIDATION, NOT_FOUND, ...).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
