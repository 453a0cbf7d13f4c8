package dto

// PageRequest paginación para listados de historial.
type PageRequest struct {
	Limit int `query:"limit"`
}

// Límites de página del historial.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// DefaultPage aplica el límite por defecto y lo acota al máximo.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
