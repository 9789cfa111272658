package dto

// PageRequest paginación por número de página para listados.
type PageRequest struct {
	Page int `query:"page" validate:"min=1"`
	Size int `query:"size" validate:"min=1,max=100"`
}

// DefaultPage aplica valores por defecto si Page/Size son cero.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = 10
	}
}

// Offset filas a saltar para la página pedida.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// PaginationMeta metadatos de página en respuestas.
type PaginationMeta struct {
	Total int `json:"total"`
	Pages int `json:"pages"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// NewPaginationMeta calcula pages = ceil(total/size).
func NewPaginationMeta(total, page, size int) PaginationMeta {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return PaginationMeta{Total: total, Pages: pages, Page: page, Size: size}
}

// Estados del sobre de respuesta de listados.
const (
	ResponseStatusSuccess = "success"
	ResponseStatusError   = "error"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
