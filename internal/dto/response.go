package dto

// ── pagination ──

// PaginationRequest common paging query parameters.
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number with default.
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size with default.
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset of the page.
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ExistsResponse answer of the uniqueness probes (CEI, CPF).
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ImportResponse result of a spreadsheet import.
type ImportResponse struct {
	Total   int           `json:"total"`
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError one rejected spreadsheet row.
type ImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
