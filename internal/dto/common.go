package dto

// ── shared query parameters ──

// PageQuery carries the common pagination parameters. Listing endpoints
// apply their own default limit, so the zero value is meaningful.
type PageQuery struct {
	Page  int `form:"page"  binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// GetPage returns the page number, defaulting to 1.
func (p *PageQuery) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetLimit returns the page size, falling back to the endpoint default.
func (p *PageQuery) GetLimit(def int) int {
	if p.Limit <= 0 {
		return def
	}
	return p.Limit
}

// Offset returns the row offset for the endpoint default page size.
func (p *PageQuery) Offset(def int) int {
	return (p.GetPage() - 1) * p.GetLimit(def)
}
