package api

// Pager keeps the pagination cursor for a list view. Pages are 1-based.
type Pager struct {
	Page     int
	PageSize int
	Total    int
}

func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Pager{Page: 1, PageSize: pageSize}
}

// Observe records the totals reported by the last response.
func (p *Pager) Observe(page, pageSize, total int) {
	if page > 0 {
		p.Page = page
	}
	if pageSize > 0 {
		p.PageSize = pageSize
	}
	if total >= 0 {
		p.Total = total
	}
}

func (p *Pager) Pages() int {
	if p.Total == 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p *Pager) HasNext() bool { return p.Page < p.Pages() }
func (p *Pager) HasPrev() bool { return p.Page > 1 }

// Next advances the cursor and reports whether it moved.
func (p *Pager) Next() bool {
	if !p.HasNext() {
		return false
	}
	p.Page++
	return true
}

func (p *Pager) Prev() bool {
	if !p.HasPrev() {
		return false
	}
	p.Page--
	return true
}

// Range returns the 1-based index of the first and last item on the current page.
func (p *Pager) Range() (from, to int) {
	if p.Total == 0 {
		return 0, 0
	}
	from = (p.Page-1)*p.PageSize + 1
	to = from + p.PageSize - 1
	if to > p.Total {
		to = p.Total
	}
	return from, to
}
