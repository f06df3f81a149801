// Package pager implements the page descriptor shared by every paginated
// view.
//
// Current is 0-based. Pages lists the 1-based page labels; callers convert
// between the two at the rendering site.
package pager

// Pager tracks the current page of a server-paginated list.
type Pager struct {
	Current   int
	PerPage   int
	Total     int
	PageCount int
	Pages     []int
}

// New returns a pager positioned on the first page of an empty list.
func New(perPage int) *Pager {
	if perPage <= 0 {
		perPage = 1
	}
	p := &Pager{PerPage: perPage}
	p.recompute()
	return p
}

// PageCountFor returns the number of pages needed for total items. An empty
// list still has one page.
func PageCountFor(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

func (p *Pager) recompute() {
	p.PageCount = PageCountFor(p.Total, p.PerPage)
	p.Pages = make([]int, p.PageCount)
	for i := range p.Pages {
		p.Pages[i] = i + 1
	}
}

// clamp pulls Current back into range after the page count shrank.
func (p *Pager) clamp() bool {
	last := p.PageCount - 1
	if p.Current > last {
		p.Current = last
		return true
	}
	if p.Current < 0 {
		p.Current = 0
		return true
	}
	return false
}

// SetTotal records a new item count. It reports whether Current moved, which
// happens when the last page disappeared (e.g. after deleting its only item).
func (p *Pager) SetTotal(total int) bool {
	if total < 0 {
		total = 0
	}
	p.Total = total
	p.recompute()
	return p.clamp()
}

// SetPerPage changes the page size, used when the server dictates it.
func (p *Pager) SetPerPage(perPage int) bool {
	if perPage <= 0 || perPage == p.PerPage {
		return false
	}
	p.PerPage = perPage
	p.recompute()
	return p.clamp()
}

// Prev moves one page back unless already on the first page.
func (p *Pager) Prev() bool {
	if p.Current > 0 {
		p.Current--
		return true
	}
	return false
}

// Next moves one page forward unless already on the last page.
func (p *Pager) Next() bool {
	if p.Current < p.PageCount-1 {
		p.Current++
		return true
	}
	return false
}

// Goto jumps to page n without bounds checking. Callers pass indices taken
// from Pages (minus one).
func (p *Pager) Goto(n int) bool {
	if p.Current == n {
		return false
	}
	p.Current = n
	return true
}

// Reset returns to the first page.
func (p *Pager) Reset() bool {
	return p.Goto(0)
}

// PrevDisabled reports whether Prev is a no-op.
func (p *Pager) PrevDisabled() bool {
	return p.Current == 0
}

// NextDisabled reports whether Next is a no-op.
func (p *Pager) NextDisabled() bool {
	return p.Current == p.PageCount-1
}

// PageDisabled reports whether n is the current page.
func (p *Pager) PageDisabled(n int) bool {
	return p.Current == n
}
