package ui

import (
	"strconv"
	"strings"

	"github.com/nhle/mailterm/internal/pager"
	"github.com/nhle/mailterm/internal/theme"
)

// maxPageLabels bounds the number of page numbers shown around the current
// page.
const maxPageLabels = 7

// RenderPager renders "‹ 1 2 3 ›" with the current page highlighted and
// the arrows muted when they would not move. A single page renders as
// nothing.
func RenderPager(p *pager.Pager) string {
	if p == nil || p.PageCount <= 1 {
		return ""
	}

	parts := make([]string, 0, maxPageLabels+2)
	parts = append(parts, arrow("‹", p.PrevDisabled()))

	first, last := window(p.Current, p.PageCount)
	if first > 0 {
		parts = append(parts, theme.MutedStyle.Render("…"))
	}
	for i := first; i <= last; i++ {
		// Pages holds the 1-based labels; Current is 0-based.
		label := strconv.Itoa(p.Pages[i])
		parts = append(parts, theme.PageStyle(p.PageDisabled(i)).Render(label))
	}
	if last < p.PageCount-1 {
		parts = append(parts, theme.MutedStyle.Render("…"))
	}

	parts = append(parts, arrow("›", p.NextDisabled()))
	return strings.Join(parts, " ")
}

func arrow(glyph string, disabled bool) string {
	if disabled {
		return theme.MutedStyle.Render(glyph)
	}
	return theme.PageStyle(false).Bold(true).Render(glyph)
}

// window returns the inclusive range of page indices to label.
func window(current, count int) (int, int) {
	if count <= maxPageLabels {
		return 0, count - 1
	}
	first := current - maxPageLabels/2
	if first < 0 {
		first = 0
	}
	last := first + maxPageLabels - 1
	if last > count-1 {
		last = count - 1
		first = last - maxPageLabels + 1
	}
	return first, last
}
