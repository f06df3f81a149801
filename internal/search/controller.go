// Package search implements debounced recipient lookup for the compose view.
package search

import (
	"context"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/pager"
	"github.com/nhle/mailterm/internal/timer"
)

// DefaultDebounce is the idle time after the last keystroke before a query
// is sent.
const DefaultDebounce = 500 * time.Millisecond

// Searcher runs a recipient query against the server.
type Searcher interface {
	SearchRecipients(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error)
}

// ResultMsg carries the outcome of a search request.
type ResultMsg struct {
	owner  int
	seq    int
	page   int
	Result *model.SearchResult
	Err    error
}

// Options configures a Controller.
type Options struct {
	Debounce time.Duration
	MinChars int
	Tick     timer.TickFunc
}

// Controller owns the query, the selected recipients and the current page of
// candidates.
type Controller struct {
	ctx      context.Context
	api      Searcher
	debounce *timer.Timer
	minChars int

	query     string
	selection []model.Recipient
	results   []model.Recipient
	count     int
	locked    string
	targetAll bool

	pager     *pager.Pager
	seq       int
	searching bool
	stopped   bool
}

// New creates a controller with an empty selection.
func New(ctx context.Context, api Searcher, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinChars < 1 {
		opts.MinChars = 1
	}
	return &Controller{
		ctx:      ctx,
		api:      api,
		debounce: timer.New(opts.Debounce, opts.Tick),
		minChars: opts.MinChars,
		pager:    pager.New(1),
	}
}

// Query returns the current query text.
func (c *Controller) Query() string { return c.query }

// Selection returns the chosen recipients.
func (c *Controller) Selection() []model.Recipient { return c.selection }

// Results returns the candidates on the current page, minus the selection.
func (c *Controller) Results() []model.Recipient { return c.results }

// Count returns the server's total number of candidates.
func (c *Controller) Count() int { return c.count }

// Pager returns the candidate pager.
func (c *Controller) Pager() *pager.Pager { return c.pager }

// Searching reports whether a request is in flight.
func (c *Controller) Searching() bool { return c.searching }

// Pending reports whether a debounced search is waiting to fire.
func (c *Controller) Pending() bool { return c.debounce.Pending() }

// TargetAll reports whether the message goes to every user.
func (c *Controller) TargetAll() bool { return c.targetAll }

// IsLocked reports whether id is the reply sender, which cannot be removed.
func (c *Controller) IsLocked(id string) bool {
	return c.locked != "" && id == c.locked
}

// Prefill replaces the selection, as when replying. The recipient with id
// locked stays selected.
func (c *Controller) Prefill(recipients []model.Recipient, locked string) {
	c.selection = append([]model.Recipient(nil), recipients...)
	c.locked = locked
}

// SetQuery records a keystroke and restarts the debounce timer.
func (c *Controller) SetQuery(q string) tea.Cmd {
	if c.stopped {
		return nil
	}
	c.query = q
	return c.debounce.Start()
}

// Tick handles a debounce tick. It returns the search command when the tick
// belongs to this controller and is still live.
func (c *Controller) Tick(msg timer.TickMsg) (tea.Cmd, bool) {
	if c.stopped || !c.debounce.Fired(msg) {
		return nil, false
	}
	return c.Search(), true
}

// Search issues the query immediately. An empty query does nothing. A query
// shorter than the minimum clears the candidates without a request.
func (c *Controller) Search() tea.Cmd {
	if c.stopped || c.query == "" {
		return nil
	}
	if utf8.RuneCountInString(c.query) < c.minChars {
		c.results = nil
		c.seq++
		c.searching = false
		return nil
	}

	c.seq++
	c.searching = true
	req := model.SearchRequest{
		Query:      c.query,
		Recipients: append([]model.Recipient{}, c.selection...),
		Page:       c.pager.Current,
	}
	owner, seq, ctx, api := c.debounce.ID(), c.seq, c.ctx, c.api
	return func() tea.Msg {
		res, err := api.SearchRecipients(ctx, req)
		return ResultMsg{owner: owner, seq: seq, page: req.Page, Result: res, Err: err}
	}
}

// Apply stores a search result. Results of superseded requests, or arriving
// after Stop, are dropped. A failed request clears the candidates and its
// error is returned for display. When the reported count no longer reaches
// the requested page, the pager is clamped and the returned command searches
// the clamped page.
func (c *Controller) Apply(msg ResultMsg) (tea.Cmd, error) {
	if c.stopped || msg.owner != c.debounce.ID() || msg.seq != c.seq {
		return nil, nil
	}
	c.searching = false

	if msg.Err != nil {
		c.results = nil
		return nil, msg.Err
	}
	if msg.Result == nil {
		c.results = nil
		return nil, nil
	}

	c.results = Exclude(msg.Result.Results, c.selection)
	c.count = msg.Result.Count
	moved := c.pager.SetPerPage(msg.Result.PerPage)
	if c.pager.SetTotal(msg.Result.Count) {
		moved = true
	}
	if moved && msg.page != c.pager.Current {
		return c.Search(), nil
	}
	return nil, nil
}

// Select moves the candidate with id into the selection and refreshes the
// candidates.
func (c *Controller) Select(id string) tea.Cmd {
	for i, r := range c.results {
		if r.ID != id {
			continue
		}
		c.selection = append(c.selection, r)
		c.results = append(c.results[:i:i], c.results[i+1:]...)
		return c.Search()
	}
	return nil
}

// Remove drops id from the selection and refreshes the candidates.
func (c *Controller) Remove(id string) tea.Cmd {
	if c.IsLocked(id) {
		return nil
	}
	kept := c.selection[:0:0]
	for _, r := range c.selection {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(c.selection) {
		return nil
	}
	c.selection = kept
	return c.Search()
}

// SetTargetAll toggles sending to everyone. Turning it on clears the query,
// the candidates and the selection.
func (c *Controller) SetTargetAll(on bool) {
	c.targetAll = on
	if !on {
		return
	}
	c.debounce.Stop()
	c.seq++
	c.searching = false
	c.query = ""
	c.results = nil
	c.selection = nil
}

// PrevPage moves the candidate pager back and re-runs the search.
func (c *Controller) PrevPage() tea.Cmd {
	if !c.pager.Prev() {
		return nil
	}
	return c.Search()
}

// NextPage moves the candidate pager forward and re-runs the search.
func (c *Controller) NextPage() tea.Cmd {
	if !c.pager.Next() {
		return nil
	}
	return c.Search()
}

// GotoPage jumps to page n and re-runs the search.
func (c *Controller) GotoPage(n int) tea.Cmd {
	c.pager.Goto(n)
	return c.Search()
}

// Stop cancels the debounce timer. Results that arrive afterwards are
// ignored.
func (c *Controller) Stop() {
	c.debounce.Stop()
	c.stopped = true
}

// Exclude returns results minus any recipient whose id is in selection,
// preserving order.
func Exclude(results, selection []model.Recipient) []model.Recipient {
	taken := make(map[string]struct{}, len(selection))
	for _, r := range selection {
		taken[r.ID] = struct{}{}
	}
	out := make([]model.Recipient, 0, len(results))
	for _, r := range results {
		if _, ok := taken[r.ID]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}
