// Package searchui drives the hospital search panel: province autocomplete,
// the province→city cascade, the level list, paginated search and reset.
//
// Decisions (what to request, what to show) are pure functions in render.go;
// the Controller sequences them and pushes the outcome through a View, which
// is the only place that touches the actual screen.
package searchui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChlorophyllA/skin2/internal/debounce"
	"github.com/ChlorophyllA/skin2/internal/model"
)

const (
	DebounceDelay   = 200 * time.Millisecond
	SuggestionLimit = 30
	provinceField   = "province"
)

// API is the subset of the portal backend the search panel calls.
type API interface {
	Levels(ctx context.Context) ([]string, error)
	Suggestions(ctx context.Context, field, q string, limit int) ([]string, error)
	Cities(ctx context.Context, province string) ([]string, error)
	Search(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error)
}

// Form is the current content of the query inputs.
type Form struct {
	Province    string
	City        string
	Level       string
	Departments string
}

// View applies decisions to the screen. Implementations must not call back
// into the Controller from these methods.
type View interface {
	Form() Form
	SetProvince(v string)
	// ShowSuggestions replaces the suggestion list; an empty list dismisses it.
	ShowSuggestions(items []string)
	SetCityOptions(opts []Option)
	SetLevelOptions(opts []Option)
	// ResetForm clears the province, department and jump inputs and selects
	// the first option of every selector.
	ResetForm()
	SetSearchEnabled(enabled bool)
	ShowResults(r Results)
	SetPagination(p Pagination)
}

// State is the controller's bookkeeping, exposed for inspection.
type State struct {
	CurrentPage  int
	TotalResults int
	LastQuery    model.SearchQuery
	InFlight     bool
}

type Controller struct {
	api  API
	view View
	log  zerolog.Logger

	suggest *debounce.Slot

	mu    sync.Mutex
	state State
	seq   uint64 // id of the latest dispatched search
}

type ControllerOption func(*Controller)

// WithScheduler swaps the timer behind the province debounce.
func WithScheduler(s debounce.Scheduler) ControllerOption {
	return func(c *Controller) {
		c.suggest = debounce.NewWithScheduler(DebounceDelay, s)
	}
}

func NewController(api API, view View, logger zerolog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:     api,
		view:    view,
		log:     logger.With().Str("component", "searchui").Logger(),
		suggest: debounce.New(DebounceDelay),
		state:   State{CurrentPage: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load is the page-load hook: levels, every city, hidden pagination.
func (c *Controller) Load(ctx context.Context) {
	c.LoadLevels(ctx)
	c.LoadCities(ctx, "")
	c.view.SetPagination(HiddenPagination())
}

// FocusProvince lists every province.
func (c *Controller) FocusProvince(ctx context.Context) {
	c.loadSuggestions(ctx, "")
}

// InputProvince schedules a suggestion lookup for text once typing has paused
// for DebounceDelay. ctx must outlive the delay.
func (c *Controller) InputProvince(ctx context.Context, text string) {
	q := strings.TrimSpace(text)
	c.suggest.Schedule(func() {
		c.loadSuggestions(ctx, q)
	})
}

// SelectSuggestion commits a province picked from the list.
func (c *Controller) SelectSuggestion(ctx context.Context, province string) {
	c.suggest.Cancel()
	c.view.SetProvince(province)
	c.view.ShowSuggestions(nil)
	c.LoadCities(ctx, province)
}

// DismissSuggestions handles a click outside the input and the list.
func (c *Controller) DismissSuggestions() {
	c.view.ShowSuggestions(nil)
}

// CommitProvince handles a direct edit of the province box (change/blur).
func (c *Controller) CommitProvince(ctx context.Context, raw string) {
	c.LoadCities(ctx, strings.TrimSpace(raw))
}

func (c *Controller) loadSuggestions(ctx context.Context, q string) {
	items, err := c.api.Suggestions(ctx, provinceField, q, SuggestionLimit)
	if err != nil {
		c.log.Warn().Err(err).Str("q", q).Msg("load province suggestions failed")
		return
	}
	c.view.ShowSuggestions(items)
}

// LoadCities refreshes the city selector for province ("" means all cities).
// On failure the selector is left untouched.
func (c *Controller) LoadCities(ctx context.Context, province string) {
	cities, err := c.api.Cities(ctx, province)
	if err != nil {
		c.log.Warn().Err(err).Str("province", province).Msg("load cities failed")
		return
	}
	c.view.SetCityOptions(CityOptions(cities))
}

// LoadLevels refreshes the level selector.
func (c *Controller) LoadLevels(ctx context.Context) {
	levels, err := c.api.Levels(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("load levels failed")
		return
	}
	c.view.SetLevelOptions(LevelOptions(levels))
}

// Submit runs a fresh search from page 1.
func (c *Controller) Submit(ctx context.Context) {
	c.Search(ctx, 1)
}

// Search issues a search for page using the current form values. Once a
// total is known, page is clamped to the last page.
// Only the most recently dispatched search may update the screen; a slower,
// older response is dropped.
func (c *Controller) Search(ctx context.Context, page int) {
	form := c.view.Form()

	c.mu.Lock()
	if c.state.TotalResults > 0 {
		page = ClampPage(page, TotalPages(c.state.TotalResults))
	}
	q := BuildQuery(form, page)
	c.seq++
	seq := c.seq
	c.state.CurrentPage = q.Page
	c.state.LastQuery = q
	c.state.InFlight = true
	c.mu.Unlock()

	c.view.SetSearchEnabled(false)

	res, err := c.api.Search(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.log.Debug().Int("page", q.Page).Msg("discarding stale search response")
		return
	}
	c.state.InFlight = false
	defer c.view.SetSearchEnabled(true)

	if err != nil {
		c.log.Error().Err(err).Interface("query", q).Msg("search failed")
		c.view.ShowResults(Results{Message: FailureMessage})
		c.view.SetPagination(HiddenPagination())
		return
	}

	c.state.TotalResults = res.Total
	results, pagination := RenderPage(res, q.Page)
	c.view.ShowResults(results)
	c.view.SetPagination(pagination)
}

// PrevPage goes one page back unless already on the first page.
func (c *Controller) PrevPage(ctx context.Context) {
	st := c.Snapshot()
	if st.CurrentPage > 1 {
		c.Search(ctx, st.CurrentPage-1)
	}
}

// NextPage goes one page forward unless already on the last page.
func (c *Controller) NextPage(ctx context.Context) {
	st := c.Snapshot()
	if st.CurrentPage < TotalPages(st.TotalResults) {
		c.Search(ctx, st.CurrentPage+1)
	}
}

// Jump resolves the jump-box text to a page in range and loads it when it
// differs from the current page. It returns the resolved page.
func (c *Controller) Jump(ctx context.Context, input string) int {
	st := c.Snapshot()
	page := ResolveJump(input, TotalPages(st.TotalResults))
	if page != st.CurrentPage {
		c.Search(ctx, page)
	}
	return page
}

// Reset returns the panel to its initial state and reloads the unrestricted
// city and level lists. In-flight searches are abandoned.
func (c *Controller) Reset(ctx context.Context) {
	c.suggest.Cancel()

	c.mu.Lock()
	c.seq++
	c.state = State{CurrentPage: 1}
	c.view.ResetForm()
	c.view.ShowSuggestions(nil)
	c.view.SetCityOptions(CityOptions(nil))
	c.view.ShowResults(Results{})
	c.view.SetPagination(HiddenPagination())
	c.view.SetSearchEnabled(true)
	c.mu.Unlock()

	c.LoadCities(ctx, "")
	c.LoadLevels(ctx)
}
