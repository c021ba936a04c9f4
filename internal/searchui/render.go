package searchui

import (
	"fmt"
	"strings"

	"github.com/ChlorophyllA/skin2/internal/model"
)

const (
	AllCitiesLabel   = "全部城市"
	AllLevelsLabel   = "全部等级"
	NoMatchMessage   = "未找到匹配医院。"
	FailureMessage   = "搜索失败，请检查后端或控制台错误。"
	UntitledHospital = "未命名医院"
)

// Option is one entry of a selector. The sentinel option has an empty Value.
type Option struct {
	Value string
	Label string
}

// Field is one labelled line of a result card.
type Field struct {
	Label string
	Value string
}

type Card struct {
	Title  string
	Fields []Field
}

// Results is what the result grid shows: either a message or cards.
type Results struct {
	Message string
	Cards   []Card
}

// Pagination is the derived state of the paging controls.
type Pagination struct {
	Visible     bool
	Current     int
	TotalPages  int
	Total       int
	PrevEnabled bool
	NextEnabled bool
	Info        string
}

// cardFields is the display order of optional hospital fields.
var cardFields = []struct {
	label string
	get   func(model.Hospital) string
}{
	{"省份", func(h model.Hospital) string { return h.Province }},
	{"城市", func(h model.Hospital) string { return h.City }},
	{"医院地址", func(h model.Hospital) string { return h.Address }},
	{"联系电话", func(h model.Hospital) string { return h.Phone }},
	{"医院等级", func(h model.Hospital) string { return h.Level }},
	{"重点科室", func(h model.Hospital) string { return h.Departments }},
	{"经营方式", func(h model.Hospital) string { return h.OperationMode }},
	{"电子邮箱", func(h model.Hospital) string { return h.Email }},
	{"医院网站", func(h model.Hospital) string { return h.Website }},
}

// TotalPages is ceil(total/PageSize), never less than 1.
func TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + model.PageSize - 1) / model.PageSize
}

// ClampPage forces p into [1, totalPages].
func ClampPage(p, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if p < 1 {
		return 1
	}
	if p > totalPages {
		return totalPages
	}
	return p
}

// ParseJump reads the leading integer of input the way a browser page-number
// box does: surrounding space is ignored and trailing junk is dropped ("12页" is 12).
func ParseJump(input string) (int, bool) {
	s := strings.TrimSpace(input)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n < 1<<30 {
			n = n*10 + int(r-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// ResolveJump turns raw jump-box text into a page in [1, totalPages].
// Non-numeric input resolves to 1.
func ResolveJump(input string, totalPages int) int {
	n, ok := ParseJump(input)
	if !ok {
		return 1
	}
	return ClampPage(n, totalPages)
}

// BuildQuery snapshots the form into a search request for page.
func BuildQuery(f Form, page int) model.SearchQuery {
	if page < 1 {
		page = 1
	}
	return model.SearchQuery{
		Province:    strings.TrimSpace(f.Province),
		City:        f.City,
		Level:       f.Level,
		Departments: strings.TrimSpace(f.Departments),
		Page:        page,
	}
}

// BuildPagination derives the paging controls for a non-empty result page.
func BuildPagination(current, total int) Pagination {
	pages := TotalPages(total)
	return Pagination{
		Visible:     true,
		Current:     current,
		TotalPages:  pages,
		Total:       total,
		PrevEnabled: current > 1,
		NextEnabled: current < pages,
		Info:        fmt.Sprintf("第 %d / %d 页 · 共 %d 条", current, pages, total),
	}
}

// HiddenPagination is the paging state when there is nothing to page through.
func HiddenPagination() Pagination {
	return Pagination{}
}

// BuildCards keeps only the fields that carry a non-blank value.
func BuildCards(records []model.Hospital) []Card {
	cards := make([]Card, 0, len(records))
	for _, rec := range records {
		title := strings.TrimSpace(rec.Hospital)
		if title == "" {
			title = UntitledHospital
		}
		card := Card{Title: title}
		for _, f := range cardFields {
			if v := f.get(rec); strings.TrimSpace(v) != "" {
				card.Fields = append(card.Fields, Field{Label: f.label, Value: v})
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// RenderPage decides what a finished search shows.
func RenderPage(res *model.SearchResult, page int) (Results, Pagination) {
	if res == nil || len(res.Results) == 0 {
		return Results{Message: NoMatchMessage}, HiddenPagination()
	}
	return Results{Cards: BuildCards(res.Results)}, BuildPagination(page, res.Total)
}

func sentinelOptions(label string, values []string) []Option {
	opts := make([]Option, 0, len(values)+1)
	opts = append(opts, Option{Value: "", Label: label})
	for _, v := range values {
		opts = append(opts, Option{Value: v, Label: v})
	}
	return opts
}

// CityOptions prepends the "all cities" sentinel.
func CityOptions(cities []string) []Option {
	return sentinelOptions(AllCitiesLabel, cities)
}

// LevelOptions prepends the "all levels" sentinel.
func LevelOptions(levels []string) []Option {
	return sentinelOptions(AllLevelsLabel, levels)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes & < > " and ' so backend text can be placed in markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// RenderHTML produces the result-grid markup for r.
func RenderHTML(r Results) string {
	var b strings.Builder
	if len(r.Cards) == 0 {
		if r.Message != "" {
			b.WriteString("<div>")
			b.WriteString(EscapeHTML(r.Message))
			b.WriteString("</div>")
		}
		return b.String()
	}
	for _, c := range r.Cards {
		b.WriteString(`<div class="card"><h3>`)
		b.WriteString(EscapeHTML(c.Title))
		b.WriteString("</h3>")
		for _, f := range c.Fields {
			fmt.Fprintf(&b, `<div class="meta"><strong>%s：</strong> %s</div>`, EscapeHTML(f.Label), EscapeHTML(f.Value))
		}
		b.WriteString("</div>")
	}
	return b.String()
}
