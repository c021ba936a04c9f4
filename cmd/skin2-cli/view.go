package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ChlorophyllA/skin2/internal/searchui"
	"github.com/ChlorophyllA/skin2/internal/uploadui"
)

// syncWriter serializes output from the prompt loop and debounced callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// searchView prints the search panel to a terminal.
type searchView struct {
	out io.Writer

	mu      sync.Mutex
	form    searchui.Form
	results searchui.Results
}

func (v *searchView) set(f func(*searchui.Form)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f(&v.form)
}

func (v *searchView) last() searchui.Results {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.results
}

func (v *searchView) Form() searchui.Form {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form
}

func (v *searchView) SetProvince(p string) {
	v.set(func(f *searchui.Form) { f.Province = p })
	fmt.Fprintf(v.out, "province: %s\n", p)
}

func (v *searchView) ShowSuggestions(items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(v.out, "suggestions: %s\n", strings.Join(items, ", "))
}

func (v *searchView) SetCityOptions(opts []searchui.Option) {
	v.set(func(f *searchui.Form) { f.City = "" })
	fmt.Fprintf(v.out, "cities: %s\n", labels(opts))
}

func (v *searchView) SetLevelOptions(opts []searchui.Option) {
	fmt.Fprintf(v.out, "levels: %s\n", labels(opts))
}

func (v *searchView) ResetForm() {
	v.set(func(f *searchui.Form) { *f = searchui.Form{} })
}

func (v *searchView) SetSearchEnabled(bool) {}

func (v *searchView) ShowResults(r searchui.Results) {
	v.mu.Lock()
	v.results = r
	v.mu.Unlock()

	if r.Message != "" {
		fmt.Fprintln(v.out, r.Message)
	}
	for _, c := range r.Cards {
		fmt.Fprintf(v.out, "\n%s\n", c.Title)
		for _, f := range c.Fields {
			fmt.Fprintf(v.out, "  %s：%s\n", f.Label, f.Value)
		}
	}
}

func (v *searchView) SetPagination(p searchui.Pagination) {
	if p.Visible {
		fmt.Fprintln(v.out, p.Info)
	}
}

func labels(opts []searchui.Option) string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Label)
	}
	return strings.Join(out, " | ")
}

// uploadView prints the recognition panel.
type uploadView struct {
	out io.Writer
}

func (v *uploadView) ShowPreview(src string) {
	if src != "" {
		fmt.Fprintf(v.out, "image selected (%d bytes encoded)\n", len(src))
	}
}

func (v *uploadView) ShowChangeButton(bool) {}
func (v *uploadView) SetSubmitEnabled(bool) {}
func (v *uploadView) SetResultsVisible(bool) {}
func (v *uploadView) SetDropHighlight(bool) {}

func (v *uploadView) SetLoading(on bool) {
	if on {
		fmt.Fprintln(v.out, "正在识别...")
	}
}

func (v *uploadView) ShowResult(r uploadui.ResultView) {
	if r == uploadui.Placeholder() {
		return
	}
	fmt.Fprintf(v.out, "疾病名称：%s\n置信度：%s\n可能性：%s\n描述：%s\n建议：%s\n",
		r.DiseaseName, r.Confidence, r.Probability, r.Description, r.Advice)
}

func (v *uploadView) Alert(msg string) {
	fmt.Fprintf(v.out, "! %s\n", msg)
}
