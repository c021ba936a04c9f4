// Package importer reads the hospital directory from an Excel workbook whose
// headers vary between data sources.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ChlorophyllA/skin2/internal/model"
)

// ErrNoHospitalColumn is returned when no header names the hospital column.
var ErrNoHospitalColumn = errors.New("未检测到医院名称列")

// headerAliases lists accepted headers per field, most specific first.
var headerAliases = []struct {
	field   string
	aliases []string
	set     func(*model.Hospital, string)
}{
	{"province", []string{"省份", "省", "所在省（或直辖市）", "省/市"}, func(h *model.Hospital, v string) { h.Province = v }},
	{"city", []string{"城市", "市", "所在城市", "市/区"}, func(h *model.Hospital, v string) { h.City = v }},
	{"hospital", []string{"医院名称", "医院", "单位名称", "机构名称"}, func(h *model.Hospital, v string) { h.Hospital = v }},
	{"address", []string{"医院地址", "地址", "详细地址"}, func(h *model.Hospital, v string) { h.Address = v }},
	{"phone", []string{"联系电话", "电话", "联系电话（门诊/总机）", "电话1"}, func(h *model.Hospital, v string) { h.Phone = v }},
	{"level", []string{"医院等级", "等级", "医院等级（三级乙等）", "级别"}, func(h *model.Hospital, v string) { h.Level = v }},
	{"departments", []string{"重点科室", "重点科室/特色科室", "科室", "重点科"}, func(h *model.Hospital, v string) { h.Departments = v }},
	{"operation_mode", []string{"经营方式", "办院性质", "经营形式"}, func(h *model.Hospital, v string) { h.OperationMode = v }},
	{"email", []string{"电子邮箱", "邮箱", "Email", "E-mail"}, func(h *model.Hospital, v string) { h.Email = v }},
	{"website", []string{"医院网站", "网站", "网址", "网站地址"}, func(h *model.Hospital, v string) { h.Website = v }},
}

// MapColumns resolves each field to a column index in header, or -1.
// An exact (trimmed) header match wins over a case-insensitive one.
func MapColumns(header []string) map[string]int {
	exact := make(map[string]int, len(header))
	folded := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := exact[h]; !ok {
			exact[h] = i
		}
		if _, ok := folded[strings.ToLower(h)]; !ok {
			folded[strings.ToLower(h)] = i
		}
	}

	out := make(map[string]int, len(headerAliases))
	for _, f := range headerAliases {
		out[f.field] = -1
		for _, a := range f.aliases {
			if i, ok := exact[a]; ok {
				out[f.field] = i
				break
			}
		}
		if out[f.field] >= 0 {
			continue
		}
		for _, a := range f.aliases {
			if i, ok := folded[strings.ToLower(strings.TrimSpace(a))]; ok {
				out[f.field] = i
				break
			}
		}
	}
	return out
}

// Rows converts a header row plus data rows into hospitals. Fully blank rows
// are skipped; cell values are trimmed.
func Rows(rows [][]string) ([]model.Hospital, error) {
	if len(rows) == 0 {
		return nil, ErrNoHospitalColumn
	}
	cols := MapColumns(rows[0])
	if cols["hospital"] < 0 {
		return nil, ErrNoHospitalColumn
	}

	out := make([]model.Hospital, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var h model.Hospital
		blank := true
		for _, f := range headerAliases {
			i := cols[f.field]
			if i < 0 || i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v != "" {
				blank = false
			}
			f.set(&h, v)
		}
		if !blank {
			out = append(out, h)
		}
	}
	return out, nil
}

// ReadWorkbook parses the first sheet of an .xlsx workbook.
func ReadWorkbook(r io.Reader) ([]model.Hospital, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return Rows(rows)
}
