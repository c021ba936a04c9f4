// Package disease holds the static lesion-class reference table used to explain
// recognition results. The table is data: edit catalog.yaml (or point
// DISEASE_CATALOG at a replacement file) without touching any logic.
package disease

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FallbackDescription = "这是一种症状较轻的皮肤病，若有担忧建议咨询专业医生获取详细信息。"
	FallbackAdvice      = "请及时咨询皮肤科医生获取专业建议。"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Info describes one lesion class.
type Info struct {
	ID               string `yaml:"id" json:"id"`
	Name             string `yaml:"name" json:"name"`
	NameEN           string `yaml:"name_en" json:"name_en"`
	Description      string `yaml:"description" json:"description"`
	// PanelDescription is the short text for the result panel; empty means Description.
	PanelDescription string `yaml:"panel_description" json:"-"`
	Advice           string `yaml:"advice" json:"advice"`
	RiskLevel        string `yaml:"risk_level" json:"risk_level"`
	CommonLocations  string `yaml:"common_locations" json:"common_locations"`
	Prevention       string `yaml:"prevention" json:"prevention"`
	Treatment        string `yaml:"treatment" json:"treatment"`
}

// Catalog maps class codes (MEL, NV, ...) to their Info.
type Catalog struct {
	entries map[string]Info
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("disease: embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file; an empty path yields the embedded catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML catalog document.
func Parse(b []byte) (*Catalog, error) {
	var entries map[string]Info
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("decode catalog: no entries")
	}
	norm := make(map[string]Info, len(entries))
	for code, info := range entries {
		norm[strings.ToUpper(strings.TrimSpace(code))] = info
	}
	return &Catalog{entries: norm}, nil
}

// Lookup returns the entry for code. Codes are matched case-insensitively.
func (c *Catalog) Lookup(code string) (Info, bool) {
	if c == nil {
		return Info{}, false
	}
	info, ok := c.entries[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}

func (c *Catalog) Description(code string) string {
	if info, ok := c.Lookup(code); ok && info.Description != "" {
		return info.Description
	}
	return FallbackDescription
}

// PanelDescription is the text the upload result panel shows for code.
func (c *Catalog) PanelDescription(code string) string {
	if info, ok := c.Lookup(code); ok && info.PanelDescription != "" {
		return info.PanelDescription
	}
	return c.Description(code)
}

func (c *Catalog) Advice(code string) string {
	if info, ok := c.Lookup(code); ok && info.Advice != "" {
		return info.Advice
	}
	return FallbackAdvice
}

// Codes lists the known class codes in sorted order.
func (c *Catalog) Codes() []string {
	out := make([]string, 0, len(c.entries))
	for code := range c.entries {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
