package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CanonicalTest is one catalog entry. The reference fields are raw strings
// in the grammar understood by ParseReference; any of them may be empty, and
// all three empty is valid (the test simply carries no reference data).
type CanonicalTest struct {
	Name         string `json:"name"`
	Units        string `json:"units"`
	Min          string `json:"min,omitempty"`
	Max          string `json:"max,omitempty"`
	HealthyValue string `json:"healthy_value,omitempty"`
}

// Category groups related tests under a panel name.
type Category struct {
	Name  string          `json:"name"`
	Tests []CanonicalTest `json:"tests"`
}

// Catalog is the ordered, read-only set of canonical test definitions.
// Order is significant: fuzzy ties break on it and report buckets preserve it.
type Catalog struct {
	categories []Category
	order      []string
	byKey      map[string]CanonicalTest
}

// NewCatalog builds a catalog from categories, preserving declaration order.
// Duplicate test names keep the first definition.
func NewCatalog(categories []Category) *Catalog {
	c := &Catalog{
		categories: categories,
		byKey:      make(map[string]CanonicalTest),
	}
	for _, cat := range categories {
		for _, t := range cat.Tests {
			key := normalizeKey(t.Name)
			if key == "" {
				continue
			}
			if _, exists := c.byKey[key]; exists {
				continue
			}
			c.byKey[key] = t
			c.order = append(c.order, t.Name)
		}
	}
	return c
}

// Names returns the canonical test names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Categories returns the catalog grouped by panel, in declaration order.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// Len returns the number of canonical tests.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Lookup finds a test definition by name, case-insensitively.
func (c *Catalog) Lookup(name string) (CanonicalTest, bool) {
	t, ok := c.byKey[normalizeKey(name)]
	return t, ok
}

// AliasTable maps lower-cased alternate spellings to canonical names.
// Targets are not validated against the catalog at load time; a stale alias
// degrades to an unresolved value downstream instead of failing the load.
type AliasTable map[string]string

// Lookup resolves an alias after trimming and case folding.
func (a AliasTable) Lookup(name string) (string, bool) {
	v, ok := a[normalizeKey(name)]
	return v, ok
}

// newAliasTable lower-cases and trims every key.
func newAliasTable(raw map[string]string) AliasTable {
	out := make(AliasTable, len(raw))
	for k, v := range raw {
		key := normalizeKey(k)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(v)
	}
	return out
}

// DefaultCatalog returns the embedded reference panel used when no catalog
// file is present. Ranges follow common adult reference intervals.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Category{
		{
			Name: "Full Blood Count",
			Tests: []CanonicalTest{
				{Name: "Hemoglobin", Units: "g/L", Min: "120", Max: "150"},
				{Name: "Red Blood Cells", Units: "10^12/L", Min: "3.8", Max: "5.8"},
				{Name: "White Blood Cells", Units: "10^9/L", Min: "4.0", Max: "11.0"},
				{Name: "Platelets", Units: "10^9/L", Min: "150", Max: "400"},
				{Name: "Hematocrit", Units: "%", Min: "36", Max: "46"},
				{Name: "MCV", Units: "fL", Min: "80", Max: "100"},
			},
		},
		{
			Name: "Metabolic",
			Tests: []CanonicalTest{
				{Name: "Glucose", Units: "mg/dL", HealthyValue: "70-110"},
				{Name: "HbA1c", Units: "%", HealthyValue: "<5.7"},
				{Name: "Creatinine", Units: "umol/L", Min: "60", Max: "110"},
				{Name: "Urea", Units: "mmol/L", HealthyValue: "2.5-7.8"},
				{Name: "Uric Acid", Units: "umol/L", Max: "420"},
			},
		},
		{
			Name: "Lipids",
			Tests: []CanonicalTest{
				{Name: "Total Cholesterol", Units: "mmol/L", HealthyValue: "<5.2"},
				{Name: "LDL Cholesterol", Units: "mmol/L", HealthyValue: "<3.4"},
				{Name: "HDL Cholesterol", Units: "mmol/L", HealthyValue: ">1.0"},
				{Name: "Triglycerides", Units: "mmol/L", HealthyValue: "<1.7"},
			},
		},
		{
			Name: "Liver",
			Tests: []CanonicalTest{
				{Name: "ALT", Units: "U/L", HealthyValue: "<35"},
				{Name: "AST", Units: "U/L", HealthyValue: "<40"},
				{Name: "Total Bilirubin", Units: "umol/L", HealthyValue: "<21"},
				{Name: "Albumin", Units: "g/L", Min: "35", Max: "50"},
			},
		},
		{
			Name: "Thyroid",
			Tests: []CanonicalTest{
				{Name: "TSH", Units: "mIU/L", Min: "0.4", Max: "4.7"},
				{Name: "Free T4", Units: "pmol/L", Min: "9", Max: "19"},
			},
		},
		{
			Name: "Other",
			Tests: []CanonicalTest{
				{Name: "Vitamin D", Units: "nmol/L", HealthyValue: "75"},
				{Name: "Ferritin", Units: "ug/L", Min: "30", Max: "300"},
				{Name: "CRP", Units: "mg/L", HealthyValue: "<5"},
				{Name: "Blood Type", Units: ""},
			},
		},
	})
}

// DefaultAliases returns the embedded alias table.
func DefaultAliases() AliasTable {
	return newAliasTable(map[string]string{
		"haemoglobin":                 "Hemoglobin",
		"hgb":                         "Hemoglobin",
		"hb":                          "Hemoglobin",
		"rbc":                         "Red Blood Cells",
		"erythrocytes":                "Red Blood Cells",
		"wbc":                         "White Blood Cells",
		"leukocytes":                  "White Blood Cells",
		"plt":                         "Platelets",
		"thrombocytes":                "Platelets",
		"hct":                         "Hematocrit",
		"packed cell volume":          "Hematocrit",
		"mean corpuscular volume":     "MCV",
		"fasting glucose":             "Glucose",
		"blood sugar":                 "Glucose",
		"glycated hemoglobin":         "HbA1c",
		"a1c":                         "HbA1c",
		"creat":                       "Creatinine",
		"bun":                         "Urea",
		"urate":                       "Uric Acid",
		"cholesterol":                 "Total Cholesterol",
		"ldl":                         "LDL Cholesterol",
		"hdl":                         "HDL Cholesterol",
		"tg":                          "Triglycerides",
		"sgpt":                        "ALT",
		"alanine aminotransferase":    "ALT",
		"sgot":                        "AST",
		"aspartate aminotransferase":  "AST",
		"bilirubin":                   "Total Bilirubin",
		"alb":                         "Albumin",
		"thyroid stimulating hormone": "TSH",
		"ft4":                         "Free T4",
		"thyroxine":                   "Free T4",
		"25-oh vitamin d":             "Vitamin D",
		"c-reactive protein":          "CRP",
		"abo group":                   "Blood Type",
	})
}

// LoadCatalog reads a catalog JSON file: a list of categories, each holding a
// list of tests. A missing file falls back to the embedded defaults; a file
// that exists but does not parse is a hard error.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	cat := NewCatalog(categories)
	if cat.Len() == 0 {
		return nil, fmt.Errorf("catalog %s contains no tests", filepath.Clean(path))
	}
	return cat, nil
}

// LoadAliases reads the alias JSON file, a flat map from free-text alias to
// canonical name. Missing file falls back to the embedded defaults.
func LoadAliases(path string) (AliasTable, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultAliases(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultAliases(), nil
		}
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	raw := make(map[string]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode aliases: %w", err)
	}
	return newAliasTable(raw), nil
}

// EnsureCatalogFile writes the embedded catalog to path when no file exists
// yet, giving users a starting point for editing reference ranges.
func EnsureCatalogFile(path string) error {
	return ensureJSONFile(path, DefaultCatalog().categories)
}

// EnsureAliasFile writes the embedded alias table to path when absent.
func EnsureAliasFile(path string) error {
	return ensureJSONFile(path, DefaultAliases())
}

func ensureJSONFile(path string, v any) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}
	clean = filepath.Clean(clean)
	if _, err := os.Stat(clean); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", clean, err)
	}
	dir := filepath.Dir(clean)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir for %s: %w", clean, err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", clean, err)
	}
	if err := os.WriteFile(clean, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", clean, err)
	}
	return nil
}
