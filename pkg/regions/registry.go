// Package regions holds the static catalogue of monitored regions. The
// catalogue is embedded at build time and loaded once; lookups never touch
// the network or disk.
package regions

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/floodsense/floodsense-go/pkg/models"
)

//go:embed regions.yaml
var regionsYAML []byte

// DefaultRegionCode is the region substituted when a lookup misses, so an
// unknown code degrades to a usable assessment instead of an error.
const DefaultRegionCode = "FCT"

// Registry is an immutable region catalogue keyed by uppercase code.
type Registry struct {
	byCode map[string]models.Region
	order  []string
}

type catalogue struct {
	Regions []models.Region `yaml:"regions"`
}

// Load parses the embedded catalogue. It fails only on a corrupt embed, a
// duplicate code, an invalid risk class or a missing default region.
func Load() (*Registry, error) {
	return parse(regionsYAML)
}

func parse(data []byte) (*Registry, error) {
	var cat catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse region catalogue: %w", err)
	}
	if len(cat.Regions) == 0 {
		return nil, fmt.Errorf("region catalogue is empty")
	}

	reg := &Registry{byCode: make(map[string]models.Region, len(cat.Regions))}
	for _, r := range cat.Regions {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		if code == "" {
			return nil, fmt.Errorf("region %q has no code", r.Name)
		}
		if _, exists := reg.byCode[code]; exists {
			return nil, fmt.Errorf("duplicate region code %s", code)
		}
		if !r.BaseRisk.Valid() {
			return nil, fmt.Errorf("region %s has invalid base risk %q", code, r.BaseRisk)
		}
		r.Code = code
		reg.byCode[code] = r
		reg.order = append(reg.order, code)
	}
	sort.Strings(reg.order)

	if _, ok := reg.byCode[DefaultRegionCode]; !ok {
		return nil, fmt.Errorf("region catalogue is missing default region %s", DefaultRegionCode)
	}
	return reg, nil
}

// Get looks up a region by code, case-insensitively. The second return
// reports whether the code was found.
func (r *Registry) Get(code string) (models.Region, bool) {
	region, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return region, ok
}

// Resolve returns the region for code, falling back to the default region
// when the code is unknown. The bool reports whether the fallback was taken.
func (r *Registry) Resolve(code string) (models.Region, bool) {
	if region, ok := r.Get(code); ok {
		return region, false
	}
	return r.Default(), true
}

// Default returns the fallback region.
func (r *Registry) Default() models.Region {
	return r.byCode[DefaultRegionCode]
}

// All returns every region sorted by code. The slice is a copy.
func (r *Registry) All() []models.Region {
	out := make([]models.Region, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.byCode[code])
	}
	return out
}

// Codes returns every region code in sorted order.
func (r *Registry) Codes() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of regions in the catalogue.
func (r *Registry) Len() int {
	return len(r.byCode)
}
