package regions

import (
	"sort"
	"testing"

	"github.com/floodsense/floodsense-go/pkg/models"
)

func TestLoadCatalogue(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("failed to load embedded catalogue: %v", err)
	}
	if reg.Len() != 37 {
		t.Errorf("catalogue has %d regions, want 37", reg.Len())
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		code string
		name string
	}{
		{"LA", "Lagos"},
		{"la", "Lagos"},
		{" fct ", "Abuja"},
		{"By", "Bayelsa"},
	}
	for _, tt := range tests {
		region, ok := reg.Get(tt.code)
		if !ok {
			t.Errorf("Get(%q) missed", tt.code)
			continue
		}
		if region.Name != tt.name {
			t.Errorf("Get(%q).Name = %q, want %q", tt.code, region.Name, tt.name)
		}
	}
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	region, defaulted := reg.Resolve("XX")
	if !defaulted {
		t.Error("expected the defaulted flag for an unknown code")
	}
	if region.Code != DefaultRegionCode {
		t.Errorf("fallback region = %s, want %s", region.Code, DefaultRegionCode)
	}
	if region != reg.Default() {
		t.Error("fallback region differs from Default()")
	}

	region, defaulted = reg.Resolve("LA")
	if defaulted {
		t.Error("known code should not report defaulted")
	}
	if region.Code != "LA" {
		t.Errorf("Resolve(LA) = %s, want LA", region.Code)
	}
}

func TestAllIsSortedAndStable(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	all := reg.All()
	codes := make([]string, len(all))
	for i, r := range all {
		codes[i] = r.Code
	}
	if !sort.StringsAreSorted(codes) {
		t.Error("All() is not sorted by code")
	}

	again := reg.All()
	for i := range all {
		if all[i].Code != again[i].Code {
			t.Fatalf("All() order changed between calls at index %d", i)
		}
	}
}

func TestBaseRiskClassesAreValid(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, region := range reg.All() {
		if !region.BaseRisk.Valid() {
			t.Errorf("region %s has invalid base risk %q", region.Code, region.BaseRisk)
		}
	}
}

func TestParseRejectsBadCatalogues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "regions: []"},
		{"duplicate code", `
regions:
  - {code: FCT, name: Abuja, group: North Central, base_risk: medium}
  - {code: fct, name: Abuja, group: North Central, base_risk: medium}
`},
		{"invalid risk class", `
regions:
  - {code: FCT, name: Abuja, group: North Central, base_risk: extreme}
`},
		{"missing default region", `
regions:
  - {code: LA, name: Lagos, group: South West, base_risk: critical}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse([]byte(tt.yaml)); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}

func TestRiskClassTables(t *testing.T) {
	if w := models.RiskClassCritical.Weight(); w != 0.8 {
		t.Errorf("critical weight = %.2f, want 0.8", w)
	}
	if m := models.RiskClassLow.RiverMultiplier(); m != 0.5 {
		t.Errorf("low river multiplier = %.2f, want 0.5", m)
	}
}
