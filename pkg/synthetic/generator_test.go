package synthetic

import (
	"reflect"
	"testing"

	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/regions"
	"github.com/floodsense/floodsense-go/pkg/riskmodel"
)

func loadRegistry(t *testing.T) *regions.Registry {
	t.Helper()
	reg, err := regions.Load()
	if err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}
	return reg
}

func TestGenerateIsDeterministic(t *testing.T) {
	reg := loadRegistry(t)

	for _, seed := range []int64{1, 42, 9999} {
		first := NewGenerator(reg, seed).Generate(200)
		second := NewGenerator(reg, seed).Generate(200)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("seed %d: two runs produced different rows", seed)
		}
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	reg := loadRegistry(t)
	a := NewGenerator(reg, 1).Generate(50)
	b := NewGenerator(reg, 2).Generate(50)
	if reflect.DeepEqual(a, b) {
		t.Error("different seeds produced identical rows")
	}
}

func TestGeneratedRowsAreWellFormed(t *testing.T) {
	reg := loadRegistry(t)
	rows := NewGenerator(reg, 42).Generate(500)

	if len(rows) != 500 {
		t.Fatalf("generated %d rows, want 500", len(rows))
	}

	for i, row := range rows {
		if row.Risk < 0 || row.Risk > 1 {
			t.Errorf("row %d risk %.3f outside [0,1]", i, row.Risk)
		}
		if row.Level != riskmodel.LevelForRisk(row.Risk) {
			t.Errorf("row %d level %s disagrees with risk %.3f", i, row.Level, row.Risk)
		}
		if _, ok := reg.Get(row.Region.Code); !ok {
			t.Errorf("row %d references unknown region %s", i, row.Region.Code)
		}

		obs := row.Observation
		if obs.MissingCount() != 0 {
			t.Errorf("row %d has %d missing readings, synthetic rows are complete", i, obs.MissingCount())
		}
		if soil := *obs.SoilMoisture; soil < 0 || soil > 1 {
			t.Errorf("row %d soil moisture %.3f outside [0,1]", i, soil)
		}
		if *obs.RiverLevel < 1.0 {
			t.Errorf("row %d river level %.3f below floor", i, *obs.RiverLevel)
		}
		if obs.DayOfYear < 1 || obs.DayOfYear > 365 {
			t.Errorf("row %d day of year %d outside [1,365]", i, obs.DayOfYear)
		}
		if obs.Month < 1 || obs.Month > 12 {
			t.Errorf("row %d month %d outside [1,12]", i, obs.Month)
		}
		if obs.Timestamp.IsZero() {
			t.Errorf("row %d has no timestamp", i)
		}
		if obs.Timestamp.YearDay() != obs.DayOfYear {
			t.Errorf("row %d timestamp year day %d disagrees with day_of_year %d", i, obs.Timestamp.YearDay(), obs.DayOfYear)
		}
		if obs.Month != int(obs.Timestamp.Month()) {
			t.Errorf("row %d month %d disagrees with timestamp month %d", i, obs.Month, int(obs.Timestamp.Month()))
		}
	}
}

func TestSeasonalFactor(t *testing.T) {
	tests := []struct {
		name      string
		dayOfYear int
		month     int
		dry       bool
	}{
		{"january is dry", 15, 1, true},
		{"december is dry", 350, 12, true},
		{"june is rainy", 170, 6, false},
		{"october is rainy", 290, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factor := seasonalFactor(tt.dayOfYear, tt.month)
			if tt.dry && factor != drySeasonFactor {
				t.Errorf("factor = %.3f, want dry-season %.3f", factor, drySeasonFactor)
			}
			if !tt.dry && (factor < 0.5 || factor > 1.5) {
				t.Errorf("rainy-season factor = %.3f outside sinusoid range [0.5, 1.5]", factor)
			}
		})
	}
}

func TestBandForGroup(t *testing.T) {
	tests := []struct {
		group string
		want  climateBand
	}{
		{"South South", bandHumid},
		{"South East", bandHumid},
		{"North East", bandArid},
		{"North West", bandArid},
		{"North Central", bandTemperate},
		{"South West", bandTemperate},
		{"Unknown", bandTemperate},
	}
	for _, tt := range tests {
		if got := bandForGroup(tt.group); got != tt.want {
			t.Errorf("bandForGroup(%q) = %+v, want %+v", tt.group, got, tt.want)
		}
	}
}

func TestGeneratedRiskMatchesFormulaPlusNoise(t *testing.T) {
	reg := loadRegistry(t)
	rows := NewGenerator(reg, 42).Generate(100)

	// The label is the noise-free formula plus bounded Gaussian noise;
	// most rows should land near the formula value.
	near := 0
	for _, row := range rows {
		base := riskmodel.HeuristicRisk(row.Observation, row.Region)
		diff := row.Risk - base
		if diff < 0 {
			diff = -diff
		}
		if diff < 0.5 {
			near++
		}
	}
	if near < 95 {
		t.Errorf("only %d/100 rows near the formula value", near)
	}
}

func TestObservationMerge(t *testing.T) {
	base := models.Observation{
		Temperature: models.Float(25),
		Humidity:    models.Float(60),
	}
	override := &models.Observation{
		Temperature: models.Float(30),
		Rainfall24h: models.Float(12),
	}

	merged := base.Merge(override)
	if *merged.Temperature != 30 {
		t.Errorf("override temperature not applied, got %.1f", *merged.Temperature)
	}
	if *merged.Humidity != 60 {
		t.Errorf("base humidity lost, got %.1f", *merged.Humidity)
	}
	if *merged.Rainfall24h != 12 {
		t.Errorf("override rainfall not applied, got %.1f", *merged.Rainfall24h)
	}
	if merged.SoilMoisture != nil {
		t.Error("absent field materialized during merge")
	}
}
