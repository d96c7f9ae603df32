package horizon

import (
	"math"
	"testing"
)

// fixedForecast returns the same rainfall estimate for every horizon.
type fixedForecast struct {
	mm float64
}

func (f fixedForecast) ForecastRainfall(hours int) float64 {
	return f.mm
}

func TestProjectOutputShape(t *testing.T) {
	p := NewProjector(fixedForecast{mm: 10})
	horizons := []int{6, 24, 24, 72, 168}

	out := p.Project(0.5, 0.8, horizons)

	if len(out.Hours) != len(horizons) || len(out.Risk) != len(horizons) || len(out.Confidence) != len(horizons) {
		t.Fatalf("output lengths %d/%d/%d, want %d each", len(out.Hours), len(out.Risk), len(out.Confidence), len(horizons))
	}
	for i, h := range horizons {
		if out.Hours[i] != h {
			t.Errorf("hour %d = %d, want %d (input order preserved)", i, out.Hours[i], h)
		}
	}
}

func TestProjectBounds(t *testing.T) {
	p := NewProjector(NewRandomForecast(42))
	horizons := []int{1, 12, 24, 48, 96, 168, 336}

	for _, baseRisk := range []float64{0.0, 0.3, 0.9, 1.0} {
		for _, baseConf := range []float64{0.3, 0.6, 0.8} {
			out := p.Project(baseRisk, baseConf, horizons)
			for i := range horizons {
				if out.Risk[i] < 0 || out.Risk[i] > 1 {
					t.Errorf("risk[%d] = %.3f outside [0,1]", i, out.Risk[i])
				}
				if out.Confidence[i] < 0.3-1e-9 || out.Confidence[i] > baseConf+1e-9 {
					t.Errorf("confidence[%d] = %.3f outside [0.3, %.2f]", i, out.Confidence[i], baseConf)
				}
			}
		}
	}
}

func TestProjectFormula(t *testing.T) {
	// 10mm per horizon accumulates deterministically, so the formula can
	// be checked exactly.
	p := NewProjector(fixedForecast{mm: 10})
	out := p.Project(0.4, 0.8, []int{24, 48})

	// First horizon: factor 0.1, time scale 24/168.
	wantRisk := round3((0.4 + 0.3*0.1) * (1 + (24.0/168.0)*0.3))
	if out.Risk[0] != wantRisk {
		t.Errorf("risk[0] = %.3f, want %.3f", out.Risk[0], wantRisk)
	}
	wantConf := round3(0.8 * (1 - (24.0/168.0)*0.4))
	if out.Confidence[0] != wantConf {
		t.Errorf("confidence[0] = %.3f, want %.3f", out.Confidence[0], wantConf)
	}

	// Second horizon: cumulative 20mm, factor 0.2, time scale 48/168.
	wantRisk = round3((0.4 + 0.3*0.2) * (1 + (48.0/168.0)*0.3))
	if out.Risk[1] != wantRisk {
		t.Errorf("risk[1] = %.3f, want %.3f", out.Risk[1], wantRisk)
	}
}

func TestConfidenceDecayHitsFloor(t *testing.T) {
	p := NewProjector(fixedForecast{mm: 0})
	// At 336 hours the raw decay would be 0.8*(1-0.8) = 0.16, below floor.
	out := p.Project(0.2, 0.8, []int{336})
	if out.Confidence[0] != 0.3 {
		t.Errorf("confidence = %.3f, want floor 0.3", out.Confidence[0])
	}
}

func TestConfidenceNeverExceedsBase(t *testing.T) {
	p := NewProjector(fixedForecast{mm: 0})
	out := p.Project(0.2, 0.25, []int{1})
	// Base below the floor: the ceiling binds, not the floor.
	if out.Confidence[0] > 0.25+1e-9 {
		t.Errorf("confidence %.3f exceeds base 0.25", out.Confidence[0])
	}
}

func TestRandomForecastBuckets(t *testing.T) {
	f := NewRandomForecast(7)
	tests := []struct {
		hours int
		max   float64
	}{
		{6, shortHorizonRainMax},
		{24, shortHorizonRainMax},
		{36, mediumHorizonRainMax},
		{48, mediumHorizonRainMax},
		{72, longHorizonRainMax},
		{168, longHorizonRainMax},
	}
	for _, tt := range tests {
		for i := 0; i < 50; i++ {
			mm := f.ForecastRainfall(tt.hours)
			if mm < 0 || mm >= tt.max {
				t.Fatalf("forecast for %dh = %.3f outside [0, %.0f)", tt.hours, mm, tt.max)
			}
		}
	}
}

func TestRandomForecastDeterministicPerSeed(t *testing.T) {
	a := NewRandomForecast(42)
	b := NewRandomForecast(42)
	for i := 0; i < 10; i++ {
		if va, vb := a.ForecastRainfall(24), b.ForecastRainfall(24); va != vb {
			t.Fatalf("draw %d differs across identically seeded sources: %.6f vs %.6f", i, va, vb)
		}
	}
}

func TestRound3(t *testing.T) {
	if got := round3(0.123456); got != 0.123 {
		t.Errorf("round3(0.123456) = %v, want 0.123", got)
	}
	if got := round3(0.9995); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("round3(0.9995) = %v, want 1.0", got)
	}
}
