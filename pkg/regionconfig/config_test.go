package regionconfig

import "testing"

func TestDefaultConfigHasContractDefaults(t *testing.T) {
	cfg := DefaultConfig("SP", T1, 42)
	if cfg.ForecastHorizon != 52 {
		t.Errorf("ForecastHorizon = %d, want 52", cfg.ForecastHorizon)
	}
	if cfg.NRealCalibrate != 32 || cfg.NRealForecast != 1024 {
		t.Errorf("unexpected ensemble sizes: %+v", cfg)
	}
	if cfg.SarimaxHorizon != 67 {
		t.Errorf("SarimaxHorizon = %d, want 67", cfg.SarimaxHorizon)
	}
	if cfg.ArpSimHorizon != 79 {
		t.Errorf("ArpSimHorizon = %d, want 79", cfg.ArpSimHorizon)
	}
}

func TestResolverAppliesOverride(t *testing.T) {
	override := SarimaxOverride{Region: "RJ", Window: T2}
	override.Order.P = 5
	r := NewResolver([]SarimaxOverride{override})

	resolved := r.Resolve("RJ", T2, 1)
	if resolved.SarimaxOrder.P != 5 {
		t.Errorf("SarimaxOrder.P = %d, want 5 (override)", resolved.SarimaxOrder.P)
	}

	fallback := r.Resolve("SP", T2, 1)
	if fallback.SarimaxOrder.P != 2 {
		t.Errorf("SarimaxOrder.P = %d, want 2 (default, no override)", fallback.SarimaxOrder.P)
	}
}
