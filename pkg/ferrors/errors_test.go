package ferrors

import (
	"errors"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := Newf("SP", "calibrator", ModelFit, "optimizer did not reduce objective from %v", 1.0)

	if !errors.Is(err, Sentinel(ModelFit)) {
		t.Error("expected errors.Is to match ModelFit sentinel")
	}
	if errors.Is(err, Sentinel(NumericalFailure)) {
		t.Error("did not expect errors.Is to match a different kind")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("cholesky breakdown")
	err := New("RJ", "climate", NumericalFailure, cause)

	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the original cause")
	}
}

func TestErrorMessageIncludesRegionAndComponent(t *testing.T) {
	err := New("MG", "sarimax", InsufficientData, errors.New("need 3 seasons"))
	want := "insufficient_data[MG/sarimax]: need 3 seasons"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
