package obslog

import "testing"

func TestNewProductionLogger(t *testing.T) {
	l, err := NewProduction()
	if err != nil {
		t.Fatalf("NewProduction() error = %v", err)
	}
	defer func() { _ = l.Sync() }()

	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewDevelopmentLogger(t *testing.T) {
	l, err := NewDevelopment()
	if err != nil {
		t.Fatalf("NewDevelopment() error = %v", err)
	}
	defer func() { _ = l.Sync() }()
}

func TestWithRegionAndComponent(t *testing.T) {
	l, err := NewDevelopment()
	if err != nil {
		t.Fatalf("NewDevelopment() error = %v", err)
	}
	defer func() { _ = l.Sync() }()

	tagged := l.WithRegion("SP").WithComponent("sarimax")
	if tagged == nil {
		t.Fatal("expected non-nil tagged logger")
	}
	tagged.Info("fitting model")
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	l, err := New("not-a-level", false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = l.Sync() }()
}
