package core

import "testing"

func TestLightSensorThreshold(t *testing.T) {
	h := newHAL(t)

	s, err := ConfigLightSensor(0, 30)
	if err != nil {
		t.Fatalf("ConfigLightSensor failed: %v", err)
	}

	// The lit threshold is strict: exactly MinLightVal is still dark.
	testCases := []struct {
		raw int
		lit bool
	}{
		{0, false},
		{MinLightVal - 1, false},
		{MinLightVal, false},
		{MinLightVal + 1, true},
		{1023, true},
	}

	for _, tc := range testCases {
		h.set(30, tc.raw)
		if got := s.Read(); got != tc.raw {
			t.Errorf("Read at %d: expected %d, got %d", tc.raw, tc.raw, got)
		}
		if got := s.IsLight(); got != tc.lit {
			t.Errorf("IsLight at %d: expected %v, got %v", tc.raw, tc.lit, got)
		}
	}
}

func TestLightSensorIDRange(t *testing.T) {
	newHAL(t)

	if _, err := ConfigLightSensor(MaxLightSensor, 30); err == nil {
		t.Error("expected error for id at capacity")
	}
	if GetLightSensor(0) != nil {
		t.Error("expected nil for unconfigured id")
	}
}
