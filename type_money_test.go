package checkbook

import (
	"encoding/json"
	"testing"
)

func TestMoney_String(t *testing.T) {
	testCases := []struct {
		m    Money
		want string
	}{
		{USD(2454.80), "$2,454.80"},
		{USD(-45.20), "-$45.20"},
		{USD(0.005), "$0.01"},
		{M(12.5, ""), "$12.50"},
	}
	for _, tc := range testCases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("Money(%v).String() = %q, want %q", tc.m.value, got, tc.want)
		}
	}
}

func TestMoney_WithinCent(t *testing.T) {
	testCases := []struct {
		a, b float64
		want bool
	}{
		{-45.20, -45.20, true},
		{-45.20, -45.209, true},
		{-45.20, -45.21, false},
		{10, 10.01, false},
		{10, 9.995, true},
	}
	for _, tc := range testCases {
		if got := USD(tc.a).WithinCent(USD(tc.b)); got != tc.want {
			t.Errorf("USD(%v).WithinCent(USD(%v)) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMoney_AddIsExact(t *testing.T) {
	got := USD(2500).Add(USD(-45.20))
	if want := USD(2454.80); !got.Equal(want) {
		t.Errorf("2500 + -45.20 = %v, want %v", got, want)
	}
	got = USD(0.1).Add(USD(0.2))
	if want := USD(0.3); !got.Equal(want) {
		t.Errorf("0.1 + 0.2 = %v, want %v", got.value, want.value)
	}
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(USD(-45.2))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"currency":"USD","amount":-45.2}`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
	var m Money
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !m.Equal(USD(-45.2)) {
		t.Errorf("Unmarshal() = %v, want %v", m, USD(-45.2))
	}
}
