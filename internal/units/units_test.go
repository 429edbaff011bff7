package units

import (
	"math"
	"testing"
)

func TestConvertDepth(t *testing.T) {
	tests := []struct {
		name     string
		depth    float64
		from, to string
		expected float64
	}{
		{"691 mm to m", 691, MM, M, 0.691},
		{"0.691 m to mm", 0.691, M, MM, 691},
		{"1.5 m to cm", 1.5, M, CM, 150},
		{"150 cm to mm", 150, CM, MM, 1500},
		{"same unit", 2.25, M, M, 2.25},
		{"zero depth", 0, MM, M, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ConvertDepth(tt.depth, tt.from, tt.to)
			if err != nil {
				t.Fatalf("ConvertDepth(%f, %s, %s) returned error: %v", tt.depth, tt.from, tt.to, err)
			}
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertDepth(%f, %s, %s) = %f, want %f", tt.depth, tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestConvertDepth_UnknownUnit(t *testing.T) {
	if _, err := ConvertDepth(1, "ft", M); err == nil {
		t.Error("expected error for unknown source unit")
	}
	if _, err := ConvertDepth(1, M, "in"); err == nil {
		t.Error("expected error for unknown target unit")
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mm", MM, true},
		{"valid cm", CM, true},
		{"valid m", M, true},
		{"invalid unit", "ft", false},
		{"empty string", "", false},
		{"case sensitive", "MM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "mm, cm, m" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}
