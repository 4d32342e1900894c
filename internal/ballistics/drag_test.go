package ballistics

import (
	"errors"
	"testing"
)

func TestBallisticCoefficientValidation(t *testing.T) {
	if _, err := NewBallisticCoefficient(DragFamilyG7, 0.243); err != nil {
		t.Fatalf("valid BC rejected: %v", err)
	}
	if _, err := NewBallisticCoefficient(DragFamilyG1, 0); !errors.Is(err, ErrInvalidProjectile) {
		t.Errorf("zero BC: want ErrInvalidProjectile, got %v", err)
	}
	if _, err := NewBallisticCoefficient("G5", 0.3); !errors.Is(err, ErrInvalidProjectile) {
		t.Errorf("unknown family: want ErrInvalidProjectile, got %v", err)
	}
}

func TestDragCoefficientAtTablePoints(t *testing.T) {
	bc := BallisticCoefficient{Family: DragFamilyG7, Value: 0.243}
	assertNear(t, bc.DragCoefficient(0), 0.1198, 1e-9, "G7 @ M0")
	assertNear(t, bc.DragCoefficient(1.0), 0.3803, 1e-9, "G7 @ M1.0")
	assertNear(t, bc.DragCoefficient(5.0), 0.1618, 1e-9, "G7 @ M5.0")

	g1 := BallisticCoefficient{Family: DragFamilyG1, Value: 0.4}
	assertNear(t, g1.DragCoefficient(1.0), 0.4805, 1e-9, "G1 @ M1.0")
}

func TestDragCoefficientInterpolation(t *testing.T) {
	bc := BallisticCoefficient{Family: DragFamilyG7, Value: 0.243}
	// Midway between M2.00 (0.2980) and M2.05 (0.2951)
	assertNear(t, bc.DragCoefficient(2.025), (0.2980+0.2951)/2, 1e-9, "G7 midpoint")
}

func TestDragCoefficientClamping(t *testing.T) {
	bc := BallisticCoefficient{Family: DragFamilyG1, Value: 0.4}
	assertNear(t, bc.DragCoefficient(-1), 0.2629, 1e-9, "below table")
	assertNear(t, bc.DragCoefficient(9), 0.4988, 1e-9, "above table")
}

func TestDragTablesOrdered(t *testing.T) {
	for name, table := range map[string][]dragPoint{"G1": g1DragTable, "G7": g7DragTable} {
		for i := 1; i < len(table); i++ {
			if table[i].mach <= table[i-1].mach {
				t.Errorf("%s table not strictly increasing at index %d", name, i)
			}
		}
	}
}
