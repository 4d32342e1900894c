package ballistics

import "fmt"

// DragFamily identifies the standard reference projectile shape a
// ballistic coefficient is normalized against.
type DragFamily string

const (
	DragFamilyG1 DragFamily = "G1" // Flat-based, blunt-nosed reference projectile
	DragFamilyG7 DragFamily = "G7" // Boat-tailed spitzer, matches modern long-range bullets
)

// Retardation constants per drag family. These are empirical calibration
// values, not derived physical constants: they scale Cd/BC into a
// deceleration so that the reference scenario (175 gr .308 at 850 m/s,
// 0.243 G7 BC or the equivalent 0.496 G1) retains roughly 490-560 m/s
// across 800-1000 m against the standard reference tables, matching
// published figures for the load. Do not re-derive without new
// calibration data.
const (
	retardationG1 = 2250.0
	retardationG7 = 2300.0
)

// dragPoint is one (Mach, drag coefficient) entry of a reference table
type dragPoint struct {
	mach float64
	cd   float64
}

// BallisticCoefficient tags a BC value with its drag family. Exactly one
// family applies to a projectile; the invalid "both set" and "neither
// set" states are unrepresentable.
type BallisticCoefficient struct {
	Family DragFamily `json:"family"`
	Value  float64    `json:"value"`
}

// NewBallisticCoefficient validates and builds a tagged BC
func NewBallisticCoefficient(family DragFamily, value float64) (BallisticCoefficient, error) {
	switch family {
	case DragFamilyG1, DragFamilyG7:
	default:
		return BallisticCoefficient{}, fmt.Errorf("%w: unknown drag family %q", ErrInvalidProjectile, family)
	}
	if value <= 0 {
		return BallisticCoefficient{}, fmt.Errorf("%w: ballistic coefficient must be positive, got %g", ErrInvalidProjectile, value)
	}
	return BallisticCoefficient{Family: family, Value: value}, nil
}

// Valid reports whether the coefficient carries a known family and a
// positive value.
func (bc BallisticCoefficient) Valid() bool {
	_, err := NewBallisticCoefficient(bc.Family, bc.Value)
	return err == nil
}

// DragCoefficient returns the reference drag coefficient for the family
// at the given Mach number, by piecewise-linear interpolation between
// the two nearest table entries. Mach numbers outside the table are
// clamped to the boundary entry (no extrapolation).
func (bc BallisticCoefficient) DragCoefficient(mach float64) float64 {
	table := g7DragTable
	if bc.Family == DragFamilyG1 {
		table = g1DragTable
	}
	return interpolateDrag(table, mach)
}

// Retardation returns the calibrated retardation constant for the
// coefficient's drag family.
func (bc BallisticCoefficient) Retardation() float64 {
	if bc.Family == DragFamilyG1 {
		return retardationG1
	}
	return retardationG7
}

func interpolateDrag(table []dragPoint, mach float64) float64 {
	if mach <= table[0].mach {
		return table[0].cd
	}
	last := len(table) - 1
	if mach >= table[last].mach {
		return table[last].cd
	}

	// Binary search for the bracketing pair
	lo, hi := 0, last
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if table[mid].mach <= mach {
			lo = mid
		} else {
			hi = mid
		}
	}

	p0, p1 := table[lo], table[hi]
	t := (mach - p0.mach) / (p1.mach - p0.mach)
	return p0.cd + t*(p1.cd-p0.cd)
}
