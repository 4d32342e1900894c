package ballistics

import (
	"errors"
	"math"
)

// Configuration errors reported before any integration begins
var (
	ErrInvalidProjectile = errors.New("ballistics: invalid projectile")
	ErrInvalidRifle      = errors.New("ballistics: invalid rifle")
)

// Unit conversions
const (
	GrainsToKg   = 0.0000647989 // 1 grain in kg
	InchesToM    = 0.0254       // 1 inch in meters
	GrainsPerLb  = 7000.0       // Grains in one pound
	MradToMOA    = 3.43775      // MOA per milliradian
)

// TwistDirection is the handedness of the barrel rifling
type TwistDirection string

const (
	TwistRight TwistDirection = "right"
	TwistLeft  TwistDirection = "left"
)

// Projectile describes the bullet being fired
type Projectile struct {
	MassGrains     float64              `json:"mass_grains"`
	DiameterInches float64              `json:"diameter_inches"`
	BC             BallisticCoefficient `json:"bc"`
}

// Validate reports configuration errors on the projectile
func (p Projectile) Validate() error {
	if p.MassGrains <= 0 {
		return errors.Join(ErrInvalidProjectile, errors.New("mass must be positive"))
	}
	if p.DiameterInches <= 0 {
		return errors.Join(ErrInvalidProjectile, errors.New("diameter must be positive"))
	}
	if _, err := NewBallisticCoefficient(p.BC.Family, p.BC.Value); err != nil {
		return err
	}
	return nil
}

// MassKg returns the projectile mass in kilograms
func (p Projectile) MassKg() float64 {
	return p.MassGrains * GrainsToKg
}

// DiameterM returns the caliber in meters
func (p Projectile) DiameterM() float64 {
	return p.DiameterInches * InchesToM
}

// SectionalDensity returns the sectional density in lb/in²
func (p Projectile) SectionalDensity() float64 {
	return (p.MassGrains / GrainsPerLb) / (p.DiameterInches * p.DiameterInches)
}

// CrossSectionArea returns the cross-sectional area in m²
func (p Projectile) CrossSectionArea() float64 {
	r := p.DiameterM() / 2
	return math.Pi * r * r
}

// Rifle describes the weapon and sight geometry.
//
// TwistRateInches is currently consumed only through TwistDirection: the
// spin-drift model uses a fixed assumed stability factor rather than one
// derived from the twist rate (see spinDrift).
type Rifle struct {
	MuzzleVelocityMps float64        `json:"muzzle_velocity_mps"`
	ZeroRangeM        float64        `json:"zero_range_m"`
	SightHeightMm     float64        `json:"sight_height_mm"`
	TwistRateInches   float64        `json:"twist_rate_inches"`
	TwistDirection    TwistDirection `json:"twist_direction"`
}

// Validate reports configuration errors on the rifle
func (r Rifle) Validate() error {
	if r.MuzzleVelocityMps <= 0 {
		return errors.Join(ErrInvalidRifle, errors.New("muzzle velocity must be positive"))
	}
	if r.ZeroRangeM <= 0 {
		return errors.Join(ErrInvalidRifle, errors.New("zero range must be positive"))
	}
	return nil
}

// SightHeightM returns the sight height above bore in meters
func (r Rifle) SightHeightM() float64 {
	return r.SightHeightMm / 1000
}

// Wind describes the wind at the firing point. DirectionDeg is the
// compass bearing the wind blows from, relative to the line of fire:
// 0 = headwind, 90 = from the right, 180 = tailwind.
type Wind struct {
	SpeedMps     float64 `json:"speed_mps"`
	DirectionDeg float64 `json:"direction_deg"`
}

// WindFromClock builds a Wind from clock-position notation: 12 o'clock
// is a headwind, 3 o'clock blows from the right, 9 from the left.
func WindFromClock(speedMps, clockPosition float64) Wind {
	direction := (clockPosition - 12) * 30
	if direction < 0 {
		direction += 360
	}
	return Wind{SpeedMps: speedMps, DirectionDeg: direction}
}

// HeadwindComponent returns the along-track wind component in m/s,
// positive for a headwind.
func (w Wind) HeadwindComponent() float64 {
	return w.SpeedMps * math.Cos(w.DirectionDeg*math.Pi/180)
}

// CrosswindComponent returns the lateral wind component in m/s,
// positive when the wind blows from the right.
func (w Wind) CrosswindComponent() float64 {
	return w.SpeedMps * math.Sin(w.DirectionDeg*math.Pi/180)
}

// ShotConditions aggregates everything a solve needs. It is owned by a
// single solve and never mutated by it.
type ShotConditions struct {
	Projectile Projectile       `json:"projectile"`
	Rifle      Rifle            `json:"rifle"`
	Atmosphere AtmosphericState `json:"atmosphere"`
	Wind       Wind             `json:"wind"`

	LatitudeDeg  float64 `json:"latitude_deg"`  // Firing point latitude
	AzimuthDeg   float64 `json:"azimuth_deg"`   // Shot bearing, 0 = geographic north
	ElevationDeg float64 `json:"elevation_deg"` // Uphill/downhill angle
}

// Validate reports the first configuration error in the bundle
func (c ShotConditions) Validate() error {
	if err := c.Projectile.Validate(); err != nil {
		return err
	}
	return c.Rifle.Validate()
}
