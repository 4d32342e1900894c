package ballistics

import "math"

// Standard atmosphere constants (ICAO)
const (
	StdTemperatureC  = 15.0      // Standard sea level temperature (°C)
	StdPressureMbar  = 1013.25   // Standard sea level pressure (mbar/hPa)
	StdDensity       = 1.225     // Air density at standard conditions (kg/m³)
	LapseRate        = 0.0065    // Temperature lapse rate (K/m)
	GasConstantDry   = 287.05    // Specific gas constant for dry air (J/(kg·K))
	GasConstantVapor = 461.495   // Specific gas constant for water vapor (J/(kg·K))
	Gamma            = 1.4       // Adiabatic index (heat capacity ratio)
	Gravity          = 9.80665   // Gravitational acceleration (m/s²)
	StdTemperatureK  = 288.15    // Standard sea level temperature (K)
	ZeroCelsius      = 273.15    // 0°C in Kelvin
	MetersToFeet     = 3.28084   // Conversion factor from meters to feet
)

// AtmosphericState holds the measured atmospheric conditions at the
// shooting location. It is a read-only input to a solve.
type AtmosphericState struct {
	TemperatureC float64 `json:"temperature_c"` // Celsius
	PressureMbar float64 `json:"pressure_mbar"` // Millibars (hPa)
	HumidityPct  float64 `json:"humidity_pct"`  // Relative humidity, 0-100
	AltitudeM    float64 `json:"altitude_m"`    // Meters above sea level
}

// TemperatureK returns the temperature in Kelvin
func (s AtmosphericState) TemperatureK() float64 {
	return s.TemperatureC + ZeroCelsius
}

// Atmosphere derives air density, density ratio, speed of sound and Mach
// number from an AtmosphericState, using the ICAO standard atmosphere as
// the reference.
type Atmosphere struct {
	state AtmosphericState
}

// NewAtmosphere creates an atmosphere model for the given conditions
func NewAtmosphere(state AtmosphericState) *Atmosphere {
	return &Atmosphere{state: state}
}

// StandardState returns the ICAO standard sea-level conditions
// (15°C, 1013.25 mbar, 0% humidity)
func StandardState() AtmosphericState {
	return AtmosphericState{
		TemperatureC: StdTemperatureC,
		PressureMbar: StdPressureMbar,
		HumidityPct:  0,
		AltitudeM:    0,
	}
}

// StandardAtmosphere returns the ICAO standard sea-level atmosphere
func StandardAtmosphere() *Atmosphere {
	return NewAtmosphere(StandardState())
}

// State returns the conditions the model was built from
func (a *Atmosphere) State() AtmosphericState {
	return a.state
}

// AirDensity returns the air density in kg/m³ using the ideal gas law
// with a humidity correction. Water vapor is lighter than dry air, so
// humid air is less dense.
func (a *Atmosphere) AirDensity() float64 {
	tempK := a.state.TemperatureK()
	pressurePa := a.state.PressureMbar * 100

	// Saturation vapor pressure via the Magnus formula (hPa)
	es := 6.1078 * math.Pow(10, 7.5*a.state.TemperatureC/(a.state.TemperatureC+237.3))

	// Actual vapor pressure scaled by relative humidity (hPa)
	e := es * (a.state.HumidityPct / 100)

	// Partial pressure of dry air (Pa)
	dryPa := pressurePa - e*100

	return dryPa/(GasConstantDry*tempK) + e*100/(GasConstantVapor*tempK)
}

// DensityRatio returns the ratio of current air density to the standard
// sea-level density. Evaluates to 1.0 for the standard atmosphere.
func (a *Atmosphere) DensityRatio() float64 {
	return a.AirDensity() / StdDensity
}

// SpeedOfSound returns the speed of sound in m/s. For an ideal gas it
// depends on temperature only: c = sqrt(γ·R·T).
func (a *Atmosphere) SpeedOfSound() float64 {
	return math.Sqrt(Gamma * GasConstantDry * a.state.TemperatureK())
}

// MachNumber returns the Mach number for the given speed in m/s
func (a *Atmosphere) MachNumber(velocityMps float64) float64 {
	return velocityMps / a.SpeedOfSound()
}

// DensityAltitude returns the altitude in a standard atmosphere that has
// the same air density as the current conditions, in meters. If the
// fractional exponentiation is undefined for the current density ratio,
// the supplied altitude is returned unchanged.
func (a *Atmosphere) DensityAltitude() float64 {
	ratio := a.AirDensity() / StdDensity
	if ratio <= 0 {
		return a.state.AltitudeM
	}

	// Inverse of the barometric formula:
	// DA = (T0/L) * (1 - (ρ/ρ0)^(L·R/g))
	da := (StdTemperatureK / LapseRate) *
		(1 - math.Pow(ratio, LapseRate*GasConstantDry/Gravity))
	if math.IsNaN(da) || math.IsInf(da, 0) {
		return a.state.AltitudeM
	}
	return da
}

// DensityAltitudeFt returns the density altitude in feet
func (a *Atmosphere) DensityAltitudeFt() float64 {
	return a.DensityAltitude() * MetersToFeet
}

// PressureAtAltitude returns the standard-atmosphere pressure at the
// given altitude in mbar, via the barometric formula.
func (a *Atmosphere) PressureAtAltitude(altitudeM float64) float64 {
	p0 := StdPressureMbar * 100
	p := p0 * math.Pow(1-(LapseRate*altitudeM)/StdTemperatureK,
		Gravity/(LapseRate*GasConstantDry))
	return p / 100
}
