package geo

import (
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// MagneticDeclination returns the magnetic declination in degrees
// (+East, -West) for the given position and time, from the World
// Magnetic Model. Returns 0 if the model evaluation fails; a shot
// solution is still usable with an uncorrected bearing.
func MagneticDeclination(latDeg, lonDeg, altitudeM float64, date time.Time) float64 {
	loc := egm96.NewLocationGeodetic(latDeg, lonDeg, altitudeM)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		return 0.0
	}
	return mag.D()
}

// TrueAzimuth converts a compass (magnetic) shot bearing to a true
// bearing, normalized to [0, 360). The Coriolis model wants the bearing
// relative to geographic north.
func TrueAzimuth(compassDeg, latDeg, lonDeg, altitudeM float64, date time.Time) float64 {
	azimuth := compassDeg + MagneticDeclination(latDeg, lonDeg, altitudeM, date)
	for azimuth < 0 {
		azimuth += 360
	}
	for azimuth >= 360 {
		azimuth -= 360
	}
	return azimuth
}
