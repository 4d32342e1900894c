package ballistics

import (
	"fmt"
	"math"

	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// Solver constants
const (
	EarthRotationRadS  = 7.2921159e-5 // Earth's angular rotation rate (rad/s)
	DefaultSampleStepM = 10.0         // Default downrange sampling interval

	integrationStepS = 0.0001 // Fixed integration time step (0.1 ms)
	maxFlightTimeS   = 10.0   // Safety ceiling against degenerate inputs

	zeroIterationCap = 10     // Zero-angle search iteration limit
	zeroToleranceM   = 0.0001 // Zero-angle convergence tolerance (0.1 mm)
	zeroDamping      = 0.5    // Damping factor on each angular correction

	// Assumed gyroscopic stability factor for the spin-drift model. A
	// physically derived SG would consume twist rate, bullet length and
	// air density; the model deliberately fixes it instead.
	assumedStabilityFactor = 1.5
)

// Solver computes point-mass trajectories for one set of shot
// conditions. It is synchronous and holds no mutable state across
// solves; independent solvers may run in parallel.
type Solver struct {
	conditions ShotConditions
	atmosphere *Atmosphere
	logger     *logger.Logger
}

// NewSolver validates the conditions and builds a solver. A projectile
// with an unknown drag family or non-positive coefficient is rejected
// here, before any integration.
func NewSolver(conditions ShotConditions, log *logger.Logger) (*Solver, error) {
	if err := conditions.Validate(); err != nil {
		return nil, err
	}
	return &Solver{
		conditions: conditions,
		atmosphere: NewAtmosphere(conditions.Atmosphere),
		logger:     log.Named("solver"),
	}, nil
}

// Solve computes the full ballistic solution out to targetRangeM,
// sampling the trajectory every sampleStepM meters (DefaultSampleStepM
// when <= 0): find the zero angle, integrate the final trajectory at
// that angle, then amplify every sample with spin drift and Coriolis.
func (s *Solver) Solve(targetRangeM, sampleStepM float64) (*Solution, error) {
	if targetRangeM <= 0 {
		return nil, fmt.Errorf("ballistics: target range must be positive, got %g", targetRangeM)
	}
	if sampleStepM <= 0 {
		sampleStepM = DefaultSampleStepM
	}

	zeroRange := s.conditions.Rifle.ZeroRangeM
	zeroAngle, iterations, converged := s.findZeroAngle(zeroRange)
	if !converged {
		s.logger.Warn("Zero-angle search did not converge, using best estimate",
			logger.Float64("zero_range_m", zeroRange),
			logger.Int("iterations", iterations))
	}

	maxRange := math.Max(targetRangeM+100, zeroRange+100)
	raw := s.integrate(zeroAngle, maxRange, sampleStepM)
	if len(raw) == 0 {
		return nil, fmt.Errorf("ballistics: integration produced no samples (target %g m)", targetRangeM)
	}

	// Scalar corrections at the target range, for reporting
	var spinDrift, coriolisV, coriolisH float64
	for _, pt := range raw {
		if pt.RangeM >= targetRangeM {
			spinDrift = s.spinDrift(pt.TimeS)
			coriolisV, coriolisH = s.coriolis(pt.TimeS, targetRangeM)
			break
		}
	}

	// Per-sample corrections produce a new sample slice; the raw
	// trajectory is never mutated.
	corrected := make([]TrajectorySample, len(raw))
	for i, pt := range raw {
		sd := s.spinDrift(pt.TimeS)
		cv, ch := s.coriolis(pt.TimeS, pt.RangeM)
		pt.WindageM += sd + ch
		pt.DropM += cv
		corrected[i] = pt
	}

	return &Solution{
		Trajectory:          corrected,
		ZeroAngleMrad:       zeroAngle * 1000,
		ZeroConverged:       converged,
		ZeroIterations:      iterations,
		SpinDriftM:          spinDrift,
		CoriolisVerticalM:   coriolisV,
		CoriolisHorizontalM: coriolisH,
	}, nil
}

// findZeroAngle iterates toward the bore elevation angle that makes the
// trajectory cross the sight line at the zero range: drop there must
// equal the negative sight height. The initial guess comes from a
// drag-free parabolic drop estimate; each pass integrates a full
// trajectory, converts the residual into an angular correction over the
// zero range, and applies half of it. On hitting the iteration cap the
// best estimate is returned with converged=false.
func (s *Solver) findZeroAngle(zeroRangeM float64) (float64, int, bool) {
	sightHeight := s.conditions.Rifle.SightHeightM()
	v0 := s.conditions.Rifle.MuzzleVelocityMps

	tFlight := zeroRangeM / v0
	dropSimple := 0.5 * Gravity * tFlight * tFlight
	angle := math.Atan((dropSimple + sightHeight) / zeroRangeM)

	iterations := 0
	for i := 0; i < zeroIterationCap; i++ {
		iterations = i + 1
		trajectory := s.integrate(angle, zeroRangeM+10, 1)

		dropAtZero := 0.0
		if n := len(trajectory); n > 0 {
			dropAtZero = trajectory[n-1].DropM
			for _, pt := range trajectory {
				if pt.RangeM >= zeroRangeM {
					dropAtZero = pt.DropM
					break
				}
			}
		}

		residual := -dropAtZero - sightHeight
		angle += math.Atan(residual/zeroRangeM) * zeroDamping

		if math.Abs(residual) < zeroToleranceM {
			s.logger.Debug("Zero-angle search converged",
				logger.Float64("angle_mrad", angle*1000),
				logger.Int("iterations", iterations))
			return angle, iterations, true
		}
	}
	return angle, iterations, false
}

// integrate advances the point-mass equations of motion from the muzzle
// out to maxRangeM at the given bore elevation angle, recording a
// sample every time the downrange distance has advanced by at least
// sampleStepM. Samples carry the raw positions; spin drift and Coriolis
// are applied afterwards.
func (s *Solver) integrate(boreAngleRad, maxRangeM, sampleStepM float64) []TrajectorySample {
	rifle := s.conditions.Rifle
	massKg := s.conditions.Projectile.MassKg()
	bc := s.conditions.Projectile.BC

	v0 := rifle.MuzzleVelocityMps
	vx := v0 * math.Cos(boreAngleRad)
	vy := v0 * math.Sin(boreAngleRad)
	vz := 0.0

	// The bore sits below the sight line at the muzzle
	x, y, z := 0.0, -rifle.SightHeightM(), 0.0
	t := 0.0
	lastSampleX := 0.0

	// Wind components; vertical wind is assumed zero
	windX := -s.conditions.Wind.HeadwindComponent()
	windZ := s.conditions.Wind.CrosswindComponent()

	densityRatio := s.atmosphere.DensityRatio()

	var samples []TrajectorySample
	for x < maxRangeM && t < maxFlightTimeS {
		relX := vx - windX
		relZ := vz - windZ
		relSpeed := math.Sqrt(relX*relX + vy*vy + relZ*relZ)
		speed := math.Sqrt(vx*vx + vy*vy + vz*vz)

		mach := s.atmosphere.MachNumber(relSpeed)

		// Drag deceleration, opposite to the air-relative velocity
		cd := bc.DragCoefficient(mach)
		dragAcc := densityRatio * cd * relSpeed * relSpeed / (bc.Value * bc.Retardation())

		var ax, ay, az float64
		if relSpeed > 0 {
			ax = -dragAcc * relX / relSpeed
			ay = -dragAcc * vy / relSpeed
			az = -dragAcc * relZ / relSpeed
		}
		ay -= Gravity

		// Explicit first-order step: velocity first, then position
		vx += ax * integrationStepS
		vy += ay * integrationStepS
		vz += az * integrationStepS
		x += vx * integrationStepS
		y += vy * integrationStepS
		z += vz * integrationStepS
		t += integrationStepS

		if x >= lastSampleX+sampleStepM {
			samples = append(samples, TrajectorySample{
				TimeS:       t,
				RangeM:      x,
				DropM:       y,
				WindageM:    z,
				VelocityMps: speed,
				EnergyJ:     0.5 * massKg * speed * speed,
				Mach:        mach,
			})
			lastSampleX = x
		}
	}
	return samples
}

// spinDrift returns the gyroscopic drift in meters after the given time
// of flight, positive to the right for a right-hand twist. Empirical
// Litz-style fit with the fixed assumed stability factor.
func (s *Solver) spinDrift(timeS float64) float64 {
	if timeS <= 0 {
		return 0
	}
	drift := 0.0254 * (assumedStabilityFactor + 1.2) * math.Pow(timeS, 1.83) / 100
	if s.conditions.Rifle.TwistDirection == TwistLeft {
		drift = -drift
	}
	return drift
}

// coriolis returns the (vertical, horizontal) deflection in meters from
// Earth's rotation. The horizontal term scales with sin(latitude); the
// vertical term peaks when shooting east or west.
func (s *Solver) coriolis(timeS, rangeM float64) (float64, float64) {
	lat := s.conditions.LatitudeDeg * math.Pi / 180
	azimuth := s.conditions.AzimuthDeg * math.Pi / 180

	horiz := EarthRotationRadS * rangeM * math.Sin(lat) * timeS
	vert := EarthRotationRadS * rangeM * math.Cos(lat) * math.Sin(azimuth) * timeS
	return vert, horiz
}

// CalculateSolution is the one-call entry point: build a solver for the
// supplied inputs and solve out to targetRangeM with the default
// sampling step.
func CalculateSolution(projectile Projectile, rifle Rifle, atmosphere AtmosphericState,
	wind Wind, latitudeDeg, azimuthDeg, targetRangeM float64, log *logger.Logger) (*Solution, error) {
	solver, err := NewSolver(ShotConditions{
		Projectile:  projectile,
		Rifle:       rifle,
		Atmosphere:  atmosphere,
		Wind:        wind,
		LatitudeDeg: latitudeDeg,
		AzimuthDeg:  azimuthDeg,
	}, log)
	if err != nil {
		return nil, err
	}
	return solver.Solve(targetRangeM, DefaultSampleStepM)
}
