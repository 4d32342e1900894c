package ballistics

// TrajectorySample is one point of the computed trajectory. Drop and
// windage are relative to the sight line; negative drop is below it.
type TrajectorySample struct {
	TimeS       float64 `json:"time_s"`
	RangeM      float64 `json:"range_m"`
	DropM       float64 `json:"drop_m"`
	WindageM    float64 `json:"windage_m"`
	VelocityMps float64 `json:"velocity_mps"`
	EnergyJ     float64 `json:"energy_j"`
	Mach        float64 `json:"mach"`
}

// DropMrad returns the drop as an angular correction in milliradians.
// Only meaningful for range > 0.
func (s TrajectorySample) DropMrad() float64 {
	if s.RangeM == 0 {
		return 0
	}
	return s.DropM / s.RangeM * 1000
}

// DropMOA returns the drop in minutes of angle
func (s TrajectorySample) DropMOA() float64 {
	return s.DropMrad() * MradToMOA
}

// WindageMrad returns the windage in milliradians. Only meaningful for
// range > 0.
func (s TrajectorySample) WindageMrad() float64 {
	if s.RangeM == 0 {
		return 0
	}
	return s.WindageM / s.RangeM * 1000
}

// WindageMOA returns the windage in minutes of angle
func (s TrajectorySample) WindageMOA() float64 {
	return s.WindageMrad() * MradToMOA
}

// Solution is a complete, immutable ballistic solution: the corrected
// trajectory ordered by strictly increasing range and time, plus the
// scalar corrections at the requested target range.
type Solution struct {
	Trajectory          []TrajectorySample `json:"trajectory"`
	ZeroAngleMrad       float64            `json:"zero_angle_mrad"`
	ZeroConverged       bool               `json:"zero_converged"`
	ZeroIterations      int                `json:"zero_iterations"`
	SpinDriftM          float64            `json:"spin_drift_m"`
	CoriolisVerticalM   float64            `json:"coriolis_vertical_m"`
	CoriolisHorizontalM float64            `json:"coriolis_horizontal_m"`
}

// AtRange returns the trajectory point at the given range, linearly
// interpolated between the two bracketing samples across every field.
// The second return is false when the range falls outside the sampled
// span.
func (s *Solution) AtRange(rangeM float64) (TrajectorySample, bool) {
	for i := 0; i+1 < len(s.Trajectory); i++ {
		lo, hi := s.Trajectory[i], s.Trajectory[i+1]
		if lo.RangeM <= rangeM && rangeM <= hi.RangeM {
			t := (rangeM - lo.RangeM) / (hi.RangeM - lo.RangeM)
			return TrajectorySample{
				TimeS:       lo.TimeS + t*(hi.TimeS-lo.TimeS),
				RangeM:      rangeM,
				DropM:       lo.DropM + t*(hi.DropM-lo.DropM),
				WindageM:    lo.WindageM + t*(hi.WindageM-lo.WindageM),
				VelocityMps: lo.VelocityMps + t*(hi.VelocityMps-lo.VelocityMps),
				EnergyJ:     lo.EnergyJ + t*(hi.EnergyJ-lo.EnergyJ),
				Mach:        lo.Mach + t*(hi.Mach-lo.Mach),
			}, true
		}
	}
	return TrajectorySample{}, false
}
