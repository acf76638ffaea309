package model

import (
	"fmt"
	"math"
)

// FacilityParams defines the physical parameters of the mining facility.
// Units:
// - SizeMW: MW of rated power, drawn in full whenever the facility operates
// - EfficiencyWPerTH: W per TH/s of the installed miners
type FacilityParams struct {
	Name             string
	SizeMW           float64
	EfficiencyWPerTH float64
}

func (f FacilityParams) Validate() error {
	if !positiveFinite(f.SizeMW) {
		return fmt.Errorf("%w: facility size must be > 0 MW, got %v", ErrInvalidFacilityParams, f.SizeMW)
	}
	if !positiveFinite(f.EfficiencyWPerTH) {
		return fmt.Errorf("%w: efficiency must be > 0 W/TH, got %v", ErrInvalidFacilityParams, f.EfficiencyWPerTH)
	}
	return nil
}

// HashrateTH is the installed hashrate in TH/s: MW -> W, divided by W/TH.
func (f FacilityParams) HashrateTH() float64 {
	return f.SizeMW * 1_000_000 / f.EfficiencyWPerTH
}

func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}
