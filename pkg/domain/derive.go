package domain

// DerivationConfig tunes the derived-field computations that vary per
// deployment. Zero values fall back to the documented defaults.
type DerivationConfig struct {
	// KPIYellowBand is the fraction of target below which a negative
	// variance still classifies as Yellow rather than Red. Default 0.10.
	KPIYellowBand float64
	// ROIScale is the fixed scaling constant K applied to ROI scores so
	// typical values land in a human-readable range. Default 1,000,000.
	ROIScale float64
}

// DefaultDerivationConfig returns the standard thresholds.
func DefaultDerivationConfig() DerivationConfig {
	return DerivationConfig{KPIYellowBand: 0.10, ROIScale: 1_000_000}
}

func (c DerivationConfig) yellowBand() float64 {
	if c.KPIYellowBand <= 0 {
		return 0.10
	}
	return c.KPIYellowBand
}

func (c DerivationConfig) roiScale() float64 {
	if c.ROIScale <= 0 {
		return 1_000_000
	}
	return c.ROIScale
}

// GapSizeOf computes the derived gap size, clamped at zero. A gap of size
// zero is considered closed.
func GapSizeOf(requiredLevel, currentLevel int) int {
	size := requiredLevel - currentLevel
	if size < 0 {
		return 0
	}
	return size
}

// VarianceOf computes the derived KPI variance.
func VarianceOf(value, target float64) float64 { return value - target }

// KPIStatusFor classifies a measurement against its target: Green when the
// variance is non-negative, Yellow when the shortfall stays within the
// configured band of the target, Red otherwise.
func KPIStatusFor(value, target float64, cfg DerivationConfig) KPIStatus {
	variance := VarianceOf(value, target)
	if variance >= 0 {
		return KPIStatusGreen
	}
	band := cfg.yellowBand() * target
	if band < 0 {
		band = -band
	}
	if -variance <= band {
		return KPIStatusYellow
	}
	return KPIStatusRed
}

// ImpactScore maps a qualitative rating to its numeric weight.
func ImpactScore(r Rating) int {
	switch r {
	case RatingHigh:
		return 3
	case RatingMedium:
		return 2
	default:
		return 1
	}
}

// UrgencyMultiplier maps urgency to the ROI multiplier.
func UrgencyMultiplier(r Rating) float64 {
	switch r {
	case RatingHigh:
		return 2
	case RatingMedium:
		return 1.5
	default:
		return 1
	}
}

// ROIScore computes the cost-normalized priority score for a plan against
// its gap. A non-positive cost yields the zero sentinel rather than a
// division fault.
func ROIScore(gap Gap, cost float64, cfg DerivationConfig) float64 {
	if cost <= 0 {
		return 0
	}
	impact := float64(ImpactScore(gap.ImpactOnTeam) * ImpactScore(gap.ImpactOnOrg))
	return float64(gap.GapSize) * impact * UrgencyMultiplier(gap.Urgency) * cfg.roiScale() / cost
}

// ImprovementOf computes the derived training record improvement.
func ImprovementOf(preTest, postTest float64) float64 { return postTest - preTest }

// CompletionRate computes the percentage of completed plans. An empty set
// yields zero, never an error.
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
