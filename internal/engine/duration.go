package engine

import "math"

// ComputeDuration derives the number of working days needed to produce
// quantity units at baseDailyYield units per crew-day.
//
// crews is the number of parallel crews ("frentes de ataque"), floored at 1.
// efficiency scales the nominal output (1.0 = nominal); allowancePct models
// fatigue/contingency time and reduces effective output.
//
// A non-positive yield cannot be divided through and returns 1 day. A zero
// quantity with a positive yield returns 0; the minimum of one day applies
// only through the yield guard.
func ComputeDuration(quantity, baseDailyYield float64, crews int, efficiency, allowancePct float64) int {
	if baseDailyYield <= 0 {
		return 1
	}
	if crews < 1 {
		crews = 1
	}
	if efficiency <= 0 {
		efficiency = 1
	}

	normalOutput := baseDailyYield * float64(crews) * efficiency
	effectiveOutput := normalOutput / (1 + allowancePct/100)
	if effectiveOutput <= 0 {
		return 1
	}

	return int(math.Ceil(quantity / effectiveOutput))
}
