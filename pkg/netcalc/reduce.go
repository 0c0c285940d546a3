package netcalc

import "math"

// reduce aggregates one variable over a closure and returns the value plus
// the weighted missing-data percentage.
//
// Segments without a local row are skipped entirely. NaN weights disqualify
// their row from both the value (for weighted averages) and the missing
// percentage. The remaining semantics follow columnar conventions: sum over
// nothing is 0, min/max over nothing is NaN, and any 0/0 is NaN.
func reduce(calc CalcType, t *LocalTable, varIdx int, closure []int64) (value, missingPct float64) {
	var (
		sum, num, den  float64
		mn, mx         = math.NaN(), math.NaN()
		missingW, allW float64
	)

	for _, id := range closure {
		if !t.Has(id) {
			continue
		}
		v := t.Value(varIdx, id)
		w := t.Weight(id)

		if !math.IsNaN(w) {
			allW += w
			if math.IsNaN(v) {
				missingW += w
			}
		}
		if math.IsNaN(v) {
			continue
		}

		sum += v
		if math.IsNaN(mn) || v < mn {
			mn = v
		}
		if math.IsNaN(mx) || v > mx {
			mx = v
		}
		if !math.IsNaN(w) {
			num += v * w
			den += w
		}
	}

	switch calc {
	case CalcSum:
		value = sum
	case CalcMin:
		value = mn
	case CalcMax:
		value = mx
	case CalcWeightedAvg:
		if den == 0 {
			value = math.NaN()
		} else {
			value = num / den
		}
	}

	if allW == 0 {
		missingPct = math.NaN()
	} else {
		missingPct = missingW / allW * 100
	}
	return value, missingPct
}

// copyThrough produces the one-ancestor result: the segment's own local
// value passes straight through, and the missing percentage is simply 0 or
// 100. A segment with no local row counts as fully missing.
func copyThrough(t *LocalTable, varIdx int, id int64) (value, missingPct float64) {
	if !t.Has(id) {
		return math.NaN(), 100
	}
	v := t.Value(varIdx, id)
	if math.IsNaN(v) {
		return v, 100
	}
	return v, 0
}
