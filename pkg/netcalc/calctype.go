package netcalc

import (
	"strings"

	"github.com/matzehuels/streamnet/pkg/errors"
)

// CalcType selects the reduction applied across a closure.
type CalcType string

const (
	CalcSum         CalcType = "sum"
	CalcMin         CalcType = "min"
	CalcMax         CalcType = "max"
	CalcWeightedAvg CalcType = "weighted_avg"
)

// ParseCalcType normalizes a user-supplied calculation name. Matching is
// case-insensitive; anything unrecognized is an INVALID_CALC_TYPE error.
func ParseCalcType(s string) (CalcType, error) {
	switch CalcType(strings.ToLower(strings.TrimSpace(s))) {
	case CalcSum:
		return CalcSum, nil
	case CalcMin:
		return CalcMin, nil
	case CalcMax:
		return CalcMax, nil
	case CalcWeightedAvg:
		return CalcWeightedAvg, nil
	}
	return "", errors.New(errors.ErrCodeInvalidCalcType,
		"invalid calculation type %q (expected sum, min, max, or weighted_avg)", s)
}
