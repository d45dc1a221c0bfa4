package ingest

import (
	"fmt"

	"github.com/m5trevino/trevino-war-room/internal/model"
)

// Fixed annualization multipliers.
const (
	hoursPerYear  = 2080
	weeksPerYear  = 52
	monthsPerYear = 12
)

// NormalizePay converts an optional compensation block into an annualized
// integer plus a short display string. Absent or unparsable input yields
// (0, "-"); this function never fails.
//
// Display: figures above $10k render as "$Nk"; anything at or below renders
// as "$<min>/hr" even when the unit was not hourly. That quirk is part of the
// review UI's contract and is kept on purpose.
func NormalizePay(bs *model.PayRange) (int, string) {
	if bs == nil || !bs.Min.OK || bs.Min.Value <= 0 {
		return 0, "-"
	}

	val := bs.Min.Value
	var annual float64
	switch bs.UnitOfWork {
	case "HOUR":
		annual = val * hoursPerYear
	case "WEEK":
		annual = val * weeksPerYear
	case "MONTH":
		annual = val * monthsPerYear
	default: // YEAR or unspecified
		annual = val
	}

	if annual > 10000 {
		return int(annual), fmt.Sprintf("$%dk", int(annual)/1000)
	}
	return int(annual), fmt.Sprintf("$%d/hr", int(val))
}
