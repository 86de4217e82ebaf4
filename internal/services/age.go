package services

import "time"

type AgeBand string

const (
	AgeBand0To14  AgeBand = "0-14"
	AgeBand15To21 AgeBand = "15-21"
	AgeBand22To29 AgeBand = "22-29"
	AgeBand30To39 AgeBand = "30-39"
	AgeBand40To59 AgeBand = "40-59"
	AgeBand60Plus AgeBand = "60+"
)

// AgeBands lists every band in ascending order.
var AgeBands = []AgeBand{AgeBand0To14, AgeBand15To21, AgeBand22To29, AgeBand30To39, AgeBand40To59, AgeBand60Plus}

// AgeOn returns the calendar age of someone born on birth as of asOf.
func AgeOn(birth, asOf time.Time) int {
	age := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() || (asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		age--
	}
	return age
}

// ClassifyAge maps a birth date to its age band as of asOf.
func ClassifyAge(birth, asOf time.Time) AgeBand {
	age := AgeOn(birth, asOf)
	switch {
	case age <= 14:
		return AgeBand0To14
	case age <= 21:
		return AgeBand15To21
	case age <= 29:
		return AgeBand22To29
	case age <= 39:
		return AgeBand30To39
	case age <= 59:
		return AgeBand40To59
	default:
		return AgeBand60Plus
	}
}
