// Package band converts a final ability estimate to the reporting scale.
package band

import "strconv"

// Band is a reported proficiency value, one of 1.0 through 6.0.
type Band float64

// Reporting bands in ascending order.
const (
	Band1 Band = 1.0
	Band2 Band = 2.0
	Band3 Band = 3.0
	Band4 Band = 4.0
	Band5 Band = 5.0
	Band6 Band = 6.0
)

// cut is a lower theta bound and the band awarded at or above it.
type cut struct {
	minTheta float64
	band     Band
}

// cuts is ordered from highest to lowest; anything below the last cut is Band1.
var cuts = []cut{
	{2.0, Band6},
	{1.0, Band5},
	{0.0, Band4},
	{-1.0, Band3},
	{-2.0, Band2},
}

// ConvertThetaToBand maps theta onto the six-band reporting scale.
// It is total: values outside [-3, 3] land in Band6 or Band1, and NaN
// (which compares false against every cut) lands in Band1.
func ConvertThetaToBand(theta float64) Band {
	for _, c := range cuts {
		if theta >= c.minTheta {
			return c.band
		}
	}
	return Band1
}

// Bands returns every reportable band in ascending order.
func Bands() []Band {
	return []Band{Band1, Band2, Band3, Band4, Band5, Band6}
}

// Valid reports whether b is one of the six reportable values.
func (b Band) Valid() bool {
	for _, v := range Bands() {
		if b == v {
			return true
		}
	}
	return false
}

func (b Band) String() string {
	return strconv.FormatFloat(float64(b), 'f', 1, 64)
}
