package plist

import (
	"math"
	"time"
)

// EpochOffset is the number of seconds between the Unix epoch and Epoch.
const EpochOffset = 978307200

// Epoch is the reference instant for date values, 2001-01-01T00:00:00Z.
var Epoch = time.Unix(EpochOffset, 0).UTC()

// Text date layouts: the OpenStep dialect quotes the first, GNUstep typed
// literals carry the second.
const (
	openStepDateLayout = "2006-01-02T15:04:05Z"
	gnuStepDateLayout  = "2006-01-02 15:04:05 -0700"
)

func secondsFromTime(t time.Time) float64 {
	return float64(t.Unix()-EpochOffset) + float64(t.Nanosecond())/1e9
}

func timeFromSeconds(s float64) time.Time {
	whole := math.Floor(s)
	nanos := math.Round((s - whole) * 1e9)
	return time.Unix(int64(whole)+EpochOffset, int64(nanos)).UTC()
}

func parseDate(layout, s string) (*Value, bool) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil, false
	}
	return DateFromTime(t), true
}

func formatDate(layout string, seconds float64) string {
	return timeFromSeconds(seconds).Format(layout)
}

// Both text layouts carry exactly four year digits.
const (
	minTextYear = 0
	maxTextYear = 9999
)

// checkTextDate rejects dates whose year the text layouts cannot spell.
func checkTextDate(seconds float64) error {
	// Beyond ±1e12 seconds every date is out of range and int64 nanosecond
	// arithmetic would overflow.
	if math.IsNaN(seconds) || math.Abs(seconds) > 1e12 {
		return newError(ErrUnsupportedFeature, -1, "date of %v seconds in text output", seconds)
	}
	year := timeFromSeconds(seconds).Year()
	if year < minTextYear || year > maxTextYear {
		return newError(ErrUnsupportedFeature, -1, "date in year %d in text output", year)
	}
	return nil
}
