package maintenance

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock reads wall time, optionally in a fixed location so that the
// calendar date matches the facility's timezone.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
