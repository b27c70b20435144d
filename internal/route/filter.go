package route

import (
	"fmt"
	"math"
	"strings"
)

// Range is an inclusive [Min, Max] interval, or [Min, inf) when Open is set.
type Range struct {
	Min  float64
	Max  float64
	Open bool
}

func (r Range) Contains(v float64) bool {
	if v < r.Min {
		return false
	}
	return r.Open || v <= r.Max
}

type DistanceBucket string

const (
	AnyDistance    DistanceBucket = ""
	DistanceShort  DistanceBucket = "short"
	DistanceMedium DistanceBucket = "medium"
	DistanceLong   DistanceBucket = "long"
	DistanceExtra  DistanceBucket = "extra"
)

// Range reports the kilometer interval of the bucket; ok is false for AnyDistance.
func (b DistanceBucket) Range() (r Range, ok bool) {
	switch b {
	case DistanceShort:
		return Range{Min: 0, Max: 2}, true
	case DistanceMedium:
		return Range{Min: 2, Max: 5}, true
	case DistanceLong:
		return Range{Min: 5, Max: 10}, true
	case DistanceExtra:
		return Range{Min: 10, Max: math.Inf(1), Open: true}, true
	}
	return Range{}, false
}

func ParseDistanceBucket(s string) (DistanceBucket, error) {
	switch b := DistanceBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case "", "all":
		return AnyDistance, nil
	case DistanceShort, DistanceMedium, DistanceLong, DistanceExtra:
		return b, nil
	}
	return "", fmt.Errorf("unknown distance bucket %q", s)
}

type DurationBucket string

const (
	AnyDuration      DurationBucket = ""
	DurationQuick    DurationBucket = "quick"
	DurationStandard DurationBucket = "standard"
	DurationExtended DurationBucket = "extended"
	DurationHalfDay  DurationBucket = "half_day"
)

// Range reports the interval in minutes; ok is false for AnyDuration.
func (b DurationBucket) Range() (r Range, ok bool) {
	switch b {
	case DurationQuick:
		return Range{Min: 0, Max: 30}, true
	case DurationStandard:
		return Range{Min: 30, Max: 60}, true
	case DurationExtended:
		return Range{Min: 60, Max: 120}, true
	case DurationHalfDay:
		return Range{Min: 120, Max: math.Inf(1), Open: true}, true
	}
	return Range{}, false
}

func ParseDurationBucket(s string) (DurationBucket, error) {
	switch b := DurationBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case "", "all":
		return AnyDuration, nil
	case DurationQuick, DurationStandard, DurationExtended, DurationHalfDay:
		return b, nil
	}
	return "", fmt.Errorf("unknown duration bucket %q", s)
}

// Criteria is the user's filter state. The zero value of each field means "all".
type Criteria struct {
	Distance    DistanceBucket
	Duration    DurationBucket
	Season      Season
	Temperature Temperature
	SpotType    SpotType
	Search      string
}

// ParseCriteria reads criteria through a query getter such as a fiber ctx.
func ParseCriteria(get func(key string) string) (Criteria, error) {
	var c Criteria
	var err error

	if c.Distance, err = ParseDistanceBucket(get("distance")); err != nil {
		return Criteria{}, err
	}
	if c.Duration, err = ParseDurationBucket(get("duration")); err != nil {
		return Criteria{}, err
	}
	if v := get("season"); !isAll(v) {
		if c.Season, err = ParseSeason(v); err != nil {
			return Criteria{}, err
		}
	}
	if v := get("temperature"); !isAll(v) {
		if c.Temperature, err = ParseTemperature(v); err != nil {
			return Criteria{}, err
		}
	}
	if v := get("spot"); !isAll(v) {
		if c.SpotType, err = ParseSpotType(v); err != nil {
			return Criteria{}, err
		}
	}
	c.Search = strings.TrimSpace(get("q"))
	return c, nil
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// Match reports whether r satisfies every active criterion.
func (c Criteria) Match(r Route) bool {
	if rng, ok := c.Distance.Range(); ok && !rng.Contains(r.DistanceKm) {
		return false
	}
	if rng, ok := c.Duration.Range(); ok && !rng.Contains(float64(r.DurationMin)) {
		return false
	}
	if c.Season != "" && !r.HasSeason(c.Season) {
		return false
	}
	if c.Temperature != "" && !r.HasTemperature(c.Temperature) {
		return false
	}
	if c.SpotType != "" && !r.HasSpotType(c.SpotType) {
		return false
	}
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(r.Name), q) && !strings.Contains(strings.ToLower(r.Description), q) {
			return false
		}
	}
	return true
}

// Filter returns the routes matching c in catalog order. The catalog is not modified.
func Filter(catalog []Route, c Criteria) []Route {
	out := make([]Route, 0, len(catalog))
	for _, r := range catalog {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
