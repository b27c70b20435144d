package recording

import "backend-chillwalk/internal/shared/geo"

// Accumulator keeps the ordered samples of a walk and their running polyline length.
type Accumulator struct {
	points []geo.Point
	meters float64
}

// Add appends p and returns the distance from the previous sample in meters.
func (a *Accumulator) Add(p geo.Point) float64 {
	var step float64
	if n := len(a.points); n > 0 {
		step = geo.Distance(a.points[n-1], p)
	}
	a.points = append(a.points, p)
	a.meters += step
	return step
}

func (a *Accumulator) Meters() float64 { return a.meters }

func (a *Accumulator) Len() int { return len(a.points) }

func (a *Accumulator) Points() []geo.Point {
	out := make([]geo.Point, len(a.points))
	copy(out, a.points)
	return out
}

func (a *Accumulator) Reset() {
	a.points = nil
	a.meters = 0
}
