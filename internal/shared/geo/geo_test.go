package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokyoStation   = Point{Lat: 35.681236, Lng: 139.767125}
	chidorigafuchi = Point{Lat: 35.685175, Lng: 139.752799}
	yasukuni       = Point{Lat: 35.693825, Lng: 139.755094}
)

func TestHaversineKm(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := HaversineKm(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100 || d > 140 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestDistanceIdentityAndSymmetry(t *testing.T) {
	assert.Equal(t, 0.0, Distance(tokyoStation, tokyoStation))
	assert.Equal(t, Distance(tokyoStation, chidorigafuchi), Distance(chidorigafuchi, tokyoStation))
	assert.Equal(t, Distance(yasukuni, tokyoStation), Distance(tokyoStation, yasukuni))
}

func TestDistanceTokyoFixture(t *testing.T) {
	d := Distance(tokyoStation, chidorigafuchi)
	assert.GreaterOrEqual(t, d, 1350.0)
	assert.LessOrEqual(t, d, 1400.0)

	// orb uses a 6378137 m radius; rescale and compare.
	independent := orbgeo.DistanceHaversine(tokyoStation.Orb(), chidorigafuchi.Orb()) * EarthRadiusM / orb.EarthRadius
	assert.InDelta(t, independent, d, 0.01)
}

func TestPathLengthIsPolylineLength(t *testing.T) {
	path := []Point{tokyoStation, chidorigafuchi, yasukuni}
	want := Distance(tokyoStation, chidorigafuchi) + Distance(chidorigafuchi, yasukuni)
	assert.InDelta(t, want, PathLength(path), 1e-9)
	assert.Greater(t, PathLength(path), Distance(tokyoStation, yasukuni))
	assert.Equal(t, 0.0, PathLength(path[:1]))
	assert.Equal(t, 0.0, PathLength(nil))
}

func TestPathWKTRoundTrip(t *testing.T) {
	path := []Point{tokyoStation, chidorigafuchi}
	s, err := PathWKT(path)
	require.NoError(t, err)
	assert.Contains(t, s, "LINESTRING")

	back, err := ParsePathWKT(s)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.True(t, math.Abs(back[0].Lat-tokyoStation.Lat) < 1e-9)
	assert.True(t, math.Abs(back[1].Lng-chidorigafuchi.Lng) < 1e-9)
}

func TestPathWKTNeedsTwoPoints(t *testing.T) {
	_, err := PathWKT([]Point{tokyoStation})
	assert.Error(t, err)

	_, err = ParsePathWKT("not wkt")
	assert.Error(t, err)
}
