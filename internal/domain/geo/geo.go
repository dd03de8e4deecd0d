package geo

import "math"

const (
	earthRadiusMeters = 6371000

	// DefaultHandoffRadiusMeters is "standing at the handoff address":
	// a party inside this radius may reveal or scan the verification
	// code.
	DefaultHandoffRadiusMeters = 30.0
)

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// DistanceMeters is the great-circle (haversine) distance between two
// coordinates.
func DistanceMeters(a, b Coordinates) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Gate authorizes code disclosure by proximity. It is a capability
// check on the latest reported position, not a tracking feed.
type Gate struct {
	radiusMeters float64
}

func NewGate(radiusMeters float64) Gate {
	if radiusMeters <= 0 {
		radiusMeters = DefaultHandoffRadiusMeters
	}
	return Gate{radiusMeters: radiusMeters}
}

func (g Gate) RadiusMeters() float64 { return g.radiusMeters }

func (g Gate) InRange(party, destination Coordinates) bool {
	return DistanceMeters(party, destination) <= g.radiusMeters
}
