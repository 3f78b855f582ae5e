package port

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/geodesic"
)

// Coordinates is a geographic position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"latitude" toml:"latitude"`
	Lon float64 `json:"longitude" toml:"longitude"`
}

// Metric selects how the distance between two ports is measured.
type Metric int

const (
	// Geodesic is the WGS-84 ellipsoidal distance in kilometres.
	Geodesic Metric = iota
	// Planar is the Euclidean distance between raw coordinate pairs.
	Planar
)

// String returns the metric name used in configuration.
func (m Metric) String() string {
	switch m {
	case Geodesic:
		return "geodesic"
	case Planar:
		return "planar"
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// ParseMetric converts a configuration value to a Metric. The empty string
// selects Geodesic.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "geodesic":
		return Geodesic, nil
	case "planar", "euclidean":
		return Planar, nil
	}
	return Geodesic, fmt.Errorf("%w: %q", ErrInvalidMetric, s)
}

// Distance measures between a and b. It is symmetric, never negative, and
// zero for identical coordinates.
func (m Metric) Distance(a, b Coordinates) float64 {
	if a == b {
		return 0
	}
	if m == Planar {
		return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
	}
	var metres float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &metres, nil, nil)
	return math.Abs(metres) / 1000
}
