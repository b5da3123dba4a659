package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is a WGS 84 point in signed decimal degrees.
// Negative latitude is south, negative longitude is west.
type Coordinate struct {
	Lat float64
	Lon float64
}

// ParseCoordinate accepts either hemisphere notation
// ("18.7669° S, 46.8691° E") or a signed decimal pair ("-18.7669,46.8691").
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("%w: %q: want two components", ErrInvalidCoordinate, s)
	}

	lat, err := parseComponent(parts[0], 'N', 'S')
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q: latitude: %v", ErrInvalidCoordinate, s, err)
	}
	lon, err := parseComponent(parts[1], 'E', 'W')
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q: longitude: %v", ErrInvalidCoordinate, s, err)
	}

	c := Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: %q: out of range", ErrInvalidCoordinate, s)
	}
	return c, nil
}

// MustParseCoordinate is like ParseCoordinate but panics on error.
// Only for compile-time tables.
func MustParseCoordinate(s string) Coordinate {
	c, err := ParseCoordinate(s)
	if err != nil {
		panic(err)
	}
	return c
}

// parseComponent parses one axis. pos and neg are the hemisphere letters
// that map to a positive and negative sign respectively.
func parseComponent(raw string, pos, neg byte) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty")
	}

	sign := 1.0
	hemisphere := false
	switch last := upper(s[len(s)-1]); last {
	case pos:
		hemisphere = true
	case neg:
		hemisphere = true
		sign = -1
	case 'N', 'S', 'E', 'W':
		return 0, fmt.Errorf("unexpected hemisphere %q", last)
	}
	if hemisphere {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "°"))

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if hemisphere && v < 0 {
		return 0, fmt.Errorf("signed value with hemisphere")
	}
	return sign * v, nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// Valid reports whether the coordinate is within WGS 84 bounds.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) &&
		c.Lat >= -90 && c.Lat <= 90 &&
		c.Lon >= -180 && c.Lon <= 180
}

// String renders hemisphere notation, e.g. "51.5072° N, 0.1276° W".
func (c Coordinate) String() string {
	ns, ew := "N", "E"
	if c.Lat < 0 {
		ns = "S"
	}
	if c.Lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%s° %s, %s° %s",
		formatDegrees(math.Abs(c.Lat)), ns,
		formatDegrees(math.Abs(c.Lon)), ew)
}

// Query renders the "<lat>,<lon>" form map viewers accept as a search query.
func (c Coordinate) Query() string {
	return formatDegrees(c.Lat) + "," + formatDegrees(c.Lon)
}

// GeoURI renders an RFC 5870 style URI anchored on the coordinate.
func (c Coordinate) GeoURI() string {
	return "geo:0,0?q=" + c.Query()
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
