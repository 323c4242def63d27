package display

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Axis says whether a coordinate is a latitude or a longitude.
type Axis string

const (
	Latitude  Axis = "lat"
	Longitude Axis = "lon"
)

// CoordinateFormat selects how FormatLocation renders coordinates.
type CoordinateFormat string

const (
	DecimalDegrees        CoordinateFormat = "dd"
	DegreesMinutesSeconds CoordinateFormat = "dms"
	DegreesDecimalMinutes CoordinateFormat = "ddm"
)

var sixty = decimal.NewFromInt(60)

func hemisphere(coordinate float64, axis Axis) string {
	if axis == Latitude {
		if coordinate < 0 {
			return "S"
		}
		return "N"
	}
	if coordinate < 0 {
		return "W"
	}
	return "E"
}

// DMS formats a coordinate in degrees, minutes and seconds, e.g.
// `N 37° 46' 29.64"`. Degrees and minutes are truncated, seconds are rounded
// half up to two places. Any axis other than Latitude is treated as longitude.
func DMS(coordinate float64, axis Axis) string {
	loc := decimal.NewFromFloat(coordinate)
	degrees := loc.Truncate(0)
	minTemp := loc.Sub(degrees).Mul(sixty).Abs()
	minutes := minTemp.Truncate(0)
	seconds := minTemp.Sub(minutes).Mul(sixty).Round(2)

	layout := "%s %02d° %02d' %02.2f\""
	if axis != Latitude {
		layout = "%s %03d° %02d' %02.2f\""
	}
	return fmt.Sprintf(layout, hemisphere(coordinate, axis), degrees.Abs().IntPart(), minutes.IntPart(), seconds.InexactFloat64())
}

// DDM formats a coordinate in degrees and decimal minutes, e.g.
// `N 37° 46.494'`. Minutes are rounded half up to three places.
func DDM(coordinate float64, axis Axis) string {
	loc := decimal.NewFromFloat(coordinate)
	degrees := loc.Truncate(0)
	minutes := loc.Sub(degrees).Mul(sixty).Abs().Round(3)

	layout := "%s %02d° %02.3f'"
	if axis != Latitude {
		layout = "%s %03d° %02.3f'"
	}
	return fmt.Sprintf(layout, hemisphere(coordinate, axis), degrees.Abs().IntPart(), minutes.InexactFloat64())
}

// Location is a position fix. Altitude is only meaningful when HasAltitude.
type Location struct {
	Latitude    float64
	Longitude   float64
	Altitude    float64
	HasAltitude bool
}

// LocationShare renders a location as "lat,lon" or "lat,lon,alt" in decimal
// degrees.
func LocationShare(loc Location, includeAltitude bool) string {
	s := formatFloat(loc.Latitude) + "," + formatFloat(loc.Longitude)
	if loc.HasAltitude && includeAltitude {
		s += "," + formatFloat(loc.Altitude)
	}
	return s
}

// LocationShareStrings joins already formatted values. An empty altitude is
// left out.
func LocationShareStrings(latitude, longitude, altitude string) string {
	s := latitude + "," + longitude
	if altitude != "" {
		s += "," + altitude
	}
	return s
}

// FormatLocation renders loc in the requested format and returns the format
// actually used. Unrecognized formats fall back to decimal degrees.
func FormatLocation(loc Location, includeAltitude bool, format CoordinateFormat) (string, CoordinateFormat) {
	var alt string
	if loc.HasAltitude && includeAltitude {
		alt = formatFloat(loc.Altitude)
	}
	switch format {
	case DegreesMinutesSeconds:
		return LocationShareStrings(DMS(loc.Latitude, Latitude), DMS(loc.Longitude, Longitude), alt), DegreesMinutesSeconds
	case DegreesDecimalMinutes:
		return LocationShareStrings(DDM(loc.Latitude, Latitude), DDM(loc.Longitude, Longitude), alt), DegreesDecimalMinutes
	default:
		return LocationShare(loc, includeAltitude), DecimalDegrees
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
