package display

import (
	"math"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

const (
	InvalidLocationTitle = "Invalid location"
	InvalidLatitude      = "Latitude must be a number between -90.0 and 90.0"
	InvalidLongitude     = "Longitude must be a number between -180.0 and 180.0"
	InvalidAltitude      = "Altitude must be a number (meters)"
)

// Validator checks user entered coordinate text.
type Validator interface {
	ValidLatitude(lat string) bool
	ValidLongitude(lon string) bool
	ValidAltitude(alt string) bool
}

// Notifier shows an error to the user.
type Notifier interface {
	ShowError(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

func (f NotifierFunc) ShowError(title, message string) { f(title, message) }

// LogNotifier reports errors to the log.
type LogNotifier struct{}

func (LogNotifier) ShowError(title, message string) {
	glog.Warningf("%s: %s", title, message)
}

// LocationRules is the default Validator: latitude in [-90, 90], longitude
// in [-180, 180], altitude any finite number. Surrounding whitespace is
// ignored.
type LocationRules struct{}

func (LocationRules) ValidLatitude(lat string) bool {
	v, ok := parseFinite(lat)
	return ok && v >= -90 && v <= 90
}

func (LocationRules) ValidLongitude(lon string) bool {
	v, ok := parseFinite(lon)
	return ok && v >= -180 && v <= 180
}

func (LocationRules) ValidAltitude(alt string) bool {
	_, ok := parseFinite(alt)
	return ok
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ValidLocation checks lat, lon and, when not empty, alt in that order. The
// first invalid value is reported through n and false is returned; later
// values are not checked. A nil Validator uses LocationRules.
func ValidLocation(n Notifier, v Validator, lat, lon, alt string) bool {
	if v == nil {
		v = LocationRules{}
	}
	if !v.ValidLatitude(lat) {
		n.ShowError(InvalidLocationTitle, InvalidLatitude)
		return false
	}
	if !v.ValidLongitude(lon) {
		n.ShowError(InvalidLocationTitle, InvalidLongitude)
		return false
	}
	if alt != "" && !v.ValidAltitude(alt) {
		n.ShowError(InvalidLocationTitle, InvalidAltitude)
		return false
	}
	return true
}

// TitleResolver looks up the display title of a component.
type TitleResolver interface {
	Title(component string) (string, error)
}

// ResolveTitle returns the title of component. A lookup failure is logged and
// yields "".
func ResolveTitle(r TitleResolver, component string) string {
	title, err := r.Title(component)
	if err != nil {
		glog.Warningf("unable to resolve title for %q: %s", component, err)
		return ""
	}
	return title
}
