package filter

import (
	"context"
	"regexp"
	"slices"

	"github.com/tranzmatt/android-network-survey/survey"
)

type Filterer interface {
	ShouldIgnore(survey.Record) bool
}

// Filter copies records from input to output, dropping those any filter
// ignores. It returns when input is closed or ctx is done, and closes output.
func Filter(ctx context.Context, input <-chan survey.Record, output chan<- survey.Record, filters []Filterer) error {
	defer close(output)
	for r := range input {
		skip := false
		for _, f := range filters {
			if f.ShouldIgnore(r) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		select {
		case output <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// FilterSignal ignores WiFi beacons weaker than Min dBm. Beacons without a
// signal strength and non-WiFi records pass.
type FilterSignal struct {
	Min float32
}

func (f *FilterSignal) ShouldIgnore(r survey.Record) bool {
	b, ok := r.(survey.WifiBeacon)
	if !ok {
		return false
	}
	s := b.SignalStrength()
	return s != nil && *s < f.Min
}

// FilterSSID ignores WiFi beacons whose SSID does not match Pattern.
type FilterSSID struct {
	Pattern *regexp.Regexp
}

func (f *FilterSSID) ShouldIgnore(r survey.Record) bool {
	b, ok := r.(survey.WifiBeacon)
	if !ok {
		return false
	}
	return !f.Pattern.MatchString(b.SSID())
}

// FilterTechnology ignores cellular records of technologies not in Allowed.
type FilterTechnology struct {
	Allowed []survey.Technology
}

func (f *FilterTechnology) ShouldIgnore(r survey.Record) bool {
	w := survey.Wrapped(r)
	if w.Technology == survey.TechnologyUnknown {
		return false
	}
	return !slices.Contains(f.Allowed, w.Technology)
}
