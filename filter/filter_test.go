package filter

import (
	"context"
	"regexp"
	"testing"

	"github.com/tranzmatt/android-network-survey/survey"
)

func beacon(ssid string, signal *float32) survey.WifiBeacon {
	return survey.NewWifiBeaconBuilder().SSID(ssid).SignalStrength(signal).Build()
}

func TestFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filterer
		record survey.Record
		ignore bool
	}{
		{"signal below min", &FilterSignal{Min: -80}, beacon("a", survey.Ptr(float32(-85))), true},
		{"signal at min", &FilterSignal{Min: -80}, beacon("a", survey.Ptr(float32(-80))), false},
		{"signal unknown", &FilterSignal{Min: -80}, beacon("a", nil), false},
		{"signal ignores cellular", &FilterSignal{Min: -80}, survey.LteRecord{}, false},
		{"ssid match", &FilterSSID{Pattern: regexp.MustCompile(`^corp-`)}, beacon("corp-guest", nil), false},
		{"ssid mismatch", &FilterSSID{Pattern: regexp.MustCompile(`^corp-`)}, beacon("home", nil), true},
		{"technology allowed", &FilterTechnology{Allowed: []survey.Technology{survey.TechnologyLTE}}, survey.LteRecord{}, false},
		{"technology denied", &FilterTechnology{Allowed: []survey.Technology{survey.TechnologyLTE}}, survey.GsmRecord{}, true},
		{"technology ignores wifi", &FilterTechnology{}, beacon("a", nil), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.ShouldIgnore(tc.record); got != tc.ignore {
				t.Errorf("ShouldIgnore() = %t, want %t", got, tc.ignore)
			}
		})
	}
}

func TestFilterAnyFilterDrops(t *testing.T) {
	in := make(chan survey.Record, 4)
	out := make(chan survey.Record, 4)
	in <- beacon("corp-a", survey.Ptr(float32(-90)))
	in <- beacon("home", survey.Ptr(float32(-40)))
	in <- beacon("corp-b", survey.Ptr(float32(-40)))
	in <- survey.NrRecord{}
	close(in)

	filters := []Filterer{
		&FilterSignal{Min: -80},
		&FilterSSID{Pattern: regexp.MustCompile(`^corp-`)},
	}
	if err := Filter(context.Background(), in, out, filters); err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}

	var kept []survey.Record
	for r := range out {
		kept = append(kept, r)
	}
	if len(kept) != 2 {
		t.Fatalf("kept %d records, want 2", len(kept))
	}
	if b := kept[0].(survey.WifiBeacon); b.SSID() != "corp-b" {
		t.Errorf("kept %q, want corp-b", b.SSID())
	}
	if kept[1].MessageType() != survey.NrMessageType {
		t.Errorf("kept %s, want NrRecord", kept[1].MessageType())
	}
}
