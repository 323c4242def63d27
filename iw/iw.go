package iw

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/tranzmatt/android-network-survey/survey"
)

const (
	SourceName = "iw"
	scanAlias  = "iw"

	defaultInterval = 10 * time.Second
)

var bssLine = regexp.MustCompile(`^BSS ([0-9a-fA-F]{2}(?::[0-9a-fA-F]{2}){5})`)

// Scanner surveys WiFi beacons with `iw dev <iface> scan`.
type Scanner struct {
	// Identifier names this scanner in logs.
	Identifier string
	Interface  string
	// Interval between scans. Defaults to 10s.
	Interval time.Duration
	// Position is stamped into every beacon's geometry when set.
	Position *survey.Point

	recordNumber atomic.Int32

	// run returns the scan output. Tests replace it.
	run func(ctx context.Context) (io.ReadCloser, func() error, error)
}

func (s *Scanner) Name() string {
	return SourceName
}

// Scan runs a scan every Interval and publishes each result as one batch
// until ctx is done. Failed scans are logged and retried on the next tick.
func (s *Scanner) Scan(ctx context.Context, d *survey.Dispatcher) error {
	if s.Interface == "" {
		return fmt.Errorf("no WiFi interface configured")
	}
	interval := s.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		beacons, err := s.scanOnce(ctx)
		if err != nil && ctx.Err() != nil {
			// The scan was killed because we are shutting down.
			return nil
		}
		if err != nil {
			glog.Warningf("WiFi scan on %s failed: %s\n", s.Interface, err)
		} else {
			glog.V(1).Infof("%s: WiFi scan on %s found %d beacons", s.Identifier, s.Interface, len(beacons))
			d.PublishWifiBeacons(beacons)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scanner) scanOnce(ctx context.Context) ([]survey.WifiBeacon, error) {
	run := s.run
	if run == nil {
		run = s.exec
	}
	out, wait, err := run(ctx)
	if err != nil {
		return nil, err
	}
	builders, parseErr := ParseScan(out)
	out.Close()
	if err := wait(); err != nil {
		return nil, fmt.Errorf("scan command ended with error: %w", err)
	}
	if parseErr != nil {
		return nil, parseErr
	}

	now := time.Now()
	var geom string
	if s.Position != nil {
		geom = s.Position.WKT()
	}
	beacons := make([]survey.WifiBeacon, 0, len(builders))
	for _, b := range builders {
		beacons = append(beacons, b.
			Time(int32(now.Unix())).
			Geom(geom).
			RecordNumber(s.recordNumber.Add(1)).
			Build())
	}
	return beacons, nil
}

func (s *Scanner) exec(ctx context.Context) (io.ReadCloser, func() error, error) {
	cmd := exec.CommandContext(ctx, scanAlias, "dev", s.Interface, "scan")
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	glog.V(2).Infof("Running WiFi scan: %q\n", cmd)
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("unable to start scan: %w", err)
	}
	return out, cmd.Wait, nil
}

// bss collects the information elements of one BSS block.
type bss struct {
	bssid   string
	ssid    string
	freq    int32
	channel int32
	signal  *float32
	privacy bool
	rsn     bool
	wpa     bool
	wps     bool
	ciphers []string
	akms    []string
	section string
}

// ParseScan parses `iw dev <iface> scan` output into one builder per BSS. The
// builders carry everything iw reports; time, geometry and record number are
// left for the caller.
func ParseScan(r io.Reader) ([]*survey.WifiBeaconBuilder, error) {
	var (
		found []*bss
		cur   *bss
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		glog.V(3).Info(line)

		if m := bssLine.FindStringSubmatch(line); m != nil {
			cur = &bss{bssid: strings.ToLower(m[1])}
			found = append(found, cur)
			continue
		}
		if cur == nil {
			continue
		}
		cur.parseLine(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading scan output: %w", err)
	}

	builders := make([]*survey.WifiBeaconBuilder, 0, len(found))
	for _, b := range found {
		builders = append(builders, b.builder())
	}
	return builders, nil
}

func (b *bss) parseLine(line string) {
	trimmed := strings.TrimSpace(line)
	// Section headers are indented once; their items start with " * ".
	if !strings.HasPrefix(line, "\t\t") {
		b.section = ""
	}
	key, value, ok := strings.Cut(trimmed, ":")
	if !ok {
		return
	}
	key = strings.TrimSpace(strings.TrimPrefix(key, "* "))
	value = strings.TrimSpace(value)

	switch key {
	case "freq":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			b.freq = int32(f)
		}
	case "signal":
		if v, err := strconv.ParseFloat(strings.TrimSuffix(value, " dBm"), 32); err == nil {
			s := float32(v)
			b.signal = &s
		}
	case "SSID":
		b.ssid = value
	case "capability":
		b.privacy = slices.Contains(strings.Fields(value), "Privacy")
	case "DS Parameter set":
		if ch, err := strconv.Atoi(strings.TrimPrefix(value, "channel ")); err == nil {
			b.channel = int32(ch)
		}
	case "primary channel":
		if b.channel == 0 {
			if ch, err := strconv.Atoi(value); err == nil {
				b.channel = int32(ch)
			}
		}
	case "RSN", "WPA", "WPS":
		b.section = key
		switch key {
		case "RSN":
			b.rsn = true
		case "WPA":
			b.wpa = true
		case "WPS":
			b.wps = true
		}
		// iw prints the first item on the header line after a tab.
		if rest, ok := strings.CutPrefix(value, "* "); ok {
			b.parseSectionItem(rest)
		}
	default:
		if b.section != "" {
			b.parseSectionItem(trimmed)
		}
	}
}

func (b *bss) parseSectionItem(item string) {
	item = strings.TrimPrefix(item, "* ")
	key, value, ok := strings.Cut(item, ":")
	if !ok || (b.section != "RSN" && b.section != "WPA") {
		return
	}
	switch strings.TrimSpace(key) {
	case "Pairwise ciphers":
		for _, c := range strings.Fields(value) {
			if !slices.Contains(b.ciphers, c) {
				b.ciphers = append(b.ciphers, c)
			}
		}
	case "Authentication suites":
		for _, a := range strings.Fields(value) {
			if !slices.Contains(b.akms, a) {
				b.akms = append(b.akms, a)
			}
		}
	}
}

func (b *bss) encryption() string {
	sae := slices.Contains(b.akms, "SAE")
	psk := slices.Contains(b.akms, "PSK") || slices.Contains(b.akms, "802.1X")
	switch {
	case b.rsn && sae && psk:
		return "WPA2/WPA3"
	case b.rsn && sae:
		return "WPA3"
	case b.rsn && b.wpa:
		return "WPA/WPA2"
	case b.rsn:
		return "WPA2"
	case b.wpa:
		return "WPA"
	case b.privacy:
		return "WEP"
	}
	return "Open"
}

func (b *bss) builder() *survey.WifiBeaconBuilder {
	channel := b.channel
	if channel == 0 {
		channel = FrequencyToChannel(b.freq)
	}
	return survey.NewWifiBeaconBuilder().
		BSSID(b.bssid).
		SSID(b.ssid).
		Frequency(b.freq).
		Channel(channel).
		CipherSuites(strings.Join(b.ciphers, ",")).
		AKMSuites(strings.Join(b.akms, ",")).
		EncryptionType(b.encryption()).
		WPS(survey.Ptr(b.wps)).
		SignalStrength(b.signal)
}

// FrequencyToChannel maps a center frequency in MHz to its 802.11 channel
// number, or 0 when the frequency is not in a known band.
func FrequencyToChannel(freqMHz int32) int32 {
	switch {
	case freqMHz == 2484:
		return 14
	case freqMHz >= 2412 && freqMHz <= 2472:
		return (freqMHz - 2407) / 5
	case freqMHz >= 5955 && freqMHz <= 7115:
		return (freqMHz - 5950) / 5
	case freqMHz >= 5000 && freqMHz <= 5900:
		return (freqMHz - 5000) / 5
	}
	return 0
}
