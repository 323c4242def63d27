package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/tranzmatt/android-network-survey/survey"
)

const SourceName = "replay"

// maxLineSize bounds a single JSON line.
const maxLineSize = 1 << 20

// networkType is a network type notification line.
type networkType struct {
	Data  string `json:"data"`
	Voice string `json:"voice"`
}

type line struct {
	survey.Envelope
	NetworkType *networkType `json:"networkType,omitempty"`
}

// Source replays survey records recorded as JSON lines. Each line is either a
// record envelope or a {"networkType": {"data": ..., "voice": ...}} object.
// Consecutive cellular records with the same group number are published as
// one group.
type Source struct {
	Identifier string
	Path       string
	// Delay is slept between published groups to mimic live collection.
	Delay time.Duration
}

func (s *Source) Name() string {
	return SourceName
}

// Scan replays the file once.
func (s *Source) Scan(ctx context.Context, d *survey.Dispatcher) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("unable to open replay file %q: %w", s.Path, err)
	}
	defer f.Close()
	return s.Replay(ctx, f, d)
}

// Replay reads lines from r until EOF or ctx is done. Malformed lines are
// logged and skipped.
func (s *Source) Replay(ctx context.Context, r io.Reader, d *survey.Dispatcher) error {
	var (
		group []survey.CellularRecordWrapper
		wifi  []survey.WifiBeacon
	)
	flush := func() error {
		if len(group) > 0 {
			d.PublishCellularGroup(group)
			group = nil
			if err := s.pause(ctx); err != nil {
				return err
			}
		}
		if len(wifi) > 0 {
			d.PublishWifiBeacons(wifi)
			wifi = nil
			if err := s.pause(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return nil
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var l line
		if err := json.Unmarshal([]byte(text), &l); err != nil {
			glog.Warningf("replay line %d: %s\n", lineNum, err)
			continue
		}
		if l.NetworkType != nil {
			if err := flush(); err != nil {
				return nil
			}
			d.PublishNetworkType(l.NetworkType.Data, l.NetworkType.Voice)
			continue
		}

		rec, err := l.Envelope.Decode()
		if err != nil {
			glog.Warningf("replay line %d: %s\n", lineNum, err)
			continue
		}

		if beacon, ok := rec.(survey.WifiBeacon); ok {
			if len(group) > 0 {
				if err := flush(); err != nil {
					return nil
				}
			}
			wifi = append(wifi, beacon)
			continue
		}

		w := survey.Wrapped(s.stamp(rec))
		if len(wifi) > 0 || (len(group) > 0 && group[0].GroupNumber() != w.GroupNumber()) {
			if err := flush(); err != nil {
				return nil
			}
		}
		group = append(group, w)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading replay input: %w", err)
	}
	if err := flush(); err != nil {
		return nil
	}
	return nil
}

func (s *Source) pause(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// stamp fills in the device serial number for records recorded without one.
func (s *Source) stamp(rec survey.Record) survey.Record {
	if s.Identifier == "" {
		return rec
	}
	fill := func(m *survey.CellularMeta) {
		if m.DeviceSerialNumber == "" {
			m.DeviceSerialNumber = s.Identifier
		}
	}
	switch r := rec.(type) {
	case survey.GsmRecord:
		fill(&r.CellularMeta)
		return r
	case survey.CdmaRecord:
		fill(&r.CellularMeta)
		return r
	case survey.UmtsRecord:
		fill(&r.CellularMeta)
		return r
	case survey.LteRecord:
		fill(&r.CellularMeta)
		return r
	case survey.NrRecord:
		fill(&r.CellularMeta)
		return r
	}
	return rec
}
