package survey

import (
	"sync"

	"github.com/golang/glog"
)

// Dispatcher fans survey records out to registered listeners. It is safe for
// concurrent use; listeners are called synchronously on the publishing
// goroutine in registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	cellular []CellularListener
	wifi     []WifiListener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// RegisterCellular adds l. Registering the same listener twice is a no-op.
// Listeners are compared with ==, so use pointer receivers.
func (d *Dispatcher) RegisterCellular(l CellularListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.cellular {
		if existing == l {
			return
		}
	}
	d.cellular = append(d.cellular, l)
}

func (d *Dispatcher) UnregisterCellular(l CellularListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.cellular {
		if existing == l {
			d.cellular = append(d.cellular[:i:i], d.cellular[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher) HasCellularListeners() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cellular) > 0
}

func (d *Dispatcher) RegisterWifi(l WifiListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.wifi {
		if existing == l {
			return
		}
	}
	d.wifi = append(d.wifi, l)
}

func (d *Dispatcher) UnregisterWifi(l WifiListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.wifi {
		if existing == l {
			d.wifi = append(d.wifi[:i:i], d.wifi[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher) HasWifiListeners() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.wifi) > 0
}

func (d *Dispatcher) cellularListeners() []CellularListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]CellularListener(nil), d.cellular...)
}

func (d *Dispatcher) wifiListeners() []WifiListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]WifiListener(nil), d.wifi...)
}

// PublishCellularGroup delivers one scan snapshot. Each listener first gets
// every record through its per-protocol method, in order, and then the whole
// group through OnCellularBatch. Empty groups are dropped.
func (d *Dispatcher) PublishCellularGroup(group []CellularRecordWrapper) {
	if len(group) == 0 {
		return
	}
	for _, l := range d.cellularListeners() {
		for _, w := range group {
			deliver(l, w)
		}
		l.OnCellularBatch(group)
	}
}

func deliver(l CellularListener, w CellularRecordWrapper) {
	switch r := w.Record.(type) {
	case GsmRecord:
		l.OnGsmSurveyRecord(r)
	case CdmaRecord:
		l.OnCdmaSurveyRecord(r)
	case UmtsRecord:
		l.OnUmtsSurveyRecord(r)
	case LteRecord:
		l.OnLteSurveyRecord(r)
	case NrRecord:
		l.OnNrSurveyRecord(r)
	default:
		glog.Warningf("not delivering %T: not a cellular record", w.Record)
	}
}

// PublishNetworkType is delivered to every listener even when the values are
// the same as last time.
func (d *Dispatcher) PublishNetworkType(dataNetworkType, voiceNetworkType string) {
	for _, l := range d.cellularListeners() {
		l.OnNetworkType(dataNetworkType, voiceNetworkType)
	}
}

func (d *Dispatcher) PublishWifiBeacons(beacons []WifiBeacon) {
	if len(beacons) == 0 {
		return
	}
	for _, l := range d.wifiListeners() {
		l.OnWifiBeaconSurveyRecords(beacons)
	}
}
