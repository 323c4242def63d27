package survey

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const WifiBeaconMessageType = "WifiBeaconRecord"

// WifiBeacon is a single WiFi beacon observation. The fields are fixed once
// the record is built by a WifiBeaconBuilder.
type WifiBeacon struct {
	id             int32
	geom           string
	time           int32
	recordNumber   int32
	bssid          string
	ssid           string
	channel        int32
	frequency      int32
	cipherSuites   string
	akmSuites      string
	encryptionType string
	wps            *bool
	signalStrength *float32
}

func (w WifiBeacon) ID() int32              { return w.id }
func (w WifiBeacon) Geom() string           { return w.geom }
func (w WifiBeacon) Time() int32            { return w.time }
func (w WifiBeacon) RecordNumber() int32    { return w.recordNumber }
func (w WifiBeacon) BSSID() string          { return w.bssid }
func (w WifiBeacon) SSID() string           { return w.ssid }
func (w WifiBeacon) Channel() int32         { return w.channel }
func (w WifiBeacon) Frequency() int32       { return w.frequency }
func (w WifiBeacon) CipherSuites() string   { return w.cipherSuites }
func (w WifiBeacon) AKMSuites() string      { return w.akmSuites }
func (w WifiBeacon) EncryptionType() string { return w.encryptionType }

// WPS returns nil when the beacon did not advertise WPS information.
func (w WifiBeacon) WPS() *bool { return copyPtr(w.wps) }

// SignalStrength returns the signal strength in dBm, or nil if unknown.
func (w WifiBeacon) SignalStrength() *float32 { return copyPtr(w.signalStrength) }

// Equal reports whether every attribute of w and o compares equal. Unset
// nullable attributes only equal other unset attributes.
func (w WifiBeacon) Equal(o WifiBeacon) bool {
	return w.id == o.id &&
		w.time == o.time &&
		w.recordNumber == o.recordNumber &&
		w.channel == o.channel &&
		w.frequency == o.frequency &&
		w.geom == o.geom &&
		w.bssid == o.bssid &&
		w.ssid == o.ssid &&
		w.cipherSuites == o.cipherSuites &&
		w.akmSuites == o.akmSuites &&
		w.encryptionType == o.encryptionType &&
		ptrEqual(w.wps, o.wps) &&
		float32PtrEqual(w.signalStrength, o.signalStrength)
}

// float32Bits maps every NaN to one value so NaN equals NaN, while 0 and -0
// stay distinct.
func float32Bits(v float32) uint32 {
	if v != v {
		return 0x7fc00000
	}
	return math.Float32bits(v)
}

func float32PtrEqual(a, b *float32) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return float32Bits(*a) == float32Bits(*b)
}

// Hash returns a structural hash over all attributes. Equal records hash to
// the same value.
func (w WifiBeacon) Hash() uint64 {
	d := xxhash.New()
	var buf [4]byte
	writeInt := func(v int32) {
		binary.LittleEndian.PutUint32(buf[:], uint32(v))
		d.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(int32(len(s)))
		d.WriteString(s)
	}

	writeInt(w.id)
	writeString(w.geom)
	writeInt(w.time)
	writeInt(w.recordNumber)
	writeString(w.bssid)
	writeString(w.ssid)
	writeInt(w.channel)
	writeInt(w.frequency)
	writeString(w.cipherSuites)
	writeString(w.akmSuites)
	writeString(w.encryptionType)
	switch {
	case w.wps == nil:
		d.Write([]byte{0})
	case *w.wps:
		d.Write([]byte{1, 1})
	default:
		d.Write([]byte{1, 0})
	}
	if w.signalStrength == nil {
		d.Write([]byte{0})
	} else {
		d.Write([]byte{1})
		binary.LittleEndian.PutUint32(buf[:], float32Bits(*w.signalStrength))
		d.Write(buf[:])
	}
	return d.Sum64()
}

func (w WifiBeacon) String() string {
	var sb strings.Builder
	sb.WriteString("WifiBeacon{")
	fmt.Fprintf(&sb, "id=%d", w.id)
	fmt.Fprintf(&sb, ", geom='%s'", w.geom)
	fmt.Fprintf(&sb, ", time=%d", w.time)
	fmt.Fprintf(&sb, ", recordNumber=%d", w.recordNumber)
	fmt.Fprintf(&sb, ", bssid='%s'", w.bssid)
	fmt.Fprintf(&sb, ", ssid='%s'", w.ssid)
	fmt.Fprintf(&sb, ", channel=%d", w.channel)
	fmt.Fprintf(&sb, ", frequency=%d", w.frequency)
	fmt.Fprintf(&sb, ", cipherSuites='%s'", w.cipherSuites)
	fmt.Fprintf(&sb, ", akmSuites='%s'", w.akmSuites)
	fmt.Fprintf(&sb, ", encryptionType='%s'", w.encryptionType)
	sb.WriteString(", wps=")
	if w.wps == nil {
		sb.WriteString("null")
	} else {
		sb.WriteString(strconv.FormatBool(*w.wps))
	}
	sb.WriteString(", signalStrength=")
	if w.signalStrength == nil {
		sb.WriteString("null")
	} else {
		sb.WriteString(strconv.FormatFloat(float64(*w.signalStrength), 'f', -1, 32))
	}
	sb.WriteString("}")
	return sb.String()
}

func (w WifiBeacon) MessageType() string { return WifiBeaconMessageType }

func (w WifiBeacon) Fields() []Field {
	return []Field{
		{Name: "id", Kind: KindInteger, Value: int64(w.id)},
		{Name: "geom", Kind: KindText, Value: w.geom},
		{Name: "time", Kind: KindInteger, Value: int64(w.time)},
		{Name: "record_number", Kind: KindInteger, Value: int64(w.recordNumber)},
		{Name: "bssid", Kind: KindText, Value: w.bssid},
		{Name: "ssid", Kind: KindText, Value: w.ssid},
		{Name: "channel", Kind: KindInteger, Value: int64(w.channel)},
		{Name: "frequency_mhz", Kind: KindInteger, Value: int64(w.frequency)},
		{Name: "cipher_suites", Kind: KindText, Value: w.cipherSuites},
		{Name: "akm_suites", Kind: KindText, Value: w.akmSuites},
		{Name: "encryption_type", Kind: KindText, Value: w.encryptionType},
		{Name: "wps", Kind: KindBool, Value: boolValue(w.wps)},
		{Name: "signal_strength", Kind: KindReal, Value: float32Value(w.signalStrength)},
	}
}

// wifiBeaconJSON is the wire form used by Envelope.
type wifiBeaconJSON struct {
	ID             int32    `json:"id"`
	Geom           string   `json:"geom"`
	Time           int32    `json:"time"`
	RecordNumber   int32    `json:"recordNumber"`
	BSSID          string   `json:"bssid"`
	SSID           string   `json:"ssid"`
	Channel        int32    `json:"channel"`
	Frequency      int32    `json:"frequency"`
	CipherSuites   string   `json:"cipherSuites,omitempty"`
	AKMSuites      string   `json:"akmSuites,omitempty"`
	EncryptionType string   `json:"encryptionType,omitempty"`
	WPS            *bool    `json:"wps,omitempty"`
	SignalStrength *float32 `json:"signalStrength,omitempty"`
}

func (w WifiBeacon) toJSON() wifiBeaconJSON {
	return wifiBeaconJSON{
		ID:             w.id,
		Geom:           w.geom,
		Time:           w.time,
		RecordNumber:   w.recordNumber,
		BSSID:          w.bssid,
		SSID:           w.ssid,
		Channel:        w.channel,
		Frequency:      w.frequency,
		CipherSuites:   w.cipherSuites,
		AKMSuites:      w.akmSuites,
		EncryptionType: w.encryptionType,
		WPS:            w.wps,
		SignalStrength: w.signalStrength,
	}
}

func (j wifiBeaconJSON) build() WifiBeacon {
	return NewWifiBeaconBuilder().
		ID(j.ID).
		Geom(j.Geom).
		Time(j.Time).
		RecordNumber(j.RecordNumber).
		BSSID(j.BSSID).
		SSID(j.SSID).
		Channel(j.Channel).
		Frequency(j.Frequency).
		CipherSuites(j.CipherSuites).
		AKMSuites(j.AKMSuites).
		EncryptionType(j.EncryptionType).
		WPS(j.WPS).
		SignalStrength(j.SignalStrength).
		Build()
}

// WifiBeaconBuilder accumulates attribute values for a WifiBeacon. It is not
// safe for concurrent use.
type WifiBeaconBuilder struct {
	b WifiBeacon
}

func NewWifiBeaconBuilder() *WifiBeaconBuilder {
	return &WifiBeaconBuilder{}
}

func (b *WifiBeaconBuilder) ID(v int32) *WifiBeaconBuilder           { b.b.id = v; return b }
func (b *WifiBeaconBuilder) Geom(v string) *WifiBeaconBuilder        { b.b.geom = v; return b }
func (b *WifiBeaconBuilder) Time(v int32) *WifiBeaconBuilder         { b.b.time = v; return b }
func (b *WifiBeaconBuilder) RecordNumber(v int32) *WifiBeaconBuilder { b.b.recordNumber = v; return b }
func (b *WifiBeaconBuilder) BSSID(v string) *WifiBeaconBuilder       { b.b.bssid = v; return b }
func (b *WifiBeaconBuilder) SSID(v string) *WifiBeaconBuilder        { b.b.ssid = v; return b }
func (b *WifiBeaconBuilder) Channel(v int32) *WifiBeaconBuilder      { b.b.channel = v; return b }
func (b *WifiBeaconBuilder) Frequency(v int32) *WifiBeaconBuilder    { b.b.frequency = v; return b }
func (b *WifiBeaconBuilder) CipherSuites(v string) *WifiBeaconBuilder {
	b.b.cipherSuites = v
	return b
}
func (b *WifiBeaconBuilder) AKMSuites(v string) *WifiBeaconBuilder { b.b.akmSuites = v; return b }
func (b *WifiBeaconBuilder) EncryptionType(v string) *WifiBeaconBuilder {
	b.b.encryptionType = v
	return b
}
func (b *WifiBeaconBuilder) WPS(v *bool) *WifiBeaconBuilder { b.b.wps = copyPtr(v); return b }
func (b *WifiBeaconBuilder) SignalStrength(v *float32) *WifiBeaconBuilder {
	b.b.signalStrength = copyPtr(v)
	return b
}

// Build returns a new record holding the accumulated values. The builder can
// keep being used without affecting records it already built.
func (b *WifiBeaconBuilder) Build() WifiBeacon {
	w := b.b
	w.wps = copyPtr(b.b.wps)
	w.signalStrength = copyPtr(b.b.signalStrength)
	return w
}
