package survey

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownMessageType is returned when an envelope names a record type this
// package does not know about.
var ErrUnknownMessageType = errors.New("unknown message type")

// Record is a survey record that can be exported.
type Record interface {
	// MessageType names the record type, e.g. "LteRecord". Exporters use it
	// as the table name.
	MessageType() string
	// Fields returns the exported columns in a stable order.
	Fields() []Field
}

type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindText
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Field is one exported column of a Record. A nil Value is a null.
type Field struct {
	Name  string
	Kind  Kind
	Value any
}

// Text renders the value the way the CSV exporter writes it. Nulls are empty.
func (f Field) Text() string {
	switch v := f.Value.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	}
	return fmt.Sprintf("%v", f.Value)
}

// Envelope carries a record of any type over JSON.
type Envelope struct {
	MessageType string          `json:"messageType"`
	Data        json.RawMessage `json:"data"`
}

// Wrap encodes r into an Envelope.
func Wrap(r Record) (Envelope, error) {
	var v any
	switch rec := r.(type) {
	case WifiBeacon:
		v = rec.toJSON()
	default:
		v = r
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", r.MessageType(), err)
	}
	return Envelope{MessageType: r.MessageType(), Data: data}, nil
}

// Decode returns the record held by the envelope.
func (e Envelope) Decode() (Record, error) {
	switch e.MessageType {
	case WifiBeaconMessageType:
		var j wifiBeaconJSON
		if err := json.Unmarshal(e.Data, &j); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", e.MessageType, err)
		}
		return j.build(), nil
	case GsmMessageType:
		return decodeInto[GsmRecord](e)
	case CdmaMessageType:
		return decodeInto[CdmaRecord](e)
	case UmtsMessageType:
		return decodeInto[UmtsRecord](e)
	case LteMessageType:
		return decodeInto[LteRecord](e)
	case NrMessageType:
		return decodeInto[NrRecord](e)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, e.MessageType)
}

func decodeInto[T Record](e Envelope) (Record, error) {
	var r T
	if err := json.Unmarshal(e.Data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", e.MessageType, err)
	}
	return r, nil
}

// Point is a WGS84 position.
type Point struct {
	Lat float64
	Lon float64
}

// WKT serializes the point the way the geometry column stores it.
func (p Point) WKT() string {
	return fmt.Sprintf("POINT(%s %s)",
		strconv.FormatFloat(p.Lon, 'f', -1, 64),
		strconv.FormatFloat(p.Lat, 'f', -1, 64))
}

// ParsePoint parses a "POINT(lon lat)" geometry string.
func ParsePoint(s string) (Point, error) {
	body, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(s)), "POINT")
	if !ok {
		return Point{}, fmt.Errorf("not a point geometry: %q", s)
	}
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return Point{}, fmt.Errorf("malformed point geometry: %q", s)
	}
	parts := strings.Fields(body[1 : len(body)-1])
	if len(parts) < 2 {
		return Point{}, fmt.Errorf("point geometry needs two coordinates: %q", s)
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Point{}, fmt.Errorf("point longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Point{}, fmt.Errorf("point latitude: %w", err)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// Ptr returns a pointer to v, for setting nullable attributes.
func Ptr[T any](v T) *T {
	return &v
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func boolValue(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func float32Value(p *float32) any {
	if p == nil {
		return nil
	}
	return *p
}

func int32Value(p *int32) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}
