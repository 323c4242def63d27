package survey

import (
	"fmt"
	"time"
)

const (
	GsmMessageType  = "GsmRecord"
	CdmaMessageType = "CdmaRecord"
	UmtsMessageType = "UmtsRecord"
	LteMessageType  = "LteRecord"
	NrMessageType   = "NrRecord"
)

// Technology is a cellular radio access technology.
type Technology int

const (
	TechnologyUnknown Technology = iota
	TechnologyGSM
	TechnologyCDMA
	TechnologyUMTS
	TechnologyLTE
	TechnologyNR
)

func (t Technology) String() string {
	switch t {
	case TechnologyGSM:
		return "GSM"
	case TechnologyCDMA:
		return "CDMA"
	case TechnologyUMTS:
		return "UMTS"
	case TechnologyLTE:
		return "LTE"
	case TechnologyNR:
		return "NR"
	}
	return "Unknown"
}

// ParseTechnology is the inverse of Technology.String, case sensitive.
func ParseTechnology(s string) (Technology, error) {
	for _, t := range []Technology{TechnologyGSM, TechnologyCDMA, TechnologyUMTS, TechnologyLTE, TechnologyNR} {
		if t.String() == s {
			return t, nil
		}
	}
	return TechnologyUnknown, fmt.Errorf("unknown cellular technology %q", s)
}

// CellularMeta holds the attributes shared by every cellular record.
type CellularMeta struct {
	DeviceSerialNumber string    `json:"deviceSerialNumber"`
	DeviceName         string    `json:"deviceName,omitempty"`
	DeviceTime         time.Time `json:"deviceTime"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Altitude           float32   `json:"altitude"`
	Accuracy           int32     `json:"accuracy,omitempty"`
	MissionID          string    `json:"missionId,omitempty"`
	RecordNumber       int32     `json:"recordNumber"`
	GroupNumber        int32     `json:"groupNumber"`
}

func (m CellularMeta) fields() []Field {
	return []Field{
		{Name: "device_serial_number", Kind: KindText, Value: m.DeviceSerialNumber},
		{Name: "device_name", Kind: KindText, Value: m.DeviceName},
		{Name: "device_time", Kind: KindInteger, Value: m.DeviceTime.UnixMilli()},
		{Name: "geom", Kind: KindText, Value: Point{Lat: m.Latitude, Lon: m.Longitude}.WKT()},
		{Name: "altitude", Kind: KindReal, Value: m.Altitude},
		{Name: "accuracy", Kind: KindInteger, Value: int64(m.Accuracy)},
		{Name: "mission_id", Kind: KindText, Value: m.MissionID},
		{Name: "record_number", Kind: KindInteger, Value: int64(m.RecordNumber)},
		{Name: "group_number", Kind: KindInteger, Value: int64(m.GroupNumber)},
	}
}

type GsmRecord struct {
	CellularMeta
	MCC            *int32   `json:"mcc,omitempty"`
	MNC            *int32   `json:"mnc,omitempty"`
	LAC            *int32   `json:"lac,omitempty"`
	CI             *int32   `json:"ci,omitempty"`
	ARFCN          *int32   `json:"arfcn,omitempty"`
	BSIC           *int32   `json:"bsic,omitempty"`
	SignalStrength *float32 `json:"signalStrength,omitempty"`
	TA             *int32   `json:"ta,omitempty"`
	ServingCell    *bool    `json:"servingCell,omitempty"`
	Provider       string   `json:"provider,omitempty"`
}

func (r GsmRecord) MessageType() string { return GsmMessageType }

func (r GsmRecord) Fields() []Field {
	return append(r.CellularMeta.fields(),
		Field{Name: "mcc", Kind: KindInteger, Value: int32Value(r.MCC)},
		Field{Name: "mnc", Kind: KindInteger, Value: int32Value(r.MNC)},
		Field{Name: "lac", Kind: KindInteger, Value: int32Value(r.LAC)},
		Field{Name: "ci", Kind: KindInteger, Value: int32Value(r.CI)},
		Field{Name: "arfcn", Kind: KindInteger, Value: int32Value(r.ARFCN)},
		Field{Name: "bsic", Kind: KindInteger, Value: int32Value(r.BSIC)},
		Field{Name: "signal_strength", Kind: KindReal, Value: float32Value(r.SignalStrength)},
		Field{Name: "ta", Kind: KindInteger, Value: int32Value(r.TA)},
		Field{Name: "serving_cell", Kind: KindBool, Value: boolValue(r.ServingCell)},
		Field{Name: "provider", Kind: KindText, Value: r.Provider},
	)
}

type CdmaRecord struct {
	CellularMeta
	SID            *int32   `json:"sid,omitempty"`
	NID            *int32   `json:"nid,omitempty"`
	Zone           *int32   `json:"zone,omitempty"`
	BSID           *int32   `json:"bsid,omitempty"`
	Channel        *int32   `json:"channel,omitempty"`
	PNOffset       *int32   `json:"pnOffset,omitempty"`
	SignalStrength *float32 `json:"signalStrength,omitempty"`
	EcIo           *float32 `json:"ecio,omitempty"`
	ServingCell    *bool    `json:"servingCell,omitempty"`
	Provider       string   `json:"provider,omitempty"`
}

func (r CdmaRecord) MessageType() string { return CdmaMessageType }

func (r CdmaRecord) Fields() []Field {
	return append(r.CellularMeta.fields(),
		Field{Name: "sid", Kind: KindInteger, Value: int32Value(r.SID)},
		Field{Name: "nid", Kind: KindInteger, Value: int32Value(r.NID)},
		Field{Name: "zone", Kind: KindInteger, Value: int32Value(r.Zone)},
		Field{Name: "bsid", Kind: KindInteger, Value: int32Value(r.BSID)},
		Field{Name: "channel", Kind: KindInteger, Value: int32Value(r.Channel)},
		Field{Name: "pn_offset", Kind: KindInteger, Value: int32Value(r.PNOffset)},
		Field{Name: "signal_strength", Kind: KindReal, Value: float32Value(r.SignalStrength)},
		Field{Name: "ecio", Kind: KindReal, Value: float32Value(r.EcIo)},
		Field{Name: "serving_cell", Kind: KindBool, Value: boolValue(r.ServingCell)},
		Field{Name: "provider", Kind: KindText, Value: r.Provider},
	)
}

type UmtsRecord struct {
	CellularMeta
	MCC            *int32   `json:"mcc,omitempty"`
	MNC            *int32   `json:"mnc,omitempty"`
	LAC            *int32   `json:"lac,omitempty"`
	CID            *int32   `json:"cid,omitempty"`
	UARFCN         *int32   `json:"uarfcn,omitempty"`
	PSC            *int32   `json:"psc,omitempty"`
	RSCP           *float32 `json:"rscp,omitempty"`
	EcNo           *float32 `json:"ecno,omitempty"`
	SignalStrength *float32 `json:"signalStrength,omitempty"`
	ServingCell    *bool    `json:"servingCell,omitempty"`
	Provider       string   `json:"provider,omitempty"`
}

func (r UmtsRecord) MessageType() string { return UmtsMessageType }

func (r UmtsRecord) Fields() []Field {
	return append(r.CellularMeta.fields(),
		Field{Name: "mcc", Kind: KindInteger, Value: int32Value(r.MCC)},
		Field{Name: "mnc", Kind: KindInteger, Value: int32Value(r.MNC)},
		Field{Name: "lac", Kind: KindInteger, Value: int32Value(r.LAC)},
		Field{Name: "cid", Kind: KindInteger, Value: int32Value(r.CID)},
		Field{Name: "uarfcn", Kind: KindInteger, Value: int32Value(r.UARFCN)},
		Field{Name: "psc", Kind: KindInteger, Value: int32Value(r.PSC)},
		Field{Name: "rscp", Kind: KindReal, Value: float32Value(r.RSCP)},
		Field{Name: "ecno", Kind: KindReal, Value: float32Value(r.EcNo)},
		Field{Name: "signal_strength", Kind: KindReal, Value: float32Value(r.SignalStrength)},
		Field{Name: "serving_cell", Kind: KindBool, Value: boolValue(r.ServingCell)},
		Field{Name: "provider", Kind: KindText, Value: r.Provider},
	)
}

type LteRecord struct {
	CellularMeta
	MCC            *int32   `json:"mcc,omitempty"`
	MNC            *int32   `json:"mnc,omitempty"`
	TAC            *int32   `json:"tac,omitempty"`
	ECI            *int32   `json:"eci,omitempty"`
	EARFCN         *int32   `json:"earfcn,omitempty"`
	PCI            *int32   `json:"pci,omitempty"`
	RSRP           *float32 `json:"rsrp,omitempty"`
	RSRQ           *float32 `json:"rsrq,omitempty"`
	SNR            *float32 `json:"snr,omitempty"`
	TA             *int32   `json:"ta,omitempty"`
	CQI            *int32   `json:"cqi,omitempty"`
	Bandwidth      string   `json:"lteBandwidth,omitempty"`
	ServingCell    *bool    `json:"servingCell,omitempty"`
	Provider       string   `json:"provider,omitempty"`
	SignalStrength *float32 `json:"signalStrength,omitempty"`
}

func (r LteRecord) MessageType() string { return LteMessageType }

func (r LteRecord) Fields() []Field {
	return append(r.CellularMeta.fields(),
		Field{Name: "mcc", Kind: KindInteger, Value: int32Value(r.MCC)},
		Field{Name: "mnc", Kind: KindInteger, Value: int32Value(r.MNC)},
		Field{Name: "tac", Kind: KindInteger, Value: int32Value(r.TAC)},
		Field{Name: "eci", Kind: KindInteger, Value: int32Value(r.ECI)},
		Field{Name: "earfcn", Kind: KindInteger, Value: int32Value(r.EARFCN)},
		Field{Name: "pci", Kind: KindInteger, Value: int32Value(r.PCI)},
		Field{Name: "rsrp", Kind: KindReal, Value: float32Value(r.RSRP)},
		Field{Name: "rsrq", Kind: KindReal, Value: float32Value(r.RSRQ)},
		Field{Name: "snr", Kind: KindReal, Value: float32Value(r.SNR)},
		Field{Name: "ta", Kind: KindInteger, Value: int32Value(r.TA)},
		Field{Name: "cqi", Kind: KindInteger, Value: int32Value(r.CQI)},
		Field{Name: "lte_bandwidth", Kind: KindText, Value: r.Bandwidth},
		Field{Name: "serving_cell", Kind: KindBool, Value: boolValue(r.ServingCell)},
		Field{Name: "provider", Kind: KindText, Value: r.Provider},
		Field{Name: "signal_strength", Kind: KindReal, Value: float32Value(r.SignalStrength)},
	)
}

type NrRecord struct {
	CellularMeta
	MCC         *int32   `json:"mcc,omitempty"`
	MNC         *int32   `json:"mnc,omitempty"`
	TAC         *int32   `json:"tac,omitempty"`
	NCI         *int64   `json:"nci,omitempty"`
	NARFCN      *int32   `json:"narfcn,omitempty"`
	PCI         *int32   `json:"pci,omitempty"`
	SSRSRP      *float32 `json:"ssRsrp,omitempty"`
	SSRSRQ      *float32 `json:"ssRsrq,omitempty"`
	SSSINR      *float32 `json:"ssSinr,omitempty"`
	CSIRSRP     *float32 `json:"csiRsrp,omitempty"`
	CSIRSRQ     *float32 `json:"csiRsrq,omitempty"`
	CSISINR     *float32 `json:"csiSinr,omitempty"`
	TA          *int32   `json:"ta,omitempty"`
	ServingCell *bool    `json:"servingCell,omitempty"`
	Provider    string   `json:"provider,omitempty"`
}

func (r NrRecord) MessageType() string { return NrMessageType }

func (r NrRecord) Fields() []Field {
	var nci any
	if r.NCI != nil {
		nci = *r.NCI
	}
	return append(r.CellularMeta.fields(),
		Field{Name: "mcc", Kind: KindInteger, Value: int32Value(r.MCC)},
		Field{Name: "mnc", Kind: KindInteger, Value: int32Value(r.MNC)},
		Field{Name: "tac", Kind: KindInteger, Value: int32Value(r.TAC)},
		Field{Name: "nci", Kind: KindInteger, Value: nci},
		Field{Name: "narfcn", Kind: KindInteger, Value: int32Value(r.NARFCN)},
		Field{Name: "pci", Kind: KindInteger, Value: int32Value(r.PCI)},
		Field{Name: "ss_rsrp", Kind: KindReal, Value: float32Value(r.SSRSRP)},
		Field{Name: "ss_rsrq", Kind: KindReal, Value: float32Value(r.SSRSRQ)},
		Field{Name: "ss_sinr", Kind: KindReal, Value: float32Value(r.SSSINR)},
		Field{Name: "csi_rsrp", Kind: KindReal, Value: float32Value(r.CSIRSRP)},
		Field{Name: "csi_rsrq", Kind: KindReal, Value: float32Value(r.CSIRSRQ)},
		Field{Name: "csi_sinr", Kind: KindReal, Value: float32Value(r.CSISINR)},
		Field{Name: "ta", Kind: KindInteger, Value: int32Value(r.TA)},
		Field{Name: "serving_cell", Kind: KindBool, Value: boolValue(r.ServingCell)},
		Field{Name: "provider", Kind: KindText, Value: r.Provider},
	)
}

// CellularRecordWrapper pairs a cellular record with its technology so a
// batch can carry records of different types.
type CellularRecordWrapper struct {
	Technology Technology
	Record     Record
}

// Wrapped returns the wrapper for a cellular record. Records that are not
// cellular come back with TechnologyUnknown.
func Wrapped(r Record) CellularRecordWrapper {
	w := CellularRecordWrapper{Record: r}
	switch r.(type) {
	case GsmRecord:
		w.Technology = TechnologyGSM
	case CdmaRecord:
		w.Technology = TechnologyCDMA
	case UmtsRecord:
		w.Technology = TechnologyUMTS
	case LteRecord:
		w.Technology = TechnologyLTE
	case NrRecord:
		w.Technology = TechnologyNR
	}
	return w
}

// GroupNumber returns the scan group the wrapped record belongs to, or -1 for
// records without one.
func (w CellularRecordWrapper) GroupNumber() int32 {
	switch r := w.Record.(type) {
	case GsmRecord:
		return r.GroupNumber
	case CdmaRecord:
		return r.GroupNumber
	case UmtsRecord:
		return r.GroupNumber
	case LteRecord:
		return r.GroupNumber
	case NrRecord:
		return r.GroupNumber
	}
	return -1
}

var networkTypeNames = map[int]string{
	1:  "GPRS",
	2:  "EDGE",
	3:  "UMTS",
	4:  "CDMA",
	5:  "EVDO_0",
	6:  "EVDO_A",
	7:  "1xRTT",
	8:  "HSDPA",
	9:  "HSUPA",
	10: "HSPA",
	11: "iDen",
	12: "EVDO_B",
	13: "LTE",
	14: "eHRPD",
	15: "HSPA+",
	16: "GSM",
	17: "TD_SCDMA",
	18: "IWLAN",
	20: "NR",
}

// NetworkTypeName maps an Android telephony network type code to the name
// delivered through OnNetworkType.
func NetworkTypeName(code int) string {
	if name, ok := networkTypeNames[code]; ok {
		return name
	}
	return "Unknown"
}
