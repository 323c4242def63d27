package survey

// CellularListener is notified when new cellular survey records are ready.
//
// Records are delivered twice: once per record through the per-protocol
// methods and once as a group through OnCellularBatch. A listener should
// consume one of the two and leave the other as a no-op, otherwise it will
// see every record twice. Embed NopCellularListener to get no-op defaults.
type CellularListener interface {
	OnGsmSurveyRecord(GsmRecord)
	OnCdmaSurveyRecord(CdmaRecord)
	OnUmtsSurveyRecord(UmtsRecord)
	OnLteSurveyRecord(LteRecord)
	OnNrSurveyRecord(NrRecord)

	// OnCellularBatch receives the full group of records seen in one
	// snapshot of the visible towers. All records share a group number.
	OnCellularBatch(group []CellularRecordWrapper)

	// OnNetworkType reports the current data and voice network types (e.g.
	// "LTE"). It is called even when neither value changed.
	OnNetworkType(dataNetworkType, voiceNetworkType string)
}

// NopCellularListener implements CellularListener with empty methods.
type NopCellularListener struct{}

func (NopCellularListener) OnGsmSurveyRecord(GsmRecord)                            {}
func (NopCellularListener) OnCdmaSurveyRecord(CdmaRecord)                          {}
func (NopCellularListener) OnUmtsSurveyRecord(UmtsRecord)                          {}
func (NopCellularListener) OnLteSurveyRecord(LteRecord)                            {}
func (NopCellularListener) OnNrSurveyRecord(NrRecord)                              {}
func (NopCellularListener) OnCellularBatch([]CellularRecordWrapper)                {}
func (NopCellularListener) OnNetworkType(dataNetworkType, voiceNetworkType string) {}

// WifiListener is notified with every WiFi scan result.
type WifiListener interface {
	OnWifiBeaconSurveyRecords(beacons []WifiBeacon)
}

// ChannelSink forwards every record it receives to Records. It consumes the
// per-record callbacks, so its batch callback is a no-op.
type ChannelSink struct {
	NopCellularListener

	Records chan<- Record
}

func (c *ChannelSink) OnGsmSurveyRecord(r GsmRecord)   { c.Records <- r }
func (c *ChannelSink) OnCdmaSurveyRecord(r CdmaRecord) { c.Records <- r }
func (c *ChannelSink) OnUmtsSurveyRecord(r UmtsRecord) { c.Records <- r }
func (c *ChannelSink) OnLteSurveyRecord(r LteRecord)   { c.Records <- r }
func (c *ChannelSink) OnNrSurveyRecord(r NrRecord)     { c.Records <- r }

func (c *ChannelSink) OnWifiBeaconSurveyRecords(beacons []WifiBeacon) {
	for _, b := range beacons {
		c.Records <- b
	}
}
