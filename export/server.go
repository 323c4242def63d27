package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang/glog"

	"github.com/tranzmatt/android-network-survey/survey"
)

const (
	contentType             = "application/json"
	CollectEndpoint         = "netsurvey/v1/collect"
	defaultSendRecordAmount = 100
)

// CollectResponse is what the collection server answers to a batch.
type CollectResponse struct {
	Status      string `json:"status"`
	RecordCount int    `json:"recordCount"`
}

// Server sends records to a collection server in batches of SendRecordsAmount.
// The last partial batch is sent when the channel closes.
type Server struct {
	Server            string
	SendRecordsAmount int
	Client            *http.Client
}

func (s *Server) Write(ctx context.Context, records <-chan survey.Record) error {
	sendRecordsAmount := defaultSendRecordAmount
	if s.SendRecordsAmount > 0 {
		sendRecordsAmount = s.SendRecordsAmount
	}

	var toSend []survey.Envelope
	for r := range records {
		env, err := survey.Wrap(r)
		if err != nil {
			glog.Warningf("error wrapping record: %s\n", err)
			continue
		}
		toSend = append(toSend, env)
		if len(toSend) < sendRecordsAmount {
			continue // we haven't collected enough records to send yet
		}
		s.send(ctx, toSend)
		toSend = nil
	}
	if len(toSend) > 0 {
		s.send(ctx, toSend)
	}

	return nil
}

func (s *Server) send(ctx context.Context, envelopes []survey.Envelope) {
	resp, err := s.post(ctx, envelopes)
	if err != nil {
		glog.Warningf("error POSTing %d records: %s\n", len(envelopes), err)
		return
	}
	glog.Infof("submitted %v records to server %s", resp.RecordCount, s.Server)
}

func (s *Server) post(ctx context.Context, envelopes []survey.Envelope) (*CollectResponse, error) {
	body, err := json.Marshal(envelopes)
	if err != nil {
		return nil, fmt.Errorf("marshalling records to JSON: %w", err)
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(s.Server, "/"), CollectEndpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading POST body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server answered %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	collectResponse := &CollectResponse{}
	if err := json.Unmarshal(respBody, collectResponse); err != nil {
		return nil, fmt.Errorf("decoding server response: %w", err)
	}
	return collectResponse, nil
}
