package export

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/tranzmatt/android-network-survey/survey"
)

// CSV writes records as CSV to Out (stdout when nil). Every row starts with
// the message type; a header row is written the first time a message type
// shows up.
type CSV struct {
	Out io.Writer
}

func (c *CSV) Write(ctx context.Context, records <-chan survey.Record) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	w := csv.NewWriter(out)
	seen := map[string]bool{}

	for r := range records {
		fields := r.Fields()
		if !seen[r.MessageType()] {
			seen[r.MessageType()] = true
			header := make([]string, 0, len(fields)+1)
			header = append(header, "messageType")
			for _, f := range fields {
				header = append(header, f.Name)
			}
			if err := w.Write(header); err != nil {
				glog.Warningf("error while writing CSV header: %s\n", err)
			}
		}

		row := make([]string, 0, len(fields)+1)
		row = append(row, r.MessageType())
		for _, f := range fields {
			row = append(row, f.Text())
		}
		if err := w.Write(row); err != nil {
			glog.Warningf("error while writing CSV line: %s\n", err)
		}

		w.Flush()
		if err := w.Error(); err != nil {
			glog.Warningf("error flushing CSV: %s\n", err)
		}
	}
	return nil
}
