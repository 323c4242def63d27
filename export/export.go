package export

import (
	"context"

	"github.com/tranzmatt/android-network-survey/survey"
)

// countInfoInterval is how often (in records) exporters log their counts.
const countInfoInterval = 1000

type Exporter interface {
	// Write exports records until the channel is closed.
	Write(context.Context, <-chan survey.Record) error
}

func newCounts() map[string]int {
	return map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
}
