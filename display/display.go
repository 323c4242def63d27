// Package display converts raw survey values (signal quality, coordinates,
// distances, speeds) into the pixel and text values shown to a user.
//
// Everything here is a pure function except ValidLocation and ResolveTitle,
// which report failures through a Notifier or the log.
package display

import (
	"fmt"
	"time"
)

// Signal quality ranges covered by the GNSS signal meters.
const (
	// MinValueSNR and MaxValueSNR bound the signal-to-noise ratio in dB.
	MinValueSNR float32 = 0
	MaxValueSNR float32 = 30
	// MinValueCN0 and MaxValueCN0 bound the carrier-to-noise density in dB-Hz.
	MinValueCN0 float32 = 10
	MaxValueCN0 float32 = 45
)

// DpToPixels converts density-independent pixels to pixels for a screen with
// the given density scale.
func DpToPixels(density, dp float32) int {
	return int(dp*density + 0.5)
}

// MapToRange maps value linearly from [minIn, maxIn] to [minOut, maxOut].
// Values outside the input range are not clamped and extrapolate.
func MapToRange(value, minIn, maxIn, minOut, maxOut float32) float32 {
	return minOut + (value-minIn)*(maxOut-minOut)/(maxIn-minIn)
}

// SnrToIndicatorLeftMarginPx returns the left margin in pixels of the average
// SNR indicator for a meter spanning [minMarginPx, maxMarginPx].
func SnrToIndicatorLeftMarginPx(snr float32, minMarginPx, maxMarginPx int) int {
	return int(MapToRange(snr, MinValueSNR, MaxValueSNR, float32(minMarginPx), float32(maxMarginPx)))
}

// SnrToTextViewLeftMarginPx is SnrToIndicatorLeftMarginPx for the label next
// to the indicator.
func SnrToTextViewLeftMarginPx(snr float32, minMarginPx, maxMarginPx int) int {
	return int(MapToRange(snr, MinValueSNR, MaxValueSNR, float32(minMarginPx), float32(maxMarginPx)))
}

// Cn0ToIndicatorLeftMarginPx returns the left margin in pixels of the average
// C/N0 indicator for a meter spanning [minMarginPx, maxMarginPx].
func Cn0ToIndicatorLeftMarginPx(cn0 float32, minMarginPx, maxMarginPx int) int {
	return int(MapToRange(cn0, MinValueCN0, MaxValueCN0, float32(minMarginPx), float32(maxMarginPx)))
}

// Cn0ToTextViewLeftMarginPx is Cn0ToIndicatorLeftMarginPx for the label next
// to the indicator.
func Cn0ToTextViewLeftMarginPx(cn0 float32, minMarginPx, maxMarginPx int) int {
	return int(MapToRange(cn0, MinValueCN0, MaxValueCN0, float32(minMarginPx), float32(maxMarginPx)))
}

// TtffString describes a time-to-first-fix given in milliseconds, e.g.
// "38 sec". Zero means no fix yet and yields "".
func TtffString(ttffMillis int) string {
	if ttffMillis == 0 {
		return ""
	}
	secs := int64((time.Duration(ttffMillis) * time.Millisecond) / time.Second)
	return fmt.Sprintf("%d sec", secs)
}
