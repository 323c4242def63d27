// Package coverage renders WiFi beacon signal strength stored by the SQL
// exporter as a heatmap over the surveyed area.
package coverage

import (
	"database/sql"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/glog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/tranzmatt/android-network-survey/display"
	"github.com/tranzmatt/android-network-survey/survey"
)

var (
	// Colors defining the gradient in the heatmap. The higher the index, the warmer.
	colors = []color.RGBA{
		{0, 0, 0, 255},       // black
		{0, 0, 255, 255},     // blue
		{0, 255, 255, 255},   // cyan
		{0, 255, 0, 255},     // green
		{255, 255, 0, 255},   // yellow
		{255, 0, 0, 255},     // red
		{255, 255, 255, 255}, // white
	}

	gridColor           = color.RGBA{0, 0, 0, 255}
	gridBackgroundColor = color.RGBA{255, 255, 255, 255}
)

const (
	gridMarginTop  = 20  // pixels
	gridMarginLeft = 150 // pixels
	gridTickLen    = 10  // pixels
	gridMinStepX   = 140 // pixels, wide enough for a DMS longitude label
	gridMinStepY   = 20  // pixels

	getSamplesTmpl = `SELECT
		geom,
		signal_strength
	FROM
		%s
	WHERE
		signal_strength IS NOT NULL
		AND geom <> ''
		AND ssid LIKE ?
		AND bssid LIKE ?
		AND signal_strength >= ?;`
)

// GetColor determines the color of a pixel based on a color gradient and a pixel "level".
// http://www.andrewnoske.com/wiki/Code_-_heatmaps_and_color_gradients
func GetColor(lvl uint16) color.RGBA {
	// Find the pair of gradient colors the level falls between and blend them
	// according to how far along the level is.
	pos := float64(lvl) / math.MaxUint16 * float64(len(colors)-1)
	i := int(pos)
	if i >= len(colors)-1 {
		return colors[len(colors)-1]
	}
	fract := pos - float64(i)
	lo, hi := colors[i], colors[i+1]
	return color.RGBA{
		blend(lo.R, hi.R, fract),
		blend(lo.G, hi.G, fract),
		blend(lo.B, hi.B, fract),
		blend(lo.A, hi.A, fract),
	}
}

func blend(a, b uint8, fract float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*fract))
}

// SignalLevel maps a signal strength in dBm onto the full uint16 range used
// by GetColor. Values outside [min, max] are clamped. A degenerate range maps
// everything to the hottest level.
func SignalLevel(dbm, min, max float32) uint16 {
	if max <= min {
		return math.MaxUint16
	}
	switch {
	case dbm <= min:
		return 0
	case dbm >= max:
		return math.MaxUint16
	}
	return uint16(display.MapToRange(dbm, min, max, 0, math.MaxUint16))
}

func drawTick(canvas *image.RGBA, start image.Point, length int, horizontal bool) {
	for i := 0; i <= length; i++ {
		if horizontal {
			canvas.SetRGBA(start.X+i, start.Y, gridColor)
		} else {
			canvas.SetRGBA(start.X, start.Y+i, gridColor)
		}
	}
}

func findGridStepSize(step int, horizontal bool) int {
	gridMinStep := gridMinStepY
	if horizontal {
		gridMinStep = gridMinStepX
	}
	for step > gridMinStep {
		n := step / 2
		if n < gridMinStep {
			return step
		}
		step = n
	}
	return step
}

func drawLabel(canvas *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(gridColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

// DrawGrid enlarges source by a margin on the top and the left and labels
// the axes with longitude (top) and latitude (left) in DMS notation.
func DrawGrid(source *image.RGBA, bounds Bounds) *image.RGBA {
	width, height := source.Bounds().Dx(), source.Bounds().Dy()
	canvas := image.NewRGBA(image.Rect(0, 0, width+gridMarginLeft, height+gridMarginTop))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{gridBackgroundColor}, image.Point{}, draw.Src)
	r := canvas.Bounds()
	r.Min.X += gridMarginLeft
	r.Min.Y += gridMarginTop
	draw.Draw(canvas, r, source, source.Bounds().Min, draw.Src)

	xStep := findGridStepSize(width, true)
	for i := 0; i < width; i += xStep {
		drawTick(canvas, image.Point{gridMarginLeft + i, gridMarginTop - gridTickLen}, gridTickLen, false)
		lon := bounds.MinLon + float64(i)*(bounds.MaxLon-bounds.MinLon)/float64(width)
		drawLabel(canvas, gridMarginLeft+i+5, gridMarginTop-2, display.DMS(lon, display.Longitude))
	}

	yStep := findGridStepSize(height, false)
	for i := 0; i < height; i += yStep {
		drawTick(canvas, image.Point{gridMarginLeft - gridTickLen, gridMarginTop + i}, gridTickLen, true)
		// North is up.
		lat := bounds.MaxLat - float64(i)*(bounds.MaxLat-bounds.MinLat)/float64(height)
		drawLabel(canvas, 5, gridMarginTop+i+11, display.DMS(lat, display.Latitude))
	}

	return canvas
}

type FilterOptions struct {
	// SSID and BSSID are SQL LIKE patterns, "%" when empty.
	SSID      string
	BSSID     string
	MinSignal float32
}

type ImageOptions struct {
	Height int
	Width  int

	AddGrid bool
}

type RenderRequest struct {
	Filter *FilterOptions
	Image  *ImageOptions
}

// Bounds is the area covered by the selected samples.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

type SourceMetadata struct {
	Bounds    Bounds
	Samples   int
	MinSignal float32
	MaxSignal float32
}

type RenderMetadata struct {
	ImageHeight    int
	ImageWidth     int
	DegPerPixelLat float64
	DegPerPixelLon float64
}

type RenderResult struct {
	Image image.Image

	SourceMeta *SourceMetadata
	ImageMeta  *RenderMetadata
}

type sample struct {
	point  survey.Point
	signal float32
}

func likePattern(p string) string {
	if p == "" {
		return "%"
	}
	return p
}

func getSamples(db *sql.DB, filter *FilterOptions) ([]sample, error) {
	query := fmt.Sprintf(getSamplesTmpl, `"`+survey.WifiBeaconMessageType+`"`)
	rows, err := db.Query(query, likePattern(filter.SSID), likePattern(filter.BSSID), filter.MinSignal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []sample
	for rows.Next() {
		var geom string
		var signal float32
		if err := rows.Scan(&geom, &signal); err != nil {
			glog.Warningf("unable to get sample from DB: %s\n", err)
			continue
		}
		p, err := survey.ParsePoint(geom)
		if err != nil {
			glog.Warningf("skipping sample: %s\n", err)
			continue
		}
		samples = append(samples, sample{point: p, signal: signal})
	}
	return samples, rows.Err()
}

// project maps v from [min, max] onto a pixel index in [0, size).
func project(v, min, max float64, size int) int {
	if max <= min {
		return (size - 1) / 2
	}
	return int(math.Round(float64(display.MapToRange(float32(v-min), 0, float32(max-min), 0, float32(size-1)))))
}

// Render draws the strongest signal seen in each pixel of the surveyed area.
func Render(db *sql.DB, req *RenderRequest) (*RenderResult, error) {
	if req.Filter == nil {
		req.Filter = &FilterOptions{MinSignal: -200}
	}
	if req.Image == nil || req.Image.Width <= 0 || req.Image.Height <= 0 {
		return nil, fmt.Errorf("image size must be positive")
	}
	samples, err := getSamples(db, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("unable to query DB for samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples match the filter")
	}

	bounds := Bounds{
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		MinLon: math.Inf(1), MaxLon: math.Inf(-1),
	}
	minSignal := float32(math.Inf(1))
	maxSignal := float32(math.Inf(-1))
	for _, s := range samples {
		bounds.MinLat = math.Min(bounds.MinLat, s.point.Lat)
		bounds.MaxLat = math.Max(bounds.MaxLat, s.point.Lat)
		bounds.MinLon = math.Min(bounds.MinLon, s.point.Lon)
		bounds.MaxLon = math.Max(bounds.MaxLon, s.point.Lon)
		if s.signal < minSignal {
			minSignal = s.signal
		}
		if s.signal > maxSignal {
			maxSignal = s.signal
		}
	}

	// Keep the strongest signal per pixel.
	img := map[image.Point]float32{}
	for _, s := range samples {
		p := image.Point{
			X: project(s.point.Lon, bounds.MinLon, bounds.MaxLon, req.Image.Width),
			Y: req.Image.Height - 1 - project(s.point.Lat, bounds.MinLat, bounds.MaxLat, req.Image.Height),
		}
		if cur, ok := img[p]; !ok || s.signal > cur {
			img[p] = s.signal
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, req.Image.Width, req.Image.Height))
	for p, signal := range img {
		canvas.SetRGBA(p.X, p.Y, GetColor(SignalLevel(signal, minSignal, maxSignal)))
	}

	if req.Image.AddGrid {
		canvas = DrawGrid(canvas, bounds)
	}

	return &RenderResult{
		Image: canvas,
		SourceMeta: &SourceMetadata{
			Bounds:    bounds,
			Samples:   len(samples),
			MinSignal: minSignal,
			MaxSignal: maxSignal,
		},
		ImageMeta: &RenderMetadata{
			ImageHeight:    req.Image.Height,
			ImageWidth:     req.Image.Width,
			DegPerPixelLat: (bounds.MaxLat - bounds.MinLat) / float64(req.Image.Height),
			DegPerPixelLon: (bounds.MaxLon - bounds.MinLon) / float64(req.Image.Width),
		},
	}, nil
}
