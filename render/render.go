package main

/*
This application renders WiFi coverage heatmaps from survey data
collected into sqlite.

Every pixel shows the strongest beacon heard there; the image spans
the bounding box of the selected samples with north up.
*/

import (
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/golang/glog"

	"github.com/tranzmatt/android-network-survey/config"
	"github.com/tranzmatt/android-network-survey/coverage"
	"github.com/tranzmatt/android-network-survey/display"
	"github.com/tranzmatt/android-network-survey/export"

	// Blind import support for sqlite3 used by the coverage queries.
	_ "github.com/mattn/go-sqlite3"
)

// Flags
var (
	sqliteFile = flag.String("sqliteFile", config.DefaultSQLiteFile, "File path of the sqlite DB file to use.")
	ssid       = flag.String("ssid", "%", "Select beacons whose SSID matches this SQL LIKE pattern.")
	bssid      = flag.String("bssid", "%", "Select beacons whose BSSID matches this SQL LIKE pattern.")
	minSignal  = flag.Float64("minSignal", -200, "Select beacons at least this strong (dBm).")
	imgPath    = flag.String("imgPath", "/tmp/coverage.png", "Path where the rendered image should be written to (.png or .jpg).")
	imgWidth   = flag.Int("imgWidth", 640, "Width of output image in pixels.")
	imgHeight  = flag.Int("imgHeight", 480, "Height of output image in pixels.")
	addGrid    = flag.Bool("addGrid", true, "Label the image with latitude and longitude.")
)

func writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".png"):
		err = png.Encode(f, img)
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpeg.DefaultQuality})
	default:
		err = fmt.Errorf("unsupported image type %q, use .png or .jpg", path)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func main() {
	// Set defaults for glog flags. Can be overridden via cmdline.
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	// Parse flags globally.
	flag.Parse()

	db, err := export.OpenSQLite(*sqliteFile)
	if err != nil {
		glog.Exit(err)
	}
	defer db.Close()

	res, err := coverage.Render(db, &coverage.RenderRequest{
		Filter: &coverage.FilterOptions{
			SSID:      *ssid,
			BSSID:     *bssid,
			MinSignal: float32(*minSignal),
		},
		Image: &coverage.ImageOptions{
			Width:   *imgWidth,
			Height:  *imgHeight,
			AddGrid: *addGrid,
		},
	})
	if err != nil {
		glog.Exit(err)
	}

	b := res.SourceMeta.Bounds
	fmt.Println("Selected source metadata:")
	fmt.Printf("  - Samples: %d\n", res.SourceMeta.Samples)
	fmt.Printf("  - North west: %s\n", display.LocationShareStrings(display.DMS(b.MaxLat, display.Latitude), display.DMS(b.MinLon, display.Longitude), ""))
	fmt.Printf("  - South east: %s\n", display.LocationShareStrings(display.DMS(b.MinLat, display.Latitude), display.DMS(b.MaxLon, display.Longitude), ""))
	fmt.Printf("  - Signal: %.1f dBm to %.1f dBm\n", res.SourceMeta.MinSignal, res.SourceMeta.MaxSignal)
	fmt.Printf("Rendered image (%d x %d), %g° x %g° per pixel\n", res.ImageMeta.ImageWidth, res.ImageMeta.ImageHeight, res.ImageMeta.DegPerPixelLon, res.ImageMeta.DegPerPixelLat)

	fmt.Printf("Writing image to %q\n", *imgPath)
	if err := writeImage(*imgPath, res.Image); err != nil {
		glog.Exitf("unable to write image %q: %s", *imgPath, err)
	}

	glog.Flush()
}
