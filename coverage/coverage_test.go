package coverage

import (
	"context"
	"database/sql"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/tranzmatt/android-network-survey/export"
	"github.com/tranzmatt/android-network-survey/survey"

	// Blind import support for sqlite3 used by the SQL exporter.
	_ "github.com/mattn/go-sqlite3"
)

func TestGetColor(t *testing.T) {
	tests := []struct {
		lvl  uint16
		want color.RGBA
	}{
		{0, color.RGBA{0, 0, 0, 255}},
		{math.MaxUint16, color.RGBA{255, 255, 255, 255}},
		{math.MaxUint16 / 2, color.RGBA{0, 255, 0, 255}},
		{math.MaxUint16 / 12, color.RGBA{0, 0, 127, 255}},
	}
	for _, tc := range tests {
		if got := GetColor(tc.lvl); got != tc.want {
			t.Errorf("GetColor(%d) = %v, want %v", tc.lvl, got, tc.want)
		}
	}
}

func TestSignalLevel(t *testing.T) {
	tests := []struct {
		name          string
		dbm, min, max float32
		want          uint16
	}{
		{"min", -90, -90, -30, 0},
		{"below min", -100, -90, -30, 0},
		{"max", -30, -90, -30, math.MaxUint16},
		{"above max", -10, -90, -30, math.MaxUint16},
		{"middle", -60, -90, -30, math.MaxUint16 / 2},
		{"degenerate", -60, -60, -60, math.MaxUint16},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SignalLevel(tc.dbm, tc.min, tc.max); got != tc.want {
				t.Errorf("SignalLevel(%v, %v, %v) = %d, want %d", tc.dbm, tc.min, tc.max, got, tc.want)
			}
		})
	}
}

func beacon(ssid string, lat, lon float64, signal *float32) survey.Record {
	return survey.NewWifiBeaconBuilder().
		SSID(ssid).
		BSSID("aa:bb:cc:dd:ee:ff").
		Geom(survey.Point{Lat: lat, Lon: lon}.WKT()).
		SignalStrength(signal).
		Build()
}

func surveyDB(t *testing.T, records ...survey.Record) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ch := make(chan survey.Record, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)
	if err := (&export.SQL{DB: db, Dialect: export.DialectSQLite}).Write(context.Background(), ch); err != nil {
		t.Fatalf("storing records: %v", err)
	}
	return db
}

func TestRender(t *testing.T) {
	db := surveyDB(t,
		beacon("corp", 47.0, 8.0, survey.Ptr(float32(-90))),
		beacon("corp", 47.0, 8.0, survey.Ptr(float32(-95))),
		beacon("corp", 47.1, 8.1, survey.Ptr(float32(-30))),
		beacon("corp", 47.05, 8.05, nil),
		beacon("home", 47.2, 8.2, survey.Ptr(float32(-20))),
	)

	res, err := Render(db, &RenderRequest{
		Filter: &FilterOptions{SSID: "corp", MinSignal: -200},
		Image:  &ImageOptions{Width: 10, Height: 10},
	})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	if res.SourceMeta.Samples != 3 {
		t.Errorf("Samples = %d, want 3", res.SourceMeta.Samples)
	}
	if res.SourceMeta.MinSignal != -95 || res.SourceMeta.MaxSignal != -30 {
		t.Errorf("signal range = [%v, %v], want [-95, -30]", res.SourceMeta.MinSignal, res.SourceMeta.MaxSignal)
	}
	want := Bounds{MinLat: 47.0, MaxLat: 47.1, MinLon: 8.0, MaxLon: 8.1}
	if res.SourceMeta.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", res.SourceMeta.Bounds, want)
	}

	img := res.Image.(*image.RGBA)
	if got := img.Bounds(); got != image.Rect(0, 0, 10, 10) {
		t.Fatalf("image bounds = %v", got)
	}
	// South west holds the strongest of the two weak samples, north east the strong one.
	wantSW := GetColor(SignalLevel(-90, -95, -30))
	if got := img.RGBAAt(0, 9); got != wantSW {
		t.Errorf("south west pixel = %v, want %v", got, wantSW)
	}
	if got := img.RGBAAt(9, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("north east pixel = %v, want white", got)
	}
	if got := img.RGBAAt(5, 5); got != (color.RGBA{}) {
		t.Errorf("empty pixel = %v, want transparent", got)
	}
}

func TestRenderGrid(t *testing.T) {
	db := surveyDB(t,
		beacon("a", 47.0, 8.0, survey.Ptr(float32(-90))),
		beacon("a", 47.1, 8.1, survey.Ptr(float32(-30))),
	)
	res, err := Render(db, &RenderRequest{Image: &ImageOptions{Width: 300, Height: 100, AddGrid: true}})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if got, want := res.Image.Bounds(), image.Rect(0, 0, 300+gridMarginLeft, 100+gridMarginTop); got != want {
		t.Errorf("grid image bounds = %v, want %v", got, want)
	}
	// The heatmap is shifted by the margins.
	img := res.Image.(*image.RGBA)
	if got := img.RGBAAt(gridMarginLeft+299, gridMarginTop); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("north east pixel = %v, want white", got)
	}
}

func TestRenderNoSamples(t *testing.T) {
	db := surveyDB(t, beacon("a", 47.0, 8.0, nil))
	if _, err := Render(db, &RenderRequest{Image: &ImageOptions{Width: 10, Height: 10}}); err == nil {
		t.Errorf("Render() without samples succeeded")
	}
	if _, err := Render(db, &RenderRequest{Image: &ImageOptions{}}); err == nil {
		t.Errorf("Render() with an empty image succeeded")
	}
}

func TestFindGridStepSize(t *testing.T) {
	tests := []struct {
		step       int
		horizontal bool
		want       int
	}{
		{640, true, 160},
		{100, true, 100},
		{480, false, 30},
		{10, false, 10},
	}
	for _, tc := range tests {
		if got := findGridStepSize(tc.step, tc.horizontal); got != tc.want {
			t.Errorf("findGridStepSize(%d, %t) = %d, want %d", tc.step, tc.horizontal, got, tc.want)
		}
	}
}
