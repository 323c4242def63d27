package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"github.com/tranzmatt/android-network-survey/display"
	"github.com/tranzmatt/android-network-survey/export"
	"github.com/tranzmatt/android-network-survey/survey"
)

const (
	apiPrefix           = "/netsurvey/v1"
	defaultQRSize       = 256
	maxQRSize           = 2048
	unitsImperial       = "imperial"
	unitsMetric         = "metric"
	statusOK            = "ok"
	qrContentType       = "image/png"
	altitudeQueryParam  = "alt"
	latitudeQueryParam  = "lat"
	longitudeQueryParam = "lon"
)

type NetsurveyServer struct {
	records chan<- survey.Record
}

// LocationResponse is the answer of the location endpoint.
type LocationResponse struct {
	Location string                   `json:"location"`
	Format   display.CoordinateFormat `json:"format"`
	Share    string                   `json:"share"`
	Altitude string                   `json:"altitude,omitempty"`
	Speed    string                   `json:"speed,omitempty"`
}

// ValidateRequest carries coordinates as the user typed them.
type ValidateRequest struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Altitude  string `json:"altitude"`
}

// ErrorResponse mirrors the error dialog a client should show.
type ErrorResponse struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// glogMiddleware logs every request the way the rest of the tools log.
func glogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		glog.V(1).Infof("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *NetsurveyServer) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), glogMiddleware())

	v1 := r.Group(apiPrefix)
	v1.POST("/collect", s.collectHandler)
	v1.GET("/location", s.locationHandler)
	v1.POST("/location/validate", s.validateHandler)
	v1.GET("/location/qr", s.qrHandler)
	return r
}

func (s *NetsurveyServer) collectHandler(c *gin.Context) {
	envelopes := []survey.Envelope{}
	if err := c.ShouldBindJSON(&envelopes); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Title: "Invalid batch", Message: err.Error()})
		return
	}

	// Decode the whole batch first so a bad record rejects all of it.
	records := make([]survey.Record, 0, len(envelopes))
	for i, env := range envelopes {
		r, err := env.Decode()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Title: "Invalid batch", Message: fmt.Sprintf("record %d: %s", i, err)})
			return
		}
		records = append(records, r)
	}

	for _, r := range records {
		select {
		case s.records <- r:
		case <-c.Request.Context().Done():
			glog.Warningf("client went away while queueing records: %s", c.Request.Context().Err())
			return
		}
	}
	c.JSON(http.StatusOK, export.CollectResponse{Status: statusOK, RecordCount: len(records)})
}

// parseLocation reads lat, lon and the optional alt query parameters. The
// returned error response is nil when the location is valid.
func parseLocation(c *gin.Context) (display.Location, *ErrorResponse) {
	lat, lon, alt := c.Query(latitudeQueryParam), c.Query(longitudeQueryParam), c.Query(altitudeQueryParam)

	var resp *ErrorResponse
	notifier := display.NotifierFunc(func(title, message string) {
		resp = &ErrorResponse{Title: title, Message: message}
	})
	if !display.ValidLocation(notifier, nil, lat, lon, alt) {
		return display.Location{}, resp
	}

	// Validation guarantees the values parse.
	loc := display.Location{}
	loc.Latitude, _ = strconv.ParseFloat(strings.TrimSpace(lat), 64)
	loc.Longitude, _ = strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if alt != "" {
		loc.Altitude, _ = strconv.ParseFloat(strings.TrimSpace(alt), 64)
		loc.HasAltitude = true
	}
	return loc, nil
}

func (s *NetsurveyServer) locationHandler(c *gin.Context) {
	loc, errResp := parseLocation(c)
	if errResp != nil {
		c.JSON(http.StatusBadRequest, errResp)
		return
	}
	includeAltitude := c.DefaultQuery("includeAltitude", "true") == "true"
	format := display.CoordinateFormat(strings.ToLower(c.DefaultQuery("format", string(display.DecimalDegrees))))
	units := strings.ToLower(c.DefaultQuery("units", unitsMetric))

	formatted, used := display.FormatLocation(loc, includeAltitude, format)
	resp := LocationResponse{
		Location: formatted,
		Format:   used,
		Share:    display.LocationShare(loc, includeAltitude),
	}
	if loc.HasAltitude {
		if units == unitsImperial {
			resp.Altitude = fmt.Sprintf("%.1f ft", display.ToFeet(loc.Altitude))
		} else {
			resp.Altitude = fmt.Sprintf("%.1f m", loc.Altitude)
		}
	}
	if raw := c.Query("speed"); raw != "" {
		mps, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Title: "Invalid speed", Message: "Speed must be a number (meters per second)"})
			return
		}
		if units == unitsImperial {
			resp.Speed = fmt.Sprintf("%.1f mph", display.ToMilesPerHour(float32(mps)))
		} else {
			resp.Speed = fmt.Sprintf("%.1f km/h", display.ToKilometersPerHour(float32(mps)))
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *NetsurveyServer) validateHandler(c *gin.Context) {
	req := ValidateRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Title: display.InvalidLocationTitle, Message: err.Error()})
		return
	}

	var resp *ErrorResponse
	notifier := display.NotifierFunc(func(title, message string) {
		resp = &ErrorResponse{Title: title, Message: message}
	})
	if !display.ValidLocation(notifier, nil, req.Latitude, req.Longitude, req.Altitude) {
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

func (s *NetsurveyServer) qrHandler(c *gin.Context) {
	loc, errResp := parseLocation(c)
	if errResp != nil {
		c.JSON(http.StatusBadRequest, errResp)
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultQRSize)))
	if err != nil || size <= 0 || size > maxQRSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{Title: "Invalid size", Message: fmt.Sprintf("size must be between 1 and %d pixels", maxQRSize)})
		return
	}

	png, err := display.ShareQRCode(display.LocationShare(loc, true), size)
	if err != nil {
		glog.Warningf("unable to render QR code: %s", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Title: "QR code", Message: err.Error()})
		return
	}
	c.Data(http.StatusOK, qrContentType, png)
}
