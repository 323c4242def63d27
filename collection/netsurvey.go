package main

/*
This application surveys WiFi beacons (via `iw`) or replays recorded
cellular and WiFi survey logs, and exports the records to CSV, sqlite,
MySQL or a netsurvey collection server.
*/

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"github.com/tranzmatt/android-network-survey/config"
	"github.com/tranzmatt/android-network-survey/filter"
	"github.com/tranzmatt/android-network-survey/survey"

	// Blind import support for sqlite3 used by the sqlite exporter.
	_ "github.com/mattn/go-sqlite3"
)

// Flags
var (
	configFile = flag.String("config", "", "Path of a YAML config file. Flags set explicitly override its values.")
	identifier = flag.String("id", "", "unique identifier of source instance (defaults to a random UUID)")
	sourceType = flag.String("source", "", "Record source to use (one of: iw, replay)")
	output     = flag.String("output", "", "Export mechanism to use (one of: csv, sqlite, mysql, server)")

	// iw
	iface        = flag.String("iface", config.DefaultIWInterface, "WiFi interface to scan with.")
	scanInterval = flag.Duration("scanInterval", config.DefaultScanInterval, "Duration between two WiFi scans.")
	latitude     = flag.Float64("lat", 0, "Fixed latitude stamped into WiFi beacons (requires -lon).")
	longitude    = flag.Float64("lon", 0, "Fixed longitude stamped into WiFi beacons (requires -lat).")

	// Replay
	replayFile  = flag.String("replayFile", "", "Path of the JSON lines file to replay.")
	replayDelay = flag.Duration("replayDelay", 0, "Delay between replayed record groups.")

	// SQLite
	sqliteFile = flag.String("sqliteFile", config.DefaultSQLiteFile, "File path of the sqlite DB file to use.")

	// MySQL
	mysqlServer       = flag.String("mysqlServer", config.DefaultMySQLServer, "MySQL TCP server endpoint to connect to (IP/DNS and port).")
	mysqlUser         = flag.String("mysqlUser", "", "MySQL DB user.")
	mysqlPasswordFile = flag.String("mysqlPasswordFile", "", "Path to the file containing the password for the MySQL user.")
	mysqlDBName       = flag.String("mysqlDBName", config.DefaultMySQLDBName, "Name of the DB to use.")

	// Collection server
	server          = flag.String("server", config.DefaultServerURL, "URL scheme, address and port of the netsurvey server.")
	serverBatchSize = flag.Int("serverBatchSize", 0, "Defines how many records should be sent to the server at once.")

	// Filters
	minSignal    = flag.Float64("minSignal", 0, "Ignore WiFi beacons weaker than this (dBm). Only applied when set.")
	ssid         = flag.String("ssid", "", "Only keep WiFi beacons whose SSID matches this regular expression.")
	technologies = flag.String("technologies", "", "Comma separated list of cellular technologies to keep (e.g. LTE,NR).")
)

func main() {
	// Set defaults for glog flags. Can be overridden via cmdline.
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	// Parse flags globally.
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configFile)
	if err != nil {
		glog.Exitf("unable to load config %q: %s", *configFile, err)
	}
	applyFlags(cfg, setFlags())

	src, err := newSource(cfg)
	if err != nil {
		glog.Exit(err)
	}
	exporter, err := newExporter(cfg.Output)
	if err != nil {
		glog.Exit(err)
	}
	filters, err := newFilters(cfg.Filter)
	if err != nil {
		glog.Exit(err)
	}

	// Run
	d := survey.NewDispatcher()
	records := make(chan survey.Record, 1000)
	sink := &survey.ChannelSink{Records: records}
	d.RegisterCellular(sink)
	d.RegisterWifi(sink)

	go func() {
		defer close(records)
		glog.Infof("collecting records from %s as %q", src.Name(), cfg.Identifier)
		if err := src.Scan(ctx, d); err != nil && ctx.Err() == nil {
			glog.Errorf("%s source stopped: %s", src.Name(), err)
		}
	}()

	filtered := make(chan survey.Record, 1000)
	go func() {
		if err := filter.Filter(ctx, records, filtered, filters); err != nil {
			glog.Warningf("filtering stopped: %s", err)
		}
	}()

	if err := exporter.Write(ctx, filtered); err != nil {
		glog.Fatal(err)
	}

	glog.Flush()
}
