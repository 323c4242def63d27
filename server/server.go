package main

/*
This application receives survey records from netsurvey collectors and
stores them. It also serves location formatting, validation and QR
share codes for survey clients.
*/

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"github.com/tranzmatt/android-network-survey/config"
	"github.com/tranzmatt/android-network-survey/export"
	"github.com/tranzmatt/android-network-survey/survey"

	// Blind import support for sqlite3 used by the sqlite exporter.
	_ "github.com/mattn/go-sqlite3"
)

var (
	configFile = flag.String("config", "", "Path of a YAML config file. Flags set explicitly override its values.")
	listen     = flag.String("listen", config.DefaultListen, "")
	certFile   = flag.String("certFile", "", "Path of the file containing the certificate (including the chained intermediates and root) for the TLS connection.")
	keyFile    = flag.String("keyFile", "", "Path of the file containing the key for the TLS connection.")
	output     = flag.String("output", "", "Export mechanism to use (one of: csv, sqlite, mysql)")

	// SQLite
	sqliteFile = flag.String("sqliteFile", config.DefaultSQLiteFile, "File path of the sqlite DB file to use.")

	// MySQL
	mysqlServer       = flag.String("mysqlServer", config.DefaultMySQLServer, "MySQL TCP server endpoint to connect to (IP/DNS and port).")
	mysqlUser         = flag.String("mysqlUser", "", "MySQL DB user.")
	mysqlPasswordFile = flag.String("mysqlPasswordFile", "", "Path to the file containing the password for the MySQL user.")
	mysqlDBName       = flag.String("mysqlDBName", config.DefaultMySQLDBName, "Name of the DB to use.")
)

func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen.Address = *listen
		case "certFile":
			cfg.Listen.CertFile = *certFile
		case "keyFile":
			cfg.Listen.KeyFile = *keyFile
		case "output":
			cfg.Output.Type = *output
		case "sqliteFile":
			cfg.Output.SQLite.File = *sqliteFile
		case "mysqlServer":
			cfg.Output.MySQL.Server = *mysqlServer
		case "mysqlUser":
			cfg.Output.MySQL.User = *mysqlUser
		case "mysqlPasswordFile":
			cfg.Output.MySQL.PasswordFile = *mysqlPasswordFile
		case "mysqlDBName":
			cfg.Output.MySQL.DBName = *mysqlDBName
		}
	})
}

func newExporter(cfg config.OutputConfig) (export.Exporter, error) {
	switch strings.ToLower(cfg.Type) {
	case "csv":
		return &export.CSV{}, nil
	case "sqlite":
		db, err := export.OpenSQLite(cfg.SQLite.File)
		if err != nil {
			return nil, err
		}
		return &export.SQL{DB: db, Dialect: export.DialectSQLite}, nil
	case "mysql":
		db, err := export.OpenMySQL(cfg.MySQL)
		if err != nil {
			return nil, err
		}
		return &export.SQL{DB: db, Dialect: export.DialectMySQL}, nil
	}
	return nil, fmt.Errorf("%q is not a supported export method, pick one of: csv, sqlite, mysql", cfg.Type)
}

func main() {
	ctx := context.Background()
	// Set defaults for glog flags. Can be overridden via cmdline.
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	// Parse flags globally.
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		glog.Exitf("unable to load config %q: %s", *configFile, err)
	}
	applyFlags(cfg)

	// Exporter setup
	exporter, err := newExporter(cfg.Output)
	if err != nil {
		glog.Exit(err)
	}

	// Export records.
	records := make(chan survey.Record, 1000)
	go func() {
		if err := exporter.Write(ctx, records); err != nil {
			glog.Fatal(err)
		}
	}()

	// Configure and run webserver.
	gin.SetMode(gin.ReleaseMode)
	s := &NetsurveyServer{records: records}
	server := &http.Server{
		Addr:    cfg.Listen.Address,
		Handler: s.router(),
	}
	if cfg.Listen.CertFile != "" || cfg.Listen.KeyFile != "" {
		glog.Fatal(server.ListenAndServeTLS(cfg.Listen.CertFile, cfg.Listen.KeyFile))
	} else {
		glog.Infoln("Resorting to serving HTTP because there was no certificate and key defined.")
		glog.Fatal(server.ListenAndServe())
	}

	glog.Flush()
}
