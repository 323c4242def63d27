package main

import (
	"flag"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/tranzmatt/android-network-survey/config"
	"github.com/tranzmatt/android-network-survey/export"
	"github.com/tranzmatt/android-network-survey/filter"
	"github.com/tranzmatt/android-network-survey/iw"
	"github.com/tranzmatt/android-network-survey/replay"
	"github.com/tranzmatt/android-network-survey/survey"
)

// setFlags returns the names of the flags given on the command line.
func setFlags() map[string]bool {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFlags copies explicitly set flags over cfg and assigns a random
// identifier when none is configured.
func applyFlags(cfg *config.Config, set map[string]bool) {
	if set["id"] {
		cfg.Identifier = *identifier
	}
	if set["source"] {
		cfg.Source.Type = *sourceType
	}
	if set["output"] {
		cfg.Output.Type = *output
	}
	if set["iface"] {
		cfg.Source.IW.Interface = *iface
	}
	if set["scanInterval"] {
		cfg.Source.IW.Interval = config.Duration(*scanInterval)
	}
	if set["lat"] && set["lon"] {
		cfg.Source.IW.Latitude = latitude
		cfg.Source.IW.Longitude = longitude
	}
	if set["replayFile"] {
		cfg.Source.Replay.Path = *replayFile
	}
	if set["replayDelay"] {
		cfg.Source.Replay.Delay = config.Duration(*replayDelay)
	}
	if set["sqliteFile"] {
		cfg.Output.SQLite.File = *sqliteFile
	}
	if set["mysqlServer"] {
		cfg.Output.MySQL.Server = *mysqlServer
	}
	if set["mysqlUser"] {
		cfg.Output.MySQL.User = *mysqlUser
	}
	if set["mysqlPasswordFile"] {
		cfg.Output.MySQL.PasswordFile = *mysqlPasswordFile
	}
	if set["mysqlDBName"] {
		cfg.Output.MySQL.DBName = *mysqlDBName
	}
	if set["server"] {
		cfg.Output.Server.URL = *server
	}
	if set["serverBatchSize"] {
		cfg.Output.Server.BatchSize = *serverBatchSize
	}
	if set["minSignal"] {
		v := float32(*minSignal)
		cfg.Filter.MinSignal = &v
	}
	if set["ssid"] {
		cfg.Filter.SSID = *ssid
	}
	if set["technologies"] {
		cfg.Filter.Technologies = strings.Split(*technologies, ",")
	}

	if cfg.Identifier == "" {
		cfg.Identifier = uuid.NewString()
	}
}

func newSource(cfg *config.Config) (survey.Source, error) {
	switch strings.ToLower(cfg.Source.Type) {
	case iw.SourceName:
		s := &iw.Scanner{
			Identifier: cfg.Identifier,
			Interface:  cfg.Source.IW.Interface,
			Interval:   cfg.Source.IW.Interval.Duration(),
		}
		if cfg.Source.IW.Latitude != nil && cfg.Source.IW.Longitude != nil {
			s.Position = &survey.Point{Lat: *cfg.Source.IW.Latitude, Lon: *cfg.Source.IW.Longitude}
		}
		return s, nil
	case replay.SourceName:
		if cfg.Source.Replay.Path == "" {
			return nil, fmt.Errorf("the replay source needs a file (-replayFile)")
		}
		return &replay.Source{
			Identifier: cfg.Identifier,
			Path:       cfg.Source.Replay.Path,
			Delay:      cfg.Source.Replay.Delay.Duration(),
		}, nil
	}
	return nil, fmt.Errorf("%q is not a supported source, pick one of: %s, %s", cfg.Source.Type, iw.SourceName, replay.SourceName)
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
	case "server":
		return &export.Server{
			Server:            cfg.Server.URL,
			SendRecordsAmount: cfg.Server.BatchSize,
		}, nil
	}
	return nil, fmt.Errorf("%q is not a supported export method, pick one of: csv, sqlite, mysql, server", cfg.Type)
}

func newFilters(cfg config.FilterConfig) ([]filter.Filterer, error) {
	var filters []filter.Filterer
	if cfg.MinSignal != nil {
		filters = append(filters, &filter.FilterSignal{Min: *cfg.MinSignal})
	}
	if cfg.SSID != "" {
		re, err := regexp.Compile(cfg.SSID)
		if err != nil {
			return nil, fmt.Errorf("invalid SSID filter %q: %w", cfg.SSID, err)
		}
		filters = append(filters, &filter.FilterSSID{Pattern: re})
	}
	if len(cfg.Technologies) > 0 {
		f := &filter.FilterTechnology{}
		for _, name := range cfg.Technologies {
			t, err := survey.ParseTechnology(strings.ToUpper(strings.TrimSpace(name)))
			if err != nil {
				return nil, err
			}
			f.Allowed = append(f.Allowed, t)
		}
		filters = append(filters, f)
	}
	return filters, nil
}
