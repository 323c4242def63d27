package export

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/tranzmatt/android-network-survey/config"
)

// MySQLDSN builds the DSN for cfg with the given password.
func MySQLDSN(cfg config.MySQLConfig, password string) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = password
	c.Net = "tcp"
	c.Addr = cfg.Server
	c.DBName = cfg.DBName
	return c.FormatDSN()
}

// OpenMySQL connects to the MySQL server in cfg. The password is read from
// cfg.PasswordFile.
func OpenMySQL(cfg config.MySQLConfig) (*sql.DB, error) {
	pass, err := os.ReadFile(cfg.PasswordFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read MySQL password file %q: %w", cfg.PasswordFile, err)
	}
	db, err := sql.Open("mysql", MySQLDSN(cfg, strings.TrimSpace(string(pass))))
	if err != nil {
		return nil, fmt.Errorf("unable to open MySQL DB %q: %w", cfg.Server, err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	return db, nil
}

// OpenSQLite opens the sqlite DB file, creating it if needed. The caller
// has to import a driver registered as "sqlite3".
func OpenSQLite(file string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite DB %q: %w", file, err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	return db, nil
}
