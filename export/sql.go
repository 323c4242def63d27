package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/tranzmatt/android-network-survey/survey"
)

// Dialect selects the DDL flavour used when creating tables.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectMySQL
)

func (d Dialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite3"
	case DialectMySQL:
		return "mysql"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

func (d Dialect) quote(ident string) string {
	if d == DialectMySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

func (d Dialect) columnType(k survey.Kind) string {
	switch {
	case d == DialectMySQL && k == survey.KindInteger:
		return "BIGINT"
	case d == DialectMySQL && k == survey.KindReal:
		return "DOUBLE"
	case k == survey.KindInteger:
		return "INTEGER"
	case k == survey.KindReal:
		return "REAL"
	case k == survey.KindBool:
		return "BOOLEAN"
	}
	return "TEXT"
}

func (d Dialect) primaryKey() string {
	if d == DialectMySQL {
		return d.quote(PrimaryKeyColumn) + " BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	}
	return d.quote(PrimaryKeyColumn) + " INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT"
}

// PrimaryKeyColumn is the auto increment column added to every table.
const PrimaryKeyColumn = "fid"

// CreateTableStatement returns the DDL for the table holding records shaped
// like r. The table is named after the message type.
func CreateTableStatement(d Dialect, r survey.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %s (\n\t\t%s", d.quote(r.MessageType()), d.primaryKey())
	for _, f := range r.Fields() {
		fmt.Fprintf(&sb, ",\n\t\t%s %s", d.quote(f.Name), d.columnType(f.Kind))
	}
	sb.WriteString("\n\t);")
	return sb.String()
}

// InsertStatement returns the parameterized insert for records shaped like r.
func InsertStatement(d Dialect, r survey.Record) string {
	fields := r.Fields()
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, d.quote(f.Name))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fields)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);", d.quote(r.MessageType()), strings.Join(cols, ", "), placeholders)
}

// SQL stores records in one table per message type, creating tables the
// first time a type is seen.
type SQL struct {
	DB      *sql.DB
	Dialect Dialect

	inserts map[string]*sql.Stmt
}

func (s *SQL) Write(ctx context.Context, records <-chan survey.Record) error {
	s.inserts = map[string]*sql.Stmt{}
	defer func() {
		for _, stmt := range s.inserts {
			stmt.Close()
		}
	}()

	counts := newCounts()
	for r := range records {
		counts["total"] += 1
		if err := s.insert(ctx, r); err != nil {
			counts["error"] += 1
			glog.Warningf("error storing in %s DB: %s\n", s.Dialect, err)
			continue
		}
		counts["success"] += 1
		if counts["total"]%countInfoInterval == 0 {
			glog.Infof("Record export counts: %+v\n", counts)
		}
	}
	glog.V(1).Infof("Record export counts: %+v\n", counts)

	return nil
}

func (s *SQL) insert(ctx context.Context, r survey.Record) error {
	stmt, ok := s.inserts[r.MessageType()]
	if !ok {
		if _, err := s.DB.ExecContext(ctx, CreateTableStatement(s.Dialect, r)); err != nil {
			return fmt.Errorf("unable to create table %s: %w", r.MessageType(), err)
		}
		var err error
		stmt, err = s.DB.PrepareContext(ctx, InsertStatement(s.Dialect, r))
		if err != nil {
			return err
		}
		s.inserts[r.MessageType()] = stmt
	}

	fields := r.Fields()
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f.Value)
	}
	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		return err
	}
	return nil
}
