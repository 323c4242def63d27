package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tranzmatt/android-network-survey/config"
	"github.com/tranzmatt/android-network-survey/survey"

	// Blind import support for sqlite3 used by sql.go.
	_ "github.com/mattn/go-sqlite3"
)

func testRecords() []survey.Record {
	meta := survey.CellularMeta{
		DeviceSerialNumber: "dev-1",
		DeviceTime:         time.UnixMilli(1700000000000),
		Latitude:           47.3769,
		Longitude:          8.5417,
		GroupNumber:        2,
	}
	return []survey.Record{
		survey.NewWifiBeaconBuilder().BSSID("00:11:22:33:44:55").SSID("a").Channel(6).SignalStrength(survey.Ptr(float32(-60.5))).Build(),
		survey.LteRecord{CellularMeta: meta, PCI: survey.Ptr(int32(17)), RSRP: survey.Ptr(float32(-101))},
		survey.NewWifiBeaconBuilder().BSSID("00:11:22:33:44:66").SSID("b").WPS(survey.Ptr(true)).Build(),
	}
}

func feed(records []survey.Record) <-chan survey.Record {
	ch := make(chan survey.Record, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)
	return ch
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSV{Out: &buf}).Write(context.Background(), feed(testRecords())); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	out := buf.String()
	r := csv.NewReader(strings.NewReader(out))
	// Rows of different message types have different lengths.
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5 (2 headers, 3 records):\n%s", len(rows), out)
	}
	if rows[0][0] != "messageType" || rows[0][1] != "id" {
		t.Errorf("wifi header = %v", rows[0])
	}
	if rows[1][0] != survey.WifiBeaconMessageType || rows[1][5] != "00:11:22:33:44:55" {
		t.Errorf("wifi row = %v", rows[1])
	}
	if rows[1][13] != "-60.5" || rows[1][12] != "" {
		t.Errorf("wifi nullable columns = %q %q", rows[1][12], rows[1][13])
	}
	if rows[2][0] != "messageType" || rows[3][0] != survey.LteMessageType {
		t.Errorf("lte header/row = %v / %v", rows[2], rows[3])
	}
	if rows[4][0] != survey.WifiBeaconMessageType {
		t.Errorf("second wifi row repeated the header: %v", rows[4])
	}
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite(t *testing.T) {
	db := openSQLite(t)
	s := &SQL{DB: db, Dialect: DialectSQLite}
	if err := s.Write(context.Background(), feed(testRecords())); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "WifiBeaconRecord"`).Scan(&count); err != nil {
		t.Fatalf("count wifi: %v", err)
	}
	if count != 2 {
		t.Errorf("stored %d wifi beacons, want 2", count)
	}

	var ssid string
	var signal sql.NullFloat64
	var wps sql.NullBool
	if err := db.QueryRow(`SELECT ssid, signal_strength, wps FROM "WifiBeaconRecord" WHERE bssid = ?`, "00:11:22:33:44:55").Scan(&ssid, &signal, &wps); err != nil {
		t.Fatalf("select wifi: %v", err)
	}
	if ssid != "a" || !signal.Valid || signal.Float64 != -60.5 || wps.Valid {
		t.Errorf("stored ssid=%q signal=%v wps=%v", ssid, signal, wps)
	}

	var geom string
	var pci int
	var rsrq sql.NullFloat64
	if err := db.QueryRow(`SELECT geom, pci, rsrq FROM "LteRecord"`).Scan(&geom, &pci, &rsrq); err != nil {
		t.Fatalf("select lte: %v", err)
	}
	if geom != "POINT(8.5417 47.3769)" || pci != 17 || rsrq.Valid {
		t.Errorf("stored geom=%q pci=%d rsrq=%v", geom, pci, rsrq)
	}
}

func TestSQLiteAppendsToExistingTable(t *testing.T) {
	db := openSQLite(t)
	for i := 0; i < 2; i++ {
		s := &SQL{DB: db, Dialect: DialectSQLite}
		if err := s.Write(context.Background(), feed(testRecords()[:1])); err != nil {
			t.Fatalf("Write() #%d failed: %v", i, err)
		}
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "WifiBeaconRecord"`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("stored %d rows, want 2", count)
	}
}

func TestMySQLStatements(t *testing.T) {
	r := testRecords()[0]
	ddl := CreateTableStatement(DialectMySQL, r)
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS `WifiBeaconRecord`",
		"`fid` BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY",
		"`signal_strength` DOUBLE",
		"`channel` BIGINT",
		"`wps` BOOLEAN",
		"`ssid` TEXT",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("DDL missing %q:\n%s", want, ddl)
		}
	}
	insert := InsertStatement(DialectMySQL, r)
	if !strings.HasPrefix(insert, "INSERT INTO `WifiBeaconRecord` (`id`, `geom`,") {
		t.Errorf("insert = %s", insert)
	}
	if got := strings.Count(insert, "?"); got != len(r.Fields()) {
		t.Errorf("insert has %d placeholders, want %d", got, len(r.Fields()))
	}
}

func TestServer(t *testing.T) {
	var (
		mu       sync.Mutex
		received [][]survey.Envelope
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+CollectEndpoint {
			http.NotFound(w, r)
			return
		}
		var envs []survey.Envelope
		if err := json.NewDecoder(r.Body).Decode(&envs); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		received = append(received, envs)
		mu.Unlock()
		json.NewEncoder(w).Encode(CollectResponse{Status: "ok", RecordCount: len(envs)})
	}))
	defer ts.Close()

	s := &Server{Server: ts.URL + "/", SendRecordsAmount: 2, Client: ts.Client()}
	records := testRecords()
	if err := s.Write(context.Background(), feed(records)); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 || len(received[0]) != 2 || len(received[1]) != 1 {
		t.Fatalf("batches = %v, want sizes [2 1]", received)
	}
	var types []string
	for _, batch := range received {
		for _, env := range batch {
			types = append(types, env.MessageType)
		}
	}
	want := []string{survey.WifiBeaconMessageType, survey.LteMessageType, survey.WifiBeaconMessageType}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("message types mismatch (-want +got):\n%s", diff)
	}
}

func TestServerRejectedBatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer ts.Close()

	s := &Server{Server: ts.URL, Client: ts.Client()}
	if _, err := s.post(context.Background(), nil); err == nil {
		t.Fatalf("post() to a failing server succeeded")
	}
	// Write logs and keeps going.
	if err := s.Write(context.Background(), feed(testRecords())); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := config.MySQLConfig{Server: "db.example.org:3306", User: "survey", DBName: "netsurvey"}
	got := MySQLDSN(cfg, "s3cret")
	if !strings.HasPrefix(got, "survey:s3cret@tcp(db.example.org:3306)/netsurvey") {
		t.Errorf("MySQLDSN() = %q", got)
	}
}

func TestOpenMySQLMissingPasswordFile(t *testing.T) {
	cfg := config.MySQLConfig{Server: "127.0.0.1:3306", PasswordFile: filepath.Join(t.TempDir(), "missing")}
	if _, err := OpenMySQL(cfg); err == nil {
		t.Errorf("OpenMySQL() without a password file succeeded")
	}
}
