package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zan8in/tcpscan/pkg/portscan"
)

func sampleReport(host string) *portscan.ScanReport {
	return &portscan.ScanReport{
		ID:        "test-" + host,
		Host:      host,
		Address:   "127.0.0.1",
		StartPort: 5000,
		EndPort:   5002,
		Workers:   2,
		Results: []portscan.PortResult{
			{Port: 5000, Status: portscan.StatusOpen},
			{Port: 5001, Status: portscan.StatusClosed, Reason: "connection refused"},
			{Port: 5002, Status: portscan.StatusError, Reason: "network is unreachable"},
		},
		StartedAt: time.Now(),
		Duration:  1500 * time.Millisecond,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*portscan.ScanReport{sampleReport("a")}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "Host,Port Number,Status" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if strings.Join(rows[2], ",") != "a,5001,closed" {
		t.Fatalf("unexpected row: %v", rows[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []*portscan.ScanReport{sampleReport("a")}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got []JsonReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Open != 1 || got[0].Closed != 1 || got[0].Error != 1 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got[0].Results[0].Status != "open" || got[0].DurationMs != 1500 {
		t.Fatalf("unexpected content: %+v", got[0])
	}
}

func TestReportSaveSortsByHost(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out", "result.csv")
	r, err := NewReport(file, FormatJSON)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	if r.Format != FormatCSV {
		t.Fatalf("expected format from extension")
	}

	r.Append(sampleReport("b"))
	r.Append(sampleReport("a"))
	r.Append(nil)
	if err := r.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 7 || !strings.HasPrefix(lines[1], "a,") || !strings.HasPrefix(lines[4], "b,") {
		t.Fatalf("unexpected file content:\n%s", data)
	}
}

func TestNewReportRejectsExtension(t *testing.T) {
	if _, err := NewReport("result.xlsx", FormatJSON); err == nil {
		t.Fatalf("expected extension error")
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sampleReport("a"), false)
	out := buf.String()
	for _, want := range []string{"PORT", "5000/tcp", "5001/tcp", "connection refused", "closed=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in table:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintTable(&buf, sampleReport("a"), true)
	if strings.Contains(buf.String(), "5001/tcp") {
		t.Fatalf("open-only table shows a closed port:\n%s", buf.String())
	}
}
