package report

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/zan8in/tcpscan/pkg/portscan"
)

type JsonReport struct {
	ID         string           `json:"id"`
	Host       string           `json:"host"`
	Address    string           `json:"address"`
	StartPort  int              `json:"start_port"`
	EndPort    int              `json:"end_port"`
	Open       int              `json:"open"`
	Closed     int              `json:"closed"`
	Error      int              `json:"error"`
	StartedAt  string           `json:"started_at"`
	DurationMs int64            `json:"duration_ms"`
	Results    []JsonPortResult `json:"results"`
}

type JsonPortResult struct {
	Port   int    `json:"port"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func JsonContent(r *portscan.ScanReport) JsonReport {
	jr := JsonReport{
		ID:         r.ID,
		Host:       r.Host,
		Address:    r.Address,
		StartPort:  r.StartPort,
		EndPort:    r.EndPort,
		Open:       r.Count(portscan.StatusOpen),
		Closed:     r.Count(portscan.StatusClosed),
		Error:      r.Count(portscan.StatusError),
		StartedAt:  r.StartedAt.Format("2006-01-02 15:04:05"),
		DurationMs: r.Duration.Milliseconds(),
		Results:    make([]JsonPortResult, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		jr.Results = append(jr.Results, JsonPortResult{Port: res.Port, Status: res.Status.String(), Reason: res.Reason})
	}
	return jr
}

// WriteJSON writes the reports as one indented JSON array.
func WriteJSON(w io.Writer, reports []*portscan.ScanReport) error {
	content := make([]JsonReport, 0, len(reports))
	for _, r := range reports {
		content = append(content, JsonContent(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(content)
}

func sortedByHost(reports []*portscan.ScanReport) []*portscan.ScanReport {
	out := make([]*portscan.ScanReport, len(reports))
	copy(out, reports)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Host < out[j].Host
	})
	return out
}
