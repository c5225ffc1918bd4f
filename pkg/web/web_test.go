package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zan8in/tcpscan/pkg/portscan"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(portscan.Options{Workers: 4, Timeout: 500 * time.Millisecond})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func doJSON(t *testing.T, method, url, token string, body interface{}, out interface{}) int {
	t.Helper()
	var rd bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&rd).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &rd)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp.StatusCode
}

type loginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    LoginData `json:"data"`
}

func login(t *testing.T, s *Server, ts *httptest.Server) string {
	t.Helper()
	var resp loginResponse
	code := doJSON(t, http.MethodPost, ts.URL+"/api/login", "", LoginRequest{Password: s.Password()}, &resp)
	if code != http.StatusOK || !resp.Success || resp.Data.Token == "" {
		t.Fatalf("login failed: code=%d resp=%+v", code, resp)
	}
	if resp.Data.Expires <= time.Now().Unix() {
		t.Fatalf("token already expired: %d", resp.Data.Expires)
	}
	return resp.Data.Token
}

type scanResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    ScanData `json:"data"`
}

func waitForStatus(t *testing.T, ts *httptest.Server, token, id string) ScanData {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		var resp scanResponse
		if code := doJSON(t, http.MethodGet, ts.URL+"/api/scans/"+id, token, nil, &resp); code != http.StatusOK {
			t.Fatalf("get scan: code=%d", code)
		}
		if resp.Data.Status != StatusPending && resp.Data.Status != StatusRunning {
			return resp.Data
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("scan %s did not finish", id)
	return ScanData{}
}

func TestLogin(t *testing.T) {
	s, ts := newTestServer(t)

	var resp loginResponse
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/login", "", LoginRequest{Password: "wrong"}, &resp); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", code)
	}
	if resp.Success || resp.Data.Token != "" {
		t.Fatalf("failed login must not carry a token: %+v", resp)
	}

	token := login(t, s, ts)
	if _, err := validateJWTToken(s.jwtSecret, token); err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if _, err := validateJWTToken(newJWTSecret(), token); err == nil {
		t.Fatalf("token validated with a foreign secret")
	}
}

func TestAuthRequired(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/api/scans", "/api/monitor", "/api/scans/abc"} {
		if code := doJSON(t, http.MethodGet, ts.URL+path, "", nil, nil); code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, code)
		}
		if code := doJSON(t, http.MethodGet, ts.URL+path, "garbage", nil, nil); code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 for a bad token, got %d", path, code)
		}
	}
}

func TestScanLifecycle(t *testing.T) {
	s, ts := newTestServer(t)
	token := login(t, s, ts)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	port := ln.Addr().(*net.TCPAddr).Port

	var created struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	req := CreateScanRequest{Host: "127.0.0.1", Ports: fmt.Sprintf("%d", port), Workers: 2}
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/scans", token, req, &created); code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}
	id := created.Data["id"]
	if id == "" {
		t.Fatalf("no id returned")
	}

	data := waitForStatus(t, ts, token, id)
	if data.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", data.Status, data.Error)
	}
	if data.Report == nil || data.Report.Open != 1 || data.Report.Results[0].Port != port {
		t.Fatalf("unexpected report: %+v", data.Report)
	}
	if data.Progress.Percent != 100 || data.Progress.Total != 1 {
		t.Fatalf("unexpected progress: %+v", data.Progress)
	}

	var list struct {
		Data []ScanData `json:"data"`
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/scans", token, nil, &list); code != http.StatusOK {
		t.Fatalf("list: got %d", code)
	}
	if len(list.Data) != 1 || list.Data[0].ID != id || list.Data[0].Report != nil {
		t.Fatalf("unexpected list: %+v", list.Data)
	}
}

func TestScanCreateInvalid(t *testing.T) {
	s, ts := newTestServer(t)
	token := login(t, s, ts)

	cases := []CreateScanRequest{
		{Host: "", Ports: "80"},
		{Host: "127.0.0.1", Ports: "90-80"},
		{Host: "127.0.0.1", Ports: "0-10"},
		{Host: "127.0.0.1", Ports: "80", Workers: -1},
		{Host: "127.0.0.1", Ports: "80", Workers: 1 << 62},
	}
	for _, c := range cases {
		if code := doJSON(t, http.MethodPost, ts.URL+"/api/scans", token, c, nil); code != http.StatusBadRequest {
			t.Fatalf("%+v: expected 400, got %d", c, code)
		}
	}
}

func TestScanStop(t *testing.T) {
	s, ts := newTestServer(t)
	token := login(t, s, ts)

	// unroutable address, every probe waits for the timeout
	req := CreateScanRequest{Host: "192.0.2.1", Ports: "1-65535", Workers: 4, TimeoutMs: 2000}
	var created struct {
		Data map[string]string `json:"data"`
	}
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/scans", token, req, &created); code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}

	var resp scanResponse
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/scans/"+created.Data["id"]+"/stop", token, nil, &resp); code != http.StatusOK {
		t.Fatalf("stop: got %d", code)
	}
	if resp.Data.Status != StatusCanceled {
		t.Fatalf("expected canceled, got %s", resp.Data.Status)
	}
	if resp.Data.Report != nil {
		t.Fatalf("canceled scan must not carry a report")
	}
}

func TestScanNotFound(t *testing.T) {
	s, ts := newTestServer(t)
	token := login(t, s, ts)

	if code := doJSON(t, http.MethodGet, ts.URL+"/api/scans/nope", token, nil, nil); code != http.StatusNotFound {
		t.Fatalf("get: expected 404, got %d", code)
	}
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/scans/nope/stop", token, nil, nil); code != http.StatusNotFound {
		t.Fatalf("stop: expected 404, got %d", code)
	}
}

func TestMonitor(t *testing.T) {
	s, ts := newTestServer(t)
	token := login(t, s, ts)

	var resp struct {
		Data MonitorData `json:"data"`
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/monitor", token, nil, &resp); code != http.StatusOK {
		t.Fatalf("monitor: got %d", code)
	}
	if resp.Data.Goroutines <= 0 {
		t.Fatalf("unexpected monitor data: %+v", resp.Data)
	}
}

func TestLoginLimiter(t *testing.T) {
	l := newLoginLimiter(time.Minute, 2)
	if !l.allow("1.2.3.4") || !l.allow("1.2.3.4") {
		t.Fatalf("first attempts must pass")
	}
	if l.allow("1.2.3.4") {
		t.Fatalf("third attempt must be limited")
	}
	if !l.allow("5.6.7.8") {
		t.Fatalf("limit must be per ip")
	}
}
