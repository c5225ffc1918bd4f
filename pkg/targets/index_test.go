package targets

import (
	"testing"
)

func TestTargetIndex_BuildTargetIndex(t *testing.T) {
	seeds := []string{
		" https://Example.com:443/a?b=1#c ",
		"example.com",
		"EXAMPLE.com.",
		"example.com:80",
		"example.com/path?q=1",
		"192.168.0.0/30",
		"192.168.1.1-192.168.1.3",
		"192.168.1.3",
		"[2001:db8::1]:443",
		"2001:db8::1",
		"# comment",
		"",
	}

	idx := BuildTargetIndex(seeds)

	want := []string{
		"example.com",
		"192.168.0.0", "192.168.0.1", "192.168.0.2", "192.168.0.3",
		"192.168.1.1", "192.168.1.2", "192.168.1.3",
		"2001:db8::1",
	}
	if len(idx.Hosts) != len(want) {
		t.Fatalf("Hosts mismatch: got=%v want=%v", idx.Hosts, want)
	}
	for i := range want {
		if idx.Hosts[i] != want[i] {
			t.Fatalf("Hosts[%d] mismatch: got=%s want=%s (all=%v)", i, idx.Hosts[i], want[i], idx.Hosts)
		}
	}
	if len(idx.Invalid) != 0 {
		t.Fatalf("unexpected invalid seeds: %v", idx.Invalid)
	}
}

func TestTargetIndex_ShortRange(t *testing.T) {
	idx := BuildTargetIndex([]string{"10.0.0.250-252"})
	if got, want := idx.Len(), 3; got != want {
		t.Fatalf("len mismatch: got=%d want=%d hosts=%v", got, want, idx.Hosts)
	}
	if idx.Hosts[2] != "10.0.0.252" {
		t.Fatalf("unexpected last host: %v", idx.Hosts)
	}
}

func TestTargetIndex_Invalid(t *testing.T) {
	seeds := []string{
		"10.0.0.9-10.0.0.1", // reversed
		"10.0.0.0/8",        // too large
		"10.0.0.1-300",
		"2001:db8::/64",
		"bad host",
	}
	idx := BuildTargetIndex(seeds)
	if idx.Len() != 0 {
		t.Fatalf("expected no hosts, got %v", idx.Hosts)
	}
	if len(idx.Invalid) != len(seeds) {
		t.Fatalf("expected every seed invalid, got %v", idx.Invalid)
	}
}

func TestTargetIndex_AddReportsNewHosts(t *testing.T) {
	idx := NewTargetIndex()
	if !idx.Add("127.0.0.1") {
		t.Fatalf("first add must report a new host")
	}
	if idx.Add("127.0.0.1:8080") {
		t.Fatalf("same host must not be added twice")
	}
	if !idx.Add("LocalHost") || idx.Hosts[1] != "localhost" {
		t.Fatalf("hostname must be normalized, got %v", idx.Hosts)
	}
}
