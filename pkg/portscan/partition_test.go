package portscan

import (
	"reflect"
	"testing"
)

func TestPartitionCoversRangeExactlyOnce(t *testing.T) {
	cases := []struct {
		start, end, workers int
	}{
		{1, 1, 1},
		{1, 1, 10},
		{100, 109, 3},
		{1, 1024, 10},
		{1000, 1006, 7},
		{1000, 1006, 8},
		{1, 65535, 10},
		{65530, 65535, 4},
	}

	for _, tc := range cases {
		jobs := Partition(tc.start, tc.end, tc.workers)
		want := tc.workers
		if want > tc.end-tc.start+1 {
			want = 1
		}
		if len(jobs) != want {
			t.Fatalf("%v: job count mismatch: got=%d want=%d", tc, len(jobs), want)
		}

		seen := make(map[int]int)
		for _, job := range jobs {
			for p := job.Lo; p < job.Hi; p++ {
				if prev, ok := seen[p]; ok {
					t.Fatalf("%v: port %d in jobs %d and %d", tc, p, prev, job.ID)
				}
				seen[p] = job.ID
			}
		}

		if len(seen) != tc.end-tc.start+1 {
			t.Fatalf("%v: union size mismatch: got=%d want=%d", tc, len(seen), tc.end-tc.start+1)
		}
		for p := tc.start; p <= tc.end; p++ {
			if _, ok := seen[p]; !ok {
				t.Fatalf("%v: missing port %d", tc, p)
			}
		}
	}
}

func TestPartitionLastJobAbsorbsRemainder(t *testing.T) {
	got := Partition(100, 109, 3)
	want := []ScanJob{
		{ID: 0, Lo: 100, Hi: 103},
		{ID: 1, Lo: 103, Hi: 106},
		{ID: 2, Lo: 106, Hi: 110},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("partition mismatch: got=%v want=%v", got, want)
	}

	total := 0
	for _, j := range got {
		total += j.Len()
	}
	if total != 10 {
		t.Fatalf("expected 10 ports total, got=%d", total)
	}
}

func TestPartitionMoreWorkersThanPorts(t *testing.T) {
	jobs := Partition(5000, 5002, 5)
	want := []ScanJob{{ID: 4, Lo: 5000, Hi: 5003}}
	if !reflect.DeepEqual(jobs, want) {
		t.Fatalf("expected only the last job, got=%v", jobs)
	}
}

func TestPartitionHugeWorkerCount(t *testing.T) {
	workers := 1 << 62
	jobs := Partition(1, 10, workers)
	want := []ScanJob{{ID: workers - 1, Lo: 1, Hi: 11}}
	if !reflect.DeepEqual(jobs, want) {
		t.Fatalf("partition mismatch: got=%v want=%v", jobs, want)
	}
}

func TestValidateWorkers(t *testing.T) {
	for _, n := range []int{1, DefaultWorkers, MaxWorkers} {
		if err := ValidateWorkers(n); err != nil {
			t.Fatalf("%d: unexpected error %v", n, err)
		}
	}
	for _, n := range []int{0, -1, MaxWorkers + 1, 1 << 62} {
		if err := ValidateWorkers(n); err != ErrInvalidWorkers {
			t.Fatalf("%d: expected ErrInvalidWorkers, got=%v", n, err)
		}
	}
}

func TestPartitionInvalidInput(t *testing.T) {
	if jobs := Partition(1, 10, 0); jobs != nil {
		t.Fatalf("expected nil for zero workers, got=%v", jobs)
	}
	if jobs := Partition(10, 1, 2); jobs != nil {
		t.Fatalf("expected nil for inverted range, got=%v", jobs)
	}
}
