package portscan

// Partition splits [start, end] into workers contiguous jobs of
// total/workers ports each. The last job absorbs the remainder. When
// workers exceeds the number of ports every job but the last would be
// empty, so only the last one, holding the whole range, is returned.
func Partition(start, end, workers int) []ScanJob {
	if workers < 1 || end < start {
		return nil
	}

	total := end - start + 1
	size := total / workers
	if size == 0 {
		return []ScanJob{{ID: workers - 1, Lo: start, Hi: end + 1}}
	}

	jobs := make([]ScanJob, 0, workers)
	for i := 0; i < workers; i++ {
		lo := start + i*size
		hi := lo + size
		if i == workers-1 {
			hi = end + 1
		}
		jobs = append(jobs, ScanJob{ID: i, Lo: lo, Hi: hi})
	}
	return jobs
}
