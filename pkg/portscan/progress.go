package portscan

import "sync/atomic"

// Progress counts probed ports for one scan. All methods are safe for
// concurrent use and never block the workers.
type Progress struct {
	current atomic.Uint64
	total   atomic.Uint64
}

func NewProgress() *Progress {
	return &Progress{}
}

func (p *Progress) reset(total int) {
	p.current.Store(0)
	p.total.Store(uint64(total))
}

func (p *Progress) inc() {
	p.current.Add(1)
}

func (p *Progress) Current() uint64 {
	return p.current.Load()
}

func (p *Progress) Total() uint64 {
	return p.total.Load()
}

// Percent is 0-100, 0 before the scan knows its total.
func (p *Progress) Percent() int {
	total := p.Total()
	if total == 0 {
		return 0
	}
	curr := p.Current()
	if curr > total {
		curr = total
	}
	return int(curr * 100 / total)
}

// Done reports whether every port has been probed.
func (p *Progress) Done() bool {
	total := p.Total()
	return total > 0 && p.Current() >= total
}
