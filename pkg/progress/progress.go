package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Counter is anything that reports current/total work.
type Counter interface {
	Current() uint64
	Total() uint64
}

// 进度条
func GetProgressBar(progress, width int) string {
	if width == 0 {
		width = 50
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	barLength := progress * width / 100
	progressBar := strings.Repeat("=", barLength)
	progressBar += ">"
	progressBar += strings.Repeat("-", width-barLength)
	return progressBar
}

// Bar redraws a single status line for one or more counters until stopped.
type Bar struct {
	w        io.Writer
	interval time.Duration
	start    time.Time

	mu       sync.Mutex
	counters []Counter
	last     int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewBar(w io.Writer, interval time.Duration) *Bar {
	if interval <= 0 {
		interval = time.Second
	}
	return &Bar{
		w:        w,
		interval: interval,
		last:     -1,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Track adds a counter; safe to call while the bar is running.
func (b *Bar) Track(c Counter) {
	b.mu.Lock()
	b.counters = append(b.counters, c)
	b.mu.Unlock()
}

func (b *Bar) Start() {
	b.start = time.Now()
	go func() {
		defer close(b.done)
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-b.stop:
				return
			case <-ticker.C:
				b.render(false)
			}
		}
	}()
}

// Stop ends the redraw loop. With final set the bar is drawn at its last
// state and the line is terminated; otherwise it is cleared.
func (b *Bar) Stop(final bool) {
	b.once.Do(func() {
		close(b.stop)
		<-b.done
		if final {
			b.render(true)
			return
		}
		fmt.Fprint(b.w, "\r\033[2K")
	})
}

func (b *Bar) snapshot() (uint64, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var curr, total uint64
	for _, c := range b.counters {
		curr += c.Current()
		total += c.Total()
	}
	return curr, total
}

func (b *Bar) render(final bool) {
	curr, total := b.snapshot()
	if total == 0 {
		return
	}
	if curr > total {
		curr = total
	}
	percent := int(curr * 100 / total)
	if !final {
		if percent == b.last {
			return
		}
		b.last = percent
	}

	elapsed := strings.Split(time.Since(b.start).String(), ".")[0] + "s"
	fmt.Fprint(b.w, "\r\033[2K")
	fmt.Fprintf(b.w, "\r[%s] %d%% (%d/%d), %s", GetProgressBar(percent, 0), percent, curr, total, elapsed)
	if final {
		fmt.Fprint(b.w, "\n")
	}
}
