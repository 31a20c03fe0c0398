// Package progress renders a terminal spinner/percentage line for a
// long-running byte transfer. It has no knowledge of zsync semantics — the
// observer package wires it to specific transfer phases.
package progress

import (
	"fmt"
	"sync"
	"time"
)

// sample is one (time, cumulative bytes) point kept for rate estimation.
type sample struct {
	at    time.Time
	bytes int64
}

// Tracker renders incremental byte progress toward a known (or unknown)
// total, along with a short-window transfer rate. Unlike a simple counter,
// the rate is windowed over the last few ticks rather than averaged since
// start, so a stalled HTTP connection shows up as 0 B/s instead of a
// slowly-decaying historical average.
type Tracker struct {
	total     int64
	current   int64
	message   string
	mu        sync.Mutex
	startTime time.Time
	history   []sample
	done      chan bool
}

const rateWindow = 5 // ticks of history kept for the rate estimate

// New starts a Tracker that renders message against a total of total bytes
// (total == 0 means unknown; the tracker falls back to a running count).
func New(total int64, message string) *Tracker {
	now := time.Now()
	p := &Tracker{
		total:     total,
		message:   message,
		startTime: now,
		history:   []sample{{at: now, bytes: 0}},
		done:      make(chan bool),
	}
	go p.render()
	return p
}

func (p *Tracker) render() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	frame := 0

	for {
		select {
		case <-p.done:
			p.mu.Lock()
			elapsed := time.Since(p.startTime)
			fmt.Printf("\r✓ %s (%d bytes, %s)          \n",
				p.message, p.current, elapsed.Round(time.Millisecond))
			p.mu.Unlock()
			return

		case <-ticker.C:
			p.mu.Lock()
			rate := p.pushSampleAndRate()
			if p.total > 0 {
				percent := float64(p.current) / float64(p.total) * 100
				fmt.Printf("\r%s %s [%d/%d bytes] %.0f%% %s  ",
					spinner[frame%len(spinner)],
					p.message,
					p.current,
					p.total,
					percent,
					formatRate(rate))
			} else {
				fmt.Printf("\r%s %s [%d bytes] %s  ",
					spinner[frame%len(spinner)],
					p.message,
					p.current,
					formatRate(rate))
			}
			p.mu.Unlock()
			frame++
		}
	}
}

// pushSampleAndRate records the current byte count and returns the
// bytes/sec estimate over the retained window. Caller must hold p.mu.
func (p *Tracker) pushSampleAndRate() float64 {
	now := time.Now()
	p.history = append(p.history, sample{at: now, bytes: p.current})
	if len(p.history) > rateWindow {
		p.history = p.history[len(p.history)-rateWindow:]
	}
	oldest := p.history[0]
	elapsed := now.Sub(oldest.at).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(p.current-oldest.bytes) / elapsed
}

func formatRate(bytesPerSec float64) string {
	switch {
	case bytesPerSec >= 1<<20:
		return fmt.Sprintf("%.1f MiB/s", bytesPerSec/(1<<20))
	case bytesPerSec >= 1<<10:
		return fmt.Sprintf("%.1f KiB/s", bytesPerSec/(1<<10))
	default:
		return fmt.Sprintf("%.0f B/s", bytesPerSec)
	}
}

// Add advances the tracker by n bytes.
func (p *Tracker) Add(n int64) {
	p.mu.Lock()
	p.current += n
	p.mu.Unlock()
}

// Finish stops the spinner and prints the final summary line.
func (p *Tracker) Finish() {
	close(p.done)
	time.Sleep(1 * time.Millisecond)
}
