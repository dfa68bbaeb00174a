package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// dotProgress prints a fixed-width row of dots as games finish.
type dotProgress struct {
	mu        sync.Mutex
	w         io.Writer
	width     int
	printed   int
	startTime time.Time
}

func newDotProgress(w io.Writer, width int) *dotProgress {
	return &dotProgress{w: w, width: width, startTime: time.Now()}
}

func (p *dotProgress) update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if total <= 0 {
		return
	}
	target := done * p.width / total
	for ; p.printed < target; p.printed++ {
		_, _ = fmt.Fprint(p.w, ".")
	}
	if done >= total {
		elapsed := time.Since(p.startTime)
		_, _ = fmt.Fprintf(p.w, " %d games in %.1fs (%.0f/sec)\n", total, elapsed.Seconds(), float64(total)/elapsed.Seconds())
	}
}
