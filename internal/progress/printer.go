package progress

import (
	"fmt"
	"io"
	"sync"
)

// Printer serialises human-readable lines from concurrent workers so that
// lines interleave but never tear.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Printf writes one formatted line; a trailing newline is added.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format+"\n", args...)
}
