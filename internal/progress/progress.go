// Package progress reports the progress of catalogue imports on stderr,
// keeping stdout clean for piping. Updates are drawn in place on a terminal
// and suppressed otherwise.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// minItems is the minimum number of items before showing progress.
const minItems = 5

// Progress tracks and displays operation progress.
type Progress struct {
	w       io.Writer
	label   string
	total   int
	current int
	isTTY   bool
	width   int // longest line drawn, for clearing
}

// New creates a progress reporter that writes to stderr.
// If total is less than minItems, progress updates are suppressed.
func New(label string, total int) *Progress {
	return NewWriter(os.Stderr, label, total, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewWriter creates a progress reporter on w. Nothing is drawn unless tty is
// set.
func NewWriter(w io.Writer, label string, total int, tty bool) *Progress {
	return &Progress{w: w, label: label, total: total, isTTY: tty}
}

// Increment advances the progress counter by one and redraws.
func (p *Progress) Increment() {
	p.current++
	p.Print()
}

// Current returns the number of completed items.
func (p *Progress) Current() int {
	return p.current
}

// Print writes the current progress, overwriting the previous line.
func (p *Progress) Print() {
	if p.total < minItems || !p.isTTY {
		return
	}

	pct := (p.current * 100) / p.total
	line := fmt.Sprintf("%s... %d/%d (%d%%)", p.label, p.current, p.total, pct)
	p.width = max(p.width, len(line))
	fmt.Fprintf(p.w, "\r%s", line)
}

// Done clears the progress line to make way for final output.
func (p *Progress) Done() {
	if p.total < minItems || !p.isTTY || p.width == 0 {
		return
	}
	fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", p.width))
}
