package uploader

import (
	"fmt"
	"sync"
)

const (
	mb = 1024 * 1024
	gb = 1024 * 1024 * 1024
)

// Progress aggregates byte counts and outcome counts across every
// concurrent upload in a pool. All mutation happens under a single lock;
// the field order of writes from different goroutines is unspecified but
// never interleaved.
type Progress struct {
	mu sync.Mutex

	totalBytes int64
	numFiles   int
	seenBytes  int64
	completed  int
	failed     int

	render func(string)
}

// NewProgress builds a tracker that renders status lines via render. A nil
// render disables status output (useful in tests).
func NewProgress(render func(string)) *Progress {
	return &Progress{render: render}
}

// TrackFile registers a file that will be uploaded, adding its size to the
// tracker's running total ahead of the transfer starting.
func (p *Progress) TrackFile(size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalBytes += size
	p.numFiles++
}

// Advance records bytesAmount of progress on some in-flight upload and
// renders an updated status line. Intended as an S3 transfer manager's
// progress callback.
func (p *Progress) Advance(bytesAmount int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seenBytes += bytesAmount
	p.renderLocked()
}

// Complete records one successful upload.
func (p *Progress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	p.renderLocked()
}

// Fail records one failed upload.
func (p *Progress) Fail() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed++
	p.renderLocked()
}

func (p *Progress) renderLocked() {
	if p.render != nil {
		p.render(p.statusLine())
	}
}

// Snapshot returns the current counters for programmatic inspection.
func (p *Progress) Snapshot() (completed, failed, numFiles int, seenBytes, totalBytes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed, p.failed, p.numFiles, p.seenBytes, p.totalBytes
}

// statusLine must be called with p.mu held.
func (p *Progress) statusLine() string {
	var size, seen string
	if p.totalBytes < gb {
		size = fmt.Sprintf("%.2fmb", float64(p.totalBytes)/mb)
		seen = fmt.Sprintf("%.2fmb", float64(p.seenBytes)/mb)
	} else {
		size = fmt.Sprintf("%.2fgb", float64(p.totalBytes)/gb)
		seen = fmt.Sprintf("%.2fgb", float64(p.seenBytes)/gb)
	}
	pct := 0.0
	if p.totalBytes > 0 {
		pct = float64(p.seenBytes) / float64(p.totalBytes) * 100
	}
	msg := fmt.Sprintf("\rUploaded %d of %d package(s)", p.completed, p.numFiles)
	if p.failed > 0 {
		msg += fmt.Sprintf(" (%d failed)", p.failed)
	}
	return fmt.Sprintf("%s, %s / %s (%.2f%%)    ", msg, seen, size, pct)
}
