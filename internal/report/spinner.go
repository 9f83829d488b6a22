package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// spinnerInterval is the default time between frames.
const spinnerInterval = 80 * time.Millisecond

var (
	asciiFrames   = []string{"-", "\\", "|", "/"}
	unicodeFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
)

// spinner redraws "<frame> <message>" in place until stopped. The first
// frame is drawn by start, so even a short operation shows one.
type spinner struct {
	w        io.Writer
	message  string
	frames   []string
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func newSpinner(w io.Writer, message string, frames []string, interval time.Duration) *spinner {
	return &spinner{w: w, message: message, frames: frames, interval: interval}
}

func (s *spinner) start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.render(0)
	go s.run()
}

// halt stops the animation and clears the line. Safe to call repeatedly.
func (s *spinner) halt() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stop)
	<-s.done
}

func (s *spinner) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frame := 1
	for {
		select {
		case <-s.stop:
			s.clear()
			return
		case <-ticker.C:
			s.render(frame)
			frame++
		}
	}
}

func (s *spinner) render(frame int) {
	fmt.Fprintf(s.w, "\r%s %s", s.frames[frame%len(s.frames)], s.message)
}

func (s *spinner) clear() {
	width := utf8.RuneCountInString(s.message) + 2
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width))
}
