package alert

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultTriggerKey = "v"
	DefaultWindow     = 2000 * time.Millisecond
)

// Detector recognises two presses of the trigger key within the window.
// It keeps only the time of the first press of the current window, so no
// timers are involved and an expired press is simply replaced.
type Detector struct {
	mu     sync.Mutex
	key    string
	window time.Duration
	now    func() time.Time

	first time.Time
	armed bool
}

func NewDetector(key string, window time.Duration, now func() time.Time) *Detector {
	if key == "" {
		key = DefaultTriggerKey
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Detector{
		key:    strings.ToLower(key),
		window: window,
		now:    now,
	}
}

// Qualifies reports whether key is the trigger key, ignoring case.
func (d *Detector) Qualifies(key string) bool {
	return strings.ToLower(key) == d.key
}

// Press feeds one key press. It returns true when the press completes a
// double press; the window is then cleared.
func (d *Detector) Press(key string) bool {
	if !d.Qualifies(key) {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.armed && now.Sub(d.first) <= d.window {
		d.armed = false
		d.first = time.Time{}
		return true
	}

	d.first = now
	d.armed = true
	return false
}

// Pending reports whether a first press is waiting inside the window.
func (d *Detector) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed && d.now().Sub(d.first) <= d.window
}

func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.armed = false
	d.first = time.Time{}
}
