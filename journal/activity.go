package journal

import (
	"fmt"
	"sync"
	"time"
)

// Category classifies an activity entry.
type Category string

const (
	CategoryBuy  Category = "buy"
	CategorySell Category = "sell"
	CategoryInfo Category = "info"
)

// ActivityCapacity is how many entries the activity log keeps.
const ActivityCapacity = 50

// Entry is an immutable activity log line.
type Entry struct {
	Time     time.Time `json:"time"`
	Category Category  `json:"category"`
	Message  string    `json:"message"`
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// ActivityLog is a bounded, append-only record of ledger events and
// informational messages. Once full, the oldest entry is evicted.
type ActivityLog struct {
	mu    sync.RWMutex
	buf   []Entry // ring storage
	head  int     // index of the next write
	count int
	now   Clock
}

// NewActivityLog creates an empty log of ActivityCapacity entries. A nil
// clock uses time.Now.
func NewActivityLog(now Clock) *ActivityLog {
	if now == nil {
		now = time.Now
	}
	return &ActivityLog{
		buf: make([]Entry, ActivityCapacity),
		now: now,
	}
}

// Append records a new entry and returns it.
func (l *ActivityLog) Append(cat Category, msg string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{Time: l.now(), Category: cat, Message: msg}
	l.buf[l.head] = e
	l.head = (l.head + 1) % len(l.buf)
	if l.count < len(l.buf) {
		l.count++
	}
	return e
}

// Infof appends a formatted info entry.
func (l *ActivityLog) Infof(format string, args ...any) Entry {
	return l.Append(CategoryInfo, fmt.Sprintf(format, args...))
}

// Entries returns a copy of the log, newest first.
func (l *ActivityLog) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, l.count)
	for i := 1; i <= l.count; i++ {
		idx := (l.head - i + len(l.buf)) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out
}

// Len returns the number of entries held.
func (l *ActivityLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}
