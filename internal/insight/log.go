// Package insight keeps the bounded log of insights produced by collapses.
package insight

import (
	"time"

	"github.com/starford/cfreality/internal/models"
)

// Capacity is the number of records retained.
const Capacity = 10

// Log is an append-only sequence holding at most Capacity records, oldest
// evicted first. The zero value is an empty log.
type Log struct {
	records []models.InsightRecord
}

// Restore returns a log holding the most recent Capacity records of rs.
func Restore(rs []models.InsightRecord) *Log {
	return &Log{records: append([]models.InsightRecord(nil), Tail(rs)...)}
}

// Append stamps text with now and pushes it, evicting from the front.
func (l *Log) Append(text string, now time.Time) models.InsightRecord {
	r := models.InsightRecord{Text: text, Timestamp: now.UnixMilli()}
	l.records = append(l.records, r)
	if over := len(l.records) - Capacity; over > 0 {
		l.records = append(l.records[:0:0], l.records[over:]...)
	}
	return r
}

// Len is the number of retained records.
func (l *Log) Len() int { return len(l.records) }

// Records returns a copy in storage order, oldest first.
func (l *Log) Records() []models.InsightRecord {
	out := make([]models.InsightRecord, len(l.records))
	copy(out, l.records)
	return out
}

// List returns a copy for display, newest first.
func (l *Log) List() []models.InsightRecord {
	out := make([]models.InsightRecord, len(l.records))
	for i, r := range l.records {
		out[len(l.records)-1-i] = r
	}
	return out
}

// Tail returns the last Capacity elements of rs (sharing rs' backing array).
func Tail(rs []models.InsightRecord) []models.InsightRecord {
	if len(rs) > Capacity {
		return rs[len(rs)-Capacity:]
	}
	return rs
}
