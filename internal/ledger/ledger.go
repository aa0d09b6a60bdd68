// Package ledger records which units of the batch OCR run have completed so
// that a rerun does not submit them again.
package ledger

import (
	"context"
	"time"
)

// Entry is the record kept for one completed unit.
type Entry struct {
	Label       string    `json:"label" firestore:"label"`
	Source      string    `json:"source" firestore:"source"`
	Files       int       `json:"files" firestore:"files"`
	Succeeded   int       `json:"succeeded" firestore:"succeeded"`
	Failed      int       `json:"failed" firestore:"failed"`
	CompletedAt time.Time `json:"completed_at" firestore:"completedAt"`
}

// Ledger is implemented by every backend.
type Ledger interface {
	// Done reports whether label has a completion record.
	Done(ctx context.Context, label string) (bool, error)

	// MarkDone stores e, replacing any previous record for e.Label.
	MarkDone(ctx context.Context, e Entry) error
}

// Nop never records anything.
type Nop struct{}

// Done implements Ledger.
func (Nop) Done(context.Context, string) (bool, error) { return false, nil }

// MarkDone implements Ledger.
func (Nop) MarkDone(context.Context, Entry) error { return nil }
