package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileLedger keeps entries in a JSON file keyed by label. The whole file is
// rewritten through a temporary file and a rename on every mark.
type FileLedger struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
}

// OpenFile loads the ledger at path. A missing file is an empty ledger.
func OpenFile(path string) (*FileLedger, error) {
	l := &FileLedger{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}
	if len(data) == 0 {
		return l, nil
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", path, err)
	}
	return l, nil
}

// Done implements Ledger.
func (l *FileLedger) Done(_ context.Context, label string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[label]
	return ok, nil
}

// MarkDone implements Ledger.
func (l *FileLedger) MarkDone(_ context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[e.Label] = e
	return l.save()
}

// Entries returns all records sorted by label.
func (l *FileLedger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (l *FileLedger) save() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("failed to replace ledger %s: %w", l.path, err)
	}
	return nil
}
