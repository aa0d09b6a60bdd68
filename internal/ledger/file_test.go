package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")

	l, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile on missing file: %v", err)
	}
	if done, _ := l.Done(ctx, "18_Job"); done {
		t.Fatal("empty ledger reports 18_Job done")
	}

	entry := Entry{Label: "18_Job", Source: "주석/18_욥기/", Files: 4, Succeeded: 4, CompletedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	if err := l.MarkDone(ctx, entry); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	done, err := reopened.Done(ctx, "18_Job")
	if err != nil || !done {
		t.Fatalf("Done after reopen = %v, %v", done, err)
	}
	entries := reopened.Entries()
	if len(entries) != 1 || entries[0].Source != entry.Source || !entries[0].CompletedAt.Equal(entry.CompletedAt) {
		t.Errorf("entries = %+v", entries)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestFileLedgerRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNop(t *testing.T) {
	var l Ledger = Nop{}
	if err := l.MarkDone(context.Background(), Entry{Label: "x"}); err != nil {
		t.Fatal(err)
	}
	if done, _ := l.Done(context.Background(), "x"); done {
		t.Error("Nop ledger should never report done")
	}
}
