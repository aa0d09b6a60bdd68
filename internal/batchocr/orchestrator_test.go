package batchocr

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/unicode/norm"

	"scripture/internal/discovery"
	"scripture/internal/flatten"
	"scripture/internal/labels"
	"scripture/internal/ledger"
	"scripture/internal/objectstore"
)

// fakeService mimics the OCR service: for every document it writes one JSON
// result under the output URI, nested the way the real service nests them.
type fakeService struct {
	store    *objectstore.MemoryStore
	requests []*Request
	fail     map[string]error
}

func (f *fakeService) Submit(_ context.Context, req *Request) error {
	f.requests = append(f.requests, req)
	for _, d := range req.Documents {
		if err, ok := f.fail[d.URI]; ok {
			return err
		}
	}
	_, out, err := objectstore.ParseURI(req.OutputURI)
	if err != nil {
		return err
	}
	for _, d := range req.Documents {
		f.store.Put(out+"4242/0/"+stem(d.URI)+"-0.json", []byte(d.URI))
	}
	if req.InputPrefix != "" {
		f.store.Put(out+"4242/0/prefix-0.json", []byte(req.InputPrefix))
	}
	return nil
}

func newTestOrchestrator(t *testing.T, store *objectstore.MemoryStore, svc Submitter, l ledger.Ledger, opts Options) *Orchestrator {
	t.Helper()
	if opts.InputPrefix == "" {
		opts.InputPrefix = "주석/"
	}
	if opts.OutputPrefix == "" {
		opts.OutputPrefix = "out/"
	}
	o := NewOrchestrator(opts, discovery.New(store), svc, flatten.New(store), l, labels.Default(), nil)
	o.sleep = func(context.Context, time.Duration) error { return nil }
	return o
}

func seedScans(store *objectstore.MemoryStore) {
	store.Put(norm.NFD.String("주석/01_창세기/창세기_01.pdf"), []byte("%PDF"))
	store.Put(norm.NFD.String("주석/01_창세기/창세기_02.pdf"), []byte("%PDF"))
	store.Put("주석/18_욥기/욥기_01.pdf", []byte("%PDF"))
	store.Put("주석/18_욥기/notes.txt", []byte("skip"))
}

func TestOrchestratorRun(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore("scans")
	seedScans(store)
	svc := &fakeService{store: store}
	l, err := ledger.OpenFile(filepath.Join(t.TempDir(), "ledger.json"))
	if err != nil {
		t.Fatal(err)
	}

	var progress []FileResult
	o := newTestOrchestrator(t, store, svc, l, Options{PerFileOutput: true})
	o.Progress = func(r FileResult) { progress = append(progress, r) }

	report, err := o.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Succeeded != 2 || report.Failed != 0 || report.Skipped != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(svc.requests) != 3 || len(progress) != 3 {
		t.Fatalf("requests = %d, progress = %d, want 3", len(svc.requests), len(progress))
	}

	first := svc.requests[0]
	if first.OutputURI != "gs://scans/out/01_Genesis/file_001/" {
		t.Errorf("OutputURI = %q", first.OutputURI)
	}
	if !strings.HasPrefix(first.Documents[0].URI, "gs://scans/"+norm.NFD.String("주석/01_창세기/")) {
		t.Errorf("document URI should use the stored spelling: %q", first.Documents[0].URI)
	}

	for _, name := range []string{
		"out/01_Genesis_file001_" + norm.NFD.String("창세기_01") + "-0.json",
		"out/01_Genesis_file002_" + norm.NFD.String("창세기_02") + "-0.json",
		"out/18_Job_file001_욥기_01-0.json",
	} {
		if _, err := store.Open(ctx, name); err != nil {
			t.Errorf("expected flattened output %s: %v", name, err)
		}
	}
	for _, n := range store.Names() {
		if strings.HasPrefix(n, "out/01_Genesis/") || strings.HasPrefix(n, "out/18_Job/") {
			t.Errorf("nested output left behind: %s", n)
		}
	}

	for _, label := range []string{"01_Genesis", "18_Job"} {
		if done, _ := l.Done(ctx, label); !done {
			t.Errorf("%s not recorded in ledger", label)
		}
	}

	// A second run finds everything in the ledger.
	svc.requests = nil
	report, err = newTestOrchestrator(t, store, svc, l, Options{}).Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Skipped != 2 || len(svc.requests) != 0 {
		t.Errorf("second run report = %+v, requests = %d", report, len(svc.requests))
	}
}

func TestOrchestratorStartFrom(t *testing.T) {
	store := objectstore.NewMemoryStore("scans")
	seedScans(store)
	svc := &fakeService{store: store}

	report, err := newTestOrchestrator(t, store, svc, nil, Options{StartFrom: 18}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Skipped != 1 || report.Succeeded != 1 {
		t.Errorf("report = %+v", report)
	}
	for _, r := range svc.requests {
		if r.Label != "18_Job" {
			t.Errorf("unexpected submission for %s", r.Label)
		}
	}
}

func TestOrchestratorCountsFileFailures(t *testing.T) {
	store := objectstore.NewMemoryStore("scans")
	seedScans(store)
	svc := &fakeService{
		store: store,
		fail: map[string]error{
			"gs://scans/" + norm.NFD.String("주석/01_창세기/창세기_01.pdf"): errors.New("corrupt"),
			"gs://scans/주석/18_욥기/욥기_01.pdf":                              errors.New("corrupt"),
		},
	}

	report, err := newTestOrchestrator(t, store, svc, nil, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	genesis, job := report.Units[0], report.Units[1]
	if genesis.Succeeded != 1 || genesis.Failed != 1 || genesis.Status != StatusSucceeded {
		t.Errorf("genesis = %+v", genesis)
	}
	if job.Status != StatusFailed || !errors.Is(job.Err, ErrOperationFailed) {
		t.Errorf("job = %+v", job)
	}
}

func TestOrchestratorDryRun(t *testing.T) {
	store := objectstore.NewMemoryStore("scans")
	seedScans(store)
	svc := &fakeService{store: store}

	report, err := newTestOrchestrator(t, store, svc, nil, Options{DryRun: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(svc.requests) != 0 {
		t.Errorf("dry run submitted %d requests", len(svc.requests))
	}
	if report.Succeeded != 2 || report.Units[0].Status != StatusPlanned || report.Units[0].Files != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestOrchestratorPrefixMode(t *testing.T) {
	store := objectstore.NewMemoryStore("scans")
	store.Put("주석/18_욥기/욥기_01.pdf", []byte("%PDF"))
	svc := &fakeService{store: store}

	report, err := newTestOrchestrator(t, store, svc, nil, Options{PrefixMode: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Succeeded != 1 || len(svc.requests) != 1 {
		t.Fatalf("report = %+v, requests = %d", report, len(svc.requests))
	}
	req := svc.requests[0]
	if req.InputPrefix != "gs://scans/주석/18_욥기/" || req.OutputURI != "gs://scans/out/18_Job/" {
		t.Errorf("request = %+v", req)
	}
	if _, err := store.Open(context.Background(), "out/18_Job_prefix-0.json"); err != nil {
		t.Errorf("flattened prefix output missing: %v", err)
	}
}
