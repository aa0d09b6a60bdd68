package batchocr

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"scripture/internal/objectstore"
)

func TestOutputURI(t *testing.T) {
	tests := []struct {
		base    string
		seq     int
		perFile bool
		want    string
	}{
		{"gs://b/out/", 1, false, "gs://b/out/18_Job/"},
		{"gs://b/out", 1, false, "gs://b/out/18_Job/"},
		{"gs://b/out/", 7, true, "gs://b/out/18_Job/file_007/"},
		{"gs://b/out/", 123, true, "gs://b/out/18_Job/file_123/"},
	}
	for _, tt := range tests {
		if got := OutputURI(tt.base, "18_Job", tt.seq, tt.perFile); got != tt.want {
			t.Errorf("OutputURI(%q, %d, %v) = %q, want %q", tt.base, tt.seq, tt.perFile, got, tt.want)
		}
	}
}

func TestProcessorName(t *testing.T) {
	if got := ProcessorName("p", "us", "abc", ""); got != "projects/p/locations/us/processors/abc" {
		t.Errorf("ProcessorName = %q", got)
	}
	if got := ProcessorName("p", "eu", "abc", "v2"); got != "projects/p/locations/eu/processors/abc/processorVersions/v2" {
		t.Errorf("ProcessorName with version = %q", got)
	}
}

func TestRequestValidate(t *testing.T) {
	if err := (&Request{OutputURI: "gs://b/o/"}).Validate(); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("empty request err = %v", err)
	}
	if err := NewFileRequest("L", "gs://b/a.pdf", "out/").Validate(); err == nil {
		t.Error("relative output URI accepted")
	}
	if err := NewFileRequest("L", "gs://b/a.pdf", "gs://b/out/").Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestBuildDocumentAIRequest(t *testing.T) {
	req := NewFileRequest("L", "gs://b/a.pdf", "gs://b/out/L/")
	pb := BuildDocumentAIRequest("projects/p/locations/us/processors/x", req)

	docs := pb.GetInputDocuments().GetGcsDocuments().GetDocuments()
	if len(docs) != 1 || docs[0].GetGcsUri() != "gs://b/a.pdf" || docs[0].GetMimeType() != MimeTypePDF {
		t.Errorf("documents = %v", docs)
	}
	if got := pb.GetDocumentOutputConfig().GetGcsOutputConfig().GetGcsUri(); got != "gs://b/out/L/" {
		t.Errorf("output = %q", got)
	}

	prefix := BuildDocumentAIRequest("x", NewPrefixRequest("L", "gs://b/in/L/", "gs://b/out/L/"))
	if _, ok := prefix.GetInputDocuments().GetSource().(*documentaipb.BatchDocumentsInputConfig_GcsPrefix); !ok {
		t.Errorf("prefix request source = %T", prefix.GetInputDocuments().GetSource())
	}
	if got := prefix.GetInputDocuments().GetGcsPrefix().GetGcsUriPrefix(); got != "gs://b/in/L/" {
		t.Errorf("prefix = %q", got)
	}
}

func TestBuildVisionRequest(t *testing.T) {
	req := &Request{
		Label:     "L",
		Documents: []Document{{URI: "gs://b/in/a.pdf"}, {URI: "gs://b/in/b.PDF"}},
		OutputURI: "gs://b/out/L/",
	}
	pb := BuildVisionRequest(req)
	if len(pb.GetRequests()) != 2 {
		t.Fatalf("requests = %d", len(pb.GetRequests()))
	}
	r := pb.GetRequests()[1]
	if r.GetOutputConfig().GetGcsDestination().GetUri() != "gs://b/out/L/b_" {
		t.Errorf("destination = %q", r.GetOutputConfig().GetGcsDestination().GetUri())
	}
	if r.GetFeatures()[0].GetType() != visionpb.Feature_DOCUMENT_TEXT_DETECTION {
		t.Errorf("feature = %v", r.GetFeatures()[0].GetType())
	}
	if r.GetInputConfig().GetMimeType() != MimeTypePDF {
		t.Errorf("mime = %q", r.GetInputConfig().GetMimeType())
	}
}

func TestPreflightRejectsNonPDF(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	store.Put("in/a.pdf", []byte("not a pdf"))

	_, err := NewPreflight(store, 0).Check(context.Background(), "in/a.pdf")
	var batchErr *BatchError
	if !errors.As(err, &batchErr) || batchErr.Op != "Preflight" {
		t.Fatalf("err = %v, want preflight BatchError", err)
	}

	_, err = NewPreflight(store, 0).Check(context.Background(), "in/missing.pdf")
	if !errors.Is(err, objectstore.ErrNotFound) {
		t.Errorf("missing object err = %v", err)
	}
}

func TestBatchErrorWrapping(t *testing.T) {
	err := WrapBatchError("Submit", "L", ErrOperationFailed, "details")
	if !errors.Is(err, ErrOperationFailed) {
		t.Error("BatchError should match its cause")
	}
	if again := WrapBatchError("Flatten", "L", err, ""); again != err {
		t.Error("already wrapped errors should be returned unchanged")
	}
	if WrapBatchError("Submit", "L", nil, "") != nil {
		t.Error("nil error should stay nil")
	}
	if got := err.Error(); got != "batchocr: Submit L failed: details: batch operation failed" {
		t.Errorf("Error() = %q", got)
	}
}
