// Package batchocr submits scanned PDFs in Cloud Storage to an asynchronous
// OCR batch service and waits for the results to land back in the bucket.
//
// Two engines are supported:
//   - Document AI batch processing (BatchProcessDocuments) against a
//     configured OCR processor
//   - Cloud Vision asynchronous file annotation (AsyncBatchAnnotateFiles)
//
// Both are driven through the Submitter interface. Retrier wraps a Submitter
// with exponential backoff for quota errors, and Orchestrator walks the input
// tree one unit at a time. Submissions are never made concurrently: the
// project quota for concurrent batch jobs is small and shared.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID
//   - DOCUMENT_AI_PROCESSOR_ID: processor for the documentai engine
package batchocr

import (
	"context"
)

// Submitter starts one batch operation and blocks until it finishes.
type Submitter interface {
	// Submit returns nil once the operation has completed successfully.
	// Implementations bound the wait with their own timeout.
	Submit(ctx context.Context, req *Request) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req *Request) error

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, req *Request) error {
	return f(ctx, req)
}
