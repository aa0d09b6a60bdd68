package batchocr

import (
	"context"
	"fmt"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"scripture/internal/logger"
)

// visionBatchSize is the number of pages Vision writes into each output file.
const visionBatchSize = 20

// VisionSubmitter runs Cloud Vision asynchronous file annotation with
// DOCUMENT_TEXT_DETECTION. It only accepts requests with explicit documents.
type VisionSubmitter struct {
	client      *vision.ImageAnnotatorClient
	waitTimeout time.Duration
	log         zerolog.Logger
}

// NewVisionSubmitter creates an image annotator client.
func NewVisionSubmitter(ctx context.Context, waitTimeout time.Duration, opts ...option.ClientOption) (*VisionSubmitter, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, WrapBatchError("NewVisionSubmitter", "", err, "failed to create Vision client")
	}
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	return &VisionSubmitter{
		client:      client,
		waitTimeout: waitTimeout,
		log:         logger.WithComponent("vision"),
	}, nil
}

// Submit implements Submitter.
func (s *VisionSubmitter) Submit(ctx context.Context, req *Request) error {
	if err := req.Validate(); err != nil {
		return NewBatchError("Submit", req.Label, err, "")
	}
	if len(req.Documents) == 0 {
		return NewBatchError("Submit", req.Label, ErrNoDocuments, "prefix input is not supported by the vision engine")
	}

	op, err := s.client.AsyncBatchAnnotateFiles(ctx, BuildVisionRequest(req))
	if err != nil {
		return err
	}
	s.log.Info().
		Str("label", req.Label).
		Str("operation", op.Name()).
		Int("documents", len(req.Documents)).
		Msg("Annotation operation started")

	waitCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	resp, err := op.Wait(waitCtx)
	if err != nil {
		return err
	}
	if n := len(resp.GetResponses()); n != len(req.Documents) {
		return NewBatchError("Submit", req.Label, ErrOperationFailed, fmt.Sprintf("expected %d responses, got %d", len(req.Documents), n))
	}

	s.log.Info().Str("label", req.Label).Str("operation", op.Name()).Msg("Annotation operation completed")
	return nil
}

// Close closes the underlying client.
func (s *VisionSubmitter) Close() error {
	return s.client.Close()
}

// BuildVisionRequest converts req into one file request per document. Output
// for each document goes under req.OutputURI with the document's stem as the
// file name prefix.
func BuildVisionRequest(req *Request) *visionpb.AsyncBatchAnnotateFilesRequest {
	out := &visionpb.AsyncBatchAnnotateFilesRequest{}
	for _, d := range req.Documents {
		mime := d.MimeType
		if mime == "" {
			mime = MimeTypePDF
		}
		out.Requests = append(out.Requests, &visionpb.AsyncAnnotateFileRequest{
			InputConfig: &visionpb.InputConfig{
				GcsSource: &visionpb.GcsSource{Uri: d.URI},
				MimeType:  mime,
			},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
			},
			OutputConfig: &visionpb.OutputConfig{
				GcsDestination: &visionpb.GcsDestination{Uri: req.OutputURI + stem(d.URI) + "_"},
				BatchSize:      visionBatchSize,
			},
		})
	}
	return out
}
