package batchocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"scripture/internal/logger"
)

// DefaultWaitTimeout bounds the wait for one batch operation.
const DefaultWaitTimeout = 30 * time.Minute

// DocumentAIConfig holds the processor coordinates for DocumentAISubmitter.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
	WaitTimeout      time.Duration
}

// ProcessorName returns the resource name requests are sent to.
func (c DocumentAIConfig) ProcessorName() string {
	return ProcessorName(c.ProjectID, c.Location, c.ProcessorID, c.ProcessorVersion)
}

// DocumentAISubmitter runs Document AI batch processing.
type DocumentAISubmitter struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAISubmitter creates a client on the regional endpoint for
// config.Location.
func NewDocumentAISubmitter(ctx context.Context, config DocumentAIConfig, opts ...option.ClientOption) (*DocumentAISubmitter, error) {
	const op = "NewDocumentAISubmitter"

	if config.ProjectID == "" || config.ProcessorID == "" {
		return nil, NewBatchError(op, "", fmt.Errorf("project and processor id are required"), "")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = DefaultWaitTimeout
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
	clientOptions := append([]option.ClientOption{option.WithEndpoint(endpoint)}, opts...)

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, WrapBatchError(op, "", err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return &DocumentAISubmitter{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}, nil
}

// Submit implements Submitter.
func (s *DocumentAISubmitter) Submit(ctx context.Context, req *Request) error {
	if err := req.Validate(); err != nil {
		return NewBatchError("Submit", req.Label, err, "")
	}

	op, err := s.client.BatchProcessDocuments(ctx, BuildDocumentAIRequest(s.config.ProcessorName(), req))
	if err != nil {
		return err
	}
	s.log.Info().
		Str("label", req.Label).
		Str("operation", op.Name()).
		Int("documents", len(req.Documents)).
		Str("output", req.OutputURI).
		Msg("Batch operation started")

	waitCtx, cancel := context.WithTimeout(ctx, s.config.WaitTimeout)
	defer cancel()

	start := time.Now()
	if _, err := op.Wait(waitCtx); err != nil {
		return err
	}

	if md, err := op.Metadata(); err == nil && md != nil {
		var failed []string
		for _, st := range md.GetIndividualProcessStatuses() {
			if st.GetStatus().GetCode() != 0 {
				failed = append(failed, fmt.Sprintf("%s: %s", st.GetInputGcsSource(), st.GetStatus().GetMessage()))
			}
		}
		if len(failed) > 0 {
			return NewBatchError("Submit", req.Label, ErrOperationFailed, strings.Join(failed, "; "))
		}
	}

	s.log.Info().
		Str("label", req.Label).
		Str("operation", op.Name()).
		Dur("elapsed", time.Since(start)).
		Msg("Batch operation completed")
	return nil
}

// Close closes the underlying client.
func (s *DocumentAISubmitter) Close() error {
	return s.client.Close()
}

// BuildDocumentAIRequest converts req into a BatchProcessRequest for processor.
func BuildDocumentAIRequest(processor string, req *Request) *documentaipb.BatchProcessRequest {
	input := &documentaipb.BatchDocumentsInputConfig{}
	if len(req.Documents) > 0 {
		docs := make([]*documentaipb.GcsDocument, 0, len(req.Documents))
		for _, d := range req.Documents {
			mime := d.MimeType
			if mime == "" {
				mime = MimeTypePDF
			}
			docs = append(docs, &documentaipb.GcsDocument{GcsUri: d.URI, MimeType: mime})
		}
		input.Source = &documentaipb.BatchDocumentsInputConfig_GcsDocuments{
			GcsDocuments: &documentaipb.GcsDocuments{Documents: docs},
		}
	} else {
		input.Source = &documentaipb.BatchDocumentsInputConfig_GcsPrefix{
			GcsPrefix: &documentaipb.GcsPrefix{GcsUriPrefix: req.InputPrefix},
		}
	}

	return &documentaipb.BatchProcessRequest{
		Name:           processor,
		InputDocuments: input,
		DocumentOutputConfig: &documentaipb.DocumentOutputConfig{
			Destination: &documentaipb.DocumentOutputConfig_GcsOutputConfig_{
				GcsOutputConfig: &documentaipb.DocumentOutputConfig_GcsOutputConfig{
					GcsUri: req.OutputURI,
				},
			},
		},
	}
}
