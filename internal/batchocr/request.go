package batchocr

import (
	"fmt"
	"path"
	"strings"
)

// MimeTypePDF is the only input type the pipeline submits.
const MimeTypePDF = "application/pdf"

// Document is one input file of a batch request.
type Document struct {
	URI      string
	MimeType string
}

// Request describes one batch operation.
type Request struct {
	// Label is the canonical label of the unit, used for logging and errors.
	Label string

	// Documents lists individual input files. When empty, InputPrefix is used.
	Documents []Document

	// InputPrefix is a gs:// prefix whose objects are all processed.
	InputPrefix string

	// OutputURI is the gs:// prefix the service writes results under.
	OutputURI string
}

// Validate checks that the request can be submitted.
func (r *Request) Validate() error {
	if len(r.Documents) == 0 && r.InputPrefix == "" {
		return ErrNoDocuments
	}
	if !strings.HasPrefix(r.OutputURI, "gs://") {
		return fmt.Errorf("output URI %q is not a gs:// URI", r.OutputURI)
	}
	for _, d := range r.Documents {
		if !strings.HasPrefix(d.URI, "gs://") {
			return fmt.Errorf("document URI %q is not a gs:// URI", d.URI)
		}
	}
	return nil
}

// NewFileRequest builds a request for a single PDF.
func NewFileRequest(label, uri, outputURI string) *Request {
	return &Request{
		Label:     label,
		Documents: []Document{{URI: uri, MimeType: MimeTypePDF}},
		OutputURI: outputURI,
	}
}

// NewPrefixRequest builds a request that processes every object under inputPrefix.
func NewPrefixRequest(label, inputPrefix, outputURI string) *Request {
	return &Request{
		Label:       label,
		InputPrefix: inputPrefix,
		OutputURI:   outputURI,
	}
}

// ProcessorName returns the full resource name of a Document AI processor,
// or of a specific processor version when version is set.
func ProcessorName(project, location, processor, version string) string {
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processor)
	if version != "" {
		name += "/processorVersions/" + version
	}
	return name
}

// OutputURI returns the destination prefix for a unit. With perFile set each
// input file gets its own file_NNN subdirectory, numbered from 1.
func OutputURI(base, label string, seq int, perFile bool) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if perFile {
		return fmt.Sprintf("%s%s/file_%03d/", base, label, seq)
	}
	return base + label + "/"
}

// stem returns the file name of uri without its extension.
func stem(uri string) string {
	base := path.Base(uri)
	return strings.TrimSuffix(base, path.Ext(base))
}
