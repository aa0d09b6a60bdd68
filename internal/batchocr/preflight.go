package batchocr

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"

	"scripture/internal/logger"
	"scripture/internal/objectstore"
)

// Preflight downloads a PDF and counts its pages before it is submitted, so
// that files the processor would reject for size are skipped up front.
type Preflight struct {
	store    objectstore.Store
	maxPages int
	conf     *model.Configuration
	log      zerolog.Logger
}

// NewPreflight returns a check with the given page limit. A limit of zero or
// less disables the limit but still validates that the file parses as a PDF.
func NewPreflight(store objectstore.Store, maxPages int) *Preflight {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Preflight{
		store:    store,
		maxPages: maxPages,
		conf:     conf,
		log:      logger.WithComponent("preflight"),
	}
}

// Check returns the page count of name.
func (p *Preflight) Check(ctx context.Context, name string) (int, error) {
	const op = "Preflight"

	data, err := p.store.Open(ctx, name)
	if err != nil {
		return 0, WrapBatchError(op, "", err, name)
	}

	pages, err := api.PageCount(bytes.NewReader(data), p.conf)
	if err != nil {
		return 0, NewBatchError(op, "", err, fmt.Sprintf("%s is not a readable PDF", name))
	}
	if p.maxPages > 0 && pages > p.maxPages {
		return pages, NewBatchError(op, "", ErrTooManyPages, fmt.Sprintf("%s has %d pages, limit is %d", name, pages, p.maxPages))
	}

	p.log.Debug().Str("object", name).Int("pages", pages).Msg("Preflight passed")
	return pages, nil
}
