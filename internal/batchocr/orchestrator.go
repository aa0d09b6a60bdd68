package batchocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"scripture/internal/discovery"
	"scripture/internal/flatten"
	"scripture/internal/labels"
	"scripture/internal/ledger"
	"scripture/internal/logger"
	"scripture/internal/objectstore"
)

// Unit statuses reported in UnitResult.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusPlanned   = "planned"
)

// Options controls one orchestrator run.
type Options struct {
	InputPrefix   string
	OutputPrefix  string
	PerFileOutput bool
	PrefixMode    bool
	StartFrom     int
	UnitPause     time.Duration
	DryRun        bool
}

// FileResult is the outcome of one submitted file.
type FileResult struct {
	Label string
	Index int
	Total int
	URI   string
	Pages int
	Err   error
}

// UnitResult is the outcome of one input subdirectory.
type UnitResult struct {
	Source    string
	Label     string
	Status    string
	Files     int
	Succeeded int
	Failed    int
	Flattened int
	Reason    string
	Err       error
}

// RunReport aggregates a run.
type RunReport struct {
	Units     []UnitResult
	Succeeded int
	Failed    int
	Skipped   int
}

// Orchestrator walks the input prefix one subdirectory at a time, submits
// its PDFs, flattens the output and records the unit in the ledger.
type Orchestrator struct {
	opts       Options
	bucket     string
	discoverer *discovery.Discoverer
	submitter  Submitter
	flattener  *flatten.Flattener
	ledger     ledger.Ledger
	labels     labels.Table
	preflight  *Preflight

	// Progress, when set, is called after every file.
	Progress func(FileResult)

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	log   zerolog.Logger
}

// NewOrchestrator wires the components for a run. A nil ledger disables
// completion tracking; a nil preflight submits files unchecked.
func NewOrchestrator(opts Options, d *discovery.Discoverer, s Submitter, f *flatten.Flattener, l ledger.Ledger, table labels.Table, p *Preflight) *Orchestrator {
	if l == nil {
		l = ledger.Nop{}
	}
	return &Orchestrator{
		opts:       opts,
		bucket:     d.Store().Bucket(),
		discoverer: d,
		submitter:  s,
		flattener:  f,
		ledger:     l,
		labels:     table,
		preflight:  p,
		sleep:      sleepContext,
		now:        time.Now,
		log:        logger.WithComponent("orchestrator"),
	}
}

// Run processes every unit under the input prefix. Per-file and per-unit
// failures are recorded in the report and do not stop the run; only listing
// the input prefix and context cancellation end it early.
func (o *Orchestrator) Run(ctx context.Context) (RunReport, error) {
	var report RunReport

	subdirs, err := o.discoverer.Subdirectories(ctx, o.opts.InputPrefix)
	if err != nil {
		return report, WrapBatchError("Discover", "", err, o.opts.InputPrefix)
	}
	o.log.Info().Str("prefix", o.opts.InputPrefix).Int("units", len(subdirs)).Msg("Discovered units")

	processed := 0
	for _, sub := range subdirs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		label := o.labels.Canonical(sub.Name)
		if reason, skip := o.skipReason(ctx, sub, label); skip {
			o.log.Info().Str("label", label).Str("reason", reason).Msg("Skipping unit")
			report.add(UnitResult{Source: sub.Key, Label: label, Status: StatusSkipped, Reason: reason})
			continue
		}

		if processed > 0 && !o.opts.DryRun && o.opts.UnitPause > 0 {
			if err := o.sleep(ctx, o.opts.UnitPause); err != nil {
				return report, err
			}
		}
		processed++

		unit := o.runUnit(ctx, sub, label)
		report.add(unit)
		if errors.Is(unit.Err, context.Canceled) {
			return report, ctx.Err()
		}
	}

	return report, nil
}

func (o *Orchestrator) skipReason(ctx context.Context, sub discovery.Subdirectory, label string) (string, bool) {
	if o.opts.StartFrom > 0 {
		n, ok := labels.Number(label)
		if !ok {
			n, ok = labels.Number(sub.Name)
		}
		if !ok || n < o.opts.StartFrom {
			return fmt.Sprintf("before start label %d", o.opts.StartFrom), true
		}
	}

	done, err := o.ledger.Done(ctx, label)
	if err != nil {
		o.log.Warn().Err(err).Str("label", label).Msg("Ledger lookup failed, processing unit")
		return "", false
	}
	if done {
		return "already recorded in ledger", true
	}
	return "", false
}

func (o *Orchestrator) runUnit(ctx context.Context, sub discovery.Subdirectory, label string) UnitResult {
	log := logger.WithLabel("orchestrator", label).With().Str("source", sub.Key).Logger()
	unit := UnitResult{Source: sub.Key, Label: label}

	files, err := o.discoverer.Files(ctx, sub.Prefix, ".pdf")
	if err != nil {
		return unit.fail(WrapBatchError("ListFiles", label, err, sub.Key))
	}
	unit.Files = len(files)
	if len(files) == 0 {
		log.Warn().Msg("No PDF files found")
		return unit.fail(NewBatchError("ListFiles", label, ErrNoDocuments, sub.Key))
	}

	if o.opts.DryRun {
		unit.Status = StatusPlanned
		for i, f := range files {
			o.report(FileResult{Label: label, Index: i + 1, Total: len(files), URI: objectstore.URI(o.bucket, f.Name)})
		}
		return unit
	}

	if o.opts.PrefixMode {
		req := NewPrefixRequest(label, objectstore.URI(o.bucket, sub.Prefix), OutputURI(objectstore.URI(o.bucket, o.opts.OutputPrefix), label, 0, false))
		err := o.submitter.Submit(ctx, req)
		o.report(FileResult{Label: label, Index: 1, Total: 1, URI: req.InputPrefix, Err: err})
		if err != nil {
			unit.Failed = len(files)
		} else {
			unit.Succeeded = len(files)
		}
	} else {
		for i, f := range files {
			res := o.submitFile(ctx, label, f, i+1, len(files))
			o.report(res)
			if res.Err != nil {
				unit.Failed++
				if errors.Is(res.Err, context.Canceled) {
					return unit.fail(res.Err)
				}
				continue
			}
			unit.Succeeded++
		}
	}

	if unit.Succeeded == 0 {
		log.Error().Int("files", unit.Files).Msg("All files failed")
		return unit.fail(NewBatchError("Submit", label, ErrOperationFailed, "all files failed"))
	}

	result, err := o.flattener.Flatten(ctx, o.opts.OutputPrefix, label)
	unit.Flattened = result.Moved
	if err != nil {
		return unit.fail(WrapBatchError("Flatten", label, err, ""))
	}

	unit.Status = StatusSucceeded
	entry := ledger.Entry{
		Label:       label,
		Source:      sub.Key,
		Files:       unit.Files,
		Succeeded:   unit.Succeeded,
		Failed:      unit.Failed,
		CompletedAt: o.now().UTC(),
	}
	if err := o.ledger.MarkDone(ctx, entry); err != nil {
		log.Warn().Err(err).Msg("Failed to record unit in ledger")
	}

	log.Info().
		Int("succeeded", unit.Succeeded).
		Int("failed", unit.Failed).
		Int("flattened", unit.Flattened).
		Msg("Unit completed")
	return unit
}

func (o *Orchestrator) submitFile(ctx context.Context, label string, f objectstore.Object, index, total int) FileResult {
	res := FileResult{Label: label, Index: index, Total: total, URI: objectstore.URI(o.bucket, f.Name)}

	if o.preflight != nil {
		pages, err := o.preflight.Check(ctx, f.Name)
		res.Pages = pages
		if err != nil {
			res.Err = err
			return res
		}
	}

	out := OutputURI(objectstore.URI(o.bucket, o.opts.OutputPrefix), label, index, o.opts.PerFileOutput)
	res.Err = o.submitter.Submit(ctx, NewFileRequest(label, res.URI, out))
	return res
}

func (o *Orchestrator) report(r FileResult) {
	if o.Progress != nil {
		o.Progress(r)
	}
}

func (u UnitResult) fail(err error) UnitResult {
	u.Status = StatusFailed
	u.Err = err
	return u
}

func (r *RunReport) add(u UnitResult) {
	r.Units = append(r.Units, u)
	switch u.Status {
	case StatusSucceeded, StatusPlanned:
		r.Succeeded++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}
