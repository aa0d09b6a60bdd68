// Package flatten moves batch OCR output out of the nested layout the OCR
// service writes and into one flat, label-prefixed directory.
//
// The service writes results under
//
//	<output>/<label>/[file_NNN/]<operation>/<index>/<name>.json
//
// and Flatten turns every such object into
//
//	<output>/<label>_[fileNNN_]<name>.json
//
// Each object is copied and then deleted. There is no atomicity across the two
// steps; an interrupted run can be resumed by running Flatten again, since the
// copies already made are outside the nested prefix.
package flatten

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"scripture/internal/logger"
	"scripture/internal/objectstore"
)

// Move is one planned or completed rename.
type Move struct {
	From string
	To   string
}

// Result summarizes a Flatten call.
type Result struct {
	Moves   []Move
	Moved   int
	Markers int
	Failed  int
}

// Flattener relocates OCR output inside a single store.
type Flattener struct {
	store objectstore.Store
	log   zerolog.Logger
}

// New creates a Flattener on store.
func New(store objectstore.Store) *Flattener {
	return &Flattener{
		store: store,
		log:   logger.WithComponent("flatten"),
	}
}

// FlatName returns the flat destination for name, an object under
// outputPrefix+label+"/". When a path segment between the label and the file
// name has the form file_NNN, the sequence number is kept as "fileNNN_".
func FlatName(outputPrefix, label, name string) string {
	base := path.Base(name)
	nested := outputPrefix + label + "/"

	rel := strings.TrimPrefix(objectstore.Normalize(name), objectstore.Normalize(nested))
	dirs := strings.Split(path.Dir(rel), "/")
	for i := len(dirs) - 1; i >= 0; i-- {
		if num, ok := strings.CutPrefix(dirs[i], "file_"); ok && num != "" {
			return outputPrefix + label + "_file" + num + "_" + base
		}
	}
	return outputPrefix + label + "_" + base
}

// nestedName is the flat name that keeps every directory between the label and
// the file, e.g. out/L/op2/0/doc-0.json becomes out/L_op2_0_doc-0.json.
func nestedName(outputPrefix, label, name string) string {
	rel := strings.TrimPrefix(objectstore.Normalize(name), objectstore.Normalize(outputPrefix+label+"/"))
	dir := path.Dir(rel)
	if dir == "." {
		return outputPrefix + label + "_" + path.Base(name)
	}
	return outputPrefix + label + "_" + strings.ReplaceAll(dir, "/", "_") + "_" + path.Base(name)
}

// uniqueName returns name, or name with a numeric suffix before the extension,
// so that it is not yet a key of taken.
func uniqueName(name string, taken map[string]string) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// Plan lists the moves Flatten would make without touching the store. Every
// move has a distinct destination: when two objects share a FlatName, the
// later one keeps its directory path in the flat name.
func (f *Flattener) Plan(ctx context.Context, outputPrefix, label string) ([]Move, []objectstore.Object, error) {
	objs, err := objectstore.ListAll(ctx, f.store, outputPrefix+label+"/")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list output for %s: %w", label, err)
	}

	var moves []Move
	var markers []objectstore.Object
	targets := make(map[string]string)
	for _, o := range objs {
		if o.IsDirMarker() {
			markers = append(markers, o)
			continue
		}
		to := FlatName(outputPrefix, label, o.Name)
		if prev, dup := targets[to]; dup {
			alt := uniqueName(nestedName(outputPrefix, label, o.Name), targets)
			f.log.Warn().Str("target", to).Str("first", prev).Str("second", o.Name).Str("renamed", alt).Msg("Two outputs flatten to the same name, keeping the directory path")
			to = alt
		}
		targets[to] = o.Name
		moves = append(moves, Move{From: o.Name, To: to})
	}
	return moves, markers, nil
}

// Flatten moves every non-marker object under outputPrefix+label+"/" to its
// FlatName and then removes the directory markers left behind. Errors on
// individual objects do not stop the run; they are joined and returned with
// the partial Result.
func (f *Flattener) Flatten(ctx context.Context, outputPrefix, label string) (Result, error) {
	log := f.log.With().Str("label", label).Logger()
	var result Result

	moves, _, err := f.Plan(ctx, outputPrefix, label)
	if err != nil {
		return result, err
	}
	if len(moves) == 0 {
		log.Warn().Str("prefix", outputPrefix+label+"/").Msg("No output files found")
	}

	var errs []error
	for _, m := range moves {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := f.move(ctx, m); err != nil {
			log.Error().Err(err).Str("from", m.From).Msg("Failed to move output")
			result.Failed++
			errs = append(errs, err)
			continue
		}
		log.Debug().Str("from", m.From).Str("to", m.To).Msg("Moved output")
		result.Moves = append(result.Moves, m)
		result.Moved++
	}

	// Markers are re-listed so that only what is left after the moves is swept.
	_, markers, err := f.Plan(ctx, outputPrefix, label)
	if err != nil {
		errs = append(errs, err)
	}
	for _, o := range markers {
		if err := f.store.Delete(ctx, o.Name); err != nil && !errors.Is(err, objectstore.ErrNotFound) {
			log.Warn().Err(err).Str("marker", o.Name).Msg("Failed to remove directory marker")
			continue
		}
		result.Markers++
	}

	log.Info().
		Int("moved", result.Moved).
		Int("failed", result.Failed).
		Int("markers", result.Markers).
		Msg("Flattened outputs")
	return result, errors.Join(errs...)
}

func (f *Flattener) move(ctx context.Context, m Move) error {
	if m.From == m.To {
		return nil
	}
	if err := f.store.Copy(ctx, m.From, m.To); err != nil {
		return err
	}
	return f.store.Delete(ctx, m.From)
}
