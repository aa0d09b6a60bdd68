// Package discovery enumerates the directory structure of the scan bucket.
//
// The bucket has no real directories, only object names. A subdirectory is the
// first path segment after a prefix among all names that share it. Listing is
// tried with the store's delimiter first and falls back to enumerating every
// object under the prefix and splitting names by hand, which is the only way to
// find folders whose stored spelling uses a different Unicode normalization
// form from the typed prefix.
package discovery

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"scripture/internal/logger"
	"scripture/internal/objectstore"
)

// Subdirectory is one immediate child of a listed prefix.
type Subdirectory struct {
	// Prefix is the stored spelling, including the trailing slash. Use it for
	// every further request.
	Prefix string
	// Key is Prefix in NFC.
	Key string
	// Name is the last segment of Key without the slash, e.g. "01_창세기".
	Name string
}

// Subdirectories returns the sorted set of unique first-level segments after
// prefix among names, each as prefix+segment+"/". Comparison happens in NFC and
// the returned values are NFC. Names without a further "/" after the prefix
// are files, not directories, and are ignored.
func Subdirectories(names []string, prefix string) []string {
	p := objectstore.Normalize(prefix)
	seen := make(map[string]bool)
	var out []string
	for _, n := range names {
		key := objectstore.Normalize(n)
		rest, ok := strings.CutPrefix(key, p)
		if !ok {
			continue
		}
		seg, _, found := strings.Cut(rest, "/")
		if !found || seg == "" {
			continue
		}
		dir := p + seg + "/"
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	sort.Strings(out)
	return out
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithScanAll skips the delimiter listing and always enumerates every object.
func WithScanAll(scanAll bool) Option {
	return func(d *Discoverer) {
		d.scanAll = scanAll
	}
}

// Discoverer runs discovery against an object store.
type Discoverer struct {
	store   objectstore.Store
	scanAll bool
	log     zerolog.Logger
}

// New creates a Discoverer for store.
func New(store objectstore.Store, opts ...Option) *Discoverer {
	d := &Discoverer{
		store: store,
		log:   logger.WithComponent("discovery"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Store returns the underlying object store.
func (d *Discoverer) Store() objectstore.Store {
	return d.store
}

// Subdirectories lists the immediate children of prefix, sorted by Key.
func (d *Discoverer) Subdirectories(ctx context.Context, prefix string) ([]Subdirectory, error) {
	found := make(map[string]Subdirectory)

	if !d.scanAll {
		for _, p := range objectstore.PrefixVariants(prefix) {
			listing, err := d.store.List(ctx, p, "/")
			if err != nil {
				return nil, err
			}
			for _, sp := range listing.Prefixes {
				addSubdirectory(found, sp.Name)
			}
		}
		d.log.Debug().Str("prefix", prefix).Int("found", len(found)).Msg("Delimiter listing finished")
	}

	if len(found) == 0 {
		if !d.scanAll {
			d.log.Info().Str("prefix", prefix).Msg("Delimiter listing returned nothing, scanning all objects")
		}
		objs, err := objectstore.ListAll(ctx, d.store, prefix)
		if err != nil {
			return nil, err
		}
		depth := strings.Count(objectstore.Normalize(prefix), "/")
		for _, o := range objs {
			parts := strings.Split(o.Name, "/")
			if len(parts) <= depth+1 || parts[depth] == "" {
				continue
			}
			addSubdirectory(found, strings.Join(parts[:depth+1], "/")+"/")
		}
	}

	out := make([]Subdirectory, 0, len(found))
	for _, s := range found {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func addSubdirectory(found map[string]Subdirectory, raw string) {
	key := objectstore.Normalize(raw)
	if _, ok := found[key]; ok {
		return
	}
	found[key] = Subdirectory{
		Prefix: raw,
		Key:    key,
		Name:   path.Base(strings.TrimSuffix(key, "/")),
	}
}

// Files lists the objects under prefix whose extension matches ext, ignoring
// case. An empty ext returns every non-marker object.
func (d *Discoverer) Files(ctx context.Context, prefix, ext string) ([]objectstore.Object, error) {
	objs, err := objectstore.ListAll(ctx, d.store, prefix)
	if err != nil {
		return nil, err
	}
	var out []objectstore.Object
	for _, o := range objs {
		if o.IsDirMarker() {
			continue
		}
		if ext != "" && !strings.EqualFold(path.Ext(o.Key), ext) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
