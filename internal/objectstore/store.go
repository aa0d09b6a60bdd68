// Package objectstore provides the small slice of object storage the OCR
// pipeline needs: prefix listing, server-side copy and delete.
//
// Object names in the scan bucket were uploaded from different machines and
// arrive in both composed (NFC) and decomposed (NFD) Hangul. Every name read
// from a backend therefore carries two forms:
//   - Name: the raw stored name, used for every request sent back to the store
//   - Key: the NFC form, used for every comparison
//
// Prefixes typed by a user are expanded with PrefixVariants before listing so
// that a prefix in either form finds objects stored in either form.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned when a source object does not exist.
var ErrNotFound = errors.New("object not found")

// ErrInvalidURI is returned by ParseURI for anything that is not gs://bucket/...
var ErrInvalidURI = errors.New("invalid gs:// URI")

// Object is a listed object.
type Object struct {
	Name    string
	Key     string
	Size    int64
	Updated time.Time
}

// IsDirMarker reports whether the object is a zero-length directory placeholder.
func (o Object) IsDirMarker() bool {
	return strings.HasSuffix(o.Name, "/")
}

// Listing is the result of a single List call. Prefixes is only populated when
// a delimiter was given.
type Listing struct {
	Objects  []Object
	Prefixes []Prefix
}

// Prefix is a synthetic directory returned by delimiter listings.
type Prefix struct {
	Name string
	Key  string
}

// Store is implemented by every backend.
type Store interface {
	// Bucket returns the bucket name the store operates on.
	Bucket() string

	// List returns all objects whose raw name starts with prefix. With a
	// non-empty delimiter, names containing the delimiter after the prefix are
	// rolled up into Prefixes.
	List(ctx context.Context, prefix, delimiter string) (Listing, error)

	// Copy copies src to dst inside the bucket, overwriting dst.
	Copy(ctx context.Context, src, dst string) error

	// Delete removes a single object.
	Delete(ctx context.Context, name string) error

	// Open returns the content of an object.
	Open(ctx context.Context, name string) ([]byte, error)
}

// Normalize returns the comparison form of an object name.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// PrefixVariants returns the distinct spellings of prefix worth sending to a
// backend: as typed, composed and decomposed.
func PrefixVariants(prefix string) []string {
	seen := make(map[string]bool, 3)
	var out []string
	for _, p := range []string{prefix, norm.NFC.String(prefix), norm.NFD.String(prefix)} {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// HasPrefix compares an object key and a prefix in normalized form.
func HasPrefix(name, prefix string) bool {
	return strings.HasPrefix(Normalize(name), Normalize(prefix))
}

// NewObject builds an Object with its comparison key filled in.
func NewObject(name string, size int64, updated time.Time) Object {
	return Object{Name: name, Key: Normalize(name), Size: size, Updated: updated}
}

// ListAll lists prefix under every spelling in PrefixVariants and merges the
// results by raw name. Objects come back sorted by Key.
func ListAll(ctx context.Context, s Store, prefix string) ([]Object, error) {
	seen := make(map[string]bool)
	var out []Object
	for _, p := range PrefixVariants(prefix) {
		listing, err := s.List(ctx, p, "")
		if err != nil {
			return nil, err
		}
		for _, o := range listing.Objects {
			if seen[o.Name] {
				continue
			}
			seen[o.Name] = true
			out = append(out, o)
		}
	}
	SortObjects(out)
	return out, nil
}

// SortObjects orders objects by comparison key, then raw name.
func SortObjects(objs []Object) {
	sort.Slice(objs, func(i, j int) bool {
		if objs[i].Key != objs[j].Key {
			return objs[i].Key < objs[j].Key
		}
		return objs[i].Name < objs[j].Name
	})
}

// ParseURI splits gs://bucket/some/prefix into bucket and object prefix.
func ParseURI(uri string) (bucket, name string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	bucket, name, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: missing bucket in %q", ErrInvalidURI, uri)
	}
	return bucket, name, nil
}

// URI formats a gs:// URI for an object or prefix.
func URI(bucket, name string) string {
	return "gs://" + bucket + "/" + name
}
