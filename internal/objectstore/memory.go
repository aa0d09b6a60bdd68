package objectstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Names are compared byte for byte, the
// same way Cloud Storage does, so normalization mismatches reproduce here.
type MemoryStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	now     func() time.Time
}

// NewMemoryStore returns an empty store for bucket.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		objects: make(map[string][]byte),
		now:     time.Now,
	}
}

// Put stores data under name.
func (m *MemoryStore) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = append([]byte(nil), data...)
}

// Names returns every stored name in byte order.
func (m *MemoryStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.objects))
	for n := range m.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bucket implements Store.
func (m *MemoryStore) Bucket() string {
	return m.bucket
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, prefix, delimiter string) (Listing, error) {
	if err := ctx.Err(); err != nil {
		return Listing{}, err
	}

	var listing Listing
	seenPrefix := make(map[string]bool)
	for _, name := range m.Names() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if delimiter != "" {
			rest := name[len(prefix):]
			if i := strings.Index(rest, delimiter); i >= 0 {
				p := prefix + rest[:i+len(delimiter)]
				if !seenPrefix[p] {
					seenPrefix[p] = true
					listing.Prefixes = append(listing.Prefixes, Prefix{Name: p, Key: Normalize(p)})
				}
				continue
			}
		}
		m.mu.Lock()
		size := int64(len(m.objects[name]))
		m.mu.Unlock()
		listing.Objects = append(listing.Objects, NewObject(name, size, m.now()))
	}
	return listing, nil
}

// Copy implements Store.
func (m *MemoryStore) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[src]
	if !ok {
		return fmt.Errorf("copy %s: %w", src, ErrNotFound)
	}
	m.objects[dst] = append([]byte(nil), data...)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[name]; !ok {
		return fmt.Errorf("delete %s: %w", name, ErrNotFound)
	}
	delete(m.objects, name)
	return nil
}

// Open implements Store.
func (m *MemoryStore) Open(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

var _ Store = (*MemoryStore)(nil)
