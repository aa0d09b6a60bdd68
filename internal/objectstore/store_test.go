package objectstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/text/unicode/norm"
)

func TestPrefixVariants(t *testing.T) {
	if got := PrefixVariants("ascii/"); len(got) != 1 {
		t.Fatalf("PrefixVariants(ascii/) = %v, want one entry", got)
	}

	nfd := norm.NFD.String("주석/")
	got := PrefixVariants(nfd)
	if len(got) != 2 {
		t.Fatalf("PrefixVariants(nfd) = %d entries, want 2", len(got))
	}
	if got[0] != nfd {
		t.Errorf("first variant should be the prefix as typed")
	}
}

func TestListAllMergesNormalizationForms(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("scans")
	s.Put(norm.NFD.String("주석/01_창세기/a.pdf"), []byte("a"))
	s.Put("주석/02_출애굽기/b.pdf", []byte("b"))
	s.Put("other/c.pdf", []byte("c"))

	objs, err := ListAll(ctx, s, "주석/")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("ListAll returned %d objects, want 2", len(objs))
	}
	if objs[0].Key != "주석/01_창세기/a.pdf" {
		t.Errorf("Key = %q, want NFC form", objs[0].Key)
	}
	if objs[0].Name == objs[0].Key {
		t.Errorf("Name should keep the stored decomposed form")
	}
}

func TestMemoryStoreDelimiterListing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("b")
	for _, n := range []string{"a/b/x.pdf", "a/b/y.pdf", "a/c/z.pdf", "a/top.txt"} {
		s.Put(n, nil)
	}

	listing, err := s.List(ctx, "a/", "/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing.Prefixes) != 2 || listing.Prefixes[0].Name != "a/b/" || listing.Prefixes[1].Name != "a/c/" {
		t.Errorf("Prefixes = %+v", listing.Prefixes)
	}
	if len(listing.Objects) != 1 || listing.Objects[0].Name != "a/top.txt" {
		t.Errorf("Objects = %+v", listing.Objects)
	}
}

func TestMemoryStoreCopyDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("b")
	s.Put("src", []byte("data"))

	if err := s.Copy(ctx, "src", "dst"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if err := s.Delete(ctx, "src"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	data, err := s.Open(ctx, "dst")
	if err != nil || string(data) != "data" {
		t.Fatalf("Open(dst) = %q, %v", data, err)
	}
	if err := s.Delete(ctx, "src"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
	if err := s.Copy(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Copy(missing) err = %v, want ErrNotFound", err)
	}
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		name   string
		err    bool
	}{
		{"gs://scans/주석/", "scans", "주석/", false},
		{"s3://scans/x", "", "", true},
		{"gs:///x", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, name, err := ParseURI(tt.uri)
			if tt.err {
				if !errors.Is(err, ErrInvalidURI) {
					t.Fatalf("err = %v, want ErrInvalidURI", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURI: %v", err)
			}
			if bucket != tt.bucket || name != tt.name {
				t.Errorf("ParseURI = %q, %q; want %q, %q", bucket, name, tt.bucket, tt.name)
			}
			if got := URI(bucket, name); got != tt.uri {
				t.Errorf("URI round trip = %q", got)
			}
		})
	}
}

func TestIsDirMarker(t *testing.T) {
	if !NewObject("out/Genesis/", 0, time.Time{}).IsDirMarker() {
		t.Error("trailing slash should be a marker")
	}
	if NewObject("out/Genesis/a.json", 1, time.Time{}).IsDirMarker() {
		t.Error("regular object reported as marker")
	}
}
