package discovery

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"scripture/internal/objectstore"
)

// PrefixForm is one spelling of a typed prefix and how many objects it selects.
type PrefixForm struct {
	Form    string
	Prefix  string
	Bytes   string
	Matches int
}

// SampleName is an object whose normalized name contains the prefix's first
// segment, with the checks that tell the two normalization forms apart.
type SampleName struct {
	Name             string
	Bytes            string
	IsNFC            bool
	RawHasPrefix     bool
	NormalizedPrefix bool
}

// PrefixReport is the result of DebugPrefix.
type PrefixReport struct {
	Prefix  string
	Forms   []PrefixForm
	Samples []SampleName
	Scanned int
}

// DebugPrefix explains why a typed prefix does or does not find objects. It
// counts matches for the prefix as typed, in NFC and in NFD, and then scans the
// whole bucket for names containing the prefix's first segment, reporting up to
// maxSamples of them with their raw bytes.
func (d *Discoverer) DebugPrefix(ctx context.Context, prefix string, maxSamples int) (PrefixReport, error) {
	report := PrefixReport{Prefix: prefix}

	forms := []struct {
		name string
		p    string
	}{
		{"as typed", prefix},
		{"NFC", norm.NFC.String(prefix)},
		{"NFD", norm.NFD.String(prefix)},
	}
	for _, f := range forms {
		listing, err := d.store.List(ctx, f.p, "")
		if err != nil {
			return report, err
		}
		report.Forms = append(report.Forms, PrefixForm{
			Form:    f.name,
			Prefix:  f.p,
			Bytes:   fmt.Sprintf("% x", f.p),
			Matches: len(listing.Objects),
		})
	}

	needle, _, _ := strings.Cut(objectstore.Normalize(prefix), "/")
	all, err := d.store.List(ctx, "", "")
	if err != nil {
		return report, err
	}
	report.Scanned = len(all.Objects)
	for _, o := range all.Objects {
		if len(report.Samples) >= maxSamples {
			break
		}
		if needle != "" && !strings.Contains(o.Key, needle) {
			continue
		}
		report.Samples = append(report.Samples, SampleName{
			Name:             o.Name,
			Bytes:            fmt.Sprintf("% x", o.Name),
			IsNFC:            norm.NFC.IsNormalString(o.Name),
			RawHasPrefix:     strings.HasPrefix(o.Name, prefix),
			NormalizedPrefix: objectstore.HasPrefix(o.Name, prefix),
		})
	}
	d.log.Debug().
		Str("prefix", prefix).
		Int("scanned", report.Scanned).
		Int("samples", len(report.Samples)).
		Msg("Prefix diagnostics collected")
	return report, nil
}
