package discovery

import (
	"context"
	"path"
	"sort"
	"strings"
)

// LabelCount is the number of output objects for one label.
type LabelCount struct {
	Label string
	Count int
}

// Summary counts the non-marker objects under prefix, grouped by the part of
// the file name before the first underscore, e.g. "01_Genesis_file001_x.json"
// counts towards "01". Names without an underscore are only included in the
// total.
func (d *Discoverer) Summary(ctx context.Context, prefix string) ([]LabelCount, int, error) {
	objs, err := d.Files(ctx, prefix, "")
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[string]int)
	for _, o := range objs {
		head, _, found := strings.Cut(path.Base(o.Key), "_")
		if found {
			counts[head]++
		}
	}
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, len(objs), nil
}
