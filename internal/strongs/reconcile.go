package strongs

import (
	"fmt"
	"sort"
)

// DefaultKeyField is the field dictionaries are keyed by.
const DefaultKeyField = "strong_number"

// Rekey turns a list of records into a map keyed by the value of field. Later
// records overwrite earlier ones with the same key. Records without the field,
// or with a null value, are skipped and counted.
func Rekey(records []map[string]any, field string) (map[string]map[string]any, int) {
	out := make(map[string]map[string]any, len(records))
	skipped := 0
	for _, rec := range records {
		v, ok := rec[field]
		if !ok || v == nil {
			skipped++
			continue
		}
		key, ok := v.(string)
		if !ok {
			key = fmt.Sprint(v)
		}
		out[key] = rec
	}
	return out, skipped
}

// MissingKeys returns, sorted, every key of the reference sets that is absent
// from have. A key missing from several references is listed once per
// reference, matching how the report is read: one line item per source entry.
func MissingKeys(have map[string]any, refs ...map[string]any) []string {
	var missing []string
	for _, ref := range refs {
		for k := range ref {
			if _, ok := have[k]; !ok {
				missing = append(missing, k)
			}
		}
	}
	sort.Strings(missing)
	return missing
}
