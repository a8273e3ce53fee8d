package analyzer

import (
	"sort"
	"strings"
)

// Fixed bucket labels used in the report summary.
const (
	BucketAbnormal     = "Abnormal"
	BucketBorderline   = "Borderline"
	BucketNormal       = "Normal"
	BucketNotPerformed = "Not performed"

	summaryNoData = "No test data available."
)

// Aggregator drives the per-test loop: it resolves raw inputs, classifies
// them and buckets the outcome. It holds only read-only data after
// construction, so independent Aggregate calls may run in parallel.
type Aggregator struct {
	catalog   *Catalog
	resolver  *Resolver
	tolerance float64
}

// NewAggregator wires the resolver and interpreter over a shared catalog.
// A tolerance <= 0 falls back to DefaultTolerance.
func NewAggregator(catalog *Catalog, resolver *Resolver, tolerance float64) *Aggregator {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Aggregator{catalog: catalog, resolver: resolver, tolerance: tolerance}
}

// Aggregate turns raw (name, value) pairs into one ClassifiedRecord per
// canonical test. The record map's key set always equals the catalog's name
// set, regardless of what the inputs resolve to. Raw names that resolve to
// nothing usable are reported in Report.Unresolved instead of being silently
// swallowed.
func (a *Aggregator) Aggregate(rawValues map[string]string) Report {
	resolved := make(map[string]string, len(rawValues))
	var unresolved []string

	// Sorted iteration keeps duplicate resolutions deterministic: when two
	// raw spellings map to the same canonical test, the lexicographically
	// first one wins.
	rawNames := make([]string, 0, len(rawValues))
	for name := range rawValues {
		rawNames = append(rawNames, name)
	}
	sort.Strings(rawNames)

	for _, rawName := range rawNames {
		res := a.resolver.Resolve(rawName)
		if !res.Resolved() {
			unresolved = append(unresolved, rawName)
			continue
		}
		if _, ok := a.catalog.Lookup(res.Canonical); !ok {
			// Alias pointing outside the active catalog: the resolution
			// succeeded but the value has nowhere to go.
			unresolved = append(unresolved, rawName)
			continue
		}
		key := normalizeKey(res.Canonical)
		if _, exists := resolved[key]; !exists {
			resolved[key] = rawValues[rawName]
		}
	}

	records := make(map[string]ClassifiedRecord, a.catalog.Len())
	buckets := map[Status][]string{}
	for _, name := range a.catalog.Names() {
		test, _ := a.catalog.Lookup(name)
		value := resolved[normalizeKey(name)]
		status := ClassifyRaw(value, test, a.tolerance)
		records[name] = ClassifiedRecord{
			TestName:     name,
			Value:        strings.TrimSpace(value),
			Units:        test.Units,
			Min:          test.Min,
			Max:          test.Max,
			HealthyValue: test.HealthyValue,
			Status:       status,
		}
		switch status {
		case StatusRed, StatusYellow, StatusGreen, StatusEmpty:
			buckets[status] = append(buckets[status], name)
		}
	}

	return Report{
		Records:    records,
		Summary:    buildSummary(buckets),
		Unresolved: unresolved,
	}
}

// buildSummary emits one line per non-empty bucket, tests in catalog order,
// or a single fixed line when nothing was classified at all.
func buildSummary(buckets map[Status][]string) string {
	var lines []string
	for _, b := range []struct {
		label  string
		status Status
	}{
		{BucketAbnormal, StatusRed},
		{BucketBorderline, StatusYellow},
		{BucketNormal, StatusGreen},
		{BucketNotPerformed, StatusEmpty},
	} {
		names := buckets[b.status]
		if len(names) == 0 {
			continue
		}
		lines = append(lines, b.label+": "+strings.Join(names, ", "))
	}
	if len(lines) == 0 {
		return summaryNoData
	}
	return strings.Join(lines, "\n")
}
