package analyzer

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultFuzzyCutoff is the minimum token-sort ratio accepted as a fuzzy hit.
const DefaultFuzzyCutoff = 85

// Resolver maps arbitrary spellings of test names (from OCR, an LLM or manual
// entry) onto canonical catalog names. It holds only read-only data and is
// safe for concurrent use.
type Resolver struct {
	targets []string
	aliases AliasTable
	cutoff  int
}

// NewResolver builds a resolver over the catalog's canonical names. Target
// order matters: fuzzy score ties are broken in favor of the first-listed
// name. A cutoff <= 0 falls back to DefaultFuzzyCutoff.
func NewResolver(catalog *Catalog, aliases AliasTable, cutoff int) *Resolver {
	if cutoff <= 0 {
		cutoff = DefaultFuzzyCutoff
	}
	return &Resolver{
		targets: catalog.Names(),
		aliases: aliases,
		cutoff:  cutoff,
	}
}

// Resolve maps an input name to a canonical name, trying in strict precedence
// order: exact match, alias lookup, fuzzy match. The first tier that hits
// wins; signals are never combined.
//
// An alias target is returned as-is even when it names a test absent from the
// catalog. The aggregator then fails to find a matching test and drops the
// value, which mirrors the load-time laxity of the alias table.
func (r *Resolver) Resolve(input string) Resolution {
	key := normalizeKey(input)
	if key == "" {
		return Resolution{Confidence: MatchNone}
	}

	for _, target := range r.targets {
		if normalizeKey(target) == key {
			return Resolution{Canonical: target, Confidence: MatchExact}
		}
	}

	if canonical, ok := r.aliases.Lookup(input); ok {
		return Resolution{Canonical: canonical, Confidence: MatchAlias}
	}

	best := ""
	bestScore := -1
	for _, target := range r.targets {
		score := fuzzy.TokenSortRatio(normalizeName(input), target)
		if score > bestScore {
			best = target
			bestScore = score
		}
	}
	if bestScore >= r.cutoff {
		return Resolution{Canonical: best, Confidence: MatchFuzzy, Score: bestScore}
	}
	return Resolution{Confidence: MatchNone}
}

// Cutoff returns the configured fuzzy acceptance threshold.
func (r *Resolver) Cutoff() int {
	return r.cutoff
}
