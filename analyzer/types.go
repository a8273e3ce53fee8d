package analyzer

// Status classifies a measured value against its reference range.
type Status string

const (
	// StatusGreen means the value sits comfortably inside the healthy range.
	StatusGreen Status = "green"
	// StatusYellow means the value is inside the hard limits but within the warn band.
	StatusYellow Status = "yellow"
	// StatusRed means the value breached a hard limit.
	StatusRed Status = "red"
	// StatusEmpty means the subject supplied no value for the test.
	StatusEmpty Status = "empty"
	// StatusUncheckable means a value was supplied but no usable reference data exists,
	// or the value itself is not numeric.
	StatusUncheckable Status = "uncheckable"
)

// Confidence is the provenance tier by which an input name was mapped to a
// canonical name. Exact > Alias > Fuzzy > None.
type Confidence string

const (
	MatchExact Confidence = "exact"
	MatchAlias Confidence = "alias"
	MatchFuzzy Confidence = "fuzzy"
	MatchNone  Confidence = "none"
)

// Resolution is the outcome of mapping one raw test name onto the catalog.
type Resolution struct {
	Canonical  string
	Confidence Confidence
	// Score is the 0-100 token-sort ratio; only meaningful for MatchFuzzy.
	Score int
}

// Resolved reports whether a canonical name was found.
func (r Resolution) Resolved() bool {
	return r.Confidence != MatchNone
}

// ClassifiedRecord is the per-test output of the aggregator. One record is
// produced for every canonical test in the catalog, even when the subject
// supplied no data for it.
type ClassifiedRecord struct {
	TestName     string `json:"test_name"`
	Value        string `json:"value"`
	Units        string `json:"units"`
	Min          string `json:"min"`
	Max          string `json:"max"`
	HealthyValue string `json:"healthy_value"`
	Status       Status `json:"status"`
}

// Report bundles the aggregator output: the record map keyed by canonical
// name, a human-readable bucket summary and the raw inputs that could not be
// attached to any catalog test.
type Report struct {
	Records    map[string]ClassifiedRecord
	Summary    string
	Unresolved []string
}

// rangeKind discriminates the parsed shape of a reference expression.
type rangeKind int

const (
	rangeNone rangeKind = iota
	rangeInterval
	rangeBelow
	rangeAbove
	rangePoint
)

// ParsedRange is the numeric interpretation of a reference expression,
// derived fresh on every classification call. For rangeInterval, Lower and
// Upper hold the bounds; for rangeBelow/rangeAbove, Center holds the pivot;
// for rangePoint, Center holds the healthy target and Lower/Upper carry the
// optional separately supplied hard limits.
type ParsedRange struct {
	kind     rangeKind
	Lower    float64
	Upper    float64
	Center   float64
	HasLower bool
	HasUpper bool
}

// Usable reports whether classification against this range is possible.
func (p ParsedRange) Usable() bool {
	return p.kind != rangeNone
}
