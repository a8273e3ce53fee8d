package analyzer

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultTolerance is the warn-band width used when the config supplies none.
const DefaultTolerance = 0.10

var intervalRe = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*-\s*([0-9]*\.?[0-9]+)$`)

type fragKind int

const (
	fragNone fragKind = iota
	fragNumber
	fragInterval
	fragBelow
	fragAbove
)

type fragment struct {
	kind  fragKind
	value float64
	lo    float64
	hi    float64
}

// parseFragment recognizes one reference-expression field: a plain number, a
// numeric interval ("70-110", en-dash allowed), or an inequality ("<35",
// ">4.7"). Anything else yields fragNone.
func parseFragment(s string) fragment {
	s = strings.TrimSpace(s)
	if s == "" {
		return fragment{}
	}
	// Unify the dash variants OCR and catalogs produce.
	s = strings.NewReplacer("–", "-", "—", "-", "−", "-").Replace(s)

	if rest, ok := strings.CutPrefix(s, "<"); ok {
		rest = strings.TrimPrefix(strings.TrimSpace(rest), "=")
		if v, err := parseNumber(rest); err == nil {
			return fragment{kind: fragBelow, value: v}
		}
		return fragment{}
	}
	if rest, ok := strings.CutPrefix(s, ">"); ok {
		rest = strings.TrimPrefix(strings.TrimSpace(rest), "=")
		if v, err := parseNumber(rest); err == nil {
			return fragment{kind: fragAbove, value: v}
		}
		return fragment{}
	}
	if m := intervalRe.FindStringSubmatch(s); m != nil {
		lo, err1 := parseNumber(m[1])
		hi, err2 := parseNumber(m[2])
		if err1 == nil && err2 == nil && lo < hi {
			return fragment{kind: fragInterval, lo: lo, hi: hi}
		}
		return fragment{}
	}
	if v, err := parseNumber(s); err == nil {
		return fragment{kind: fragNumber, value: v}
	}
	return fragment{}
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ParseReference derives the numeric interpretation of a test's reference
// fields. It is evaluated fresh on every classification; nothing is cached.
//
// Resolution order: separately supplied numeric min/max form an interval
// (or the hard limits around a numeric healthy value when one is present);
// otherwise the first full expression found in healthy value, min, max wins;
// otherwise a lone numeric healthy value is a point and a lone numeric
// min/max is a one-sided bound.
func ParseReference(min, max, healthy string) ParsedRange {
	minF := parseFragment(min)
	maxF := parseFragment(max)
	healF := parseFragment(healthy)

	if minF.kind == fragNumber && maxF.kind == fragNumber && minF.value < maxF.value {
		if healF.kind == fragNumber {
			return ParsedRange{
				kind:     rangePoint,
				Center:   healF.value,
				Lower:    minF.value,
				HasLower: true,
				Upper:    maxF.value,
				HasUpper: true,
			}
		}
		return ParsedRange{kind: rangeInterval, Lower: minF.value, Upper: maxF.value}
	}

	for _, f := range []fragment{healF, minF, maxF} {
		switch f.kind {
		case fragInterval:
			return ParsedRange{kind: rangeInterval, Lower: f.lo, Upper: f.hi}
		case fragBelow:
			return ParsedRange{kind: rangeBelow, Center: f.value}
		case fragAbove:
			return ParsedRange{kind: rangeAbove, Center: f.value}
		}
	}

	if healF.kind == fragNumber {
		p := ParsedRange{kind: rangePoint, Center: healF.value}
		if minF.kind == fragNumber {
			p.Lower = minF.value
			p.HasLower = true
		}
		if maxF.kind == fragNumber {
			p.Upper = maxF.value
			p.HasUpper = true
		}
		return p
	}
	if minF.kind == fragNumber && maxF.kind != fragNumber {
		return ParsedRange{kind: rangeAbove, Center: minF.value}
	}
	if maxF.kind == fragNumber && minF.kind != fragNumber {
		return ParsedRange{kind: rangeBelow, Center: maxF.value}
	}
	return ParsedRange{}
}

// Classify buckets a measured value against a parsed range. Boundary
// comparisons are inclusive: a value exactly on a computed limit takes the
// worse classification.
func Classify(value float64, ref ParsedRange, tolerance float64) Status {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	switch ref.kind {
	case rangeInterval:
		span := ref.Upper - ref.Lower
		if value <= ref.Lower-tolerance*span || value >= ref.Upper+tolerance*span {
			return StatusRed
		}
		if value <= ref.Lower+tolerance*span || value >= ref.Upper-tolerance*span {
			return StatusYellow
		}
		return StatusGreen
	case rangeBelow:
		if value <= 0 || value >= 1.5*ref.Center {
			return StatusRed
		}
		return centerBand(value, ref.Center, tolerance)
	case rangeAbove:
		if value <= 0.5*ref.Center || value >= 10*ref.Center {
			return StatusRed
		}
		return centerBand(value, ref.Center, tolerance)
	case rangePoint:
		if ref.HasLower && value <= ref.Lower {
			return StatusRed
		}
		if ref.HasUpper && value >= ref.Upper {
			return StatusRed
		}
		return centerBand(value, ref.Center, tolerance)
	default:
		return StatusUncheckable
	}
}

func centerBand(value, center, tolerance float64) Status {
	if value <= center*(1-tolerance) || value >= center*(1+tolerance) {
		return StatusYellow
	}
	return StatusGreen
}

// ClassifyRaw classifies a raw value string against a test definition.
// The empty string short-circuits to StatusEmpty before any numeric parsing;
// a non-numeric value is absorbed into StatusUncheckable rather than
// surfacing as an error.
func ClassifyRaw(rawValue string, test CanonicalTest, tolerance float64) Status {
	trimmed := strings.TrimSpace(rawValue)
	if trimmed == "" {
		return StatusEmpty
	}
	ref := ParseReference(test.Min, test.Max, test.HealthyValue)
	if !ref.Usable() {
		return StatusUncheckable
	}
	value, err := parseNumber(trimmed)
	if err != nil {
		return StatusUncheckable
	}
	return Classify(value, ref, tolerance)
}
