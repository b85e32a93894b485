package parser

import (
	"regexp"
	"strings"
)

// Status classifies a declaration's docstring.
type Status string

const (
	StatusAbsent    Status = "absent"
	StatusValid     Status = "present-valid"
	StatusDeficient Status = "present-deficient"
)

// Deficiency tags record why a docstring was judged deficient.
type Deficiency string

const (
	DeficiencyMissingArgs    Deficiency = "missing_args"
	DeficiencyMissingReturns Deficiency = "missing_returns"
	DeficiencyMissingRaises  Deficiency = "missing_raises"
	DeficiencyTooShort       Deficiency = "too_short"
)

// DocstringState is the derived per-declaration docstring classification.
type DocstringState struct {
	Status       Status
	Deficiencies []Deficiency
}

// LocateOptions holds the configurable deficiency thresholds.
type LocateOptions struct {
	MinLength int
}

// Section markers across the Google, NumPy, and reST conventions. A heading
// line with or without a trailing colon counts, as does the reST field form.
var (
	argsHeading    = regexp.MustCompile(`(?mi)^\s*(args|arguments|parameters)\s*:?\s*$`)
	returnsHeading = regexp.MustCompile(`(?mi)^\s*(returns?|yields?)\s*:?\s*$`)
	raisesHeading  = regexp.MustCompile(`(?mi)^\s*raises\s*:?\s*$`)
)

// Locate classifies a declaration's docstring as absent, valid, or
// deficient. Modules and classes only need a non-empty docstring; callables
// must document their parameters, a non-trivial return value, and any named
// errors they raise.
func Locate(decl *Declaration, opts LocateOptions) DocstringState {
	if decl.Docstring == nil {
		return DocstringState{Status: StatusAbsent}
	}
	text := strings.TrimSpace(decl.Docstring.Text)
	if text == "" {
		return DocstringState{Status: StatusAbsent}
	}

	if decl.Kind == KindModule || decl.Kind == KindClass {
		return DocstringState{Status: StatusValid}
	}

	var tags []Deficiency
	if len(text) < opts.MinLength {
		tags = append(tags, DeficiencyTooShort)
	}
	if len(decl.DocParams()) > 0 && !HasArgsSection(text) {
		tags = append(tags, DeficiencyMissingArgs)
	}
	if decl.HasReturnValue() && !HasReturnsSection(text) {
		tags = append(tags, DeficiencyMissingReturns)
	}
	if len(decl.Raises) > 0 && !HasRaisesSection(text) {
		tags = append(tags, DeficiencyMissingRaises)
	}

	if len(tags) > 0 {
		return DocstringState{Status: StatusDeficient, Deficiencies: tags}
	}
	return DocstringState{Status: StatusValid}
}

// HasArgsSection reports whether text documents parameters in any supported
// style.
func HasArgsSection(text string) bool {
	return argsHeading.MatchString(text) || strings.Contains(text, ":param ")
}

// HasReturnsSection reports whether text documents a return value.
func HasReturnsSection(text string) bool {
	return returnsHeading.MatchString(text) ||
		strings.Contains(text, ":return:") ||
		strings.Contains(text, ":returns:") ||
		strings.Contains(text, ":rtype:")
}

// HasRaisesSection reports whether text documents raised errors.
func HasRaisesSection(text string) bool {
	return raisesHeading.MatchString(text) || strings.Contains(text, ":raises")
}
