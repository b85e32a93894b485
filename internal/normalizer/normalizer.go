// Package normalizer turns raw model output into a docstring literal that is
// safe to splice: isolated from commentary, checked against the sections the
// style requires, wrapped to the configured width, and re-indented to the
// declaration's own indentation.
package normalizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fuzzylabs/docstringinator/internal/config"
	"github.com/fuzzylabs/docstringinator/internal/parser"
	"github.com/fuzzylabs/docstringinator/internal/prompt"
)

// Reason identifies why normalization failed.
type Reason string

const (
	ReasonNoDocstring       Reason = "no_docstring_found"
	ReasonMissingSection    Reason = "missing_section"
	ReasonParameterMismatch Reason = "parameter_mismatch"
	ReasonWrapFailure       Reason = "wrap_failure"
)

// Error is a declaration-level normalization failure.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("normalization failed (%s): %s", e.Reason, e.Detail)
}

// Normalize validates raw generator output against the request and produces
// the full docstring literal, triple-quoted and indented with indent on
// every line, ready for direct insertion.
func Normalize(raw string, req *prompt.GenerationRequest, indent string, maxWidth int) (string, error) {
	content, err := isolate(raw)
	if err != nil {
		return "", err
	}
	content = dedent(content)

	if req.Kind == parser.KindFunction || req.Kind == parser.KindMethod {
		if err := validateSections(content, req); err != nil {
			return "", err
		}
	}

	content, err = wrap(content, indent, maxWidth)
	if err != nil {
		return "", err
	}

	return assemble(content, indent), nil
}

// isolate strips everything around the intended literal content: markdown
// fences, surrounding quotes, and any commentary the generator wrapped its
// answer in.
func isolate(raw string) (string, error) {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```"); idx != -1 {
		rest := text[idx+3:]
		// drop a language tag on the fence line
		if nl := strings.Index(rest, "\n"); nl != -1 {
			rest = rest[nl+1:]
		} else {
			rest = ""
		}
		if end := strings.Index(rest, "```"); end != -1 {
			text = rest[:end]
		} else {
			text = rest
		}
		text = strings.TrimSpace(text)
	}

	for _, delim := range []string{`"""`, `'''`} {
		if start := strings.Index(text, delim); start != -1 {
			rest := text[start+3:]
			if end := strings.Index(rest, delim); end != -1 {
				text = strings.TrimSpace(rest[:end])
			} else {
				text = strings.TrimSpace(rest)
			}
			break
		}
	}

	// A stray delimiter inside the content would terminate the literal.
	text = strings.ReplaceAll(text, `"""`, `'''`)

	if text == "" {
		return "", &Error{Reason: ReasonNoDocstring, Detail: "generator output contains no docstring content"}
	}
	return text, nil
}

// dedent removes the common leading whitespace the generator may have
// applied to every line after the first.
func dedent(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	common := ""
	first := true
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			common = indent
			first = false
			continue
		}
		for !strings.HasPrefix(indent, common) {
			common = common[:len(common)-1]
		}
	}
	if common == "" {
		return content
	}
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimPrefix(lines[i], common)
	}
	return strings.Join(lines, "\n")
}

// assemble renders the final literal. Single-line content stays on one line;
// multi-line content gets the closing quotes on their own line.
func assemble(content, indent string) string {
	lines := strings.Split(content, "\n")
	if len(lines) == 1 {
		return indent + `"""` + lines[0] + `"""`
	}
	var b strings.Builder
	b.WriteString(indent + `"""` + lines[0] + "\n")
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + `"""`)
	return b.String()
}

var (
	googleArgs    = regexp.MustCompile(`(?m)^(Args|Arguments)\s*:\s*$`)
	googleReturns = regexp.MustCompile(`(?m)^Returns\s*:\s*$`)
	googleRaises  = regexp.MustCompile(`(?m)^Raises\s*:\s*$`)
	anyHeading    = regexp.MustCompile(`(?m)^(Args|Arguments|Parameters|Returns|Yields|Raises|Examples?|Notes?|Attributes)\s*:?\s*$`)
	underline     = regexp.MustCompile(`^[-=~]{3,}\s*$`)
)

// validateSections checks that every section the style requires for this
// declaration's shape is present and that the parameter entries cover the
// request's parameters in declared order.
func validateSections(content string, req *prompt.GenerationRequest) error {
	switch req.Style {
	case config.StyleNumPy:
		return validateNumPy(content, req)
	case config.StyleRest:
		return validateRest(content, req)
	default:
		return validateGoogle(content, req)
	}
}

func validateGoogle(content string, req *prompt.GenerationRequest) error {
	if len(req.Params) > 0 {
		loc := googleArgs.FindStringIndex(content)
		if loc == nil {
			return &Error{Reason: ReasonMissingSection, Detail: "missing Args section"}
		}
		region := headingRegion(content, loc[1])
		if err := checkParamOrder(region, req, func(name string) *regexp.Regexp {
			return regexp.MustCompile(`(?m)^\s*\*{0,2}` + regexp.QuoteMeta(name) + `\b`)
		}); err != nil {
			return err
		}
	}
	if req.HasReturn && !googleReturns.MatchString(content) {
		return &Error{Reason: ReasonMissingSection, Detail: "missing Returns section"}
	}
	if len(req.Raises) > 0 && !googleRaises.MatchString(content) {
		return &Error{Reason: ReasonMissingSection, Detail: "missing Raises section"}
	}
	return nil
}

func validateNumPy(content string, req *prompt.GenerationRequest) error {
	if len(req.Params) > 0 {
		region, ok := numpySection(content, "Parameters")
		if !ok {
			return &Error{Reason: ReasonMissingSection, Detail: "missing Parameters section"}
		}
		if err := checkParamOrder(region, req, func(name string) *regexp.Regexp {
			return regexp.MustCompile(`(?m)^\*{0,2}` + regexp.QuoteMeta(name) + `\b`)
		}); err != nil {
			return err
		}
	}
	if req.HasReturn {
		if _, ok := numpySection(content, "Returns"); !ok {
			return &Error{Reason: ReasonMissingSection, Detail: "missing Returns section"}
		}
	}
	if len(req.Raises) > 0 {
		if _, ok := numpySection(content, "Raises"); !ok {
			return &Error{Reason: ReasonMissingSection, Detail: "missing Raises section"}
		}
	}
	return nil
}

func validateRest(content string, req *prompt.GenerationRequest) error {
	last := -1
	for _, p := range req.Params {
		re := regexp.MustCompile(`:param\s+(?:\S+\s+)?` + regexp.QuoteMeta(p.Name) + `\s*:`)
		loc := re.FindStringIndex(content)
		if loc == nil {
			return &Error{Reason: ReasonParameterMismatch, Detail: "parameter not documented: " + p.Name}
		}
		if loc[0] < last {
			return &Error{Reason: ReasonParameterMismatch, Detail: "parameter out of order: " + p.Name}
		}
		last = loc[0]
	}
	if req.HasReturn && !strings.Contains(content, ":return") && !strings.Contains(content, ":rtype:") {
		return &Error{Reason: ReasonMissingSection, Detail: "missing :returns: field"}
	}
	if len(req.Raises) > 0 && !strings.Contains(content, ":raises") {
		return &Error{Reason: ReasonMissingSection, Detail: "missing :raises: field"}
	}
	return nil
}

// headingRegion returns the content from a heading match end until the next
// heading or the end of the text.
func headingRegion(content string, from int) string {
	rest := content[from:]
	if loc := anyHeading.FindStringIndex(rest); loc != nil {
		return rest[:loc[0]]
	}
	return rest
}

// numpySection finds a NumPy heading with its dashed underline and returns
// the section body.
func numpySection(content, name string) (string, bool) {
	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines)-1; i++ {
		if strings.TrimSpace(lines[i]) == name && underline.MatchString(strings.TrimSpace(lines[i+1])) {
			var body []string
			for j := i + 2; j < len(lines); j++ {
				if j+1 < len(lines) && underline.MatchString(strings.TrimSpace(lines[j+1])) && strings.TrimSpace(lines[j]) != "" {
					return strings.Join(body, "\n"), true
				}
				body = append(body, lines[j])
			}
			return strings.Join(body, "\n"), true
		}
	}
	return "", false
}

func checkParamOrder(region string, req *prompt.GenerationRequest, entry func(string) *regexp.Regexp) error {
	last := -1
	for _, p := range req.Params {
		loc := entry(p.Name).FindStringIndex(region)
		if loc == nil {
			return &Error{Reason: ReasonParameterMismatch, Detail: "parameter not documented: " + p.Name}
		}
		if loc[0] < last {
			return &Error{Reason: ReasonParameterMismatch, Detail: "parameter out of order: " + p.Name}
		}
		last = loc[0]
	}
	return nil
}
