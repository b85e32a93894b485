// Package prompt turns a declaration into an immutable generation request
// with enough structural context that a model can answer without re-parsing
// the file.
package prompt

import (
	"fmt"
	"strings"

	"github.com/fuzzylabs/docstringinator/internal/config"
	"github.com/fuzzylabs/docstringinator/internal/parser"
	"github.com/fuzzylabs/docstringinator/internal/policy"
)

// GenerationRequest is a declaration snapshot plus the rendered prompt.
// Immutable once built.
type GenerationRequest struct {
	QualifiedName string
	Kind          parser.Kind
	Signature     string
	Params        []parser.Param // documentation-relevant params, self/cls stripped
	ReturnType    string
	HasReturn     bool
	Raises        []string
	BodySummary   string
	Existing      string // existing docstring text, improve mode only
	Action        policy.Action
	Style         config.Style
	Prompt        string
}

// Build assembles the request for one declaration. For improve mode the
// existing docstring rides along so hand-written prose survives the rewrite.
// When type hints are disabled the request carries parameter names only.
func Build(decl *parser.Declaration, action policy.Action, format config.FormatConfig) *GenerationRequest {
	req := &GenerationRequest{
		QualifiedName: decl.QualifiedName,
		Kind:          decl.Kind,
		Signature:     decl.Signature,
		Params:        append([]parser.Param(nil), decl.DocParams()...),
		ReturnType:    decl.ReturnType,
		HasReturn:     decl.HasReturnValue(),
		Raises:        append([]string(nil), decl.Raises...),
		BodySummary:   decl.BodySummary,
		Action:        action,
		Style:         format.Style,
	}
	if !format.IncludeTypes {
		for i := range req.Params {
			req.Params[i].Type = ""
		}
		req.ReturnType = ""
	}
	if action == policy.ActionImprove && decl.Docstring != nil {
		req.Existing = decl.Docstring.Text
	}
	req.Prompt = render(req, decl)
	return req
}

func render(req *GenerationRequest, decl *parser.Declaration) string {
	var b strings.Builder

	b.WriteString("You are an expert Python developer. Write a concise, accurate docstring.\n\n")

	switch req.Kind {
	case parser.KindModule:
		fmt.Fprintf(&b, "TARGET: module %q. Write a short module docstring describing its purpose.\n", req.QualifiedName)
	case parser.KindClass:
		fmt.Fprintf(&b, "TARGET: class %s\n\nCLASS HEADER:\n%s\n", req.QualifiedName, req.Signature)
	default:
		fmt.Fprintf(&b, "FUNCTION:\n%s\n\nFUNCTION BODY:\n%s\n", req.Signature, orPlaceholder(req.BodySummary))
	}

	if req.Kind == parser.KindFunction || req.Kind == parser.KindMethod {
		b.WriteString("\nANALYSIS:\n")
		fmt.Fprintf(&b, "- Name: %s\n", req.QualifiedName)
		if req.Kind == parser.KindMethod {
			b.WriteString("- This is a method; do not document self.\n")
		}
		if decl.IsAsync {
			b.WriteString("- This is an async function.\n")
		}
		if len(req.Params) > 0 {
			b.WriteString("- Parameters:\n")
			for _, p := range req.Params {
				b.WriteString("  - " + describeParam(p) + "\n")
			}
		} else {
			b.WriteString("- No parameters to document.\n")
		}
		if req.HasReturn {
			if req.ReturnType != "" {
				fmt.Fprintf(&b, "- Returns: %s\n", req.ReturnType)
			} else {
				b.WriteString("- Returns a value.\n")
			}
		}
		if len(req.Raises) > 0 {
			fmt.Fprintf(&b, "- Raises: %s\n", strings.Join(req.Raises, ", "))
		}

		b.WriteString("\nREQUIREMENTS:\n")
		b.WriteString("1. Write ONLY the docstring content, no triple quotes and no commentary.\n")
		b.WriteString("2. Start with a brief description of what the function does.\n")
		fmt.Fprintf(&b, "3. Use the %s docstring format.\n", req.Style)
		for i, s := range requiredSections(req) {
			fmt.Fprintf(&b, "%d. %s\n", i+4, s)
		}
	} else {
		b.WriteString("\nREQUIREMENTS:\n")
		b.WriteString("1. Write ONLY the docstring content, no triple quotes and no commentary.\n")
		b.WriteString("2. One short paragraph; no Args/Returns sections.\n")
	}

	if req.Existing != "" {
		b.WriteString("\nEXISTING DOCSTRING (preserve any hand-written prose and examples, fix the structural gaps):\n")
		b.WriteString(req.Existing)
		b.WriteString("\n")
	}

	b.WriteString("\nSTYLE EXAMPLE:\n")
	b.WriteString(styleExample(req.Style))
	b.WriteString("\n\nGenerate the docstring:")
	return b.String()
}

// requiredSections names the sections the normalizer will insist on, so the
// model is told up front.
func requiredSections(req *GenerationRequest) []string {
	var names []string
	if len(req.Params) > 0 {
		switch req.Style {
		case config.StyleNumPy:
			names = append(names, fmt.Sprintf("Include a Parameters section covering, in order: %s.", paramNames(req.Params)))
		case config.StyleRest:
			names = append(names, fmt.Sprintf("Include :param: fields covering, in order: %s.", paramNames(req.Params)))
		default:
			names = append(names, fmt.Sprintf("Include an Args: section covering, in order: %s.", paramNames(req.Params)))
		}
	}
	if req.HasReturn {
		if req.Style == config.StyleRest {
			names = append(names, "Include a :returns: field.")
		} else {
			names = append(names, "Include a Returns section.")
		}
	}
	if len(req.Raises) > 0 {
		if req.Style == config.StyleRest {
			names = append(names, fmt.Sprintf("Include :raises: fields for: %s.", strings.Join(req.Raises, ", ")))
		} else {
			names = append(names, fmt.Sprintf("Include a Raises section for: %s.", strings.Join(req.Raises, ", ")))
		}
	}
	return names
}

func paramNames(params []parser.Param) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func describeParam(p parser.Param) string {
	s := p.Name
	if p.Variadic {
		s = "*" + s
	}
	if p.KwVariadic {
		s = "**" + s
	}
	if p.Type != "" {
		s += ": " + p.Type
	}
	if p.HasDefault {
		s += fmt.Sprintf(" (optional, default: %s)", p.Default)
	}
	return s
}

func orPlaceholder(body string) string {
	if strings.TrimSpace(body) == "" {
		return "# function body not available"
	}
	return body
}

func styleExample(style config.Style) string {
	switch style {
	case config.StyleNumPy:
		return `Calculate the area of a circle.

Parameters
----------
radius : float
    The radius of the circle in meters.

Returns
-------
float
    The area in square meters.

Raises
------
ValueError
    If radius is negative.`
	case config.StyleRest:
		return `Calculate the area of a circle.

:param radius: The radius of the circle in meters.
:type radius: float
:returns: The area in square meters.
:rtype: float
:raises ValueError: If radius is negative.`
	default:
		return `Calculate the area of a circle.

Args:
    radius: The radius of the circle in meters.

Returns:
    The area in square meters.

Raises:
    ValueError: If radius is negative.`
	}
}
