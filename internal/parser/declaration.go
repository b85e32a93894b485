package parser

import "strings"

// Kind classifies a declaration.
type Kind string

const (
	KindModule   Kind = "module"
	KindClass    Kind = "class"
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
)

// Span is a half-open byte range with 1-based line bounds.
type Span struct {
	StartByte int `json:"start_byte"`
	EndByte   int `json:"end_byte"`
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Param represents a single function or method parameter.
type Param struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Default    string `json:"default,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
	Variadic   bool   `json:"variadic,omitempty"`  // *args
	KwVariadic bool   `json:"kwvariadic,omitempty"` // **kwargs
}

// Docstring describes an existing docstring literal inside a declaration body.
type Docstring struct {
	Span Span   // span of the string literal, quotes included
	Raw  string // literal text, quotes included
	Text string // inner content, quotes stripped
}

// Declaration is one named unit of source: the module itself, a class, a
// function, or a method. Declarations form a containment tree; Parent is the
// owning declaration (nil for the module).
type Declaration struct {
	Name          string
	QualifiedName string
	Kind          Kind
	Depth         int
	Parent        *Declaration

	Span      Span   // whole declaration, leading decorators included
	Signature string // header text without the trailing colon
	IsAsync   bool

	Params     []Param
	ReturnType string
	Raises     []string

	Docstring *Docstring // nil when absent

	// Indentation captured from the text, never assumed globally.
	Indent     string // leading whitespace of the header line
	IndentUnit string // one extra level, derived from the first body statement

	// Insertion geometry for a new docstring.
	BodyStartByte    int  // offset of the line start of the first body statement
	BodyOnHeaderLine bool // body shares the header line (def f(): pass)

	BodySummary string // leading body text for generation context
}

// DocParams returns the parameters that documentation must cover: the
// implicit self/cls receiver of a method is excluded.
func (d *Declaration) DocParams() []Param {
	if d.Kind != KindMethod || len(d.Params) == 0 {
		return d.Params
	}
	if first := d.Params[0].Name; first == "self" || first == "cls" {
		return d.Params[1:]
	}
	return d.Params
}

// HasReturnValue reports whether the declared return annotation is
// non-trivial.
func (d *Declaration) HasReturnValue() bool {
	rt := strings.TrimSpace(d.ReturnType)
	return rt != "" && rt != "None"
}

// BodyIndent is the indentation docstring lines must carry.
func (d *Declaration) BodyIndent() string {
	return d.Indent + d.IndentUnit
}
