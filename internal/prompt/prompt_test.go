package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzzylabs/docstringinator/internal/config"
	"github.com/fuzzylabs/docstringinator/internal/parser"
	"github.com/fuzzylabs/docstringinator/internal/policy"
)

func formatFor(style config.Style) config.FormatConfig {
	return config.FormatConfig{Style: style, MaxLineLen: 88, IncludeTypes: true}
}

func sampleFunc() *parser.Declaration {
	return &parser.Declaration{
		Name:          "add",
		QualifiedName: "add",
		Kind:          parser.KindFunction,
		Signature:     "def add(a: int, b: int) -> int",
		Params:        []parser.Param{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}},
		ReturnType:    "int",
		Raises:        []string{"ValueError"},
		BodySummary:   "    return a + b",
	}
}

func TestBuild_FunctionRequest(t *testing.T) {
	req := Build(sampleFunc(), policy.ActionGenerate, formatFor(config.StyleGoogle))

	assert.Equal(t, "add", req.QualifiedName)
	assert.True(t, req.HasReturn)
	require.Len(t, req.Params, 2)

	assert.Contains(t, req.Prompt, "def add(a: int, b: int) -> int")
	assert.Contains(t, req.Prompt, "Args: section covering, in order: a, b")
	assert.Contains(t, req.Prompt, "Returns section")
	assert.Contains(t, req.Prompt, "Raises section for: ValueError")
	assert.Contains(t, req.Prompt, "google docstring format")
}

func TestBuild_MethodStripsSelf(t *testing.T) {
	d := &parser.Declaration{
		Name:          "scale",
		QualifiedName: "Calc.scale",
		Kind:          parser.KindMethod,
		Signature:     "def scale(self, factor: float) -> float",
		Params:        []parser.Param{{Name: "self"}, {Name: "factor", Type: "float"}},
		ReturnType:    "float",
	}
	req := Build(d, policy.ActionGenerate, formatFor(config.StyleGoogle))

	require.Len(t, req.Params, 1)
	assert.Equal(t, "factor", req.Params[0].Name)
	assert.Contains(t, req.Prompt, "do not document self")
}

func TestBuild_ImproveCarriesExisting(t *testing.T) {
	d := sampleFunc()
	d.Docstring = &parser.Docstring{Text: "Adds numbers.\n\nExample:\n    add(1, 2)"}
	req := Build(d, policy.ActionImprove, formatFor(config.StyleGoogle))

	assert.Equal(t, d.Docstring.Text, req.Existing)
	assert.Contains(t, req.Prompt, "EXISTING DOCSTRING")
	assert.Contains(t, req.Prompt, "add(1, 2)")
}

func TestBuild_StyleSections(t *testing.T) {
	numpy := Build(sampleFunc(), policy.ActionGenerate, formatFor(config.StyleNumPy))
	assert.Contains(t, numpy.Prompt, "Parameters section covering, in order: a, b")

	rest := Build(sampleFunc(), policy.ActionGenerate, formatFor(config.StyleRest))
	assert.Contains(t, rest.Prompt, ":param: fields covering, in order: a, b")
	assert.Contains(t, rest.Prompt, ":returns: field")
}

func TestBuild_TypeHintsDisabled(t *testing.T) {
	format := formatFor(config.StyleGoogle)
	format.IncludeTypes = false
	req := Build(sampleFunc(), policy.ActionGenerate, format)

	assert.True(t, req.HasReturn)
	assert.Empty(t, req.ReturnType)
	for _, p := range req.Params {
		assert.Empty(t, p.Type)
	}
	assert.Contains(t, req.Prompt, "- Returns a value.")
	assert.NotContains(t, req.Prompt, "- a: int")
}

func TestBuild_ModuleRequest(t *testing.T) {
	d := &parser.Declaration{Name: "utils", QualifiedName: "utils", Kind: parser.KindModule}
	req := Build(d, policy.ActionGenerate, formatFor(config.StyleGoogle))

	assert.Contains(t, req.Prompt, "module \"utils\"")
	assert.Contains(t, req.Prompt, "no Args/Returns sections")
}
