package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) ([]byte, []*Declaration) {
	t.Helper()
	source, err := os.ReadFile(filepath.Join("testdata", "sample.py"))
	require.NoError(t, err)

	decls, err := Extract(source, "sample")
	require.NoError(t, err)
	return source, decls
}

func declsByName(decls []*Declaration) map[string]*Declaration {
	m := make(map[string]*Declaration, len(decls))
	for _, d := range decls {
		m[d.QualifiedName] = d
	}
	return m
}

func TestExtract_PreOrder(t *testing.T) {
	_, decls := loadSample(t)

	var names []string
	for _, d := range decls {
		names = append(names, d.QualifiedName)
	}
	assert.Equal(t, []string{
		"sample",
		"add",
		"divide",
		"Calculator",
		"Calculator.__init__",
		"Calculator.scale",
		"Calculator.fetch",
		"Calculator._hidden",
		"cached",
		"cached.inner",
	}, names)

	// Spans are ordered by start offset after the module wrapper.
	for i := 2; i < len(decls); i++ {
		assert.Greater(t, decls[i].Span.StartByte, decls[i-1].Span.StartByte,
			"declaration %s should start after %s", decls[i].QualifiedName, decls[i-1].QualifiedName)
	}
}

func TestExtract_Module(t *testing.T) {
	_, decls := loadSample(t)
	mod := decls[0]

	assert.Equal(t, KindModule, mod.Kind)
	require.NotNil(t, mod.Docstring)
	assert.Equal(t, "Utilities for demo arithmetic.", mod.Docstring.Text)
	assert.Equal(t, 0, mod.BodyStartByte)
	assert.Empty(t, mod.Indent)
}

func TestExtract_Function(t *testing.T) {
	source, decls := loadSample(t)
	byName := declsByName(decls)

	add := byName["add"]
	require.NotNil(t, add)
	assert.Equal(t, KindFunction, add.Kind)
	assert.Equal(t, "def add(a: int, b: int) -> int", add.Signature)
	assert.Nil(t, add.Docstring)
	assert.Equal(t, "int", add.ReturnType)
	assert.False(t, add.BodyOnHeaderLine)
	assert.Equal(t, "", add.Indent)
	assert.Equal(t, "    ", add.IndentUnit)

	require.Len(t, add.Params, 2)
	assert.Equal(t, Param{Name: "a", Type: "int"}, add.Params[0])
	assert.Equal(t, Param{Name: "b", Type: "int"}, add.Params[1])

	text := string(source[add.Span.StartByte:add.Span.EndByte])
	assert.True(t, strings.HasPrefix(text, "def add"), "span should start at the def keyword")
}

func TestExtract_Raises(t *testing.T) {
	_, decls := loadSample(t)
	byName := declsByName(decls)

	divide := byName["divide"]
	require.NotNil(t, divide)
	assert.Equal(t, []string{"ZeroDivisionError"}, divide.Raises)
	require.NotNil(t, divide.Docstring)
	assert.Equal(t, "Divide a by b.", divide.Docstring.Text)

	// Raises inside a nested function belong to the inner declaration only.
	cached := byName["cached"]
	require.NotNil(t, cached)
	assert.Empty(t, cached.Raises)
	inner := byName["cached.inner"]
	require.NotNil(t, inner)
	assert.Equal(t, []string{"KeyError"}, inner.Raises)
}

func TestExtract_Methods(t *testing.T) {
	_, decls := loadSample(t)
	byName := declsByName(decls)

	init := byName["Calculator.__init__"]
	require.NotNil(t, init)
	assert.Equal(t, KindMethod, init.Kind)
	require.Len(t, init.Params, 2)
	assert.Equal(t, "self", init.Params[0].Name)
	assert.Equal(t, Param{Name: "precision", Type: "int", Default: "2", HasDefault: true}, init.Params[1])
	assert.Equal(t, "    ", init.Indent)
	assert.Equal(t, "    ", init.IndentUnit)

	fetch := byName["Calculator.fetch"]
	require.NotNil(t, fetch)
	assert.True(t, fetch.IsAsync)
	assert.Equal(t, []string{"FetchError"}, fetch.Raises, "attribute raise should keep the final segment")
	require.Len(t, fetch.Params, 4)
	assert.True(t, fetch.Params[2].Variadic)
	assert.Equal(t, "args", fetch.Params[2].Name)
	assert.True(t, fetch.Params[3].KwVariadic)
	assert.Equal(t, "kwargs", fetch.Params[3].Name)

	// self is excluded from the documentation parameters.
	docParams := fetch.DocParams()
	require.Len(t, docParams, 3)
	assert.Equal(t, "url", docParams[0].Name)
}

func TestExtract_DecoratorIncludedInSpan(t *testing.T) {
	source, decls := loadSample(t)
	byName := declsByName(decls)

	cached := byName["cached"]
	require.NotNil(t, cached)
	text := string(source[cached.Span.StartByte:cached.Span.EndByte])
	assert.True(t, strings.HasPrefix(text, "@functools.lru_cache"), "span should include the decorator")
}

func TestExtract_SyntaxError(t *testing.T) {
	_, err := Extract([]byte("def broken(:\n    pass\n"), "broken")
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestExtract_SingleLineBody(t *testing.T) {
	decls, err := Extract([]byte("def f(): return 1\n"), "m")
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.True(t, decls[1].BodyOnHeaderLine)
}

func TestExtract_TabIndentation(t *testing.T) {
	decls, err := Extract([]byte("def f(x):\n\treturn x\n"), "m")
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "\t", decls[1].IndentUnit)
}

func TestExtract_ModuleBodyAfterComments(t *testing.T) {
	source := []byte("# leading comment\nimport os\n")
	decls, err := Extract(source, "m")
	require.NoError(t, err)
	mod := decls[0]
	assert.Nil(t, mod.Docstring)
	assert.Equal(t, len("# leading comment\n"), mod.BodyStartByte)
}

func TestStripQuotes(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`"""Triple."""`, "Triple."},
		{`'''Triple single.'''`, "Triple single."},
		{`"plain"`, "plain"},
		{`r"""raw"""`, "raw"},
		{`f"formatted"`, "formatted"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StripQuotes(tc.raw), "raw=%s", tc.raw)
	}
}
